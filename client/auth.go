package client

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// claims of an api bearer token, decoded without signature verification.
// Verification belongs to the backend; the client only displays these.
type ApiToken struct {
	Subject   string
	SessionId string
	Scopes    []string
	ExpiresAt time.Time
}

func ParseApiTokenUnverified(token string) (*ApiToken, error) {
	parser := gojwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, gojwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	claims := parsed.Claims.(gojwt.MapClaims)

	apiToken := &ApiToken{}

	if subject, ok := claims["sub"]; ok {
		if subjectStr, ok := subject.(string); ok {
			apiToken.Subject = subjectStr
		}
	}
	if sessionId, ok := claims["session_id"]; ok {
		if sessionIdStr, ok := sessionId.(string); ok {
			apiToken.SessionId = sessionIdStr
		}
	}
	if scopes, ok := claims["scopes"]; ok {
		if scopeList, ok := scopes.([]any); ok {
			for _, scope := range scopeList {
				if scopeStr, ok := scope.(string); ok {
					apiToken.Scopes = append(apiToken.Scopes, scopeStr)
				}
			}
		}
	}
	if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil {
		apiToken.ExpiresAt = expiresAt.Time
	}

	return apiToken, nil
}
