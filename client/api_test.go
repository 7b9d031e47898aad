package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestUnwrapApiError(t *testing.T) {
	// a clean 200 is not an error
	assert.Equal(t, unwrapApiError(http.StatusOK, []byte(`{"status":"ok"}`)), nil)

	// a 200 with a benign message is still not an error
	assert.Equal(t, unwrapApiError(http.StatusOK, []byte(`{"message":"state cleared"}`)), nil)

	// an explicit error field on 200 is a domain failure
	err := unwrapApiError(http.StatusOK, []byte(`{"error":"scheme not ready"}`))
	assert.NotEqual(t, err, nil)
	assert.Equal(t, "scheme not ready", err.Error())

	// non-200 surfaces the error or message field
	err = unwrapApiError(http.StatusBadRequest, []byte(`{"error":"bad index"}`))
	assert.Equal(t, "bad index", err.Error())
	err = unwrapApiError(http.StatusInternalServerError, []byte(`{"message":"boom"}`))
	assert.Equal(t, "boom", err.Error())

	// non-json bodies fall back to the raw text, then the status code
	err = unwrapApiError(http.StatusBadGateway, []byte("upstream unavailable"))
	assert.Equal(t, "upstream unavailable", err.Error())
	err = unwrapApiError(http.StatusBadGateway, []byte("  "))
	assert.Equal(t, fmt.Sprintf("status %d", http.StatusBadGateway), err.Error())
}

func TestApiAuthHeader(t *testing.T) {
	authorization := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		writeJson(w, http.StatusOK, statusBody())
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()

	_, err := api.StatusSync()
	assert.Equal(t, err, nil)
	assert.Equal(t, "", authorization)

	api.SetAuthToken("token123")
	_, err = api.StatusSync()
	assert.Equal(t, err, nil)
	assert.Equal(t, "Bearer token123", authorization)
}

func TestApiStatusSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schemes", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		writeJson(w, http.StatusOK, statusBody())
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()

	result, err := api.StatusSync()
	assert.Equal(t, err, nil)
	assert.Equal(t, 2, len(result.Schemes))
	assert.Equal(t, "stealth", result.Current["id"])
}

func TestApiSignPostBody(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sign", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		readJson(r, &body)
		writeJson(w, http.StatusOK, map[string]any{
			"q_sigma_hex": "q1",
			"h_hex":       "h1",
		})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()

	dskIndex := 2
	result, err := api.SignSync(&SignArgs{
		Message:  "hello",
		DskIndex: &dskIndex,
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, "q1", result["q_sigma_hex"])

	assert.Equal(t, "hello", body["message"])
	assert.Equal(t, float64(2), body["dsk_index"])
	// omitempty: unset index selectors never reach the wire
	_, hasKeyIndex := body["key_index"]
	assert.Equal(t, false, hasKeyIndex)
}

func TestApiAsyncCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/keygen", r.URL.Path)
		writeJson(w, http.StatusOK, map[string]any{
			"id":    "key-1",
			"A_hex": "aa",
		})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()

	callback, c := NewBlockingApiCallback[map[string]any]()
	api.Keygen(callback)
	result := <-c
	assert.Equal(t, result.Error, nil)
	assert.Equal(t, "key-1", result.Result["id"])
}

func TestApiBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusInternalServerError, map[string]any{"error": "pairing library not loaded"})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()

	_, err := api.KeygenSync()
	assert.NotEqual(t, err, nil)
	assert.Equal(t, "pairing library not loaded", err.Error())

	apiErr, ok := err.(*ApiError)
	assert.Equal(t, true, ok)
	assert.Equal(t, "pairing library not loaded", apiErr.Message)
}
