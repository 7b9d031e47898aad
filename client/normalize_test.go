package client

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestNormalizeAddressVariants(t *testing.T) {
	// flattened shape
	flat := NormalizeAddress("stealth", map[string]any{
		"id":       "addr-1",
		"addr_hex": "aa11",
		"r1_hex":   "bb22",
		"r2_hex":   "cc33",
		"c_hex":    "dd44",
		"key_id":   "k0",
	})
	assert.Equal(t, "addr-1", flat.Id)
	assert.Equal(t, "aa11", flat.AddrHex())
	assert.Equal(t, "k0", flat.OwnerKeyId)
	assert.Equal(t, "stealth", flat.Scheme)

	r1, ok := FindComponent(flat.Components, "r1")
	assert.Equal(t, true, ok)
	assert.Equal(t, "bb22", r1)

	// nested shape with a numeric id
	nested := NormalizeAddress("stealth", map[string]any{
		"addr_id": 7,
		"address": map[string]any{
			"hex": "ab12",
		},
		"key_id": "k1",
	})
	assert.Equal(t, "7", nested.Id)
	assert.Equal(t, "ab12", nested.AddrHex())
	assert.Equal(t, "k1", nested.OwnerKeyId)
}

func TestNormalizeTotality(t *testing.T) {
	// normalization never panics and always produces the stable shape
	key := NormalizeKey("stealth", map[string]any{})
	assert.Equal(t, placeholderHex, key.Id)
	assert.Equal(t, 2, len(key.Public))
	assert.Equal(t, placeholderHex, key.Public[0].Hex)
	assert.Equal(t, StatusReady, key.Status)

	address := NormalizeAddress("no_such_scheme", nil)
	assert.Equal(t, placeholderHex, address.Id)
	assert.Equal(t, placeholderHex, address.AddrHex())

	dsk := NormalizeDsk("sitaiba", map[string]any{
		"unexpected": []any{1, 2, 3},
	})
	assert.Equal(t, placeholderHex, dsk.SecretHex)

	transaction := NormalizeTransaction("stealth", nil)
	assert.Equal(t, placeholderHex, transaction.Message)
	assert.Equal(t, StatusPendingVerification, transaction.Status)

	trace := NormalizeTrace("stealth", map[string]any{})
	assert.Equal(t, placeholderHex, trace.RecoveredIdentityHex)
	assert.Equal(t, false, trace.PerfectMatch)
}

func TestNormalizeKeyStealth(t *testing.T) {
	key := NormalizeKey("my_stealth", map[string]any{
		"id":    "key-3",
		"A_hex": "01",
		"B_hex": "02",
		"a_hex": "03",
		"b_hex": "04",
	})
	assert.Equal(t, "key-3", key.Id)
	assert.Equal(t, []Component{{"A", "01"}, {"B", "02"}}, key.Public)
	assert.Equal(t, []Component{{"a", "03"}, {"b", "04"}}, key.Private)
}

func TestNormalizeSchemeCapabilities(t *testing.T) {
	stealth := NormalizeScheme(map[string]any{
		"id":           "stealth",
		"name":         "My Stealth Address",
		"param_type":   "pbc",
		"capabilities": []any{"setup", "keygen", "sign", "verify", "trace", "verify_addr"},
	})
	assert.Equal(t, "stealth", stealth.Id)
	assert.Equal(t, "pbc", stealth.ParameterFamily)
	assert.Equal(t, true, stealth.Capabilities.Signing)
	assert.Equal(t, true, stealth.Capabilities.Verification)
	assert.Equal(t, true, stealth.Capabilities.Tracing)
	assert.Equal(t, true, stealth.Capabilities.FullRecognition)
	assert.Equal(t, false, stealth.Capabilities.FastRecognition)
	assert.Equal(t, true, stealth.Available)

	sitaiba := NormalizeScheme(map[string]any{
		"name":         "sitaiba",
		"capabilities": []any{"setup", "keygen", "addrgen", "fast_verify", "verify_addr", "trace"},
		"available":    false,
	})
	assert.Equal(t, "sitaiba", sitaiba.Id)
	assert.Equal(t, false, sitaiba.Capabilities.Signing)
	assert.Equal(t, true, sitaiba.Capabilities.FastRecognition)
	assert.Equal(t, false, sitaiba.Available)
}

func TestNormalizeTransactionSnapshot(t *testing.T) {
	transaction := NormalizeTransaction("stealth", map[string]any{
		"message":     "hello",
		"q_sigma_hex": "q1",
		"h_hex":       "h1",
		"address": map[string]any{
			"addr_hex": "aa",
			"r1_hex":   "r1",
			"r2_hex":   "r2",
			"c_hex":    "cc",
		},
	})
	assert.Equal(t, "hello", transaction.Message)

	qSigma, ok := FindComponent(transaction.Signature, "q_sigma")
	assert.Equal(t, true, ok)
	assert.Equal(t, "q1", qSigma)

	addr, ok := FindComponent(transaction.AddressSnapshot, "addr")
	assert.Equal(t, true, ok)
	assert.Equal(t, "aa", addr)

	// verification outcome maps onto the status
	verified := NormalizeTransaction("stealth", map[string]any{
		"message": "hello",
		"valid":   true,
	})
	assert.Equal(t, StatusVerified, verified.Status)

	invalid := NormalizeTransaction("stealth", map[string]any{
		"message": "hello",
		"valid":   false,
	})
	assert.Equal(t, StatusInvalid, invalid.Status)
}

func TestNormalizeTrace(t *testing.T) {
	trace := NormalizeTrace("stealth", map[string]any{
		"address_id":       "addr-5",
		"recovered_b_hex":  "beef",
		"matched_key_id":   "k2",
		"perfect_match":    true,
		"unrelated_field":  "x",
		"another_unusable": map[string]any{},
	})
	assert.Equal(t, "addr-5", trace.TracedAddressId)
	assert.Equal(t, "beef", trace.RecoveredIdentityHex)
	assert.Equal(t, "k2", trace.MatchedKeyId)
	assert.Equal(t, true, trace.PerfectMatch)
}
