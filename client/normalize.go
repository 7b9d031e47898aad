package client

import (
	"strconv"
	"strings"
)

// Each scheme returns differently shaped raw records for the same logical
// entity. The tables below map every known variant onto the one internal
// shape; anything missing becomes placeholderHex. Normalization is total and
// never panics.

const placeholderHex = "(unset)"

type fieldSpec struct {
	name  string
	paths []string
}

// my_stealth is the unified-route name for the stealth scheme
var schemeAliases = map[string]string{
	"my_stealth": "stealth",
}

func canonicalScheme(scheme string) string {
	if alias, ok := schemeAliases[scheme]; ok {
		return alias
	}
	return scheme
}

var keyPublicFields = map[string][]fieldSpec{
	"stealth": {
		{"A", []string{"A_hex", "A"}},
		{"B", []string{"B_hex", "B"}},
	},
	"sitaiba": {
		{"A", []string{"A_hex", "A"}},
		{"B", []string{"B_hex", "B"}},
	},
	"cryptonote2": {
		{"A", []string{"A_hex", "A"}},
		{"B", []string{"B_hex", "B"}},
	},
	"zhao": {
		{"public_key", []string{"public_key_hex", "public_key", "pk_hex"}},
	},
	"hdwsa": {
		{"public_key", []string{"public_key_hex", "public_key", "master_public_hex"}},
		{"chain_code", []string{"chain_code_hex", "chain_code"}},
	},
}

var keyPrivateFields = map[string][]fieldSpec{
	"stealth": {
		{"a", []string{"a_hex", "a"}},
		{"b", []string{"b_hex", "b"}},
	},
	"sitaiba": {
		{"a", []string{"a_hex", "a"}},
		{"b", []string{"b_hex", "b"}},
	},
	"cryptonote2": {
		{"a", []string{"a_hex", "a"}},
		{"b", []string{"b_hex", "b"}},
	},
	"zhao": {
		{"private_key", []string{"private_key_hex", "private_key", "sk_hex"}},
	},
	"hdwsa": {
		{"private_key", []string{"private_key_hex", "private_key", "master_secret_hex"}},
	},
}

var genericKeyPublicFields = []fieldSpec{
	{"public_key", []string{"public_key_hex", "public_key", "pk_hex", "A_hex"}},
}

var genericKeyPrivateFields = []fieldSpec{
	{"private_key", []string{"private_key_hex", "private_key", "sk_hex", "a_hex"}},
}

var addressFields = map[string][]fieldSpec{
	"stealth": {
		{"addr", []string{"addr_hex", "address.hex", "addr"}},
		{"r1", []string{"r1_hex", "r1"}},
		{"r2", []string{"r2_hex", "r2"}},
		{"c", []string{"c_hex", "c"}},
	},
	"sitaiba": {
		{"addr", []string{"addr_hex", "address.hex", "addr"}},
		{"r1", []string{"r1_hex", "r1"}},
		{"r2", []string{"r2_hex", "r2"}},
	},
	"cryptonote2": {
		{"addr", []string{"pk_one_hex", "addr_hex", "address.hex", "pk_one"}},
		{"r", []string{"r_hex", "r"}},
	},
}

var genericAddressFields = []fieldSpec{
	{"addr", []string{"addr_hex", "address.hex", "address", "addr"}},
}

var signatureFields = map[string][]fieldSpec{
	"stealth": {
		{"q_sigma", []string{"q_sigma_hex", "q_sigma"}},
		{"h", []string{"h_hex", "h"}},
	},
	"zhao": {
		{"signature", []string{"signature_hex", "signature"}},
		{"hash", []string{"hash_hex", "hash"}},
	},
	"hdwsa": {
		{"signature", []string{"signature_hex", "signature"}},
	},
	"sitaiba": {
		{"signature", []string{"signature_hex", "signature"}},
	},
}

var genericSignatureFields = []fieldSpec{
	{"signature", []string{"signature_hex", "signature", "q_sigma_hex"}},
}

func fieldsFor(table map[string][]fieldSpec, scheme string, generic []fieldSpec) []fieldSpec {
	if fields, ok := table[canonicalScheme(scheme)]; ok {
		return fields
	}
	return generic
}

// dotted path lookup into a decoded json object
func rawValue(raw map[string]any, path string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var value any = raw
	for _, part := range parts {
		object, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = object[part]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

func formatRaw(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		// objects and arrays are not scalar components
		return "", false
	}
}

func rawString(raw map[string]any, paths ...string) (string, bool) {
	for _, path := range paths {
		if value, ok := rawValue(raw, path); ok {
			if s, ok := formatRaw(value); ok {
				return s, true
			}
		}
	}
	return "", false
}

func rawBool(raw map[string]any, paths ...string) (bool, bool) {
	for _, path := range paths {
		if value, ok := rawValue(raw, path); ok {
			if b, ok := value.(bool); ok {
				return b, true
			}
		}
	}
	return false, false
}

func normalizeId(raw map[string]any, paths ...string) string {
	if id, ok := rawString(raw, paths...); ok {
		return id
	}
	return placeholderHex
}

func normalizeComponents(raw map[string]any, fields []fieldSpec) []Component {
	components := make([]Component, 0, len(fields))
	for _, field := range fields {
		hex, ok := rawString(raw, field.paths...)
		if !ok {
			hex = placeholderHex
		}
		components = append(components, Component{
			Name: field.name,
			Hex:  hex,
		})
	}
	return components
}

func NormalizeKey(scheme string, raw map[string]any) *KeyRecord {
	record := &KeyRecord{
		Id:      normalizeId(raw, "id", "key_id"),
		Scheme:  scheme,
		Public:  normalizeComponents(raw, fieldsFor(keyPublicFields, scheme, genericKeyPublicFields)),
		Private: normalizeComponents(raw, fieldsFor(keyPrivateFields, scheme, genericKeyPrivateFields)),
		Status:  StatusReady,
	}
	if status, ok := rawString(raw, "status"); ok {
		record.Status = RecordStatus(status)
	}
	return record
}

func NormalizeAddress(scheme string, raw map[string]any) *AddressRecord {
	record := &AddressRecord{
		Id:         normalizeId(raw, "id", "addr_id", "address_id"),
		Scheme:     scheme,
		OwnerKeyId: normalizeId(raw, "key_id", "owner_key_id"),
		Components: normalizeComponents(raw, fieldsFor(addressFields, scheme, genericAddressFields)),
		Status:     StatusReady,
	}
	if status, ok := rawString(raw, "status"); ok {
		record.Status = RecordStatus(status)
	}
	return record
}

func NormalizeDsk(scheme string, raw map[string]any) *DskRecord {
	record := &DskRecord{
		Id:        normalizeId(raw, "id", "dsk_id"),
		Scheme:    scheme,
		AddressId: normalizeId(raw, "address_id", "addr_id", "for_address"),
		KeyId:     normalizeId(raw, "key_id"),
		Status:    StatusReady,
	}
	secretHex, ok := rawString(raw, "dsk_hex", "sk_hex", "secret_hex", "onetime_sk_hex")
	if !ok {
		secretHex = placeholderHex
	}
	record.SecretHex = secretHex
	if status, ok := rawString(raw, "status"); ok {
		record.Status = RecordStatus(status)
	}
	return record
}

func NormalizeTransaction(scheme string, raw map[string]any) *TransactionRecord {
	record := &TransactionRecord{
		Id:        normalizeId(raw, "id", "tx_id"),
		Scheme:    scheme,
		Signature: normalizeComponents(raw, fieldsFor(signatureFields, scheme, genericSignatureFields)),
		Status:    StatusPendingVerification,
	}
	message, ok := rawString(raw, "message", "msg")
	if !ok {
		message = placeholderHex
	}
	record.Message = message

	// the address snapshot may arrive nested or flattened into the record
	snapshotFields := fieldsFor(addressFields, scheme, genericAddressFields)
	if nested, ok := rawValue(raw, "address"); ok {
		if nestedObject, ok := nested.(map[string]any); ok {
			record.AddressSnapshot = normalizeComponents(nestedObject, snapshotFields)
		}
	}
	if record.AddressSnapshot == nil {
		record.AddressSnapshot = normalizeComponents(raw, snapshotFields)
	}
	if addr, ok := FindComponent(record.AddressSnapshot, "addr"); ok && addr == placeholderHex {
		if forAddress, ok := rawString(raw, "for_address"); ok {
			for i := range record.AddressSnapshot {
				if record.AddressSnapshot[i].Name == "addr" {
					record.AddressSnapshot[i].Hex = forAddress
				}
			}
		}
	}

	if valid, ok := rawBool(raw, "valid", "verified", "is_valid"); ok {
		if valid {
			record.Status = StatusVerified
		} else {
			record.Status = StatusInvalid
		}
	} else if status, ok := rawString(raw, "status"); ok {
		record.Status = RecordStatus(status)
	}
	return record
}

func NormalizeTrace(scheme string, raw map[string]any) *TraceResult {
	result := &TraceResult{
		Id:              normalizeId(raw, "id", "trace_id"),
		Scheme:          scheme,
		TracedAddressId: normalizeId(raw, "traced_address_id", "address_id", "addr_id"),
		MatchedKeyId:    normalizeId(raw, "matched_key_id", "key_id"),
	}
	recovered, ok := rawString(raw, "recovered_identity_hex", "recovered_b_hex", "b_recovered_hex", "recovered_hex", "B_recovered")
	if !ok {
		recovered = placeholderHex
	}
	result.RecoveredIdentityHex = recovered
	if perfectMatch, ok := rawBool(raw, "perfect_match", "is_match", "match"); ok {
		result.PerfectMatch = perfectMatch
	}
	return result
}

// capability strings as the backend declares them, per scheme
var capabilityNames = map[string]CapabilityFlag{
	"sign":        CapabilitySigning,
	"verify":      CapabilityVerification,
	"trace":       CapabilityTracing,
	"fast_verify": CapabilityFastRecognition,
	"verify_addr": CapabilityFullRecognition,
	"addr_verify": CapabilityFullRecognition,
}

func normalizeCapabilities(raw map[string]any) SchemeCapabilities {
	capabilities := SchemeCapabilities{}
	names := []any{}
	for _, path := range []string{"capabilities", "functions"} {
		if value, ok := rawValue(raw, path); ok {
			if list, ok := value.([]any); ok {
				names = append(names, list...)
			}
		}
	}
	for _, name := range names {
		nameStr, ok := name.(string)
		if !ok {
			continue
		}
		switch capabilityNames[nameStr] {
		case CapabilitySigning:
			capabilities.Signing = true
		case CapabilityVerification:
			capabilities.Verification = true
		case CapabilityTracing:
			capabilities.Tracing = true
		case CapabilityFastRecognition:
			capabilities.FastRecognition = true
		case CapabilityFullRecognition:
			capabilities.FullRecognition = true
		}
	}
	return capabilities
}

func NormalizeScheme(raw map[string]any) SchemeDescriptor {
	descriptor := SchemeDescriptor{
		Capabilities: normalizeCapabilities(raw),
		Available:    true,
	}
	id, ok := rawString(raw, "id", "name", "scheme")
	if !ok {
		id = placeholderHex
	}
	descriptor.Id = id
	displayName, ok := rawString(raw, "display_name", "name")
	if !ok {
		displayName = descriptor.Id
	}
	descriptor.DisplayName = displayName
	if parameterFamily, ok := rawString(raw, "param_type", "parameter_family"); ok {
		descriptor.ParameterFamily = parameterFamily
	}
	if available, ok := rawBool(raw, "available"); ok {
		descriptor.Available = available
	}
	return descriptor
}
