package client

import (
	"strconv"
)

// handler args arrive as loosely typed panel state

func stringArg(args map[string]any, name string) (string, bool) {
	if args == nil {
		return "", false
	}
	value, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func intArg(args map[string]any, name string) (int, bool) {
	if args == nil {
		return 0, false
	}
	switch v := args[name].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}

func boolArg(args map[string]any, name string) (bool, bool) {
	if args == nil {
		return false, false
	}
	b, ok := args[name].(bool)
	return b, ok
}

// the create handlers share one flow: backend call, normalize, append to the
// store, publish the matching topic so sibling panels update without a
// re-fetch

func keygenHandler(schemeId string) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		raw, err := session.Api().KeygenSync()
		if err != nil {
			return nil, err
		}
		key := NormalizeKey(schemeId, raw)
		session.Store().AddKey(key)
		session.Bus().Publish(TopicKeyUpdated, key)
		return raw, nil
	}
}

func addrgenHandler(schemeId string) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		keyIndex, ok := intArg(args, "key_index")
		if !ok {
			return nil, newApiError("key_index required")
		}
		raw, err := session.Api().AddrGenSync(&AddrGenArgs{
			KeyIndex: keyIndex,
		})
		if err != nil {
			return nil, err
		}
		address := NormalizeAddress(schemeId, raw)
		session.Store().AddAddress(address)
		session.Bus().Publish(TopicAddressUpdated, address)
		return raw, nil
	}
}

func dskgenHandler(schemeId string) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		addressIndex, ok := intArg(args, "address_index")
		if !ok {
			return nil, newApiError("address_index required")
		}
		keyIndex, ok := intArg(args, "key_index")
		if !ok {
			return nil, newApiError("key_index required")
		}
		raw, err := session.Api().DskGenSync(&DskGenArgs{
			AddressIndex: addressIndex,
			KeyIndex:     keyIndex,
		})
		if err != nil {
			return nil, err
		}
		dsk := NormalizeDsk(schemeId, raw)
		session.Store().AddDsk(dsk)
		session.Bus().Publish(TopicDskUpdated, dsk)
		return raw, nil
	}
}

func signingHandler(schemeId string) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		message, ok := stringArg(args, "message")
		if !ok {
			return nil, newApiError("message required")
		}
		signArgs := &SignArgs{
			Message: message,
		}
		if dskIndex, ok := intArg(args, "dsk_index"); ok {
			signArgs.DskIndex = &dskIndex
		}
		addressIndex, haveAddressIndex := intArg(args, "address_index")
		if haveAddressIndex {
			signArgs.AddressIndex = &addressIndex
		}
		if keyIndex, ok := intArg(args, "key_index"); ok {
			signArgs.KeyIndex = &keyIndex
		}
		raw, err := session.Api().SignSync(signArgs)
		if err != nil {
			return nil, err
		}
		transaction := NormalizeTransaction(schemeId, raw)
		// snapshot the signing address now; the positional index goes stale
		// as soon as the address list is appended to or reloaded
		if addr, ok := FindComponent(transaction.AddressSnapshot, "addr"); !ok || addr == placeholderHex {
			if haveAddressIndex {
				addresses := session.Store().Addresses()
				if 0 <= addressIndex && addressIndex < len(addresses) {
					transaction.AddressSnapshot = cloneComponents(addresses[addressIndex].Components)
				}
			}
		}
		session.Store().AddTransaction(transaction)
		session.Bus().Publish(TopicTxUpdated, transaction)
		return raw, nil
	}
}

func verifyHandler(schemeId string) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		message, ok := stringArg(args, "message")
		if !ok {
			return nil, newApiError("message required")
		}
		qSigmaHex, _ := stringArg(args, "q_sigma_hex")
		hHex, _ := stringArg(args, "h_hex")
		addressIndex, ok := intArg(args, "address_index")
		if !ok {
			return nil, newApiError("address_index required")
		}
		return session.Api().VerifySignatureSync(&VerifySignatureArgs{
			Message:      message,
			QSigmaHex:    qSigmaHex,
			HHex:         hHex,
			AddressIndex: addressIndex,
		})
	}
}

func traceHandler(schemeId string) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		addressIndex, ok := intArg(args, "address_index")
		if !ok {
			return nil, newApiError("address_index required")
		}
		return session.Api().TraceSync(&TraceArgs{
			AddressIndex: addressIndex,
		})
	}
}

func recognizeHandler(schemeId string, fastDefault bool) HandlerFunc {
	return func(session *Session, args map[string]any) (map[string]any, error) {
		addressIndex, ok := intArg(args, "address_index")
		if !ok {
			return nil, newApiError("address_index required")
		}
		keyIndex, ok := intArg(args, "key_index")
		if !ok {
			return nil, newApiError("key_index required")
		}
		recognizeArgs := &RecognizeAddrArgs{
			AddressIndex: addressIndex,
			KeyIndex:     keyIndex,
		}
		fast := fastDefault
		if f, ok := boolArg(args, "fast"); ok {
			fast = f
		}
		if fast != fastDefault || fastDefault {
			recognizeArgs.Fast = &fast
		}
		return session.Api().RecognizeAddrSync(recognizeArgs)
	}
}

// every scheme module's table, keyed by scheme id.
// my_stealth is the unified-route alias for the stealth scheme.
func schemeHandlerTables() map[string]map[string]HandlerFunc {
	tables := map[string]map[string]HandlerFunc{
		"stealth":     stealthHandlerTable(),
		"my_stealth":  stealthHandlerTable(),
		"sitaiba":     sitaibaHandlerTable(),
		"cryptonote2": cryptonote2HandlerTable(),
		"zhao":        zhaoHandlerTable(),
		"hdwsa":       hdwsaHandlerTable(),
	}
	return tables
}
