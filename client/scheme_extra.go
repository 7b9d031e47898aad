package client

// the remaining schemes expose reduced tables

// cryptonote2: one-time addresses and derived secrets, no signing surface
func cryptonote2HandlerTable() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		OpKeyPanel:       keygenHandler("cryptonote2"),
		OpAddressPanel:   addrgenHandler("cryptonote2"),
		OpDskPanel:       dskgenHandler("cryptonote2"),
		OpRecognizePanel: recognizeHandler("cryptonote2", false),
	}
}

// zhao: plain keypair signing, no addresses or derived secrets
func zhaoHandlerTable() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		OpKeyPanel:     keygenHandler("zhao"),
		OpSigningPanel: signingHandler("zhao"),
		OpVerifyPanel:  verifyHandler("zhao"),
	}
}

// hdwsa: hierarchical deterministic wallet signatures
func hdwsaHandlerTable() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		OpKeyPanel:     keygenHandler("hdwsa"),
		OpSigningPanel: signingHandler("hdwsa"),
		OpVerifyPanel:  verifyHandler("hdwsa"),
	}
}
