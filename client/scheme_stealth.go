package client

// stealth is the full traceable stealth-address scheme: the only one that
// supports the complete key -> address -> dsk -> sign -> verify -> trace
// chain
func stealthHandlerTable() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		OpKeyPanel:       keygenHandler("stealth"),
		OpAddressPanel:   addrgenHandler("stealth"),
		OpDskPanel:       dskgenHandler("stealth"),
		OpSigningPanel:   signingHandler("stealth"),
		OpVerifyPanel:    verifyHandler("stealth"),
		OpTracePanel:     traceHandler("stealth"),
		OpRecognizePanel: recognizeHandler("stealth", false),
	}
}
