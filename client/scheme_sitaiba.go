package client

// sitaiba has no signing or verification. Recognition comes in a fast and a
// full variant; fast is the default.
func sitaibaHandlerTable() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		OpKeyPanel:       keygenHandler("sitaiba"),
		OpAddressPanel:   addrgenHandler("sitaiba"),
		OpDskPanel:       dskgenHandler("sitaiba"),
		OpTracePanel:     traceHandler("sitaiba"),
		OpRecognizePanel: recognizeHandler("sitaiba", true),
	}
}
