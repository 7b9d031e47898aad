package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultHttpTimeout = 60 * time.Second
const defaultHttpConnectTimeout = 5 * time.Second
const defaultHttpTlsTimeout = 5 * time.Second

func defaultClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: defaultHttpConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultHttpTlsTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultHttpTimeout,
	}
}

// the one error type the gateway surfaces. Transport failures and
// backend-reported failures are indistinguishable to callers.
type ApiError struct {
	Message string
}

func (self *ApiError) Error() string {
	return self.Message
}

func newApiError(format string, a ...any) *ApiError {
	return &ApiError{
		Message: fmt.Sprintf(format, a...),
	}
}

type apiCallback[R any] interface {
	Result(result R, err error)
}

// for internal use
type simpleApiCallback[R any] struct {
	callback func(result R, err error)
}

func NewApiCallback[R any](callback func(result R, err error)) apiCallback[R] {
	return &simpleApiCallback[R]{
		callback: callback,
	}
}

func NewNoopApiCallback[R any]() apiCallback[R] {
	return &simpleApiCallback[R]{
		callback: func(result R, err error) {},
	}
}

func (self *simpleApiCallback[R]) Result(result R, err error) {
	self.callback(result, err)
}

type ApiCallbackResult[R any] struct {
	Result R
	Error  error
}

func NewBlockingApiCallback[R any]() (apiCallback[R], chan ApiCallbackResult[R]) {
	c := make(chan ApiCallbackResult[R])
	apiCallback := NewApiCallback[R](func(result R, err error) {
		c <- ApiCallbackResult[R]{
			Result: result,
			Error:  err,
		}
	})
	return apiCallback, c
}

type DemoApi struct {
	ctx    context.Context
	cancel context.CancelFunc

	apiUrl string

	authToken string
}

func NewDemoApi(apiUrl string) *DemoApi {
	return NewDemoApiWithContext(context.Background(), apiUrl)
}

func NewDemoApiWithContext(ctx context.Context, apiUrl string) *DemoApi {
	cancelCtx, cancel := context.WithCancel(ctx)

	return &DemoApi{
		ctx:    cancelCtx,
		cancel: cancel,
		apiUrl: apiUrl,
	}
}

// this gets attached to every call once set
func (self *DemoApi) SetAuthToken(authToken string) {
	self.authToken = authToken
}

func (self *DemoApi) Close() {
	self.cancel()
}

type StatusCallback apiCallback[*StatusResult]

type StatusResult struct {
	Schemes []map[string]any `json:"schemes"`
	Current map[string]any   `json:"current"`
}

func (self *DemoApi) Status(callback StatusCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/schemes", self.apiUrl),
		self.authToken,
		&StatusResult{},
		callback,
	)
}

func (self *DemoApi) StatusSync() (*StatusResult, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/schemes", self.apiUrl),
		self.authToken,
		&StatusResult{},
		NewNoopApiCallback[*StatusResult](),
	)
}

type SwitchSchemeCallback apiCallback[*SwitchSchemeResult]

type SwitchSchemeArgs struct {
	Scheme string `json:"scheme"`
}

type SwitchSchemeResult struct {
	Status string         `json:"status"`
	Scheme map[string]any `json:"scheme"`
}

func (self *DemoApi) SwitchScheme(switchScheme *SwitchSchemeArgs, callback SwitchSchemeCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/switch_scheme", self.apiUrl),
		switchScheme,
		self.authToken,
		&SwitchSchemeResult{},
		callback,
	)
}

func (self *DemoApi) SwitchSchemeSync(switchScheme *SwitchSchemeArgs) (*SwitchSchemeResult, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/switch_scheme", self.apiUrl),
		switchScheme,
		self.authToken,
		&SwitchSchemeResult{},
		NewNoopApiCallback[*SwitchSchemeResult](),
	)
}

type SetupCallback apiCallback[map[string]any]

type SetupArgs struct {
	ParamFile string `json:"param_file"`
}

func (self *DemoApi) Setup(setup *SetupArgs, callback SetupCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/setup", self.apiUrl),
		setup,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) SetupSync(setup *SetupArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/setup", self.apiUrl),
		setup,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type ParamFilesCallback apiCallback[*ParamFilesResult]

type ParamFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type ParamFilesResult struct {
	ParamFiles []*ParamFile `json:"param_files"`
	SchemeName string       `json:"scheme_name"`
	Current    string       `json:"current"`
}

func (self *DemoApi) ParamFiles(callback ParamFilesCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/param_files", self.apiUrl),
		self.authToken,
		&ParamFilesResult{},
		callback,
	)
}

func (self *DemoApi) ParamFilesSync() (*ParamFilesResult, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/param_files", self.apiUrl),
		self.authToken,
		&ParamFilesResult{},
		NewNoopApiCallback[*ParamFilesResult](),
	)
}

type KeygenCallback apiCallback[map[string]any]

func (self *DemoApi) Keygen(callback KeygenCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/keygen", self.apiUrl),
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) KeygenSync() (map[string]any, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/keygen", self.apiUrl),
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type KeyListCallback apiCallback[*KeyListResult]

type KeyListResult struct {
	Keys   []map[string]any `json:"keys"`
	Scheme string           `json:"scheme"`
	Count  int              `json:"count"`
}

func (self *DemoApi) KeyList(callback KeyListCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/keylist", self.apiUrl),
		self.authToken,
		&KeyListResult{},
		callback,
	)
}

func (self *DemoApi) KeyListSync() (*KeyListResult, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/keylist", self.apiUrl),
		self.authToken,
		&KeyListResult{},
		NewNoopApiCallback[*KeyListResult](),
	)
}

type AddrGenCallback apiCallback[map[string]any]

type AddrGenArgs struct {
	KeyIndex int `json:"key_index"`
}

func (self *DemoApi) AddrGen(addrGen *AddrGenArgs, callback AddrGenCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/addrgen", self.apiUrl),
		addrGen,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) AddrGenSync(addrGen *AddrGenArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/addrgen", self.apiUrl),
		addrGen,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type AddressListCallback apiCallback[*AddressListResult]

type AddressListResult struct {
	Addresses []map[string]any `json:"addresses"`
	Scheme    string           `json:"scheme"`
	Count     int              `json:"count"`
}

func (self *DemoApi) AddressList(callback AddressListCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/addresslist", self.apiUrl),
		self.authToken,
		&AddressListResult{},
		callback,
	)
}

func (self *DemoApi) AddressListSync() (*AddressListResult, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/addresslist", self.apiUrl),
		self.authToken,
		&AddressListResult{},
		NewNoopApiCallback[*AddressListResult](),
	)
}

type DskGenCallback apiCallback[map[string]any]

type DskGenArgs struct {
	AddressIndex int `json:"address_index"`
	KeyIndex     int `json:"key_index"`
}

func (self *DemoApi) DskGen(dskGen *DskGenArgs, callback DskGenCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/dskgen", self.apiUrl),
		dskGen,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) DskGenSync(dskGen *DskGenArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/dskgen", self.apiUrl),
		dskGen,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type DskListCallback apiCallback[*DskListResult]

type DskListResult struct {
	Dsks   []map[string]any `json:"dsks"`
	Scheme string           `json:"scheme"`
	Count  int              `json:"count"`
}

func (self *DemoApi) DskList(callback DskListCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/dsklist", self.apiUrl),
		self.authToken,
		&DskListResult{},
		callback,
	)
}

func (self *DemoApi) DskListSync() (*DskListResult, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/dsklist", self.apiUrl),
		self.authToken,
		&DskListResult{},
		NewNoopApiCallback[*DskListResult](),
	)
}

type SignCallback apiCallback[map[string]any]

type SignArgs struct {
	Message      string `json:"message"`
	DskIndex     *int   `json:"dsk_index,omitempty"`
	AddressIndex *int   `json:"address_index,omitempty"`
	KeyIndex     *int   `json:"key_index,omitempty"`
}

func (self *DemoApi) Sign(sign *SignArgs, callback SignCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/sign", self.apiUrl),
		sign,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) SignSync(sign *SignArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/sign", self.apiUrl),
		sign,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type SignWithAddressDskCallback apiCallback[map[string]any]

type SignWithAddressDskArgs struct {
	Message      string `json:"message"`
	AddressIndex int    `json:"address_index"`
	DskIndex     int    `json:"dsk_index"`
}

func (self *DemoApi) SignWithAddressDsk(sign *SignWithAddressDskArgs, callback SignWithAddressDskCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/sign_with_address_dsk", self.apiUrl),
		sign,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) SignWithAddressDskSync(sign *SignWithAddressDskArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/sign_with_address_dsk", self.apiUrl),
		sign,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type VerifySignatureCallback apiCallback[map[string]any]

type VerifySignatureArgs struct {
	Message      string `json:"message"`
	QSigmaHex    string `json:"q_sigma_hex"`
	HHex         string `json:"h_hex"`
	AddressIndex int    `json:"address_index"`
}

func (self *DemoApi) VerifySignature(verify *VerifySignatureArgs, callback VerifySignatureCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/verify_signature", self.apiUrl),
		verify,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) VerifySignatureSync(verify *VerifySignatureArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/verify_signature", self.apiUrl),
		verify,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type TraceCallback apiCallback[map[string]any]

type TraceArgs struct {
	AddressIndex int `json:"address_index"`
}

func (self *DemoApi) Trace(trace *TraceArgs, callback TraceCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/trace", self.apiUrl),
		trace,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) TraceSync(trace *TraceArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/trace", self.apiUrl),
		trace,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type RecognizeAddrCallback apiCallback[map[string]any]

type RecognizeAddrArgs struct {
	AddressIndex int   `json:"address_index"`
	KeyIndex     int   `json:"key_index"`
	Fast         *bool `json:"fast,omitempty"`
}

func (self *DemoApi) RecognizeAddr(recognize *RecognizeAddrArgs, callback RecognizeAddrCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/recognize_addr", self.apiUrl),
		recognize,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) RecognizeAddrSync(recognize *RecognizeAddrArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/recognize_addr", self.apiUrl),
		recognize,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type TxMessagesCallback apiCallback[*TxMessagesResult]

type TxMessagesResult struct {
	TxMessages []map[string]any `json:"tx_messages"`
	Scheme     string           `json:"scheme"`
	Count      int              `json:"count"`
	Supported  bool             `json:"supported"`
}

func (self *DemoApi) TxMessages(callback TxMessagesCallback) {
	go get(
		self.ctx,
		fmt.Sprintf("%s/tx_messages", self.apiUrl),
		self.authToken,
		&TxMessagesResult{},
		callback,
	)
}

func (self *DemoApi) TxMessagesSync() (*TxMessagesResult, error) {
	return get(
		self.ctx,
		fmt.Sprintf("%s/tx_messages", self.apiUrl),
		self.authToken,
		&TxMessagesResult{},
		NewNoopApiCallback[*TxMessagesResult](),
	)
}

type ResetCallback apiCallback[map[string]any]

type ResetArgs struct {
	ResetAll bool `json:"reset_all,omitempty"`
}

func (self *DemoApi) Reset(reset *ResetArgs, callback ResetCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/reset", self.apiUrl),
		reset,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) ResetSync(reset *ResetArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/reset", self.apiUrl),
		reset,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

type PerformanceTestCallback apiCallback[map[string]any]

type PerformanceTestArgs struct {
	Iterations int `json:"iterations"`
}

func (self *DemoApi) PerformanceTest(performanceTest *PerformanceTestArgs, callback PerformanceTestCallback) {
	go post(
		self.ctx,
		fmt.Sprintf("%s/performance_test", self.apiUrl),
		performanceTest,
		self.authToken,
		map[string]any{},
		callback,
	)
}

func (self *DemoApi) PerformanceTestSync(performanceTest *PerformanceTestArgs) (map[string]any, error) {
	return post(
		self.ctx,
		fmt.Sprintf("%s/performance_test", self.apiUrl),
		performanceTest,
		self.authToken,
		map[string]any{},
		NewNoopApiCallback[map[string]any](),
	)
}

// a backend error payload's message field becomes the returned error's message
func unwrapApiError(statusCode int, responseBodyBytes []byte) error {
	errorBody := map[string]any{}
	if err := json.Unmarshal(responseBodyBytes, &errorBody); err == nil {
		if statusCode == http.StatusOK {
			// some 200 payloads carry a benign "message" field; only an
			// explicit "error" field marks a domain failure
			if message, ok := rawString(errorBody, "error"); ok {
				return newApiError("%s", message)
			}
		} else if message, ok := rawString(errorBody, "error", "message"); ok {
			return newApiError("%s", message)
		}
	}
	if statusCode == http.StatusOK {
		return nil
	}
	errorMessage := strings.TrimSpace(string(responseBodyBytes))
	if errorMessage == "" {
		errorMessage = fmt.Sprintf("status %d", statusCode)
	}
	return newApiError("%s", errorMessage)
}

func post[R any](ctx context.Context, url string, args any, authToken string, result R, callback apiCallback[R]) (R, error) {
	var requestBodyBytes []byte
	if args == nil {
		requestBodyBytes = make([]byte, 0)
	} else {
		var err error
		requestBodyBytes, err = json.Marshal(args)
		if err != nil {
			var empty R
			callback.Result(empty, err)
			return empty, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(requestBodyBytes))
	if err != nil {
		var empty R
		callback.Result(empty, err)
		return empty, err
	}

	req.Header.Add("Content-Type", "application/json")

	if authToken != "" {
		auth := fmt.Sprintf("Bearer %s", authToken)
		req.Header.Add("Authorization", auth)
	}

	client := defaultClient()
	r, err := client.Do(req)
	if err != nil {
		var empty R
		callback.Result(empty, newApiError("%s", err))
		return empty, newApiError("%s", err)
	}
	defer r.Body.Close()

	responseBodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		var empty R
		callback.Result(empty, newApiError("%s", err))
		return empty, newApiError("%s", err)
	}

	if apiErr := unwrapApiError(r.StatusCode, responseBodyBytes); apiErr != nil {
		var empty R
		callback.Result(empty, apiErr)
		return empty, apiErr
	}

	err = json.Unmarshal(responseBodyBytes, &result)
	if err != nil {
		var empty R
		callback.Result(empty, newApiError("%s", err))
		return empty, newApiError("%s", err)
	}

	callback.Result(result, nil)
	return result, nil
}

func get[R any](ctx context.Context, url string, authToken string, result R, callback apiCallback[R]) (R, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		var empty R
		callback.Result(empty, err)
		return empty, err
	}

	req.Header.Add("Content-Type", "application/json")

	if authToken != "" {
		auth := fmt.Sprintf("Bearer %s", authToken)
		req.Header.Add("Authorization", auth)
	}

	client := defaultClient()
	r, err := client.Do(req)
	if err != nil {
		var empty R
		callback.Result(empty, newApiError("%s", err))
		return empty, newApiError("%s", err)
	}
	defer r.Body.Close()

	responseBodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		var empty R
		callback.Result(empty, newApiError("%s", err))
		return empty, newApiError("%s", err)
	}

	if apiErr := unwrapApiError(r.StatusCode, responseBodyBytes); apiErr != nil {
		var empty R
		callback.Result(empty, apiErr)
		return empty, apiErr
	}

	err = json.Unmarshal(responseBodyBytes, &result)
	if err != nil {
		var empty R
		callback.Result(empty, newApiError("%s", err))
		return empty, newApiError("%s", err)
	}

	callback.Result(result, nil)
	return result, nil
}
