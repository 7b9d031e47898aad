package client

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
)

// logical operation names, shared by every scheme table
const (
	OpKeyPanel       = "KeyPanel"
	OpAddressPanel   = "AddressPanel"
	OpDskPanel       = "DskPanel"
	OpSigningPanel   = "SigningPanel"
	OpVerifyPanel    = "VerifyPanel"
	OpTracePanel     = "TracePanel"
	OpRecognizePanel = "RecognizePanel"
)

// a handler services one logical operation for one scheme: it performs the
// backend call, appends the normalized result to the store and publishes the
// matching bus topic
type HandlerFunc func(session *Session, args map[string]any) (map[string]any, error)

// two-level lookup: scheme, then operation. There is no fallback to another
// scheme's handler; mixing handlers across schemes could produce
// cryptographically meaningless composite state.
type Dispatcher struct {
	mutex    sync.Mutex
	handlers map[string]map[string]HandlerFunc
	missed   map[string]bool
}

// NewDispatcher starts with every built-in scheme table registered
func NewDispatcher() *Dispatcher {
	dispatcher := &Dispatcher{
		handlers: map[string]map[string]HandlerFunc{},
		missed:   map[string]bool{},
	}
	for schemeId, table := range schemeHandlerTables() {
		for operation, handler := range table {
			dispatcher.Register(schemeId, operation, handler)
		}
	}
	return dispatcher
}

func NewEmptyDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: map[string]map[string]HandlerFunc{},
		missed:   map[string]bool{},
	}
}

func (self *Dispatcher) Register(schemeId string, operation string, handler HandlerFunc) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	table, ok := self.handlers[schemeId]
	if !ok {
		table = map[string]HandlerFunc{}
		self.handlers[schemeId] = table
	}
	table[operation] = handler
}

func (self *Dispatcher) Operations(schemeId string) []string {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	operations := []string{}
	for operation := range self.handlers[schemeId] {
		operations = append(operations, operation)
	}
	return operations
}

// nil is a normal result meaning "operation unsupported for this scheme";
// callers render an explicit unsupported state, never silently do nothing.
// An empty scheme id is a startup transient and resolves nil quietly.
func (self *Dispatcher) Resolve(schemeId string, operation string) HandlerFunc {
	if schemeId == "" {
		return nil
	}

	self.mutex.Lock()
	defer self.mutex.Unlock()

	table, ok := self.handlers[schemeId]
	if !ok {
		self.warnOnce(fmt.Sprintf("scheme/%s", schemeId), "[dispatch]unknown scheme %s", schemeId)
		return nil
	}
	handler, ok := table[operation]
	if !ok {
		self.warnOnce(fmt.Sprintf("%s/%s", schemeId, operation), "[dispatch]no handler for %s under scheme %s", operation, schemeId)
		return nil
	}
	return handler
}

// one diagnostic per distinct miss, the first time only
func (self *Dispatcher) warnOnce(missKey string, format string, a ...any) {
	if self.missed[missKey] {
		return
	}
	self.missed[missKey] = true
	glog.Warningf(format+"\n", a...)
}
