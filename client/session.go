package client

import (
	"context"
	"errors"
)

// returned by Run when the active scheme has no handler for the operation.
// Callers render an explicit unsupported state for it.
var ErrUnsupportedOperation = errors.New("operation not supported by the active scheme")

// Session wires one gateway, one registry, one store, one dispatcher and one
// bus together. Exactly one store instance exists per session and every
// consumer receives the session explicitly; there is no ambient global
// state.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	sessionId Id

	api        *DemoApi
	registry   *SchemeRegistry
	store      *EntityStore
	dispatcher *Dispatcher
	bus        *NotificationBus

	removeResetHook func()
}

func NewSession(apiUrl string) *Session {
	return NewSessionWithContext(context.Background(), apiUrl)
}

func NewSessionWithContext(ctx context.Context, apiUrl string) *Session {
	cancelCtx, cancel := context.WithCancel(ctx)

	api := NewDemoApiWithContext(cancelCtx, apiUrl)
	registry := NewSchemeRegistry(api)
	store := NewEntityStore(api)
	removeResetHook := registry.AddResetHook(store.SchemeResetHook())

	return &Session{
		ctx:             cancelCtx,
		cancel:          cancel,
		sessionId:       NewId(),
		api:             api,
		registry:        registry,
		store:           store,
		dispatcher:      NewDispatcher(),
		bus:             NewNotificationBus(),
		removeResetHook: removeResetHook,
	}
}

// one status fetch; the store adopts the active scheme via the reset hook
func (self *Session) Start() error {
	return self.registry.Initialize()
}

func (self *Session) SessionId() Id {
	return self.sessionId
}

func (self *Session) Ctx() context.Context {
	return self.ctx
}

func (self *Session) Api() *DemoApi {
	return self.api
}

func (self *Session) Registry() *SchemeRegistry {
	return self.registry
}

func (self *Session) Store() *EntityStore {
	return self.store
}

func (self *Session) Dispatcher() *Dispatcher {
	return self.dispatcher
}

func (self *Session) Bus() *NotificationBus {
	return self.bus
}

// resolve and run the operation against the active scheme
func (self *Session) Run(operation string, args map[string]any) (map[string]any, error) {
	handler := self.dispatcher.Resolve(self.registry.CurrentId(), operation)
	if handler == nil {
		return nil, ErrUnsupportedOperation
	}
	return handler(self, args)
}

func (self *Session) Close() {
	self.removeResetHook()
	self.api.Close()
	self.cancel()
}
