package client

import (
	"sync"

	"github.com/golang/glog"
)

// fires after a successful switch, with the newly active descriptor
type SchemeResetHook func(scheme SchemeDescriptor)

// tracks the known schemes and the single active one.
// Capability queries fail closed until `Initialize` has completed.
type SchemeRegistry struct {
	api *DemoApi

	mutex       sync.Mutex
	initialized bool
	current     SchemeDescriptor
	known       []SchemeDescriptor

	resetHooks *CallbackList[SchemeResetHook]
}

func NewSchemeRegistry(api *DemoApi) *SchemeRegistry {
	return &SchemeRegistry{
		api:        api,
		resetHooks: NewCallbackList[SchemeResetHook](),
	}
}

func (self *SchemeRegistry) AddResetHook(resetHook SchemeResetHook) func() {
	callbackId := self.resetHooks.Add(resetHook)
	return func() {
		self.resetHooks.Remove(callbackId)
	}
}

func (self *SchemeRegistry) fireResetHooks(scheme SchemeDescriptor) {
	for _, resetHook := range self.resetHooks.Get() {
		resetHook(scheme)
	}
}

func (self *SchemeRegistry) Initialize() error {
	result, err := self.api.StatusSync()
	if err != nil {
		glog.Infof("[registry]initialize failed = %s\n", err)
		return err
	}

	known := make([]SchemeDescriptor, 0, len(result.Schemes))
	for _, raw := range result.Schemes {
		known = append(known, NormalizeScheme(raw))
	}
	current := NormalizeScheme(result.Current)

	self.mutex.Lock()
	self.known = known
	self.current = current
	self.initialized = true
	self.mutex.Unlock()

	glog.Infof("[registry]active scheme = %s (%d known)\n", current.Id, len(known))
	self.fireResetHooks(current)
	return nil
}

func (self *SchemeRegistry) Initialized() bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.initialized
}

func (self *SchemeRegistry) Current() (SchemeDescriptor, bool) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.current, self.initialized
}

func (self *SchemeRegistry) CurrentId() string {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	if !self.initialized {
		return ""
	}
	return self.current.Id
}

func (self *SchemeRegistry) Known() []SchemeDescriptor {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	known := make([]SchemeDescriptor, len(self.known))
	copy(known, self.known)
	return known
}

// fail closed. A feature must never look available before it is confirmed.
func (self *SchemeRegistry) HasCapability(flag CapabilityFlag) bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	if !self.initialized {
		return false
	}
	return self.current.Capabilities.Has(flag)
}

// The transition is atomic. Only on backend success does the current
// descriptor change and do dependent consumers reset; on failure the
// previous scheme stays active and nothing is mutated.
func (self *SchemeRegistry) SwitchScheme(targetId string) (SchemeDescriptor, error) {
	self.mutex.Lock()
	previous := self.current
	if self.initialized && previous.Id == targetId {
		self.mutex.Unlock()
		// no-op
		return previous, nil
	}
	self.mutex.Unlock()

	result, err := self.api.SwitchSchemeSync(&SwitchSchemeArgs{
		Scheme: targetId,
	})
	if err != nil {
		glog.Infof("[registry]switch to %s failed = %s\n", targetId, err)
		return previous, err
	}

	next := NormalizeScheme(result.Scheme)
	if next.Id == placeholderHex {
		// sparse switch responses carry only the id
		next = self.knownScheme(targetId)
	}

	self.mutex.Lock()
	self.current = next
	self.initialized = true
	self.mutex.Unlock()

	glog.V(2).Infof("[registry]switched %s -> %s\n", previous.Id, next.Id)
	self.fireResetHooks(next)
	return next, nil
}

func (self *SchemeRegistry) knownScheme(schemeId string) SchemeDescriptor {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	for _, descriptor := range self.known {
		if descriptor.Id == schemeId {
			return descriptor
		}
	}
	return SchemeDescriptor{
		Id:          schemeId,
		DisplayName: schemeId,
		Available:   true,
	}
}
