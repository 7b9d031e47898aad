package client

import (
	"sync"

	"github.com/golang/glog"
)

// bus topics fed by the mutating handlers
const (
	TopicKeyUpdated     = "keyUpdated"
	TopicAddressUpdated = "addressUpdated"
	TopicDskUpdated     = "dskUpdated"
	TopicTxUpdated      = "txUpdated"
)

type BusListener func(payload any)

// NotificationBus pushes incremental updates between panels that do not
// otherwise share state. It holds no history: a listener subscribing after a
// publish never sees that publish, so every consumer also performs a
// baseline load from the entity store at mount. Delivery is synchronous and
// in subscription order.
type NotificationBus struct {
	mutex  sync.Mutex
	topics map[string]*CallbackList[BusListener]
}

func NewNotificationBus() *NotificationBus {
	return &NotificationBus{
		topics: map[string]*CallbackList[BusListener]{},
	}
}

// the returned func must be called on panel teardown
func (self *NotificationBus) Subscribe(topic string, listener BusListener) func() {
	self.mutex.Lock()
	listeners, ok := self.topics[topic]
	if !ok {
		listeners = NewCallbackList[BusListener]()
		self.topics[topic] = listeners
	}
	self.mutex.Unlock()

	callbackId := listeners.Add(listener)
	return func() {
		listeners.Remove(callbackId)
	}
}

// a panicking listener is logged and skipped; it never blocks delivery to
// the remaining listeners and never surfaces to the publisher
func (self *NotificationBus) Publish(topic string, payload any) {
	self.mutex.Lock()
	listeners, ok := self.topics[topic]
	self.mutex.Unlock()
	if !ok {
		return
	}

	glog.V(2).Infof("[bus]publish %s\n", topic)
	for _, listener := range listeners.Get() {
		listener := listener
		HandleError(func() {
			listener(payload)
		}, func(err error) {
			glog.Warningf("[bus]listener error on topic %s = %s\n", topic, err)
		})
	}
}
