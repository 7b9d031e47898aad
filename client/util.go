package client

import (
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slices"
)

// id for sessions, subscriptions and trace tags
type Id [16]byte

func NewId() Id {
	return Id(ulid.Make())
}

func ParseId(idStr string) (Id, error) {
	id, err := ulid.ParseStrict(idStr)
	if err != nil {
		return Id{}, err
	}
	return Id(id), nil
}

func (self Id) String() string {
	return ulid.ULID(self).String()
}

// makes a copy of the list on update
// entries keep their insertion order, which is the delivery order
type callbackEntry[T any] struct {
	callbackId Id
	callback   T
}

type CallbackList[T any] struct {
	mutex   sync.Mutex
	entries []*callbackEntry[T]
}

func NewCallbackList[T any]() *CallbackList[T] {
	return &CallbackList[T]{}
}

func (self *CallbackList[T]) Get() []T {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	callbacks := make([]T, len(self.entries))
	for i, entry := range self.entries {
		callbacks[i] = entry.callback
	}
	return callbacks
}

func (self *CallbackList[T]) Add(callback T) Id {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	entry := &callbackEntry[T]{
		callbackId: NewId(),
		callback:   callback,
	}
	nextEntries := slices.Clone(self.entries)
	nextEntries = append(nextEntries, entry)
	self.entries = nextEntries
	return entry.callbackId
}

func (self *CallbackList[T]) Remove(callbackId Id) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	i := slices.IndexFunc(self.entries, func(entry *callbackEntry[T]) bool {
		return entry.callbackId == callbackId
	})
	if i < 0 {
		// not present
		return
	}
	nextEntries := slices.Clone(self.entries)
	nextEntries = slices.Delete(nextEntries, i, i+1)
	self.entries = nextEntries
}

func (self *CallbackList[T]) Len() int {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return len(self.entries)
}
