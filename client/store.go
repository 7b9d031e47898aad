package client

import (
	"sync"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
)

// EntityStore owns the four scheme-scoped collections. One instance exists
// per session and every panel observes the same collections. Each collection
// has its own inFlight flag and its own lastError; a failure in one never
// touches the others.
//
// Staleness guard: every load captures the store's scheme at issue time and
// the result is discarded on arrival if the store has moved to a different
// scheme in the meantime. That is the only cancellation mechanism.
type EntityStore struct {
	api *DemoApi

	mutex sync.Mutex

	// the scheme the collections belong to
	scheme string

	keys         []*KeyRecord
	keysInFlight bool
	keysError    error

	addresses         []*AddressRecord
	addressesInFlight bool
	addressesError    error

	dsks         []*DskRecord
	dsksInFlight bool
	dsksError    error

	transactions         []*TransactionRecord
	transactionsInFlight bool
	transactionsError    error
}

func NewEntityStore(api *DemoApi) *EntityStore {
	return &EntityStore{
		api: api,
	}
}

// registry hook. Adopts the new scheme and drops everything.
func (self *EntityStore) SchemeResetHook() SchemeResetHook {
	return func(scheme SchemeDescriptor) {
		self.Reset(scheme.Id)
	}
}

// clears all collections, errors and in-flight flags atomically.
// A load still pending for the previous scheme will find the scheme changed
// and discard its result.
func (self *EntityStore) Reset(scheme string) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	self.scheme = scheme

	self.keys = nil
	self.keysInFlight = false
	self.keysError = nil

	self.addresses = nil
	self.addressesInFlight = false
	self.addressesError = nil

	self.dsks = nil
	self.dsksInFlight = false
	self.dsksError = nil

	self.transactions = nil
	self.transactionsInFlight = false
	self.transactionsError = nil
}

func (self *EntityStore) Scheme() string {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.scheme
}

// full refresh. The collection is replaced atomically, never merged.
func (self *EntityStore) LoadKeys() error {
	self.mutex.Lock()
	issuedScheme := self.scheme
	self.keysInFlight = true
	self.mutex.Unlock()

	result, err := self.api.KeyListSync()

	self.mutex.Lock()
	defer self.mutex.Unlock()
	if self.scheme != issuedScheme {
		glog.V(2).Infof("[store]discard stale keys for scheme %s (now %s)\n", issuedScheme, self.scheme)
		return nil
	}
	self.keysInFlight = false
	if err != nil {
		glog.Infof("[store]load keys = %s\n", err)
		self.keysError = err
		return err
	}
	if result.Scheme != "" && result.Scheme != issuedScheme {
		glog.V(2).Infof("[store]discard keys tagged %s under scheme %s\n", result.Scheme, issuedScheme)
		return nil
	}
	keys := make([]*KeyRecord, 0, len(result.Keys))
	for _, raw := range result.Keys {
		keys = append(keys, NormalizeKey(issuedScheme, raw))
	}
	self.keys = keys
	self.keysError = nil
	return nil
}

func (self *EntityStore) LoadAddresses() error {
	self.mutex.Lock()
	issuedScheme := self.scheme
	self.addressesInFlight = true
	self.mutex.Unlock()

	result, err := self.api.AddressListSync()

	self.mutex.Lock()
	defer self.mutex.Unlock()
	if self.scheme != issuedScheme {
		glog.V(2).Infof("[store]discard stale addresses for scheme %s (now %s)\n", issuedScheme, self.scheme)
		return nil
	}
	self.addressesInFlight = false
	if err != nil {
		glog.Infof("[store]load addresses = %s\n", err)
		self.addressesError = err
		return err
	}
	if result.Scheme != "" && result.Scheme != issuedScheme {
		glog.V(2).Infof("[store]discard addresses tagged %s under scheme %s\n", result.Scheme, issuedScheme)
		return nil
	}
	addresses := make([]*AddressRecord, 0, len(result.Addresses))
	for _, raw := range result.Addresses {
		addresses = append(addresses, NormalizeAddress(issuedScheme, raw))
	}
	self.addresses = addresses
	self.addressesError = nil
	return nil
}

func (self *EntityStore) LoadDsks() error {
	self.mutex.Lock()
	issuedScheme := self.scheme
	self.dsksInFlight = true
	self.mutex.Unlock()

	result, err := self.api.DskListSync()

	self.mutex.Lock()
	defer self.mutex.Unlock()
	if self.scheme != issuedScheme {
		glog.V(2).Infof("[store]discard stale dsks for scheme %s (now %s)\n", issuedScheme, self.scheme)
		return nil
	}
	self.dsksInFlight = false
	if err != nil {
		glog.Infof("[store]load dsks = %s\n", err)
		self.dsksError = err
		return err
	}
	if result.Scheme != "" && result.Scheme != issuedScheme {
		glog.V(2).Infof("[store]discard dsks tagged %s under scheme %s\n", result.Scheme, issuedScheme)
		return nil
	}
	dsks := make([]*DskRecord, 0, len(result.Dsks))
	for _, raw := range result.Dsks {
		dsks = append(dsks, NormalizeDsk(issuedScheme, raw))
	}
	self.dsks = dsks
	self.dsksError = nil
	return nil
}

func (self *EntityStore) LoadTransactions() error {
	self.mutex.Lock()
	issuedScheme := self.scheme
	self.transactionsInFlight = true
	self.mutex.Unlock()

	result, err := self.api.TxMessagesSync()

	self.mutex.Lock()
	defer self.mutex.Unlock()
	if self.scheme != issuedScheme {
		glog.V(2).Infof("[store]discard stale transactions for scheme %s (now %s)\n", issuedScheme, self.scheme)
		return nil
	}
	self.transactionsInFlight = false
	if err != nil {
		glog.Infof("[store]load transactions = %s\n", err)
		self.transactionsError = err
		return err
	}
	if result.Scheme != "" && result.Scheme != issuedScheme {
		glog.V(2).Infof("[store]discard transactions tagged %s under scheme %s\n", result.Scheme, issuedScheme)
		return nil
	}
	transactions := make([]*TransactionRecord, 0, len(result.TxMessages))
	for _, raw := range result.TxMessages {
		transactions = append(transactions, NormalizeTransaction(issuedScheme, raw))
	}
	self.transactions = transactions
	self.transactionsError = nil
	return nil
}

// fans out all four loads. Each collection's error is independent; one
// failure never aborts or taints the others.
func (self *EntityStore) LoadAll() {
	loads := []func() error{
		self.LoadKeys,
		self.LoadAddresses,
		self.LoadDsks,
		self.LoadTransactions,
	}
	var wg sync.WaitGroup
	for _, load := range loads {
		wg.Add(1)
		go func(load func() error) {
			defer wg.Done()
			load()
		}(load)
	}
	wg.Wait()
}

// append a client-known-good record after a successful create operation,
// so a panel need not re-fetch to observe what it just created

func (self *EntityStore) AddKey(key *KeyRecord) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.keys = append(slices.Clone(self.keys), key)
}

func (self *EntityStore) AddAddress(address *AddressRecord) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.addresses = append(slices.Clone(self.addresses), address)
}

func (self *EntityStore) AddDsk(dsk *DskRecord) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.dsks = append(slices.Clone(self.dsks), dsk)
}

func (self *EntityStore) AddTransaction(transaction *TransactionRecord) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	// the snapshot must stay immutable even if the caller reuses its slice
	stored := *transaction
	stored.AddressSnapshot = cloneComponents(transaction.AddressSnapshot)
	self.transactions = append(slices.Clone(self.transactions), &stored)
}

// read accessors return copies; collections are only mutated through the
// store's own methods

func (self *EntityStore) Keys() []*KeyRecord {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return slices.Clone(self.keys)
}

func (self *EntityStore) KeysInFlight() bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.keysInFlight
}

func (self *EntityStore) KeysError() error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.keysError
}

func (self *EntityStore) Addresses() []*AddressRecord {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return slices.Clone(self.addresses)
}

func (self *EntityStore) AddressesInFlight() bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.addressesInFlight
}

func (self *EntityStore) AddressesError() error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.addressesError
}

func (self *EntityStore) Dsks() []*DskRecord {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return slices.Clone(self.dsks)
}

func (self *EntityStore) DsksInFlight() bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.dsksInFlight
}

func (self *EntityStore) DsksError() error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.dsksError
}

func (self *EntityStore) Transactions() []*TransactionRecord {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return slices.Clone(self.transactions)
}

func (self *EntityStore) TransactionsInFlight() bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.transactionsInFlight
}

func (self *EntityStore) TransactionsError() error {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.transactionsError
}
