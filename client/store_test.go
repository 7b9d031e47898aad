package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestAddWithoutRoundTrip(t *testing.T) {
	// no backend behind this url; appends never leave the process
	api := NewDemoApi("http://127.0.0.1:0")
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	key := NormalizeKey("stealth", map[string]any{"id": "key-9", "A_hex": "aa"})
	store.AddKey(key)

	keys := store.Keys()
	assert.Equal(t, 1, len(keys))
	assert.Equal(t, "key-9", keys[len(keys)-1].Id)
	assert.Equal(t, false, store.KeysInFlight())
	assert.Equal(t, store.KeysError(), nil)

	dsk := NormalizeDsk("stealth", map[string]any{"id": "dsk-1", "dsk_hex": "dd"})
	store.AddDsk(dsk)
	assert.Equal(t, 1, len(store.Dsks()))
}

func TestAddTransactionSnapshotIsImmutable(t *testing.T) {
	api := NewDemoApi("http://127.0.0.1:0")
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	snapshot := []Component{{"addr", "aa"}, {"r2", "r2"}, {"c", "cc"}}
	store.AddTransaction(&TransactionRecord{
		Id:              "tx-1",
		Scheme:          "stealth",
		Message:         "hello",
		AddressSnapshot: snapshot,
	})

	// mutating the caller's slice must not reach the stored record
	snapshot[0].Hex = "mutated"
	transactions := store.Transactions()
	assert.Equal(t, 1, len(transactions))
	addr, _ := FindComponent(transactions[0].AddressSnapshot, "addr")
	assert.Equal(t, "aa", addr)
}

func TestLoadKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/keylist" {
			writeJson(w, http.StatusOK, map[string]any{
				"keys": []any{
					map[string]any{"id": "key-1", "A_hex": "01", "B_hex": "02", "a_hex": "03", "b_hex": "04"},
					map[string]any{"id": "key-2", "A_hex": "05", "B_hex": "06", "a_hex": "07", "b_hex": "08"},
				},
				"scheme": "stealth",
				"count":  2,
			})
			return
		}
		writeJson(w, http.StatusNotFound, map[string]any{"error": "not found"})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	assert.Equal(t, store.LoadKeys(), nil)
	keys := store.Keys()
	assert.Equal(t, 2, len(keys))
	assert.Equal(t, "key-1", keys[0].Id)
	a, _ := FindComponent(keys[1].Public, "A")
	assert.Equal(t, "05", a)
	assert.Equal(t, false, store.KeysInFlight())

	// a reload replaces, never merges
	assert.Equal(t, store.LoadKeys(), nil)
	assert.Equal(t, 2, len(store.Keys()))
}

func TestStalenessDiscard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/addresslist" {
			close(entered)
			<-release
			writeJson(w, http.StatusOK, map[string]any{
				"addresses": []any{
					map[string]any{"id": "addr-1", "addr_hex": "aa"},
				},
				"scheme": "stealth",
				"count":  1,
			})
			return
		}
		writeJson(w, http.StatusNotFound, map[string]any{"error": "not found"})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	done := make(chan error)
	go func() {
		done <- store.LoadAddresses()
	}()

	// switch schemes while the load is in flight
	<-entered
	store.Reset("sitaiba")
	close(release)

	err := <-done
	assert.Equal(t, err, nil)

	// the stealth result resolved after the switch and was discarded
	assert.Equal(t, "sitaiba", store.Scheme())
	assert.Equal(t, 0, len(store.Addresses()))
	assert.Equal(t, store.AddressesError(), nil)
	assert.Equal(t, false, store.AddressesInFlight())
}

func TestLoadAllPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/keylist":
			writeJson(w, http.StatusOK, map[string]any{
				"keys": []any{
					map[string]any{"id": "key-1", "A_hex": "01"},
				},
				"scheme": "stealth",
				"count":  1,
			})
		case "/addresslist":
			writeJson(w, http.StatusInternalServerError, map[string]any{"error": "address backend down"})
		case "/dsklist":
			writeJson(w, http.StatusOK, map[string]any{
				"dsks":   []any{},
				"scheme": "stealth",
				"count":  0,
			})
		case "/tx_messages":
			writeJson(w, http.StatusOK, map[string]any{
				"tx_messages": []any{},
				"scheme":      "stealth",
				"count":       0,
			})
		}
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	store.LoadAll()

	// keys populated with no error
	assert.Equal(t, 1, len(store.Keys()))
	assert.Equal(t, store.KeysError(), nil)

	// addresses failed independently; nothing else was tainted
	assert.Equal(t, 0, len(store.Addresses()))
	assert.NotEqual(t, store.AddressesError(), nil)
	assert.Equal(t, "address backend down", store.AddressesError().Error())
	assert.Equal(t, store.DsksError(), nil)
	assert.Equal(t, store.TransactionsError(), nil)
}

func TestLoadDiscardsMismatchedSchemeTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/keylist" {
			// the backend answers for a different scheme than the store's
			writeJson(w, http.StatusOK, map[string]any{
				"keys": []any{
					map[string]any{"id": "key-1"},
				},
				"scheme": "sitaiba",
				"count":  1,
			})
			return
		}
		writeJson(w, http.StatusNotFound, map[string]any{"error": "not found"})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	assert.Equal(t, store.LoadKeys(), nil)
	assert.Equal(t, 0, len(store.Keys()))
}

func TestResetClearsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusInternalServerError, map[string]any{"error": "down"})
	}))
	defer server.Close()

	api := NewDemoApi(server.URL)
	defer api.Close()
	store := NewEntityStore(api)
	store.Reset("stealth")

	assert.NotEqual(t, store.LoadKeys(), nil)
	assert.NotEqual(t, store.KeysError(), nil)

	store.Reset("stealth")
	assert.Equal(t, store.KeysError(), nil)
}
