package client

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestResolveSchemeTables(t *testing.T) {
	dispatcher := NewDispatcher()

	// sitaiba has no signing capability; nil is the expected result, not an
	// error
	assert.Equal(t, true, dispatcher.Resolve("sitaiba", OpSigningPanel) == nil)
	assert.Equal(t, true, dispatcher.Resolve("stealth", OpSigningPanel) != nil)

	// no fallback across schemes
	assert.Equal(t, true, dispatcher.Resolve("zhao", OpTracePanel) == nil)
	assert.Equal(t, true, dispatcher.Resolve("stealth", OpTracePanel) != nil)
	assert.Equal(t, true, dispatcher.Resolve("sitaiba", OpRecognizePanel) != nil)

	// the unified-route alias shares the stealth table
	assert.Equal(t, true, dispatcher.Resolve("my_stealth", OpSigningPanel) != nil)
}

func TestResolveEmptySchemeIsQuiet(t *testing.T) {
	dispatcher := NewDispatcher()

	// startup transient: nil with no diagnostic recorded
	assert.Equal(t, true, dispatcher.Resolve("", OpKeyPanel) == nil)
	assert.Equal(t, 0, len(dispatcher.missed))
}

func TestResolveUnknownLoggedOnce(t *testing.T) {
	dispatcher := NewDispatcher()

	assert.Equal(t, true, dispatcher.Resolve("no_such_scheme", OpKeyPanel) == nil)
	assert.Equal(t, true, dispatcher.Resolve("no_such_scheme", OpKeyPanel) == nil)
	assert.Equal(t, 1, len(dispatcher.missed))

	assert.Equal(t, true, dispatcher.Resolve("stealth", "NoSuchPanel") == nil)
	assert.Equal(t, true, dispatcher.Resolve("stealth", "NoSuchPanel") == nil)
	assert.Equal(t, 2, len(dispatcher.missed))
}

func TestRegisterCustomHandler(t *testing.T) {
	dispatcher := NewEmptyDispatcher()

	assert.Equal(t, true, dispatcher.Resolve("stealth", OpKeyPanel) == nil)

	dispatcher.Register("stealth", OpKeyPanel, func(session *Session, args map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})
	handler := dispatcher.Resolve("stealth", OpKeyPanel)
	assert.Equal(t, true, handler != nil)

	result, err := handler(nil, nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, map[string]any{"ok": true}, result)
}
