package client

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/golang/glog"
)

// HandleError runs `do` and converts a panic into calls to the handlers.
// A panicking bus listener or feed callback must never take down the caller.
func HandleError(do func(), handlers ...func(error)) (r any) {
	defer func() {
		if r = recover(); r != nil {
			glog.Warningf("Unexpected error: %s\n", ErrorJson(r, debug.Stack()))
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%s", r)
			}
			for _, handler := range handlers {
				handler(err)
			}
		}
	}()
	do()
	return
}

func ErrorJson(err any, stack []byte) string {
	stackJson, jsonErr := json.Marshal(string(stack))
	if jsonErr != nil {
		stackJson = []byte("\"\"")
	}
	return fmt.Sprintf("{\"error\": \"%s\", \"stack\": %s}", err, stackJson)
}
