package client

import (
	"fmt"
	"log"
	"os"
)

// Logging convention in the `client` package:
// Info:
//     essential events for abnormal behavior. This level should be silent on normal
//     operation, with the exception of one time initialization data that is useful
//     for monitoring
//     this includes:
//     - scheme switch failures
//     - backend errors recorded into a collection
// Debug (V(2)):
//     key events for trace debugging
//     this includes:
//     - stale-scheme discards
//     - bus publishes and feed frames, tagged with ids that can be used to filter

const LogLevelUrgent = 0
const LogLevelInfo = 50
const LogLevelDebug = 100

var GlobalLogLevel = LogLevelUrgent

var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)

func Logger() *log.Logger {
	return logger
}

type LogFunction func(string, ...any)

func LogFn(level int, tag string) LogFunction {
	return func(format string, a ...any) {
		if level <= GlobalLogLevel {
			m := fmt.Sprintf(format, a...)
			Logger().Printf("%s: %s\n", tag, m)
		}
	}
}

func SubLogFn(level int, log LogFunction, tag string) LogFunction {
	return func(format string, a ...any) {
		if level <= GlobalLogLevel {
			m := fmt.Sprintf(format, a...)
			log("%s: %s", tag, m)
		}
	}
}
