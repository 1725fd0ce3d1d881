// Package recovery guards calls into connector implementations. Connectors
// are user-provided code running inside a host process; a panic there must
// surface as an error on the calling operation, not crash the host.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ToError runs fn and converts a panic into an error carrying the
// operation name. The stack is logged, not returned: callers see a stable
// one-line failure.
func ToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()
	return fn()
}

// ToValue is ToError for calls returning a value. On panic the zero value
// is returned with the error.
func ToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()
	return fn()
}
