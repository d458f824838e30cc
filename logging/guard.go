// logging/guard.go
package logging

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// Guard runs fn and turns a panic into an error, logging the panic value and
// stack trace. Event handlers use it so one broken action never takes the
// page down.
func Guard(logger *zap.Logger, name string, fn func() error) (err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic recovered",
				zap.String("action", name),
				zap.Any("panic_value", rec),
				zap.ByteString("stacktrace", debug.Stack()),
			)
			err = fmt.Errorf("%s: panic: %v", name, rec)
		}
	}()
	return fn()
}
