// Package builtin provides ready-to-register middleware.Registration
// values, adapted from bolt/middleware/*.go to Ember's priority/phase
// registration model.
package builtin

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/yourusername/ember/middleware"
)

// RecoveryConfig configures Recovery, mirroring
// bolt/middleware/recovery.go's RecoveryConfig.
type RecoveryConfig struct {
	PrintStack bool
	StackSize  int
	LogOutput  *log.Logger
}

// DefaultRecoveryConfig mirrors bolt/middleware/recovery.go's
// DefaultRecoveryConfig.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		PrintStack: true,
		StackSize:  4096,
	}
}

// Recovery returns an ERROR-phase registration that turns the error
// recorded on the Context (a handler's returned error, caught by
// Engine.Execute) into a 500 JSON response. It does not call recover():
// a panicking handler is not caught here, and no other part of the
// connection pipeline recovers panics either. This middleware's job,
// matching bolt/middleware/recovery.go's spirit, is to format whatever
// error reached here into a response body.
func Recovery(priority uint32) middleware.Registration {
	cfg := DefaultRecoveryConfig()
	return RecoveryWithConfig(priority, cfg)
}

// RecoveryWithConfig mirrors bolt/middleware/recovery.go's
// RecoveryWithConfig, configurable stack printing and log destination.
func RecoveryWithConfig(priority uint32, cfg RecoveryConfig) middleware.Registration {
	logger := cfg.LogOutput
	return middleware.Registration{
		Name:     "recovery",
		Priority: priority,
		Flags:    middleware.FlagError,
		Func: func(ctx *middleware.Context) middleware.Result {
			if ctx.ErrorMessage == "" {
				return middleware.Continue
			}
			if cfg.PrintStack {
				stack := debug.Stack()
				if logger != nil {
					logger.Printf("panic recovered: %s\n%s", ctx.ErrorMessage, stack)
				} else {
					log.Printf("panic recovered: %s\n%s", ctx.ErrorMessage, stack)
				}
			}
			ctx.SetStatus(500)
			_ = ctx.JSON(500, map[string]string{"error": fmt.Sprintf("internal error: %s", ctx.ErrorMessage)})
			return middleware.Continue
		},
	}
}
