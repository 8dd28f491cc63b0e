package builtin

import (
	"context"
	"time"

	"github.com/yourusername/ember/middleware"
)

// DeadlineSlot is the per-middleware data slot Timeout publishes its
// derived context.Context under (spec §4.D's set_data/get_data), so a
// handler that performs its own bounded I/O can opt into honoring the
// deadline via ctx.GetData(DeadlineSlot).(context.Context).
const DeadlineSlot = 1

// Timeout returns a PRE_ROUTE registration that derives a context.Context
// with a d deadline and publishes it via DeadlineSlot, grounded on
// bolt/core/types.go's Config.ShutdownContext context-cancellation idiom.
//
// Ember's single per-connection goroutine (spec §5) cannot forcibly
// preempt a running handler — there is no separate supervisor thread to
// do so — so Timeout does not itself abort a handler already in progress;
// it gives the handler the means to check its own deadline, which is the
// accurate expression of "handlers must not block" in a cooperative
// single-goroutine-per-connection model.
func Timeout(priority uint32, d time.Duration) middleware.Registration {
	return middleware.Registration{
		Name:     "timeout",
		Priority: priority,
		Flags:    middleware.FlagPreRoute,
		Func: func(ctx *middleware.Context) middleware.Result {
			deadlineCtx, _ := context.WithTimeout(context.Background(), d)
			ctx.SetData(DeadlineSlot, deadlineCtx)
			return middleware.Continue
		},
	}
}
