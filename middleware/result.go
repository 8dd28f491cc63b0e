package middleware

// Result is the tagged variant spec §9 asks for in place of the distilled
// spec's magic integers: {Continue, SkipRoute, Stop, Error}. The integer
// mapping (0, 1, 2, -1) is preserved only where a built-in middleware must
// interoperate with the bridge collaborator's FFI edge (spec §6).
type Result int

const (
	// Continue proceeds to the next entry in the chain.
	Continue Result = 0
	// SkipRoute stops the pre-route chain and skips the route handler,
	// but post-route middleware still runs.
	SkipRoute Result = 1
	// Stop clears should_continue: like SkipRoute, but also short-circuits
	// for reasons other than "skip the handler" (spec draws the same
	// distinction without giving Stop additional behavior beyond Skip in
	// the pre-route phase; Execute treats both as "do not invoke handler").
	Stop Result = 2
	// Error aborts the current chain and marks the request result failed.
	Error Result = -1
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "CONTINUE"
	case SkipRoute:
		return "SKIP_ROUTE"
	case Stop:
		return "STOP"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
