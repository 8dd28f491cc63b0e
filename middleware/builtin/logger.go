package builtin

import (
	"log"
	"time"

	"github.com/goccy/go-json"

	"github.com/yourusername/ember/middleware"
)

// LogEntry mirrors bolt/middleware/logger.go's LogEntry, extended with
// RequestID since Ember's Context always carries one (SPEC_FULL.md §1.2
// domain stack: google/uuid wiring).
type LogEntry struct {
	Time       time.Time `json:"time"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// LoggerConfig mirrors bolt/middleware/logger.go's LoggerConfig.
type LoggerConfig struct {
	SkipPaths map[string]bool
	JSON      bool
	Output    *log.Logger
}

// DefaultLoggerConfig mirrors bolt/middleware/logger.go's DefaultLoggerConfig.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{JSON: true}
}

// Logger returns a POST_ROUTE registration logging one line per request.
// Unlike bolt/middleware/logger.go (which uses stdlib encoding/json),
// Ember's Logger uses goccy/go-json throughout, standardizing on the same
// encoder Context.JSON uses (see DESIGN.md for why this one deliberate
// divergence from the teacher is made).
func Logger(priority uint32) middleware.Registration {
	return LoggerWithConfig(priority, DefaultLoggerConfig())
}

// LoggerWithConfig mirrors bolt/middleware/logger.go's LoggerWithConfig:
// records a start time on PRE_ROUTE, computes duration and logs on
// POST_ROUTE. The one registration carries both phase flags and runs in
// each phase; the two runs share timing state via the Context's
// per-middleware data slot (set_data/get_data, spec §4.D).
func LoggerWithConfig(priority uint32, cfg LoggerConfig) middleware.Registration {
	const startSlot = 0
	return middleware.Registration{
		Name:     "logger",
		Priority: priority,
		Flags:    middleware.FlagPreRoute | middleware.FlagPostRoute,
		Func: func(ctx *middleware.Context) middleware.Result {
			if ctx.Request != nil && cfg.SkipPaths[ctx.Request.Path()] {
				return middleware.Continue
			}
			if t, ok := ctx.GetData(startSlot).(time.Time); ok {
				entry := LogEntry{
					Time:       time.Now(),
					RequestID:  ctx.RequestID,
					Status:     ctx.ResponseStatus,
					DurationMS: float64(time.Since(t).Microseconds()) / 1000.0,
					Error:      ctx.ErrorMessage,
				}
				if ctx.Request != nil {
					entry.Method = ctx.Request.Method()
					entry.Path = ctx.Request.Path()
				}
				if cfg.JSON {
					logJSON(cfg.Output, entry)
				} else {
					logText(cfg.Output, entry)
				}
				return middleware.Continue
			}
			ctx.SetData(startSlot, time.Now())
			return middleware.Continue
		},
	}
}

func logJSON(out *log.Logger, e LogEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if out != nil {
		out.Println(string(b))
	} else {
		log.Println(string(b))
	}
}

func logText(out *log.Logger, e LogEntry) {
	line := e.Time.Format(time.RFC3339) + " " + e.Method + " " + e.Path
	if out != nil {
		out.Println(line)
	} else {
		log.Println(line)
	}
}
