// Package elog is Ember's small internal structured logger (SPEC_FULL.md
// §1.1 ambient stack), generalizing the line-format/JSON-or-text choice
// bolt/middleware/logger.go makes for access logs into a leveled logger
// for process-level events: listener startup, connection errors, arena
// backend selection, shutdown progress.
package elog

import (
	"log"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// Level orders severity, debug being the most verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one structured log line.
type Entry struct {
	Time   time.Time      `json:"time"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Logger writes leveled entries as JSON or a plain text line, matching the
// JSON/text choice bolt/middleware/logger.go's LoggerConfig makes.
type Logger struct {
	out   *log.Logger
	json  bool
	level Level
	debug bool // EMBER_C_DEBUG: emit LevelDebug entries regardless of level
}

// New constructs a Logger writing to out at minLevel and above, as JSON
// lines when jsonFormat is true and as text otherwise. debugEnv mirrors the
// spec's CATZILLA_C_DEBUG gate; Default reads EMBER_C_DEBUG once, when this
// package is initialized.
func New(out *log.Logger, jsonFormat bool, minLevel Level, debugEnv bool) *Logger {
	if out == nil {
		out = log.New(os.Stderr, "", 0)
	}
	return &Logger{out: out, json: jsonFormat, level: minLevel, debug: debugEnv}
}

// Default is the package-level logger used by components that aren't
// handed an explicit *Logger via Config.
var Default = New(nil, true, LevelInfo, os.Getenv("EMBER_C_DEBUG") != "")

func (l *Logger) log(level Level, msg string, fields map[string]any) {
	if level < l.level && !(level == LevelDebug && l.debug) {
		return
	}
	e := Entry{Time: time.Now(), Level: level.String(), Msg: msg, Fields: fields}
	if l.json {
		b, err := json.Marshal(e)
		if err != nil {
			l.out.Println(msg)
			return
		}
		l.out.Println(string(b))
		return
	}
	l.out.Printf("%s [%s] %s", e.Time.Format(time.RFC3339), e.Level, e.Msg)
}

func (l *Logger) Debug(msg string, fields map[string]any) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any) { l.log(LevelError, msg, fields) }

func Debug(msg string, fields map[string]any) { Default.Debug(msg, fields) }
func Info(msg string, fields map[string]any)  { Default.Info(msg, fields) }
func Warn(msg string, fields map[string]any)  { Default.Warn(msg, fields) }
func Error(msg string, fields map[string]any) { Default.Error(msg, fields) }
