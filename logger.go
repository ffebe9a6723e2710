package anvil

import (
	"github.com/xraph/go-utils/log"
	"go.uber.org/zap/zapcore"
)

// Re-export logger interfaces so callers only import anvil.
type (
	Logger        = log.Logger
	Field         = log.Field
	LogLevel      = log.LogLevel
	LoggingConfig = log.LoggingConfig
)

// Re-export logger constants.
const (
	LevelDebug = log.LevelDebug
	LevelInfo  = log.LevelInfo
	LevelWarn  = log.LevelWarn
	LevelError = log.LevelError
	LevelFatal = log.LevelFatal
)

// Re-export logger constructors.
var (
	NewLogger            = log.NewLogger
	NewDevelopmentLogger = log.NewDevelopmentLogger
	NewProductionLogger  = log.NewProductionLogger
	NewNoopLogger        = log.NewNoopLogger
)

// NewDevelopmentLoggerWithLevel creates a development logger with the
// specified level.
func NewDevelopmentLoggerWithLevel(level zapcore.Level) Logger {
	return log.NewDevelopmentLoggerWithLevel(level)
}

// Re-export field constructors.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Bool     = log.Bool
	Duration = log.Duration
	Error    = log.Error
	Stringer = log.Stringer
	Any      = log.Any
	Strings  = log.Strings
)

// F creates a new field (alias for Any).
func F(key string, value interface{}) Field {
	return log.Any(key, value)
}
