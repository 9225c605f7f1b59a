package logger

import "sync/atomic"

type holder struct{ l Logger }

var defLogger atomic.Pointer[holder]

func init() {
	defLogger.Store(&holder{l: NewSlog(InfoLevel, false)})
}

func current() Logger { return defLogger.Load().l }

// SetDefault replaces the package default logger. A nil l is ignored.
//
// Loggers already handed out by GetLogger or With keep writing to the previous default.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defLogger.Store(&holder{l: l})
}

func Debug(msg string, keysAndValues ...any) { current().Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { current().Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { current().Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { current().Error(msg, keysAndValues...) }

// Fatal logs with the package default logger and exits.
func Fatal(msg string, keysAndValues ...any) { current().Fatal(msg, keysAndValues...) }

// SetLevel sets the level of the package default logger.
func SetLevel(level Level) { current().SetLevel(level) }

// GetLogger returns the package default logger.
func GetLogger() Logger { return current() }

// With returns a child of the package default logger.
func With(keyValues ...any) Logger { return current().With(keyValues...) }
