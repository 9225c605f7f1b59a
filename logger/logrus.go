package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to Logger.
type LogrusLogger struct {
	entry *logrus.Entry
}

var _ Logger = (*LogrusLogger)(nil)

// NewLogrus wraps a logrus.Logger. A nil logger uses logrus.StandardLogger().
func NewLogrus(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debug(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Error(msg)
}

func (l *LogrusLogger) Fatal(msg string, keysAndValues ...any) {
	l.entry.WithFields(toFields(keysAndValues)).Fatal(msg)
}

func (l *LogrusLogger) With(keyValues ...any) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(toFields(keyValues))}
}

func (l *LogrusLogger) Level() Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.TraceLevel, logrus.DebugLevel:
		return DebugLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.FatalLevel, logrus.PanicLevel:
		return FatalLevel
	default:
		return ErrorLevel
	}
}

// SetLevel changes the level of the underlying logrus.Logger, which is shared with every child.
func (l *LogrusLogger) SetLevel(level Level) {
	var lv logrus.Level
	switch level {
	case DebugLevel:
		lv = logrus.DebugLevel
	case InfoLevel:
		lv = logrus.InfoLevel
	case WarnLevel:
		lv = logrus.WarnLevel
	case FatalLevel:
		lv = logrus.FatalLevel
	default:
		lv = logrus.ErrorLevel
	}
	l.entry.Logger.SetLevel(lv)
}

func toFields(keyValues []any) logrus.Fields {
	fields := make(logrus.Fields, len(keyValues)/2+1)
	for i := 0; i < len(keyValues); i += 2 {
		key := fmt.Sprint(keyValues[i])
		if i+1 < len(keyValues) {
			fields[key] = keyValues[i+1]
		} else {
			fields["!BADKEY"] = key
		}
	}

	return fields
}
