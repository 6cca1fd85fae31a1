package logging

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var levelMapping = map[LogLevel]logrus.Level{
	LevelDebug: logrus.DebugLevel,
	LevelInfo:  logrus.InfoLevel,
	LevelWarn:  logrus.WarnLevel,
	LevelError: logrus.ErrorLevel,
}

// StructuredLogger implements Logger on top of logrus.
type StructuredLogger struct {
	config *LoggerConfig
	logger *logrus.Logger
}

// NewStructuredLogger builds a logger from config, falling back to DefaultConfig when nil.
func NewStructuredLogger(config *LoggerConfig) (*StructuredLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := logrus.New()
	l.SetOutput(config.Output)
	l.SetLevel(levelMapping[config.Level])
	l.SetFormatter(newFormatter(config.Format))

	return &StructuredLogger{
		config: config,
		logger: l,
	}, nil
}

func newFormatter(format LogFormat) logrus.Formatter {
	if format == FormatText {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		}
	}

	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	}
}

func (sl *StructuredLogger) log(ctx context.Context, level LogLevel, message string, fields Fields) {
	lvl, ok := levelMapping[level]
	if !ok || !sl.logger.IsLevelEnabled(lvl) {
		return
	}

	sl.logger.WithFields(sl.entryFields(ctx, fields)).Log(lvl, message)
}

// entryFields merges the service identity and request context into fields.
func (sl *StructuredLogger) entryFields(ctx context.Context, fields Fields) logrus.Fields {
	out := make(logrus.Fields, len(fields)+5)
	for k, v := range fields {
		out[k] = v
	}

	out[FieldService] = sl.config.Service
	if sl.config.Version != "" {
		out[FieldVersion] = sl.config.Version
	}
	if sl.config.Environment != "" {
		out[FieldEnv] = sl.config.Environment
	}

	if requestID := GetRequestID(ctx); requestID != "" {
		out[FieldRequestID] = requestID
	}

	if _, set := out[FieldDuration]; !set {
		if startTime := GetStartTime(ctx); !startTime.IsZero() {
			out[FieldDuration] = float64(time.Since(startTime).Nanoseconds()) / 1e6
		}
	}

	if sl.config.AddSource {
		if source := getSource(); source != "" {
			out["source"] = source
		}
	}

	return out
}

// getSource names the function that called the public logging method.
func getSource() string {
	// getSource, entryFields, log, public method
	const skip = 4
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	return name
}

func (sl *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelDebug, message, fields)
}

func (sl *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelInfo, message, fields)
}

func (sl *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelWarn, message, fields)
}

func (sl *StructuredLogger) Error(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelError, message, fields)
}

func (sl *StructuredLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelWarn, message, withError(fields, err))
}

func (sl *StructuredLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelError, message, withError(fields, err))
}

func withError(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}

	enriched := make(Fields, len(fields)+2)
	for k, v := range fields {
		enriched[k] = v
	}
	enriched[FieldError] = err.Error()
	enriched[FieldErrorType] = getErrorType(err)
	return enriched
}

// SetLevel changes the minimum level at runtime.
func (sl *StructuredLogger) SetLevel(level LogLevel) {
	if lvl, ok := levelMapping[level]; ok {
		sl.logger.SetLevel(lvl)
	}
}

func (sl *StructuredLogger) GetLevel() LogLevel {
	current := sl.logger.GetLevel()
	for level, lvl := range levelMapping {
		if lvl == current {
			return level
		}
	}
	return LevelInfo
}

// Logrus exposes the underlying logger for libraries that want one.
func (sl *StructuredLogger) Logrus() *logrus.Logger {
	return sl.logger
}
