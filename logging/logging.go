package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tranvictor/hsocial/txerror"
)

// New builds a zap logger. format is "json" or "console"; an empty level
// means info.
func New(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	// stdout belongs to command output
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Classified logs ce at error level when it should be logged, and at debug
// level otherwise so a user cancelling in the wallet stays out of the
// error stream.
func Classified(l *zap.Logger, msg string, ce *txerror.ClassifiedError, fields ...zap.Field) {
	if ce == nil {
		return
	}
	fields = append(fields,
		zap.String("error_type", string(ce.Type)),
		zap.String("user_message", ce.Message),
	)
	if err, ok := ce.OriginalError.(error); ok {
		fields = append(fields, zap.NamedError("original", err))
	} else if ce.OriginalError != nil {
		fields = append(fields, zap.Any("original", ce.OriginalError))
	}
	if ce.ShouldLog {
		OrNop(l).Error(msg, fields...)
		return
	}
	OrNop(l).Debug(msg, fields...)
}
