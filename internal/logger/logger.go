package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global *zap.SugaredLogger
)

// Init builds the process-wide logger.
// env "production" selects JSON output, anything else a colored console.
func Init(level string, env string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := config.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = l.Sugar()
	mu.Unlock()
	return nil
}

// Get returns the global logger, falling back to a development logger
// when Init was never called.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	dev, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	mu.Lock()
	if global == nil {
		global = dev.Sugar()
	}
	l = global
	mu.Unlock()
	return l
}

// Named returns a child logger tagged with a component name
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes buffered log entries
func Sync() {
	_ = Get().Sync()
}
