package logger

import (
	"sync"
	"sync/atomic"
)

var (
	global   atomic.Pointer[Logger]
	initOnce sync.Once
)

// Initialize sets up the process-wide logger. Only the first call has an
// effect; if it fails, logging is discarded and the error returned.
func Initialize(cfg Config) error {
	var err error
	initOnce.Do(func() {
		l, openErr := open(cfg)
		if openErr != nil {
			err = openErr
			l = Discard()
		}
		global.Store(l)
	})
	return err
}

// Get returns the process-wide logger, initializing it with defaults.
func Get() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	_ = Initialize(DefaultConfig())
	return global.Load()
}

func Debug(msg string, keyvals ...any) { Get().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { Get().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { Get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { Get().Error(msg, keyvals...) }

// With returns the process-wide logger with a prefix.
func With(prefix string) *Logger {
	return Get().With(prefix)
}
