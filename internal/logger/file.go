package logger

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// fileWriter appends to a log file. When a write would take the file past
// limit bytes, the file moves to path.1, older backups shift up by one and
// anything beyond keep backups or older than maxAge is removed.
type fileWriter struct {
	mu      sync.Mutex
	path    string
	limit   int64
	keep    int
	maxAge  time.Duration
	f       *os.File
	written int64
}

func openFileWriter(cfg Config) (*fileWriter, error) {
	mb := cfg.MaxSize
	if mb <= 0 {
		mb = DefaultConfig().MaxSize
	}
	w := &fileWriter{
		path:   cfg.File,
		limit:  int64(mb) << 20,
		keep:   cfg.MaxBackups,
		maxAge: time.Duration(cfg.MaxAge) * 24 * time.Hour,
	}
	if err := w.reopen(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written > 0 && w.written+int64(len(p)) > w.limit {
		if err := w.roll(); err != nil {
			return 0, err
		}
	}
	n, err := w.f.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *fileWriter) reopen() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	w.f, w.written = f, info.Size()
	return nil
}

func (w *fileWriter) backup(i int) string {
	return w.path + "." + strconv.Itoa(i)
}

// roll shifts the backups and starts a fresh file. Callers hold mu.
func (w *fileWriter) roll() error {
	if w.f != nil {
		_ = w.f.Close()
	}

	if w.keep <= 0 {
		_ = os.Remove(w.path)
	} else {
		_ = os.Remove(w.backup(w.keep))
		for i := w.keep; i > 1; i-- {
			_ = os.Rename(w.backup(i-1), w.backup(i))
		}
		_ = os.Rename(w.path, w.backup(1))
	}

	if w.maxAge > 0 {
		cutoff := time.Now().Add(-w.maxAge)
		for i := 1; i <= w.keep; i++ {
			if info, err := os.Stat(w.backup(i)); err == nil && info.ModTime().Before(cutoff) {
				_ = os.Remove(w.backup(i))
			}
		}
	}
	return w.reopen()
}
