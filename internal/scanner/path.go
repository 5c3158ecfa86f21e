// Package scanner discovers the executables on PATH, the user's shell
// aliases and the commands in their shell history.
package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"oops/internal/logger"
)

// PathScanner lists executable names found in the directories of a PATH
// string.
type PathScanner struct {
	// Path defaults to $PATH when empty.
	Path    string
	Workers int
	Log     *logger.Logger
}

// LoadCorpus reads every PATH directory. Directories that cannot be read
// are skipped.
func (s PathScanner) LoadCorpus() (map[string]struct{}, error) {
	path := s.Path
	if path == "" {
		path = os.Getenv("PATH")
	}
	log := s.Log
	if log == nil {
		log = logger.Discard()
	}

	dirs := uniqueDirs(filepath.SplitList(path))
	workers := s.Workers
	if workers <= 0 {
		workers = min(len(dirs), runtime.GOMAXPROCS(0))
	}

	var (
		mu    sync.Mutex
		names = make(map[string]struct{})
		wg    sync.WaitGroup
	)
	collect := func(dir string) {
		defer wg.Done()
		found, err := executables(dir)
		if err != nil {
			log.Debug("skipping PATH entry", "dir", dir, "err", err)
			return
		}
		mu.Lock()
		for _, n := range found {
			names[n] = struct{}{}
		}
		mu.Unlock()
	}

	pool, err := ants.NewPool(max(workers, 1), ants.WithPanicHandler(func(p any) {
		log.Error("PATH scan worker panicked", "panic", p, "stack", string(debug.Stack()))
	}))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	for _, dir := range dirs {
		dir := dir
		wg.Add(1)
		if err := pool.Submit(func() { collect(dir) }); err != nil {
			collect(dir)
		}
	}
	wg.Wait()

	log.Debug("scanned PATH", "dirs", len(dirs), "commands", len(names))
	return names, nil
}

func uniqueDirs(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func executables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Follow symlinks so linked binaries count as executables.
		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = os.Stat(filepath.Join(dir, entry.Name())); err != nil || info.IsDir() {
				continue
			}
		}
		if name, ok := executableName(entry.Name(), info.Mode()); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

var windowsExts = []string{".exe", ".bat", ".cmd", ".com", ".ps1"}

func executableName(name string, mode os.FileMode) (string, bool) {
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range windowsExts {
			if ext == e {
				return strings.TrimSuffix(name, filepath.Ext(name)), true
			}
		}
		return "", false
	}
	return name, mode.Perm()&0111 != 0
}
