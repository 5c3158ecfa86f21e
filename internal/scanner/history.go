package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	zshExtended = regexp.MustCompile(`^: \d+:\d+;(.*)$`)
	fishCmd     = regexp.MustCompile(`^\s*- cmd:\s*(.+)$`)
)

var sensitiveWords = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey",
	"private_key", "credential",
}

// HistoryReader extracts command lines from a shell history file so they
// can be replayed into learning.
type HistoryReader struct {
	Shell string
	// Path defaults to the shell's usual history file under Home.
	Path string
	Home string
	// Skip drops lines whose first token is listed.
	Skip []string
}

// DefaultHistoryFile returns the history file for shell, or "" when the
// shell is unknown.
func DefaultHistoryFile(shell, home string) string {
	switch shell {
	case "bash":
		return filepath.Join(home, ".bash_history")
	case "zsh":
		if f := os.Getenv("HISTFILE"); f != "" {
			return f
		}
		return filepath.Join(home, ".zsh_history")
	case "fish":
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	default:
		return ""
	}
}

// ReadCommands returns the commands in file order. A missing file yields
// no commands and no error.
func (r HistoryReader) ReadCommands(ctx context.Context) ([]string, error) {
	path := r.Path
	if path == "" {
		home := r.Home
		if home == "" {
			var err error
			if home, err = os.UserHomeDir(); err != nil {
				return nil, fmt.Errorf("failed to locate home directory: %w", err)
			}
		}
		path = DefaultHistoryFile(r.Shell, home)
		if path == "" {
			return nil, fmt.Errorf("unsupported shell: %q", r.Shell)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer file.Close()

	var commands []string
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return commands, err
		}
		line, ok := ParseHistoryLine(r.Shell, sc.Text())
		if !ok || r.skipped(line) {
			continue
		}
		commands = append(commands, line)
	}
	if err := sc.Err(); err != nil {
		return commands, fmt.Errorf("failed to read history: %w", err)
	}
	return commands, nil
}

// ParseHistoryLine extracts the command from one raw history line. Bash
// timestamp comments, zsh continuation markers and fish metadata lines are
// rejected.
func ParseHistoryLine(shell, raw string) (string, bool) {
	var line string
	switch shell {
	case "zsh":
		if m := zshExtended.FindStringSubmatch(raw); m != nil {
			line = m[1]
		} else if !strings.HasPrefix(raw, ":") {
			line = raw
		}
	case "fish":
		if m := fishCmd.FindStringSubmatch(raw); m != nil {
			line = unescapeFish(m[1])
		}
	default:
		if !strings.HasPrefix(strings.TrimSpace(raw), "#") {
			line = raw
		}
	}

	line = strings.TrimSpace(line)
	if len(line) < 2 || strings.HasSuffix(line, `\`) || isSensitive(line) {
		return "", false
	}
	return line, true
}

func (r HistoryReader) skipped(line string) bool {
	first, _, _ := strings.Cut(line, " ")
	for _, s := range r.Skip {
		if first == s {
			return true
		}
	}
	return false
}

func isSensitive(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range sensitiveWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func unescapeFish(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, `\\`, `\`)
}
