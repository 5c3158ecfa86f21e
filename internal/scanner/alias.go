package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	posixAlias = regexp.MustCompile(`^alias\s+([^=\s]+)=['"]?(.+?)['"]?\s*(?:#.*)?$`)
	fishAlias  = regexp.MustCompile(`^alias\s+([^=\s]+)[\s=]+['"]?(.+?)['"]?\s*(?:#.*)?$`)
	fishAbbr   = regexp.MustCompile(`^abbr\s+(?:(?:-a|--add)\s+)?(?:(?:-g|--global)\s+)?([^\s-][^\s]*)\s+['"]?(.+?)['"]?\s*$`)
)

// AliasScanner parses alias definitions out of shell rc files.
type AliasScanner struct {
	// Shell is bash, zsh or fish. It selects the syntax and, when Files is
	// empty, the rc files to read.
	Shell string
	Files []string
	// Home defaults to the user's home directory.
	Home string
}

// DefaultRCFiles returns the rc files read for shell.
func DefaultRCFiles(shell, home string) []string {
	switch shell {
	case "bash":
		return []string{filepath.Join(home, ".bashrc"), filepath.Join(home, ".bash_aliases")}
	case "zsh":
		return []string{filepath.Join(home, ".zshrc"), filepath.Join(home, ".zsh_aliases")}
	case "fish":
		return []string{filepath.Join(home, ".config", "fish", "config.fish")}
	default:
		return nil
	}
}

// LoadAliases reads the rc files in order; later definitions win. Missing
// files are skipped.
func (s AliasScanner) LoadAliases() (map[string]string, error) {
	files := s.Files
	if len(files) == 0 {
		home := s.Home
		if home == "" {
			var err error
			if home, err = os.UserHomeDir(); err != nil {
				return nil, fmt.Errorf("failed to locate home directory: %w", err)
			}
		}
		files = DefaultRCFiles(s.Shell, home)
	}

	aliases := make(map[string]string)
	for _, f := range files {
		if err := s.parseFile(f, aliases); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return aliases, nil
}

func (s AliasScanner) parseFile(path string, into map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if name, command, ok := ParseAlias(s.Shell, sc.Text()); ok {
			into[name] = command
		}
	}
	return sc.Err()
}

// ParseAlias extracts an alias definition from one rc file line.
func ParseAlias(shell, line string) (name, command string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	var m []string
	if shell == "fish" {
		if m = fishAlias.FindStringSubmatch(line); m == nil {
			m = fishAbbr.FindStringSubmatch(line)
		}
	} else {
		m = posixAlias.FindStringSubmatch(line)
	}
	if m == nil {
		return "", "", false
	}

	name = strings.TrimSpace(m[1])
	command = strings.TrimSpace(m[2])
	if name == "" || command == "" {
		return "", "", false
	}
	return name, command, true
}
