package shell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const marker = "# added by oops"

// Installer adds the line that loads the integration to a shell rc file.
type Installer struct {
	Shell   Shell
	RCFile  string
	Program string
}

// NewInstaller returns an installer targeting the usual rc file of sh.
func NewInstaller(sh Shell, home, program string) Installer {
	var rc string
	switch sh {
	case Bash:
		rc = filepath.Join(home, ".bashrc")
	case Zsh:
		rc = filepath.Join(home, ".zshrc")
	case Fish:
		rc = filepath.Join(home, ".config", "fish", "config.fish")
	}
	return Installer{Shell: sh, RCFile: rc, Program: program}
}

// Line is the rc file line that evaluates the integration script.
func (i Installer) Line() string {
	if i.Shell == Fish {
		return fmt.Sprintf("%s init fish | source", i.Program)
	}
	return fmt.Sprintf(`eval "$(%s init %s)"`, i.Program, i.Shell)
}

// IsInstalled reports whether the rc file already loads the integration.
func (i Installer) IsInstalled() (bool, error) {
	data, err := os.ReadFile(i.RCFile)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Contains(data, []byte(marker)), nil
}

// Install appends the integration block. It returns false when the block
// is already present.
func (i Installer) Install() (bool, error) {
	if i.RCFile == "" {
		return false, fmt.Errorf("%w: %q", ErrUnsupported, i.Shell)
	}
	installed, err := i.IsInstalled()
	if err != nil || installed {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(i.RCFile), 0755); err != nil {
		return false, err
	}

	f, err := os.OpenFile(i.RCFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n%s\n%s\n", marker, i.Line()); err != nil {
		return false, err
	}
	return true, nil
}

// Uninstall removes the integration block. It returns false when nothing
// was installed.
func (i Installer) Uninstall() (bool, error) {
	data, err := os.ReadFile(i.RCFile)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	removed := false
	for n := 0; n < len(lines); n++ {
		if strings.TrimSpace(lines[n]) != marker {
			kept = append(kept, lines[n])
			continue
		}
		removed = true
		if len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
			kept = kept[:len(kept)-1]
		}
		if n+1 < len(lines) && strings.TrimSpace(lines[n+1]) == i.Line() {
			n++
		}
	}
	if !removed {
		return false, nil
	}
	return true, os.WriteFile(i.RCFile, []byte(strings.Join(kept, "\n")), 0644)
}
