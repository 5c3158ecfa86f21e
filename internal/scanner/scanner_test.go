package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestPathScanner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not used on windows")
	}
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "git"), "#!/bin/sh\n", 0755)
	writeFile(t, filepath.Join(a, "README"), "docs", 0644)
	writeFile(t, filepath.Join(b, "docker"), "#!/bin/sh\n", 0755)
	require.NoError(t, os.Mkdir(filepath.Join(b, "subdir"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(a, "git"), filepath.Join(b, "g")))

	path := a + string(os.PathListSeparator) + b + string(os.PathListSeparator) +
		filepath.Join(a, "missing") + string(os.PathListSeparator) + a

	names, err := PathScanner{Path: path}.LoadCorpus()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"git": {}, "docker": {}, "g": {}}, names)
}

func TestParseAlias(t *testing.T) {
	tests := []struct {
		shell, line, name, command string
		ok                         bool
	}{
		{"bash", "alias ll='ls -la'", "ll", "ls -la", true},
		{"bash", `alias gs="git status"  # short`, "gs", "git status", true},
		{"zsh", "  alias k=kubectl", "k", "kubectl", true},
		{"bash", "# alias old='x'", "", "", false},
		{"bash", "export PATH=$PATH:/opt", "", "", false},
		{"fish", "alias ll 'ls -la'", "ll", "ls -la", true},
		{"fish", "alias gco='git checkout'", "gco", "git checkout", true},
		{"fish", "abbr -a gp git push", "gp", "git push", true},
		{"fish", "set -x EDITOR vim", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, command, ok := ParseAlias(tt.shell, tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.command, command)
		})
	}
}

func TestAliasScannerDefaultsAndOverrides(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".bashrc"), "alias ll='ls -l'\nalias gs='git status'\n", 0644)
	writeFile(t, filepath.Join(home, ".bash_aliases"), "alias ll='ls -la'\n", 0644)

	aliases, err := AliasScanner{Shell: "bash", Home: home}.LoadAliases()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ll": "ls -la", "gs": "git status"}, aliases)
}

func TestAliasScannerMissingFiles(t *testing.T) {
	aliases, err := AliasScanner{Shell: "zsh", Home: t.TempDir()}.LoadAliases()
	require.NoError(t, err)
	assert.Empty(t, aliases)

	aliases, err = AliasScanner{Shell: "tcsh", Home: t.TempDir()}.LoadAliases()
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestAliasScannerFish(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "fish", "config.fish"), "alias vi nvim\nabbr --add gd git diff\n", 0644)

	aliases, err := AliasScanner{Shell: "fish", Home: home}.LoadAliases()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"vi": "nvim", "gd": "git diff"}, aliases)
}
