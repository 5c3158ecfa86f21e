package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oops/internal/corrector"
	"oops/internal/db"
	"oops/internal/history"
)

type cli struct {
	t      *testing.T
	config string
	db     string
}

// newCLI isolates HOME, PATH and the config and database files.
func newCLI(t *testing.T) *cli {
	home := t.TempDir()
	bin := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	for _, name := range []string{"git", "cargo", "docker"} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte("alias ll='ls -la'\n"), 0644))

	t.Setenv("HOME", home)
	t.Setenv("PATH", bin)
	t.Setenv("SHELL", "/bin/bash")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	return &cli{
		t:      t,
		config: filepath.Join(home, ".config", "oops", "config.yaml"),
		db:     filepath.Join(home, ".oops", "oops.db"),
	}
}

// resetFlags restores flag defaults, since cobra keeps values between
// executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", c.config, "--db", c.db}, args...))

	err := rootCmd.Execute()
	if err != nil {
		_ = persist(rootCmd.Context())
	}
	return out.String(), err
}

func TestFixScenario(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("fix", "gti")
	require.NoError(t, err)
	assert.Equal(t, "git\n", out)

	out, err = c.run("fix", "carg", "build")
	require.NoError(t, err)
	assert.Equal(t, "cargo build\n", out)

	out, err = c.run("fix", "xyzabc")
	assert.ErrorIs(t, err, errNoCorrection)
	assert.Empty(t, out)

	_, err = c.run("fix", "git", "status")
	assert.ErrorIs(t, err, errNoCorrection)
}

func TestObserveThenFix(t *testing.T) {
	c := newCLI(t)

	for i := 0; i < 2; i++ {
		_, err := c.run("observe", "git", "status")
		require.NoError(t, err)
	}
	_, err := c.run("observe", "--status", "1", "git", "stash")
	require.NoError(t, err)

	out, err := c.run("fix", "gti", "stauts")
	require.NoError(t, err)
	assert.Equal(t, "git status\n", out)

	out, err = c.run("complete", "git", "sta")
	require.NoError(t, err)
	assert.Equal(t, "status\n", out)
}

func TestConfirmTyposAndForget(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("confirm", "dcoker", "podman")
	require.NoError(t, err)
	_, err = c.run("confirm", "dcoker", "podman")
	require.NoError(t, err)

	out, err := c.run("fix", "dcoker")
	require.NoError(t, err)
	assert.Equal(t, "podman\n", out)

	out, err = c.run("typos")
	require.NoError(t, err)
	assert.Contains(t, out, "dcoker")
	assert.Contains(t, out, "2")

	out, err = c.run("corrections", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"podman"`)

	_, err = c.run("forget", "dcoker")
	require.NoError(t, err)
	out, err = c.run("fix", "dcoker")
	require.NoError(t, err)
	assert.Equal(t, "docker\n", out)
}

func TestDangerousCorrectionIsRefused(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("confirm", "cleanup", "rm -rf /")
	require.NoError(t, err)

	out, err := c.run("fix", "cleanup")
	assert.ErrorIs(t, err, errDangerous)
	assert.Empty(t, out)
}

func TestClear(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("confirm", "gti", "cargo")
	require.NoError(t, err)

	_, err = c.run("clear")
	require.NoError(t, err)

	out, err := c.run("fix", "gti")
	require.NoError(t, err)
	assert.Equal(t, "git\n", out)
}

func TestAliasesAreKnown(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("fix", "ll")
	assert.ErrorIs(t, err, errNoCorrection)
}

func TestDBExportImport(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("confirm", "gti", "git")
	require.NoError(t, err)

	backup := filepath.Join(t.TempDir(), "backup.yaml")
	_, err = c.run("db", "export", backup)
	require.NoError(t, err)
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gti: git")

	_, err = c.run("clear")
	require.NoError(t, err)
	_, err = c.run("db", "import", backup)
	require.NoError(t, err)

	out, err := c.run("stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"corrections": 1`)

	out, err = c.run("db", "path")
	require.NoError(t, err)
	assert.Equal(t, c.db, strings.TrimSpace(out))
}

func TestExportReportsWriteErrors(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("db", "export", filepath.Join(t.TempDir(), "missing", "backup.json"))
	assert.Error(t, err)

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	err = exportFile("/dev/full", &corrector.Snapshot{Version: corrector.SnapshotVersion}, db.FormatJSON)
	assert.Error(t, err)
}

func TestLearnedAndHistory(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("learned")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing learned yet")

	_, err = c.run("confirm", "gti", "git")
	require.NoError(t, err)
	_, err = c.run("confirm", "dcoker", "docker")
	require.NoError(t, err)

	out, err = c.run("learned", "--json")
	require.NoError(t, err)
	var pairs []learnedPair
	require.NoError(t, json.Unmarshal([]byte(out), &pairs))
	assert.Equal(t, []learnedPair{
		{Typo: "dcoker", Correction: "docker"},
		{Typo: "gti", Correction: "git"},
	}, pairs)

	out, err = c.run("history", "--json", "-n", "1")
	require.NoError(t, err)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "dcoker", entries[0].Typo, "newest first")

	out, err = c.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "gti")
	assert.Contains(t, out, "docker")
}

func TestConfigCommands(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, c.config, strings.TrimSpace(out))

	_, err = c.run("config", "set", "correction.threshold", "0.9")
	require.NoError(t, err)
	out, err = c.run("config", "get", "correction.threshold")
	require.NoError(t, err)
	assert.Equal(t, "0.9", strings.TrimSpace(out))

	_, err = c.run("config", "toggle-history")
	require.NoError(t, err)
	out, err = c.run("config", "get", "history.enabled")
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))

	_, err = c.run("config", "set", "nope", "1")
	assert.Error(t, err)
}

func TestLearnFromHistory(t *testing.T) {
	c := newCLI(t)
	home := filepath.Dir(filepath.Dir(c.db))
	history := "#1700000000\ngit status\ngti status\ngit status\noops fix gti\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bash_history"), []byte(history), 0600))

	_, err := c.run("learn")
	require.NoError(t, err)

	out, err := c.run("fix", "gti", "stauts")
	require.NoError(t, err)
	assert.Equal(t, "git status\n", out)
}

func TestShellIntegration(t *testing.T) {
	c := newCLI(t)
	home := filepath.Dir(filepath.Dir(c.db))

	out, err := c.run("init")
	require.NoError(t, err)
	assert.Contains(t, out, "PROMPT_COMMAND")
	assert.Contains(t, out, "oo() {")

	out, err = c.run("init", "fish")
	require.NoError(t, err)
	assert.Contains(t, out, "function oo")

	_, err = c.run("install")
	require.NoError(t, err)
	rc, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(rc), `eval "$(oops init bash)"`)
	assert.True(t, strings.HasPrefix(string(rc), "alias ll='ls -la'\n"))

	_, err = c.run("install", "--uninstall")
	require.NoError(t, err)
	rc, err = os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, "alias ll='ls -la'\n", string(rc))
}
