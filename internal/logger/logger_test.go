package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown", "key", "value")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug").With("engine").Debug("stage")
	assert.Contains(t, buf.String(), "engine")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
	assert.Equal(t, ErrorLevel, l.GetLevel())
}

func TestFileWriterRolls(t *testing.T) {
	file := filepath.Join(t.TempDir(), "oops.log")
	w, err := openFileWriter(Config{File: file, MaxSize: 1, MaxBackups: 2})
	require.NoError(t, err)
	defer w.Close()

	w.limit = 16
	for _, chunk := range []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", "dddddddddd"} {
		_, err = w.Write([]byte(chunk))
		require.NoError(t, err)
	}

	read := func(name string) string {
		data, err := os.ReadFile(name)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "dddddddddd", read(file))
	assert.Equal(t, "cccccccccc", read(file+".1"))
	assert.Equal(t, "bbbbbbbbbb", read(file+".2"))
	_, err = os.Stat(file + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestFileWriterKeepsExistingSize(t *testing.T) {
	file := filepath.Join(t.TempDir(), "oops.log")
	require.NoError(t, os.WriteFile(file, []byte("0123456789"), 0644))

	w, err := openFileWriter(Config{File: file, MaxBackups: 1})
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, int64(10), w.written)
}

func TestOpenWithoutSinksDiscards(t *testing.T) {
	l, err := open(Config{Level: "debug"})
	require.NoError(t, err)
	l.Debug("nowhere")
	assert.NoError(t, l.Close())
}
