package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "WARN")
}

func TestNew_FileCore(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	log, err := New(Options{Level: "debug", Console: &buf, File: path})
	require.NoError(t, err)
	log.Debug("scored")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"scored"`)
	assert.Contains(t, buf.String(), "scored")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}
