package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DisabledIsNoOp(t *testing.T) {
	t.Cleanup(CloseAll)
	require.NoError(t, Initialize(Options{Debug: false}))

	// Must not panic or create files.
	Get(CategorySession).Info("dropped %d", 42)
	Session("also dropped")
}

func TestInitialize_WritesCategoryFiles(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(Options{Debug: true, Dir: dir}))

	Get(CategorySession).Info("session %s created", "abc")
	Get(CategoryConsultation).Warn("stage bounce")
	CloseAll()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, " ")
	assert.Contains(t, joined, "_boot.log")
	assert.Contains(t, joined, "_session.log")
	assert.Contains(t, joined, "_consultation.log")

	for _, e := range entries {
		if strings.Contains(e.Name(), "_session") {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(data), "[INFO] session abc created")
		}
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("no panic")
}
