package meta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestService_Load(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("interpreter: ${env.RUNCELL_TEST_PY}\ncursorAdvance: true\n"), 0o644))
	require.NoError(t, os.Setenv("RUNCELL_TEST_PY", "/usr/bin/python3"))
	defer os.Unsetenv("RUNCELL_TEST_PY")

	service := New(afs.New(), dir)
	var target struct {
		Interpreter   string `yaml:"interpreter"`
		CursorAdvance bool   `yaml:"cursorAdvance"`
	}
	err := service.Load(context.Background(), "settings.yaml", &target)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python3", target.Interpreter)
	assert.True(t, target.CursorAdvance)
}

func TestService_LoadAbsolute(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("interpreter: python3\n"), 0o644))

	service := New(afs.New(), "")
	var target map[string]string
	err := service.Load(context.Background(), settings, &target)
	require.NoError(t, err)
	assert.Equal(t, "python3", target["interpreter"])
}

func TestService_Exists(t *testing.T) {
	dir := t.TempDir()
	service := New(afs.New(), dir)
	ok, err := service.Exists(context.Background(), "missing.yaml")
	require.NoError(t, err)
	assert.False(t, ok)
}
