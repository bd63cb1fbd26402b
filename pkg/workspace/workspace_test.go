package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExistingProject(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "api"), 0o755))

	dir, err := NewResolver(base).Resolve("api")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "api"), dir)
}

func TestResolveBasePathUnset(t *testing.T) {
	before, _ := os.Getwd()

	_, err := NewResolver("").Resolve("api")
	assert.ErrorIs(t, err, ErrBasePathUnset)

	after, _ := os.Getwd()
	assert.Equal(t, before, after)
}

func TestResolveMissingProject(t *testing.T) {
	before, _ := os.Getwd()

	_, err := NewResolver(t.TempDir()).Resolve("p")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	after, _ := os.Getwd()
	assert.Equal(t, before, after)
}

func TestResolveFileIsNotAProject(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes"), []byte("x"), 0o644))

	_, err := NewResolver(base).Resolve("notes")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestResolveExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "work", "site"), 0o755))

	for _, base := range []string{"~/work", "${home}/work"} {
		r := NewResolver(base)
		assert.Equal(t, filepath.Join(home, "work"), r.Base())

		dir, err := r.Resolve("site")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "work", "site"), dir)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/work", filepath.Join(home, "work")},
		{"${home}/logs/app.log", home + "/logs/app.log"},
		{"/srv/work", "/srv/work"},
		{"~other/work", "~other/work"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandHome(tt.in), tt.in)
	}
}
