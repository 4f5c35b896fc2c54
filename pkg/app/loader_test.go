package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taker.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"taker"}`), 0o600))

	for _, u := range []string{path, "file://" + path} {
		b, err := LoadFile(u)
		require.NoError(t, err, u)
		assert.Equal(t, `{"name":"taker"}`, string(b))
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadFile("s3://bucket/taker.json")
	assert.Error(t, err)
}

func TestRegisterFileLoaderCtor_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterFileLoaderCtor("file", func() (FileLoader, error) {
			return &LocalLoader{}, nil
		})
	})
}
