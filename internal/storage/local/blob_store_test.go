package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fsbdata/disclosure-crawler/internal/storage/local"
)

func TestPutObjectWritesFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store, err := local.New(base)
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "archives/run.zip", "application/zip", []byte("payload"))
	require.NoError(t, err)
	require.Equal(t, "file://"+filepath.Join(base, "archives", "run.zip"), uri)

	data, err := os.ReadFile(filepath.Join(base, "archives", "run.zip"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
}

func TestPutObjectRejectsEscapingPath(t *testing.T) {
	t.Parallel()

	store, err := local.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "../outside.zip", "", []byte("x"))
	require.ErrorContains(t, err, "escapes")
}

func TestPutObjectRequiresPath(t *testing.T) {
	t.Parallel()

	store, err := local.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "  ", "", []byte("x"))
	require.Error(t, err)
}

func TestNewRequiresBaseDir(t *testing.T) {
	t.Parallel()

	_, err := local.New("")
	require.Error(t, err)
}
