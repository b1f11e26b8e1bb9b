package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_FiresOnMatchingWrite(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(dir, "murmur.db", zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = fw.Close() }()

	ch, stop := fw.Subscribe()
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	select {
	case <-ch:
		t.Fatal("unrelated file should not wake subscribers")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "murmur.db-wal"), []byte("x"), 0o644))
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected wake after database write")
	}
}
