package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WatchReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := NewStore(afero.NewOsFs(), path, Default(), discardLogger())
	require.NoError(t, store.Persist())

	ctx, cancel := context.WithCancel(context.Background())
	done, err := store.Watch(ctx)
	require.NoError(t, err)
	defer func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
		}
	}()

	edited := Config{
		PlayerExecutable: `C:\p.exe`,
		WebPrefix:        "NAS",
		LocalRoot:        "R",
		Host:             "0.0.0.0",
		Port:             9000,
	}
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"potplayer_exe":"C:\\p.exe","web_prefix":"NAS","unc_root":"R","host":"0.0.0.0","port":9000}`), 0o644))
	assert.Eventually(t, func() bool { return store.Snapshot() == edited }, 5*time.Second, 10*time.Millisecond)

	// A half-written file keeps the last good configuration.
	require.NoError(t, os.WriteFile(path, []byte(`{"potplayer_exe": `), 0o644))
	assert.Never(t, func() bool { return store.Snapshot() != edited }, 300*time.Millisecond, 20*time.Millisecond)

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte(`{"port": 1}`), 0o644))
	assert.Never(t, func() bool { return store.Snapshot() != edited }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestStore_WatchMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.json")
	store := NewStore(afero.NewOsFs(), path, Default(), discardLogger())

	_, err := store.Watch(context.Background())
	assert.Error(t, err)
}
