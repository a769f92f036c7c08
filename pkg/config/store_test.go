package config

import (
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "config.json", `{{{`)

	store := Open(fsys, "config.json", discardLogger())
	assert.Equal(t, Default(), store.Snapshot())
	assert.Equal(t, "config.json", store.Path())
}

func TestStore_PersistCreatesFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	store := Open(fsys, "config.json", discardLogger())
	require.NoError(t, store.Persist())

	exists, err := afero.Exists(fsys, "config.json")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, Default(), Load(fsys, "config.json"))
}

func TestStore_ReplacePersists(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	store := NewStore(fsys, "config.json", Default(), discardLogger())

	next := Config{
		PlayerExecutable: `D:\PotPlayer\PotPlayerMini64.exe`,
		WebPrefix:        "NAS/video",
		LocalRoot:        `\\SRV\video`,
		Host:             "127.0.0.1",
		Port:             8181,
	}
	require.NoError(t, store.Replace(next))

	assert.Equal(t, next, store.Snapshot())
	assert.Equal(t, next, Load(fsys, "config.json"))
}

func TestStore_ReplaceKeepsValueWhenPersistFails(t *testing.T) {
	t.Parallel()

	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := NewStore(fsys, "config.json", Default(), discardLogger())

	next := Default()
	next.WebPrefix = "changed"
	assert.Error(t, store.Replace(next))
	assert.Equal(t, next, store.Snapshot())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := NewStore(afero.NewMemMapFs(), "config.json", Default(), discardLogger())
	snap := store.Snapshot()
	snap.WebPrefix = "mutated"
	assert.Equal(t, Default(), store.Snapshot())
}

// Every field differs between the two generations, so a torn read would
// produce a value equal to neither.
func TestStore_SnapshotNeverTorn(t *testing.T) {
	t.Parallel()

	store := NewStore(afero.NewMemMapFs(), "config.json", Default(), discardLogger())
	gen := func(i int) Config {
		return Config{
			PlayerExecutable: fmt.Sprintf(`C:\player-%d.exe`, i),
			WebPrefix:        fmt.Sprintf("prefix-%d", i),
			LocalRoot:        fmt.Sprintf(`\\SRV\root-%d`, i),
			Host:             fmt.Sprintf("10.0.0.%d", i),
			Port:             9000 + i,
		}
	}
	a, b := gen(1), gen(2)
	require.NoError(t, store.Replace(a))

	const rounds = 200
	var wg sync.WaitGroup

	for w := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				next := a
				if (i+w)%2 == 0 {
					next = b
				}
				assert.NoError(t, store.Replace(next))
			}
		}()
	}

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds * 2 {
				snap := store.Snapshot()
				if snap != a && snap != b {
					assert.Failf(t, "torn snapshot", "%+v", snap)
					return
				}
			}
		}()
	}

	wg.Wait()
	final := store.Snapshot()
	assert.True(t, final == a || final == b)
	assert.Equal(t, final, Load(store.fs, store.Path()), "file must match the last in-memory value")
}
