package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czha8903/fnplayer/pkg/config"
)

// run executes the command tree with args against fsys and returns stdout.
func run(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()

	opts := &options{fs: fsys}
	t.Cleanup(opts.closeLogger)

	var stdout, stderr bytes.Buffer
	root := newRootCommand(opts)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, afero.NewMemMapFs(), "version")
	require.NoError(t, err)
	assert.Equal(t, "fnplayer dev\n", out)
}

func TestConfigPathMustBeJSON(t *testing.T) {
	t.Parallel()

	_, err := run(t, afero.NewMemMapFs(), "--config", "config.yaml", "config", "show")
	assert.ErrorContains(t, err, ".json")
}

func TestMapCommand(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, config.Save(fsys, "config.json", config.Config{
		WebPrefix: "存储空间 2/NAS 的文件",
		LocalRoot: `\\SRV\share`,
		Host:      "127.0.0.1",
		Port:      8080,
	}))

	out, err := run(t, fsys, "map", "存储空间 2/NAS 的文件/video/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, "mapped: \\\\SRV\\share\\video\\a.mkv\nrule:   prefix\n", out)

	out, err = run(t, fsys, "map", "/vol1/NAS 的文件/x.mkv", "--root", `D:\media\`)
	require.NoError(t, err)
	assert.Equal(t, "mapped: D:\\media\\x.mkv\nrule:   marker\n", out)
}

func TestMapCommand_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := run(t, afero.NewMemMapFs(), "map")
	assert.Error(t, err)
}

func TestConfigSetThenShow(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	_, err := run(t, fsys, "config", "set",
		"--player-exe", `C:\PotPlayer\PotPlayerMini64.exe`,
		"--unc-root", `\\SRV\share`,
		"--port", "18080",
	)
	require.NoError(t, err)

	raw, err := afero.ReadFile(fsys, "config.json")
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, map[string]any{
		"potplayer_exe": `C:\PotPlayer\PotPlayerMini64.exe`,
		"web_prefix":    "",
		"unc_root":      `\\SRV\share`,
		"host":          "127.0.0.1",
		"port":          float64(18080),
	}, saved)

	out, err := run(t, fsys, "config", "show")
	require.NoError(t, err)
	var shown config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, 18080, shown.Port)
	assert.Equal(t, `\\SRV\share`, shown.LocalRoot)

	// Unchanged flags keep the stored values.
	_, err = run(t, fsys, "config", "set", "--web-prefix", "存储空间 2/NAS 的文件")
	require.NoError(t, err)
	cfg, err := config.LoadStrict(fsys, "config.json")
	require.NoError(t, err)
	assert.Equal(t, 18080, cfg.Port)
	assert.Equal(t, "存储空间 2/NAS 的文件", cfg.WebPrefix)
}

func TestConfigSet_RejectsInvalidPort(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	_, err := run(t, fsys, "config", "set", "--port", "70000")
	require.ErrorContains(t, err, "port")

	exists, err := afero.Exists(fsys, "config.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	_, err := run(t, fsys, "config", "validate")
	assert.Error(t, err, "missing file")

	require.NoError(t, afero.WriteFile(fsys, "config.json", []byte(`{"host": "",`), 0o644))
	_, err = run(t, fsys, "config", "validate")
	assert.Error(t, err, "malformed file")

	require.NoError(t, afero.WriteFile(fsys, "config.json", []byte(`{"host": ""}`), 0o644))
	_, err = run(t, fsys, "config", "validate")
	assert.ErrorContains(t, err, "host must not be empty")

	require.NoError(t, config.Save(fsys, "config.json", config.Default()))
	out, err := run(t, fsys, "config", "validate")
	require.NoError(t, err)
	assert.Equal(t, "config.json: ok\n", out)
}
