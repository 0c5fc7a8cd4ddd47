package configutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	ApiKey  string  `json:"api_key"`
	BaseUrl string  `json:"base_url"`
	Rate    float64 `json:"requests_per_second"`
	Dump    string  `json:"dump"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "scrappey.json5")
	write(t, name, `{
		// comments and trailing commas are fine
		api_key: "from-file",
		base_url: "https://publisher.scrappey.com/api/v1",
		requests_per_second: 2,
	}`)
	write(t, filepath.Join(dir, "scrappey.local.json5"), `{api_key: "from-local"}`)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		ApiKey:  "from-local",
		BaseUrl: "https://publisher.scrappey.com/api/v1",
		Rate:    2,
	}, config)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "scrappey.json5"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "scrappey.json5")
	write(t, name, `{api_key: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))
	write(t, filepath.Join(root, "scrappey.json5"), `{dump: "dumps"}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	config, path, err := ReadRecursively[testConfig]("scrappey.json5")
	require.NoError(t, err)
	require.Equal(t, "dumps", config.Dump)
	require.Equal(t, "scrappey.json5", filepath.Base(path))

	_, _, err = ReadRecursively[testConfig]("does-not-exist.json5")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWithDefaults(t *testing.T) {
	config, err := WithDefaults(
		testConfig{ApiKey: "k"},
		testConfig{ApiKey: "ignored", BaseUrl: "https://default", Rate: 1},
	)
	require.NoError(t, err)
	require.Equal(t, testConfig{ApiKey: "k", BaseUrl: "https://default", Rate: 1}, config)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "dir/scrappey.local.json5", LocalPath("dir/scrappey.json5"))
	require.Equal(t, "config.local", LocalPath("config"))
}
