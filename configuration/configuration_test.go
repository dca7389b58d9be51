package configuration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/iotaledger/streamkit/configuration"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filePath, content, 0o600))

	return filePath
}

func TestFetchFlagset(t *testing.T) {
	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.String("A", "123", "test")
	require.NoError(t, testFlagSet.Set("A", "321"))

	config := configuration.New()
	require.NoError(t, config.LoadFlagSet(testFlagSet))

	require.EqualValues(t, "321", config.String("A"))
}

func TestFlagDefaultsDoNotOverrideExistingKeys(t *testing.T) {
	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.json", []byte(`{"replay": 5}`))))

	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.Int("replay", 1, "test")
	testFlagSet.Duration("timeout", time.Second, "test")

	require.NoError(t, config.LoadFlagSet(testFlagSet))
	require.Equal(t, 5, config.Int("replay"))
	require.Equal(t, time.Second, config.Duration("timeout"))

	require.NoError(t, testFlagSet.Set("replay", "7"))
	require.NoError(t, config.LoadFlagSet(testFlagSet))
	require.Equal(t, 7, config.Int("replay"))
}

func TestFetchEnvVars(t *testing.T) {
	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.String("B", "322", "test")

	t.Setenv("TEST_B", "321")
	t.Setenv("TEST_C", "321")

	config := configuration.New()
	require.NoError(t, config.LoadFlagSet(testFlagSet))
	require.NoError(t, config.LoadEnvironmentVars("TEST"))

	require.EqualValues(t, "321", config.String("B"))

	_, exists := config.All()["c"]
	require.False(t, exists, "expected read config value to not exist")
}

func TestFetchJSONFile(t *testing.T) {
	content, err := json.MarshalIndent(map[string]interface{}{
		"C":      321,
		"Nested": map[string]interface{}{"Key": "value"},
	}, "", "    ")
	require.NoError(t, err)

	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.json", content)))

	require.Equal(t, 321, config.Int("C"))
	require.Equal(t, "value", config.String("nested.key"))
}

func TestFetchYAMLFile(t *testing.T) {
	content, err := yaml.Marshal(map[string]interface{}{
		"D":      321,
		"Nested": map[string]interface{}{"Key": "value"},
	})
	require.NoError(t, err)

	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.yml", content)))

	require.Equal(t, 321, config.Int("D"))
	require.Equal(t, "value", config.String("nested.key"))

	_, exists := config.All()["Nested.Key"]
	require.False(t, exists, "all keys should be lower cased")
}

func TestFetchTOMLFile(t *testing.T) {
	content := []byte("Replay = 3\n\n[Logger]\nLevel = \"debug\"\nOutputPaths = [\"stdout\", \"stderr\"]\n")

	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.toml", content)))

	require.Equal(t, 3, config.Int("replay"))
	require.Equal(t, "debug", config.String("logger.level"))
	require.Equal(t, []string{"stdout", "stderr"}, config.Strings("logger.outputPaths"))
}

func TestLoadFileErrors(t *testing.T) {
	config := configuration.New()

	err := config.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, errors.Is(err, configuration.ErrConfigDoesNotExist))

	err = config.LoadFile(writeFile(t, "config.ini", []byte("a=b")))
	require.True(t, errors.Is(err, configuration.ErrUnknownConfigFormat))

	require.Error(t, config.LoadFile(writeFile(t, "broken.json", []byte("{"))))
}

func TestStoreFile(t *testing.T) {
	config := configuration.New()
	require.NoError(t, config.Set("signal.replay", 4))
	require.True(t, config.Exists("signal.replay"))

	for _, name := range []string{"out.json", "out.yaml", "out.toml"} {
		filePath := filepath.Join(t.TempDir(), name)
		require.NoError(t, config.StoreFile(filePath))

		loaded := configuration.New()
		require.NoError(t, loaded.LoadFile(filePath))
		require.Equal(t, 4, loaded.Int("signal.replay"), name)
	}
}

func TestUnmarshal(t *testing.T) {
	type settings struct {
		Level       string   `koanf:"level"`
		OutputPaths []string `koanf:"outputpaths"`
		Replay      int      `koanf:"replay"`
	}

	content := []byte("logger:\n  Level: warn\n  OutputPaths:\n    - stderr\n  Replay: \"2\"\n")

	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.yaml", content)))

	var out settings
	require.NoError(t, config.Unmarshal("Logger", &out))
	require.Equal(t, settings{Level: "warn", OutputPaths: []string{"stderr"}, Replay: 2}, out)
}

func TestMergeParameters(t *testing.T) {
	testFlagSet := flag.NewFlagSet("", flag.ContinueOnError)
	testFlagSet.Int("F", 321, "test")

	t.Setenv("TEST_F", "322")

	config := configuration.New()
	require.NoError(t, config.LoadFile(writeFile(t, "config.json", []byte(`{"E": 321}`))))
	require.NoError(t, config.LoadFlagSet(testFlagSet))
	require.NoError(t, config.LoadEnvironmentVars("TEST"))

	all := config.All()
	for key, exists := range map[string]bool{"e": true, "E": false, "f": true, "F": false, "g": false} {
		_, found := all[key]
		require.Equal(t, exists, found, key)
	}

	require.Equal(t, 321, config.Int("E"))
	require.Equal(t, "322", config.String("F"))
	require.Equal(t, 322, config.Int("F"))

	dump, err := config.Dump()
	require.NoError(t, err)
	require.Contains(t, dump, `"e": 321`)
}
