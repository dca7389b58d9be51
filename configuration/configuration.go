// Package configuration loads settings from files, environment variables and command line flags.
//
// All keys are lower-cased when they are loaded, so lookups are case-insensitive.
package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	flag "github.com/spf13/pflag"
)

var (
	// ErrConfigDoesNotExist is returned if the config file does not exist.
	ErrConfigDoesNotExist = errors.New("config does not exist")
	// ErrUnknownConfigFormat is returned if the format of the config file is unknown.
	ErrUnknownConfigFormat = errors.New("unknown config file format")
)

const delimiter = "."

// Configuration holds config parameters from several sources (file, env vars, flags).
type Configuration struct {
	config *koanf.Koanf
}

// New returns a new configuration.
func New() *Configuration {
	return &Configuration{
		config: koanf.New(delimiter),
	}
}

// LoadFile loads parameters from a JSON, YAML or TOML file and merges them into the loaded config.
// Existing keys will be overwritten.
func (c *Configuration) LoadFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrConfigDoesNotExist, "failed to load %s", filePath)
		}

		return errors.Wrapf(err, "failed to access %s", filePath)
	}

	parser, err := parserForFile(filePath)
	if err != nil {
		return err
	}

	if err := c.config.Load(file.Provider(filePath), parser); err != nil {
		return errors.Wrapf(err, "failed to parse %s", filePath)
	}

	return nil
}

// StoreFile stores the current config to a JSON, YAML or TOML file.
func (c *Configuration) StoreFile(filePath string) error {
	parser, err := parserForFile(filePath)
	if err != nil {
		return err
	}

	data, err := parser.Marshal(c.config.Raw())
	if err != nil {
		return errors.Wrap(err, "unable to marshal config file")
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return errors.Wrap(err, "unable to save config file")
	}

	return nil
}

// LoadFlagSet loads parameters from a FlagSet (spf13/pflag lib) including
// default values and merges them into the loaded config.
// Existing keys will only be overwritten, if they were set via command line.
// If not given via command line, default values will only be used if they did not exist beforehand.
func (c *Configuration) LoadFlagSet(flagSet *flag.FlagSet) error {
	return c.config.Load(lowerPosflagProvider(flagSet, delimiter, c.config), nil)
}

// LoadEnvironmentVars loads parameters from env vars and merges them into the loaded config.
// The prefix is used to filter the env vars, underscores separate the levels of the key.
// Only existing keys will be overwritten, all other keys are ignored.
func (c *Configuration) LoadEnvironmentVars(prefix string) error {
	if prefix != "" {
		prefix += "_"
	}

	return c.config.Load(env.Provider(prefix, delimiter, func(s string) string {
		mapKey := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "_", delimiter)
		if !c.config.Exists(mapKey) {
			// only accept values from env vars that already exist in the config
			return ""
		}

		return mapKey
	}), nil)
}

// Unmarshal decodes the settings below path into the struct pointed to by out, using its koanf tags.
func (c *Configuration) Unmarshal(path string, out interface{}) error {
	if err := c.config.UnmarshalWithConf(strings.ToLower(path), out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return errors.Wrapf(err, "failed to unmarshal %q", path)
	}

	return nil
}

// Set overrides the value of a single parameter.
func (c *Configuration) Set(path string, value interface{}) error {
	return c.config.Load(confmap.Provider(map[string]interface{}{strings.ToLower(path): value}, delimiter), nil)
}

// Exists returns true if the parameter is known.
func (c *Configuration) Exists(path string) bool {
	return c.config.Exists(strings.ToLower(path))
}

// All returns the flattened map of all parameters.
func (c *Configuration) All() map[string]interface{} {
	return c.config.All()
}

// String returns the string value of a parameter.
func (c *Configuration) String(path string) string {
	return c.config.String(strings.ToLower(path))
}

// Strings returns the []string value of a parameter.
func (c *Configuration) Strings(path string) []string {
	return c.config.Strings(strings.ToLower(path))
}

// Ints returns the []int value of a parameter.
func (c *Configuration) Ints(path string) []int {
	return c.config.Ints(strings.ToLower(path))
}

// Int returns the int value of a parameter.
func (c *Configuration) Int(path string) int {
	return c.config.Int(strings.ToLower(path))
}

// Int64 returns the int64 value of a parameter.
func (c *Configuration) Int64(path string) int64 {
	return c.config.Int64(strings.ToLower(path))
}

// Bool returns the bool value of a parameter.
func (c *Configuration) Bool(path string) bool {
	return c.config.Bool(strings.ToLower(path))
}

// Duration returns the time.Duration value of a parameter.
func (c *Configuration) Duration(path string) time.Duration {
	return c.config.Duration(strings.ToLower(path))
}

// Koanf returns the underlying Koanf instance.
func (c *Configuration) Koanf() *koanf.Koanf {
	return c.config
}

// Dump returns the current settings as indented JSON.
func (c *Configuration) Dump() (string, error) {
	data, err := json.MarshalIndent(c.config.Raw(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "unable to marshal config")
	}

	return string(data), nil
}

func parserForFile(filePath string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return &JSONLowerParser{indent: "  "}, nil
	case ".yaml", ".yml":
		return &YAMLLowerParser{}, nil
	case ".toml":
		return &TOMLLowerParser{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownConfigFormat, "unsupported extension of %s", filePath)
	}
}
