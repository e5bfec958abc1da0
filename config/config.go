// Package config loads factio settings from defaults, a YAML file,
// FACTIO_ environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/go-data-exporter/factio/charset"
	"github.com/go-data-exporter/factio/dialect"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "factio.yaml"

const envPrefix = "FACTIO_"

// Config holds the settings shared by every command.
type Config struct {
	Dialect    string `koanf:"dialect"`
	Encoding   string `koanf:"encoding"`
	Header     bool   `koanf:"header"`
	Verbose    bool   `koanf:"verbose"`
	Format     string `koanf:"format"`
	NullString string `koanf:"null_string"`

	// HasNullString is set when any source named a NULL string, including
	// an empty one.
	HasNullString bool `koanf:"-"`
	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"dialect":  dialect.Default.Name,
		"encoding": charset.UTF8,
		"header":   true,
		"verbose":  false,
		"format":   "csv",
	}
}

// Load builds a Config. cfgFile names the YAML file to read; when empty,
// DefaultFile is used if it exists. Only flags the user changed override
// the other sources. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// FACTIO_DIALECT -> dialect
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.HasNullString = k.Exists("null_string")
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the dialect and encoding names resolve.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.resolve(dialect.ForReader); err != nil {
		errs = append(errs, err)
	}
	if _, err := charset.Lookup(c.Encoding); err != nil {
		errs = append(errs, err)
	}
	if c.Format == "" {
		errs = append(errs, errors.New("format must not be empty"))
	}
	return errors.Join(errs...)
}

// ReaderDialect returns the dialect for reading files. A numeric dialect
// setting is a reader format code.
func (c *Config) ReaderDialect() (dialect.Dialect, error) {
	return c.resolve(dialect.ForReader)
}

// WriterDialect returns the dialect for writing files. A numeric dialect
// setting is a writer format code, which may name a different preset than
// the same reader code.
func (c *Config) WriterDialect() (dialect.Dialect, error) {
	return c.resolve(dialect.ForWriter)
}

func (c *Config) resolve(byCode func(int) dialect.Dialect) (dialect.Dialect, error) {
	var d dialect.Dialect
	if code, err := strconv.Atoi(strings.TrimSpace(c.Dialect)); err == nil {
		d = byCode(code)
	} else if d, err = dialect.ByName(c.Dialect); err != nil {
		return dialect.Dialect{}, err
	}
	if c.HasNullString || c.NullString != "" {
		d = d.WithNullString(c.NullString)
	}
	return d, nil
}
