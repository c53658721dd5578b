// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of the pkcore command.
//
// Values are taken, in order of increasing precedence, from built-in
// defaults, a pkcore.yaml file, PKCORE_* environment variables and command
// line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the configuration of the pkcore command.
type Config struct {
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	Decode struct {
		// Strict requires input to be DER.
		Strict bool `mapstructure:"strict" yaml:"strict"`
	} `mapstructure:"decode" yaml:"decode"`
	Exp struct {
		// Window is the window size of modular exponentiation. 0 selects
		// the size automatically.
		Window int `mapstructure:"window" yaml:"window"`
	} `mapstructure:"exp" yaml:"exp"`
	Dump struct {
		MaxDepth    int  `mapstructure:"max_depth" yaml:"max_depth"`
		ShowOffsets bool `mapstructure:"show_offsets" yaml:"show_offsets"`
	} `mapstructure:"dump" yaml:"dump"`
}

// Defaults returns the built-in default values.
func Defaults() map[string]any {
	return map[string]any{
		"log.level":         "info",
		"decode.strict":     false,
		"exp.window":        0,
		"dump.max_depth":    64,
		"dump.show_offsets": true,
	}
}

// flagNames maps configuration keys to the command line flags overriding
// them.
var flagNames = map[string]string{
	"log.level":         "log-level",
	"decode.strict":     "strict",
	"exp.window":        "window",
	"dump.max_depth":    "max-depth",
	"dump.show_offsets": "offsets",
}

// DefaultPath returns the location of the configuration file in the user
// configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "pkcore", "pkcore.yaml"), nil
}

// LoadConfig reads the configuration. If file is not empty it names the
// configuration file, which must exist. Otherwise pkcore.yaml is searched in
// the working directory and the user configuration directory, and a missing
// file is not an error. Flags in flags that correspond to configuration keys
// take precedence over all other sources.
func LoadConfig(flags *pflag.FlagSet, file string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("pkcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if path, err := DefaultPath(); err == nil {
			v.AddConfigPath(filepath.Dir(path))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return c, err
		}
	}

	v.SetEnvPrefix("PKCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if c.Dump.MaxDepth <= 0 {
		return c, fmt.Errorf("dump.max_depth must be positive, got %d", c.Dump.MaxDepth)
	}
	if c.Exp.Window < 0 {
		return c, fmt.Errorf("exp.window must not be negative, got %d", c.Exp.Window)
	}
	return c, nil
}

// Default returns a Config holding the built-in defaults.
func Default() Config {
	var c Config
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	if err := v.Unmarshal(&c); err != nil {
		panic(err)
	}
	return c
}

// WriteConfigFile writes c as YAML to path, creating the parent directory if
// necessary. An existing file is only replaced if overwrite is set.
func WriteConfigFile(c *Config, path string, overwrite bool) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
