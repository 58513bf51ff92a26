/*
 *   Copyright 2023 Martin Proffitt <mproffitt@choclab.net>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v2"

	"github.com/notapipeline/scryptkdf/pkg/types"
)

// These functions are referenced as variables to enable them to
// be mocked in tests
var (
	ConfigPath func() string = getConfigPath
)

type Config struct {
	Options types.Options `yaml:"options" envPrefix:"SKDF_"`

	Checkpoint string `yaml:"checkpoint" env:"SKDF_CHECKPOINT"`
	Debug      bool   `yaml:"debug" env:"SKDF_DEBUG"`
	Quiet      bool   `yaml:"quiet" env:"SKDF_QUIET"`
}

// New creates a config seeded with the default derivation options
func New() *Config {
	return &Config{
		Options: types.DefaultOptions(),
	}
}

// Load the config file from user local config directory
//
// The config file will be loaded from ~/.config/scryptkdf/config.yaml if it
// exists and then the environment will be checked for overrides. Values not
// present in either keep their defaults.
//
// Users are expected to call `MergeDeriveCmd` to override the config with
// command line options.
func (c *Config) Load() (err error) {
	if err = c.loadYaml(); err != nil {
		return
	}
	if err = c.loadEnv(); err != nil {
		return
	}

	return
}

func (c *Config) loadYaml() (err error) {
	var (
		cp       string = ConfigPath()
		yamlFile []byte
	)

	if _, err = os.Stat(cp); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if yamlFile, err = os.ReadFile(cp); err != nil {
		return err
	}

	log.Printf("Loading config file %s\n", cp)
	if err = yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", cp, err)
	}
	return nil
}

func (c *Config) loadEnv() (err error) {
	return env.Parse(c)
}

// MergeDeriveCmd overrides the config with options given on the command line.
//
// Only flags for which changed returns true are merged so that flag defaults
// never mask values from the config file or environment.
func (c *Config) MergeDeriveCmd(cmd types.DeriveCmd, changed func(name string) bool) {
	if changed("logn") {
		c.Options.LogN = cmd.LogN
	}
	if changed("blocksize") {
		c.Options.R = cmd.R
	}
	if changed("parallel") {
		c.Options.P = cmd.P
	}
	if changed("iterations") {
		c.Options.Iterations = cmd.Iterations
	}
	if changed("keysize") {
		c.Options.KeySize = cmd.KeySize
	}
	if cmd.Checkpoint != "" {
		c.Checkpoint = cmd.Checkpoint
	}
	if cmd.Debug {
		c.Debug = cmd.Debug
	}
	if cmd.Quiet {
		c.Quiet = cmd.Quiet
	}
}

// Save writes the config back to ConfigPath
func (c *Config) Save() (err error) {
	var data []byte
	if data, err = yaml.Marshal(c); err != nil {
		return err
	}

	var cp string = ConfigPath()
	if err = os.MkdirAll(filepath.Dir(cp), 0700); err != nil {
		return err
	}
	return os.WriteFile(cp, data, 0600)
}

func getConfigPath() string {
	home, _ := os.UserHomeDir()
	return fmt.Sprintf("%s/.config/scryptkdf/config.yaml", home)
}
