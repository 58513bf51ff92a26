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
	"os"
	"path/filepath"
	"testing"

	"github.com/notapipeline/scryptkdf/pkg/types"
)

func setupSuite(t *testing.T) func(t *testing.T) {
	t.Log("Setting up config suite")
	tempDir := t.TempDir()
	ConfigPath = func() string {
		return filepath.Join(tempDir, "config.yaml")
	}
	err := os.WriteFile(ConfigPath(), []byte(`
options:
  logn: 14
  iterations: 3
  keysize: 32
checkpoint: /tmp/chain.yaml
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	return func(t *testing.T) {
		ConfigPath = getConfigPath
	}
}

func TestConfig_Load(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	c := New()
	if err := c.Load(); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	var expected types.Options = types.Options{
		LogN:       14,
		R:          types.DEFAULT_R,
		P:          types.DEFAULT_P,
		Iterations: 3,
		KeySize:    32,
	}
	if c.Options != expected {
		t.Errorf("Expected options %+v but got %+v", expected, c.Options)
	}

	if c.Checkpoint != "/tmp/chain.yaml" {
		t.Errorf("Expected checkpoint %q but got %q", "/tmp/chain.yaml", c.Checkpoint)
	}
}

func TestConfig_LoadMissingFileKeepsDefaults(t *testing.T) {
	ConfigPath = func() string {
		return "/this/path/to/scryptkdf/config/will/never/exist/config.yaml"
	}
	defer func() {
		ConfigPath = getConfigPath
	}()

	c := New()
	if err := c.Load(); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	if c.Options != types.DefaultOptions() {
		t.Errorf("Expected default options but got %+v", c.Options)
	}
}

func TestConfig_LoadInvalidYaml(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	if err := os.WriteFile(ConfigPath(), []byte("options: [this is not a map"), 0600); err != nil {
		t.Fatal(err)
	}

	c := New()
	if err := c.Load(); err == nil {
		t.Errorf("Expected error but got nil")
	}
}

func TestConfig_LoadEnvironmentOverrides(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	t.Setenv("SKDF_LOG_N", "16")
	t.Setenv("SKDF_R", "4")
	t.Setenv("SKDF_ITERATIONS", "7")
	t.Setenv("SKDF_CHECKPOINT", "/var/tmp/other.yaml")

	c := New()
	if err := c.Load(); err != nil {
		t.Fatalf("Expected nil error but got %v", err)
	}

	var expected types.Options = types.Options{
		LogN:       16,
		R:          4,
		P:          types.DEFAULT_P,
		Iterations: 7,
		KeySize:    32,
	}
	if c.Options != expected {
		t.Errorf("Expected options %+v but got %+v", expected, c.Options)
	}

	if c.Checkpoint != "/var/tmp/other.yaml" {
		t.Errorf("Expected checkpoint %q but got %q", "/var/tmp/other.yaml", c.Checkpoint)
	}
}

func TestConfig_LoadInvalidEnvironment(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	t.Setenv("SKDF_LOG_N", "300")

	c := New()
	if err := c.Load(); err == nil {
		t.Errorf("Expected error for out of range log_n but got nil")
	}
}

func TestConfig_MergeDeriveCmd(t *testing.T) {
	tests := []struct {
		name     string
		changed  []string
		expected types.Options
	}{
		{
			name:     "nothing changed",
			changed:  []string{},
			expected: types.DefaultOptions(),
		},
		{
			name:    "iterations and keysize",
			changed: []string{"iterations", "keysize"},
			expected: types.Options{
				LogN:       types.DEFAULT_LOG_N,
				R:          types.DEFAULT_R,
				P:          types.DEFAULT_P,
				Iterations: 5,
				KeySize:    64,
			},
		},
		{
			name:    "all",
			changed: []string{"logn", "blocksize", "parallel", "iterations", "keysize"},
			expected: types.Options{
				LogN:       12,
				R:          4,
				P:          2,
				Iterations: 5,
				KeySize:    64,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var (
				c   *Config         = New()
				cmd types.DeriveCmd = types.DeriveCmd{
					Options: types.Options{
						LogN:       12,
						R:          4,
						P:          2,
						Iterations: 5,
						KeySize:    64,
					},
				}
			)
			c.MergeDeriveCmd(cmd, func(name string) bool {
				for _, n := range test.changed {
					if n == name {
						return true
					}
				}
				return false
			})

			if c.Options != test.expected {
				t.Errorf("Expected options %+v but got %+v", test.expected, c.Options)
			}
		})
	}
}

func TestConfig_Save(t *testing.T) {
	teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	var (
		c    *Config = New()
		err  error
		data []byte
	)

	if err = c.Load(); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}
	c.Options.P = 2
	c.Checkpoint = ""

	if err = c.Save(); err != nil {
		t.Errorf("Expected nil error but got %v", err)
	}

	if data, err = os.ReadFile(ConfigPath()); err != nil {
		t.Fatal(err)
	}

	expectedData := []byte(`options:
  logn: 14
  r: 8
  p: 2
  iterations: 3
  keysize: 32
checkpoint: ""
debug: false
quiet: false
`)
	if string(data) != string(expectedData) {
		t.Errorf("Expected saved config file:\n%s===\n\nBut got:\n%s===", string(expectedData), string(data))
	}
}

func TestGetConfigPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, ".config/scryptkdf/config.yaml")
	actualPath := getConfigPath()
	if actualPath != expectedPath {
		t.Errorf("Expected config path %q but got %q", expectedPath, actualPath)
	}
}
