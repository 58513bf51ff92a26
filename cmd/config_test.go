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
package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/notapipeline/scryptkdf/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfig(t *testing.T) {
	_, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, testConfig(), false))

	assert.Equal(t, `options:
  logn: 4
  r: 1
  p: 1
  iterations: 2
  keysize: 16
checkpoint: ""
debug: false
quiet: false
`, buf.String())
	assert.NoFileExists(t, config.ConfigPath())
}

func TestShowConfigSave(t *testing.T) {
	_, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, testConfig(), true))

	saved, err := os.ReadFile(config.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(saved))

	c := config.New()
	require.NoError(t, c.Load())
	assert.Equal(t, testOptions, c.Options)
}

func TestShowConfigRefusesInvalidOptions(t *testing.T) {
	_, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	c := testConfig()
	c.Options.KeySize = 128

	var buf bytes.Buffer
	err := showConfig(&buf, c, true)
	if assert.Error(t, err) {
		assert.Equal(t, "invalid keysize 128: must be between 10 and 64", err.Error())
	}
	assert.Empty(t, buf.String())
	assert.NoFileExists(t, config.ConfigPath())
}
