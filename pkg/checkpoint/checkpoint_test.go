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
package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notapipeline/scryptkdf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts types.Options = types.Options{LogN: 12, R: 8, P: 1, Iterations: 10, KeySize: 16}

func TestSaveLoad(t *testing.T) {
	var (
		path string           = filepath.Join(t.TempDir(), "chain.yaml")
		cp   types.Checkpoint = types.Checkpoint{
			Round:        4,
			Intermediary: []byte{0x8a, 0xcc, 0x02, 0xaa, 0x68, 0xd2, 0x27, 0x2e, 0xf8, 0x49, 0xaf, 0xc3, 0x53, 0xfc, 0x19, 0x90},
		}
	)

	require.NoError(t, Save(path, opts, cp))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `options:
  logn: 12
  r: 8
  p: 1
  iterations: 10
  keysize: 16
round: 4
intermediary: 8acc02aa68d2272ef849afc353fc1990
`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	lopts, lcp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, opts, lopts)
	assert.Equal(t, cp, lcp)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name: "bad hex",
			content: `options: {logn: 12, r: 8, p: 1, iterations: 10, keysize: 16}
round: 1
intermediary: zz
`,
			message: "unable to resume: intermediary is not valid hex: encoding/hex: invalid byte: U+007A 'z'",
		},
		{
			name: "empty intermediary",
			content: `options: {logn: 12, r: 8, p: 1, iterations: 10, keysize: 16}
round: 1
intermediary: ""
`,
			message: "unable to resume: no intermediary data",
		},
		{
			name: "invalid keysize",
			content: `options: {logn: 12, r: 8, p: 1, iterations: 10, keysize: 128}
round: 1
intermediary: "00"
`,
			message: "invalid keysize 128: must be between 10 and 64",
		},
		{
			name: "round beyond iterations",
			content: `options: {logn: 12, r: 8, p: 1, iterations: 10, keysize: 16}
round: 4294967295
intermediary: 8acc02aa68d2272ef849afc353fc1990
`,
			message: "unable to resume: round 4294967295 is beyond the 10 iterations of the chain",
		},
		{
			name: "round equal to iterations",
			content: `options: {logn: 12, r: 8, p: 1, iterations: 10, keysize: 16}
round: 10
intermediary: 8acc02aa68d2272ef849afc353fc1990
`,
			message: "unable to resume: round 10 is beyond the 10 iterations of the chain",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chain.yaml")
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0600))

			_, _, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.message)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriterInMemory(t *testing.T) {
	w := NewWriter("", opts)

	_, ok := w.Last()
	assert.False(t, ok)

	w.Record(0, []byte("round-zero-bytes"))
	w.Record(1, []byte("round-one--bytes"))

	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, types.Checkpoint{Round: 1, Intermediary: []byte("round-one--bytes")}, last)
	assert.NoError(t, w.Err())

	require.NoError(t, w.Remove())
	_, ok = w.Last()
	assert.False(t, ok)
}

func TestWriterPersistsEveryRound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chain.yaml")
	w := NewWriter(path, opts)
	assert.Equal(t, path, w.Path())

	for i := uint32(0); i < 3; i++ {
		w.Record(i, []byte("0123456789abcdef"))

		_, cp, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, i, cp.Round)
	}

	require.NoError(t, w.Remove())
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// removing twice is harmless
	assert.NoError(t, w.Remove())
}

func TestWriterNeverRecordsFinalRound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	w := NewWriter(path, opts)

	w.Record(8, []byte("0123456789abcdef"))
	w.Record(9, []byte("derived-key-data"))

	_, cp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, types.Checkpoint{Round: 8, Intermediary: []byte("0123456789abcdef")}, cp)

	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, uint32(8), last.Round)
}

func TestWriterKeepsFirstError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte{}, 0600))

	// a regular file where a directory is expected
	w := NewWriter(filepath.Join(blocker, "chain.yaml"), opts)
	w.Record(0, []byte("0123456789abcdef"))

	assert.Error(t, w.Err())
	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, uint32(0), last.Round)
}

func TestWriterLastIsACopy(t *testing.T) {
	w := NewWriter("", opts)
	w.Record(0, []byte("0123456789abcdef"))

	last, _ := w.Last()
	last.Intermediary[0] = 'X'

	again, _ := w.Last()
	assert.Equal(t, byte('0'), again.Intermediary[0])
}
