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
package crypto

import (
	"bytes"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/notapipeline/scryptkdf/pkg/types"
	"golang.org/x/crypto/scrypt"
)

// scryptKey is referenced as a variable to enable primitive failures to be
// mocked in tests
var scryptKey func(password, salt []byte, N, r, p, keyLen int) ([]byte, error) = scrypt.Key

// RoundFunc is called once a round completes with the index of that round and
// a copy of its output.
//
// It runs on the derivation goroutine and should return quickly.
type RoundFunc func(round uint32, intermediary []byte)

// ScryptKDF chains scrypt rounds for a fixed set of options
type ScryptKDF struct {
	opts types.Options
}

// New creates a derivation engine for the given options.
//
// The options are validated again here so an engine can never be built around
// an out of range key size.
func New(opts types.Options) (*ScryptKDF, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &ScryptKDF{opts: opts}, nil
}

// Options returns a copy of the options this engine derives with
func (k *ScryptKDF) Options() types.Options {
	return k.opts
}

// DeriveRound runs a single scrypt pass over data.
//
// The returned slice is always KeySize bytes long. Errors from scrypt are
// returned as they are.
func (k *ScryptKDF) DeriveRound(salt, data []byte) ([]byte, error) {
	var (
		dk  []byte
		err error
	)
	if dk, err = scryptKey(data, salt, k.opts.N(), int(k.opts.R), int(k.opts.P), k.opts.KeySize); err != nil {
		return nil, err
	}
	if len(dk) != k.opts.KeySize {
		return nil, fmt.Errorf("scrypt returned %d bytes, expected %d", len(dk), k.opts.KeySize)
	}
	return dk, nil
}

// DeriveKey derives a key from secret running every round
func (k *ScryptKDF) DeriveKey(salt, secret []byte) ([]byte, error) {
	return k.DeriveKeyWithCallback(salt, secret, 0, nil)
}

// DeriveKeyWithCallback runs rounds offset to Iterations-1, feeding the
// output of each round into the next.
//
// When offset is greater or equal to the number of iterations no round runs
// and a copy of data is returned. A failing round aborts the chain; the only
// progress kept is whatever fn has already seen.
func (k *ScryptKDF) DeriveKeyWithCallback(salt, data []byte, offset uint32, fn RoundFunc) ([]byte, error) {
	var (
		res []byte = bytes.Clone(data)
		err error
	)

	for i := offset; i < k.opts.Iterations; i++ {
		var next []byte
		if next, err = k.DeriveRound(salt, res); err != nil {
			memguard.WipeBytes(res)
			return nil, err
		}

		memguard.WipeBytes(res)
		res = next
		if fn != nil {
			fn(i, bytes.Clone(res))
		}
	}

	return res, nil
}

// Resume continues a chain from the last round recorded in cp
func (k *ScryptKDF) Resume(salt []byte, cp types.Checkpoint, fn RoundFunc) ([]byte, error) {
	if len(cp.Intermediary) == 0 {
		return nil, types.ResumeError{Reason: "no intermediary data"}
	}

	if len(cp.Intermediary) != k.opts.KeySize {
		return nil, types.ResumeError{
			Reason: fmt.Sprintf("intermediary is %d bytes but keysize is %d",
				len(cp.Intermediary), k.opts.KeySize),
		}
	}

	// Iterations is at least 1 after validation
	if cp.Round >= k.opts.Iterations-1 {
		return bytes.Clone(cp.Intermediary), nil
	}
	return k.DeriveKeyWithCallback(salt, cp.Intermediary, cp.Round+1, fn)
}
