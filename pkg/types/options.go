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
package types

import "fmt"

// Options describes the cost and shape of a single scrypt round and the
// number of rounds chained together.
//
// LogN, R and P are handed to scrypt untouched. Their validity is decided by
// scrypt itself when the first round runs.
type Options struct {
	LogN       uint8  `yaml:"logn" json:"log_n" env:"LOG_N"`
	R          uint32 `yaml:"r" json:"r" env:"R"`
	P          uint32 `yaml:"p" json:"p" env:"P"`
	Iterations uint32 `yaml:"iterations" json:"iterations" env:"ITERATIONS"`
	KeySize    int    `yaml:"keysize" json:"keysize" env:"KEYSIZE"`
}

// DefaultOptions returns the options used when nothing else is configured
func DefaultOptions() Options {
	return Options{
		LogN:       DEFAULT_LOG_N,
		R:          DEFAULT_R,
		P:          DEFAULT_P,
		Iterations: DEFAULT_ITERATIONS,
		KeySize:    DEFAULT_KEYSIZE,
	}
}

// NewOptions creates a validated set of options.
//
// An out of range key size or a zero iteration count is a configuration error
// and no options are returned.
func NewOptions(logN uint8, r, p, iterations uint32, keySize int) (*Options, error) {
	var o Options = Options{
		LogN:       logN,
		R:          r,
		P:          p,
		Iterations: iterations,
		KeySize:    keySize,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Validate checks the options owned by the chaining engine.
func (o Options) Validate() error {
	if o.KeySize < MIN_KEYSIZE || o.KeySize > MAX_KEYSIZE {
		return KeySizeError{
			Value: o.KeySize,
			Min:   MIN_KEYSIZE,
			Max:   MAX_KEYSIZE,
		}
	}
	if o.Iterations == 0 {
		return IterationsError{Value: o.Iterations}
	}
	return nil
}

// N is the scrypt CPU/memory cost derived from LogN
func (o Options) N() int {
	return 1 << o.LogN
}

func (o Options) String() string {
	return fmt.Sprintf("log_n=%d, r=%d, p=%d, iterations=%d, keysize=%d",
		o.LogN, o.R, o.P, o.Iterations, o.KeySize)
}
