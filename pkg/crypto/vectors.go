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
	"encoding/hex"

	"github.com/notapipeline/scryptkdf/pkg/types"
)

var testVectors []types.TestVector = []types.TestVector{
	{
		Opts:   types.Options{LogN: 14, R: 8, P: 1, Iterations: 1, KeySize: 64},
		Salt:   []byte("salt"),
		Secret: []byte("test"),
		Expected: mustDecodeHex("72f47a5f6bcb1b96a9d77b2c2f1463395d4a3a325fada6290fc0fef7bcddb58e" +
			"b46e36a0d944613790c2e7bc9ea0e8447b9c4b493734c43526a14963e4a56bdc"),
	},
	{
		Opts:     types.Options{LogN: 12, R: 8, P: 1, Iterations: 10, KeySize: 32},
		Salt:     []byte("salt"),
		Secret:   []byte("test"),
		Expected: mustDecodeHex("e419dac917d02f544469a5164c797ed0066cea15568958f6acc58411df5ac17e"),
	},
	{
		Opts:   types.Options{LogN: 14, R: 8, P: 1, Iterations: 1, KeySize: 64},
		Salt:   []byte(""),
		Secret: []byte(""),
		Expected: mustDecodeHex("d72c87d0f077c7766f2985dfab30e8955c373a13a1e93d315203939f542ff86e" +
			"73ee37c31f4c4b571f4719fa8e3589f12db8dcb57ea9f56764bb7d58f64cf705"),
	},
	{
		Opts:   types.Options{LogN: 14, R: 8, P: 1, Iterations: 3, KeySize: 64},
		Salt:   []byte(""),
		Secret: []byte("Hello World"),
		Expected: mustDecodeHex("1487e1ac9c7a63e785b1f3e9560ea749913d50c9797dc6ca8d0db953fe03df1c" +
			"66af878bd6dcce79884e8b7e3e29f39cb709cd63b7e7f4099d82ab199664eab3"),
	},
	{
		Opts:     types.Options{LogN: 10, R: 8, P: 1, Iterations: 1, KeySize: 10},
		Salt:     []byte("salt"),
		Secret:   []byte("test"),
		Expected: mustDecodeHex("f261b27f986daca8fc6d"),
	},
}

// VectorResult is the outcome of deriving a single test vector
type VectorResult struct {
	Vector   types.TestVector
	Computed []byte
	Err      error
}

// Match is true when the vector derived to its expected key
func (r VectorResult) Match() bool {
	return r.Err == nil && bytes.Equal(r.Computed, r.Vector.Expected)
}

// TestVectors returns a deep copy of the built in known-answer vectors
func TestVectors() []types.TestVector {
	var vectors []types.TestVector = make([]types.TestVector, 0, len(testVectors))
	for _, v := range testVectors {
		vectors = append(vectors, types.TestVector{
			Opts:     v.Opts,
			Salt:     bytes.Clone(v.Salt),
			Secret:   bytes.Clone(v.Secret),
			Expected: bytes.Clone(v.Expected),
		})
	}
	return vectors
}

// RunVectors derives every test vector from round zero.
//
// Each vector gets its own result; a failing vector does not stop the rest
// from being checked.
func RunVectors() []VectorResult {
	return runVectors(TestVectors())
}

func runVectors(vectors []types.TestVector) []VectorResult {
	var results []VectorResult = make([]VectorResult, 0, len(vectors))
	for _, vector := range vectors {
		var result VectorResult = VectorResult{Vector: vector}
		kdf, err := New(vector.Opts)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Computed, result.Err = kdf.DeriveKey(vector.Salt, vector.Secret)
		results = append(results, result)
	}
	return results
}

// DeriveTestVectors returns only the derived keys for each test vector, in
// order. The error of the first vector that failed to derive is returned in
// place of the keys.
func DeriveTestVectors() ([][]byte, error) {
	var keys [][]byte = make([][]byte, 0, len(testVectors))
	for _, result := range RunVectors() {
		if result.Err != nil {
			return nil, result.Err
		}
		keys = append(keys, result.Computed)
	}
	return keys, nil
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
