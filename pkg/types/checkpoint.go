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

// Checkpoint is the state needed to continue an interrupted derivation.
//
// Round is the index of the last completed round and Intermediary is the
// output of that round. The salt is not part of the checkpoint; it is fixed for
// the whole chain and must be supplied again on resume.
type Checkpoint struct {
	Round        uint32
	Intermediary []byte
}

// TestVector is a fixed known-answer case for the chained derivation
type TestVector struct {
	Opts     Options
	Salt     []byte
	Secret   []byte
	Expected []byte
}
