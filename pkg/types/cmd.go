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

// DeriveCmd holds the values given on the command line for a derivation
type DeriveCmd struct {
	Options

	Offset       uint32
	Intermediary string
	Resume       string
	Checkpoint   string
	Test         bool
	Debug        bool
	Quiet        bool
}

// Resuming is true when the command asks to continue an earlier chain
func (d *DeriveCmd) Resuming() bool {
	return d.Resume != "" || d.Offset > 0 || d.Intermediary != ""
}

// VectorsCmd holds the values given to the vectors command
type VectorsCmd struct {
	Output string
}
