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
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/awnumar/memguard"
	"gopkg.in/yaml.v2"

	"github.com/notapipeline/scryptkdf/pkg/types"
)

// File is the on-disk form of a checkpoint
type File struct {
	Options      types.Options `yaml:"options"`
	Round        uint32        `yaml:"round"`
	Intermediary string        `yaml:"intermediary"`
}

// Save atomically writes cp to path, readable by the owner only
func Save(path string, opts types.Options, cp types.Checkpoint) (err error) {
	var (
		data []byte
		tmp  *os.File
		f    File = File{
			Options:      opts,
			Round:        cp.Round,
			Intermediary: hex.EncodeToString(cp.Intermediary),
		}
	)

	if data, err = yaml.Marshal(&f); err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	if tmp, err = os.CreateTemp(filepath.Dir(path), ".checkpoint-*"); err != nil {
		return fmt.Errorf("unable to create checkpoint file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write checkpoint file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a checkpoint written by Save.
//
// The options stored with the checkpoint are validated and must be used to
// resume; a chain cannot be continued with different options.
func Load(path string) (opts types.Options, cp types.Checkpoint, err error) {
	var (
		data []byte
		f    File
	)

	if data, err = os.ReadFile(path); err != nil {
		return
	}

	if err = yaml.Unmarshal(data, &f); err != nil {
		err = fmt.Errorf("invalid checkpoint file %s: %w", path, err)
		return
	}

	if err = f.Options.Validate(); err != nil {
		err = fmt.Errorf("invalid checkpoint file %s: %w", path, err)
		return
	}

	if f.Round >= f.Options.Iterations {
		err = types.ResumeError{
			Reason: fmt.Sprintf("round %d is beyond the %d iterations of the chain", f.Round, f.Options.Iterations),
		}
		return
	}

	var intermediary []byte
	if intermediary, err = hex.DecodeString(f.Intermediary); err != nil {
		err = types.ResumeError{Reason: fmt.Sprintf("intermediary is not valid hex: %v", err)}
		return
	}

	if len(intermediary) == 0 {
		err = types.ResumeError{Reason: "no intermediary data"}
		return
	}

	opts = f.Options
	cp = types.Checkpoint{
		Round:        f.Round,
		Intermediary: intermediary,
	}
	return
}

// Writer keeps the most recent checkpoint of a running derivation and,
// when given a path, persists every checkpoint it sees.
//
// Record is meant to be passed as the round callback. Last may be called from
// another goroutine, such as a signal handler.
type Writer struct {
	path string
	opts types.Options

	mu   sync.Mutex
	last *types.Checkpoint
	err  error
}

// NewWriter creates a checkpoint writer. An empty path keeps checkpoints in
// memory only.
func NewWriter(path string, opts types.Options) *Writer {
	return &Writer{
		path: path,
		opts: opts,
	}
}

// Record stores the checkpoint for a completed round.
//
// The output of the final round is the derived key and is never recorded.
// A failure to persist is logged and kept for Err but never stops the
// derivation.
func (w *Writer) Record(round uint32, intermediary []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if round >= w.opts.Iterations-1 {
		return
	}

	if w.last != nil {
		memguard.WipeBytes(w.last.Intermediary)
	}
	w.last = &types.Checkpoint{
		Round:        round,
		Intermediary: bytes.Clone(intermediary),
	}

	if w.path == "" {
		return
	}
	if err := Save(w.path, w.opts, *w.last); err != nil {
		log.Printf("unable to save checkpoint for round %d: %v", round, err)
		if w.err == nil {
			w.err = err
		}
	}
}

// Last returns a copy of the most recent checkpoint
func (w *Writer) Last() (types.Checkpoint, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return types.Checkpoint{}, false
	}
	return types.Checkpoint{
		Round:        w.last.Round,
		Intermediary: bytes.Clone(w.last.Intermediary),
	}, true
}

// Err returns the first error met while persisting checkpoints
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Path is where checkpoints are persisted, if anywhere
func (w *Writer) Path() string {
	return w.path
}

// Remove discards the checkpoint, both in memory and on disk.
//
// The checkpoint of the final round is the derived key itself so this must
// be called once a derivation completes.
func (w *Writer) Remove() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.last != nil {
		memguard.WipeBytes(w.last.Intermediary)
		w.last = nil
	}

	if w.path == "" {
		return nil
	}
	if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
