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
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/awnumar/memguard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/notapipeline/scryptkdf/pkg/cache"
	"github.com/notapipeline/scryptkdf/pkg/checkpoint"
	"github.com/notapipeline/scryptkdf/pkg/config"
	"github.com/notapipeline/scryptkdf/pkg/crypto"
	"github.com/notapipeline/scryptkdf/pkg/progress"
	"github.com/notapipeline/scryptkdf/pkg/types"
)

// hideKey prints black on black so the key only shows when highlighted
var hideKey func(a ...interface{}) string = color.New(color.FgBlack, color.BgBlack).SprintFunc()

func derive(cmd *cobra.Command, c *config.Config) (err error) {
	var (
		opts     types.Options = c.Options
		cp       types.Checkpoint
		resuming bool
		out      io.Writer = cmd.OutOrStdout()
		errOut   io.Writer = cmd.ErrOrStderr()
	)

	if resuming, cp, err = resumePoint(cmd, &opts); err != nil {
		return err
	}

	if err = opts.Validate(); err != nil {
		return err
	}

	var kdf *crypto.ScryptKDF
	if kdf, err = crypto.New(opts); err != nil {
		return err
	}

	var salt []byte
	if salt, err = getSalt(); err != nil {
		return fmt.Errorf("unable to read salt: %w", err)
	}
	if len(salt) == 0 {
		log.Println("Warning: no salt provided. The derived key will be the same for everybody using this secret")
	}

	var input []byte = cp.Intermediary
	if !resuming {
		if input, err = getSecret(); err != nil {
			return err
		}
	}

	var secrets *cache.SecretCache
	if secrets, err = cache.Instance(input); err != nil {
		return err
	}
	defer cache.Reset()

	fmt.Fprintf(out, "Deriving with settings: %s\n", opts)
	if resuming {
		fmt.Fprintf(out, "Resuming after round %d of %d\n", cp.Round+1, opts.Iterations)
	}

	var path string = c.Checkpoint
	if path == "" {
		path = deriveFlags.Resume
	}

	var (
		writer   *checkpoint.Writer = checkpoint.NewWriter(path, opts)
		start    uint32
		reporter *progress.Reporter
	)
	if resuming {
		start = cp.Round + 1
	}
	reporter = progress.New(progressOutput(errOut), opts.Iterations, start)

	var done chan struct{} = make(chan struct{})
	defer close(done)
	watchInterrupt(done, errOut, opts, writer, reporter)

	var buf *memguard.LockedBuffer
	if buf, err = secrets.Secret(); err != nil {
		return err
	}
	defer buf.Destroy()

	var round crypto.RoundFunc = func(round uint32, intermediary []byte) {
		writer.Record(round, intermediary)
		reporter.Round(round, intermediary)
		memguard.WipeBytes(intermediary)
	}

	var key []byte
	if resuming {
		key, err = kdf.Resume(salt, types.Checkpoint{Round: cp.Round, Intermediary: buf.Bytes()}, round)
	} else {
		key, err = kdf.DeriveKeyWithCallback(salt, buf.Bytes(), 0, round)
	}
	if err != nil {
		reporter.Abandon()
		if last, ok := writer.Last(); ok {
			printResume(errOut, opts, last, writer.Path())
		}
		return fmt.Errorf("derivation failed: %w", err)
	}
	fmt.Fprintf(errOut, "Finished in %s\n\n", reporter.Finish())

	if err = writer.Remove(); err != nil {
		log.Printf("unable to remove checkpoint %s: %v", writer.Path(), err)
	}

	if err = secrets.SetKey(key); err != nil {
		return err
	}

	var kb *memguard.LockedBuffer
	if kb, err = secrets.Key(); err != nil {
		return err
	}
	defer kb.Destroy()

	fmt.Fprintf(out, "Key is (please highlight to see): %s\n", hideKey(hex.EncodeToString(kb.Bytes())))
	return nil
}

// resumePoint works out where a derivation starts from.
//
// A checkpoint file carries the options it was written with and these
// replace opts. Explicitly setting a different option alongside it is an
// error.
func resumePoint(cmd *cobra.Command, opts *types.Options) (resuming bool, cp types.Checkpoint, err error) {
	if deriveFlags.Resume != "" {
		var saved types.Options
		if saved, cp, err = checkpoint.Load(deriveFlags.Resume); err != nil {
			return false, cp, types.ResumeError{Reason: err.Error()}
		}
		if conflicting(cmd.Flags().Changed, saved, *opts) {
			return false, cp, types.ResumeError{
				Reason: fmt.Sprintf("checkpoint was written with %s but %s was requested", saved, *opts),
			}
		}
		*opts = saved
		return true, cp, nil
	}

	if !deriveFlags.Resuming() {
		return false, cp, nil
	}

	if deriveFlags.Intermediary == "" {
		return false, cp, types.ResumeError{Reason: "--offset requires --intermediary"}
	}
	if deriveFlags.Offset == 0 {
		return false, cp, types.ResumeError{Reason: "--intermediary requires an --offset of at least 1"}
	}

	var data []byte
	if data, err = hex.DecodeString(deriveFlags.Intermediary); err != nil {
		return false, cp, types.ResumeError{Reason: fmt.Sprintf("intermediary is not valid hex: %v", err)}
	}
	if len(data) == 0 {
		return false, cp, types.ResumeError{Reason: "intermediary is empty"}
	}

	cp = types.Checkpoint{
		Round:        deriveFlags.Offset - 1,
		Intermediary: data,
	}
	return true, cp, nil
}

// conflicting is true when an option set on the command line differs from
// the one a checkpoint was written with
func conflicting(changed func(name string) bool, saved, requested types.Options) bool {
	return (changed("logn") && saved.LogN != requested.LogN) ||
		(changed("blocksize") && saved.R != requested.R) ||
		(changed("parallel") && saved.P != requested.P) ||
		(changed("iterations") && saved.Iterations != requested.Iterations) ||
		(changed("keysize") && saved.KeySize != requested.KeySize)
}

// watchInterrupt prints how to resume the derivation and exits when the
// process is interrupted. It stops watching once done is closed.
func watchInterrupt(done <-chan struct{}, w io.Writer, opts types.Options, writer *checkpoint.Writer, reporter *progress.Reporter) {
	var sigs chan os.Signal = make(chan os.Signal, 1)
	notifyInterrupt(sigs)

	go func() {
		select {
		case <-sigs:
			reporter.Abandon()
			if last, ok := writer.Last(); ok {
				printResume(w, opts, last, writer.Path())
			} else {
				fmt.Fprintln(w, "Interrupted before the first round completed")
			}
			exit(130)
		case <-done:
			stopInterrupt(sigs)
		}
	}()
}

func resumeCommand(opts types.Options, cp types.Checkpoint) string {
	return fmt.Sprintf("%s -n %d -r %d -p %d -i %d -k %d --offset %d --intermediary %s",
		appName, opts.LogN, opts.R, opts.P, opts.Iterations, opts.KeySize,
		cp.Round+1, hex.EncodeToString(cp.Intermediary))
}

func printResume(w io.Writer, opts types.Options, cp types.Checkpoint, path string) {
	fmt.Fprintf(w, "Stopped after round %d of %d. To resume, run:\n\n    %s\n\n",
		cp.Round+1, opts.Iterations, resumeCommand(opts, cp))
	if path != "" {
		fmt.Fprintf(w, "or\n\n    %s --resume %s\n\n", appName, path)
	}
	memguard.WipeBytes(cp.Intermediary)
}
