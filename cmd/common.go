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
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"golang.org/x/term"

	"github.com/notapipeline/scryptkdf/pkg/tools"
)

// These functions are referenced as variables to enable them to
// be mocked in tests
var (
	// fatal bypasses the logger so --quiet never hides why the command failed
	fatal func(format string, v ...interface{}) = func(format string, v ...interface{}) {
		fmt.Fprintf(fatalOutput, format+"\n", v...)
		exit(1)
	}

	exit func(code int) = memguard.SafeExit

	fatalOutput io.Writer = os.Stderr

	getSalt func() ([]byte, error) = func() ([]byte, error) {
		return tools.ReadLine("Enter your salt: ")
	}

	getSecret func() ([]byte, error) = func() ([]byte, error) {
		return tools.ConfirmSecret()
	}

	isTerminal func(fd uintptr) bool = func(fd uintptr) bool {
		return term.IsTerminal(int(fd))
	}

	notifyInterrupt func(c chan<- os.Signal) = func(c chan<- os.Signal) {
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	}

	stopInterrupt func(c chan<- os.Signal) = signal.Stop

	logOutput io.Writer = os.Stderr
)

func configureLogging(debug, quiet bool) {
	log.SetOutput(logOutput)
	log.SetFlags(log.LstdFlags)
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if quiet {
		log.SetOutput(io.Discard)
	}
}

// progressOutput renders progress to stderr only when somebody is watching
func progressOutput(w io.Writer) io.Writer {
	if !isTerminal(os.Stderr.Fd()) {
		return io.Discard
	}
	return w
}
