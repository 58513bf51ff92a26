/*
 *   Copyright 2022 Martin Proffitt <mproffitt@choclab.net>
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
package tools

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/peterh/liner"
	"github.com/twpayne/go-pinentry"

	"github.com/notapipeline/scryptkdf/pkg/types"
)

var ErrAborted = errors.New("aborted")

// ReadPassword reads a password from the user via STDIN without echo
func ReadPassword(prompt string) ([]byte, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()
	var (
		password string
		err      error
	)
	if password, err = line.PasswordPrompt(prompt); err != nil {
		if err == liner.ErrPromptAborted {
			return nil, ErrAborted
		}
		return nil, err
	}
	return []byte(password), nil
}

// ReadLine reads a line of text from the user via STDIN
func ReadLine(prompt string) ([]byte, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()
	var (
		text string
		err  error
	)
	if text, err = line.Prompt(prompt); err != nil {
		if err == liner.ErrPromptAborted {
			return nil, ErrAborted
		}
		return nil, err
	}
	return []byte(text), nil
}

// ConfirmSecret asks for the secret twice and only returns it when both
// entries are byte for byte identical.
func ConfirmSecret() ([]byte, error) {
	var (
		first, second []byte
		err           error
	)

	if first, err = GetPassword("Secret", "Please enter your secret.", "Enter your secret: "); err != nil {
		return nil, err
	}

	if second, err = GetPassword("Secret", "Please enter your secret again.", "Enter your secret again: "); err != nil {
		memguard.WipeBytes(first)
		return nil, err
	}
	defer memguard.WipeBytes(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		memguard.WipeBytes(first)
		return nil, types.SecretMismatchError{}
	}
	return first, nil
}

// GetPassword gets a password from the user
//
// This is a mockable entry point for testing and wraps the password function.
var GetPassword func(title, description, prompt string) ([]byte, error) = password

// password asks the user for a password using pinentry if available and
// falls back to stdin if not.
//
// The password is returned exactly as entered; surrounding whitespace is part
// of the secret.
func password(title, description, prompt string) ([]byte, error) {
	return func() ([]byte, error) {
		var (
			err         error
			client      *pinentry.Client
			password    string
			usePinentry bool = true
		)

		if client, err = GetPinentry(
			pinentry.WithBinaryNameFromGnuPGAgentConf(),
			pinentry.WithDesc(description),
			pinentry.WithGPGTTY(),
			pinentry.WithPrompt(prompt),
			pinentry.WithTitle(title),
		); err != nil {
			var b []byte
			if b, err = readPassword(prompt); err != nil {
				return nil, err
			}
			password = string(b)
			usePinentry = false
		}

		if usePinentry {
			defer client.Close()
			password, _, err = client.GetPIN()
			if pinentry.IsCancelled(err) {
				return nil, fmt.Errorf("Cancelled")
			}
			if err != nil {
				return nil, err
			}
		}
		if password == "" {
			return nil, types.ErrNoSecret
		}
		return []byte(password), nil
	}()
}

// GetPinentry gets a pinentry client
//
// This is a mockable entry point for testing and wraps the pinentry client.
var GetPinentry func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) = func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) {
	return pinentry.NewClient(options...)
}

var readPassword func(prompt string) ([]byte, error) = func(prompt string) ([]byte, error) {
	return ReadPassword(prompt)
}
