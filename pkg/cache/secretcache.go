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
package cache

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/notapipeline/scryptkdf/pkg/types"
)

// SecretCache holds the material of a single derivation sealed in encrypted
// memory while it is not being worked on.
//
// Initialization of this object is done in a singleton fashion to ensure the
// secret is not duplicated in memory. The slice the secret is read from is
// wiped once it has been sealed.
type SecretCache struct {
	secret *memguard.Enclave
	key    *memguard.Enclave
}

var (
	secretCache *SecretCache
	lock        = &sync.Mutex{}
)

// Instance gets the current instance or creates a new secret cache object.
//
// When instantiating this object, secret is moved into an enclave and the
// source slice is wiped. Later calls return the existing instance and leave
// their argument untouched.
var Instance = instance

func instance(secret []byte) (*SecretCache, error) {
	lock.Lock()
	defer lock.Unlock()
	if secretCache != nil {
		return secretCache, nil
	}

	if len(secret) == 0 {
		return nil, types.ErrNoSecret
	}

	var buf *memguard.LockedBuffer = memguard.NewBufferFromBytes(secret)
	secretCache = &SecretCache{
		secret: buf.Seal(),
	}
	return secretCache, nil
}

// Reset the secret cache
func Reset() {
	lock.Lock()
	defer lock.Unlock()
	secretCache = nil
}

// Secret opens the sealed secret into a locked buffer.
//
// Callers must Destroy the buffer as soon as they are done with it.
func (c *SecretCache) Secret() (*memguard.LockedBuffer, error) {
	var (
		buf *memguard.LockedBuffer
		err error
	)
	if buf, err = c.secret.Open(); err != nil {
		return nil, fmt.Errorf("failed to open secret: %w", err)
	}
	return buf, nil
}

// SetKey seals a derived key, wiping the given slice
func (c *SecretCache) SetKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("refusing to store an empty key")
	}
	var buf *memguard.LockedBuffer = memguard.NewBufferFromBytes(key)
	c.key = buf.Seal()
	return nil
}

// Key opens the sealed derived key into a locked buffer
func (c *SecretCache) Key() (*memguard.LockedBuffer, error) {
	if c.key == nil {
		return nil, fmt.Errorf("no key has been derived")
	}

	var (
		buf *memguard.LockedBuffer
		err error
	)
	if buf, err = c.key.Open(); err != nil {
		return nil, fmt.Errorf("failed to open key: %w", err)
	}
	return buf, nil
}
