/*
Package crypto derives keys by chaining scrypt rounds together.

Each round runs scrypt once over the output of the previous round using the
same salt. The first round consumes the user secret and the output of the last
round is the derived key. Chaining multiplies the cost of guessing the secret
by the number of rounds without raising the peak memory of any single round.

A derivation can be interrupted and picked up later. The callback given to
`DeriveKeyWithCallback` receives the index and output of every completed round;
persisting the last pair is enough to carry on from there:

	package main

	import (
		"encoding/hex"
		"fmt"

		"github.com/notapipeline/scryptkdf/pkg/crypto"
		"github.com/notapipeline/scryptkdf/pkg/types"
	)

	func main() {
		var (
			opts, _ = types.NewOptions(12, 8, 1, 10, 32)
			kdf, _  = crypto.New(*opts)
			salt    = []byte("salt")
			last    types.Checkpoint
		)

		// Interrupted somewhere along the chain...
		_, err := kdf.DeriveKeyWithCallback(salt, []byte("test"), 0, func(round uint32, out []byte) {
			last = types.Checkpoint{Round: round, Intermediary: out}
		})
		if err != nil {
			panic(err)
		}

		// ...and resumed from the last checkpoint seen.
		key, err := kdf.Resume(salt, last, nil)
		if err != nil {
			panic(err)
		}
		fmt.Println(hex.EncodeToString(key))
	}

Intermediate outputs held by the engine are wiped once the next round has
consumed them. Slices handed to the callback are copies and belong to the
caller, who becomes responsible for wiping them.
*/
package crypto
