// Copyright 2026 Pontoon Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// HashSize is the width in bytes of all entity identifiers
const HashSize = 32

// Hash32 is a BLAKE2b-256 digest identifying a header or transaction
type Hash32 [HashSize]byte

func (h Hash32) Bytes() []byte {
	return h[:]
}

func (h Hash32) String() string {
	return hex.EncodeToString(h[:])
}

// NewHash32 copies an arbitrary byte slice into a Hash32. Input longer
// than HashSize is truncated, shorter input is zero-padded
func NewHash32(data []byte) Hash32 {
	var ret Hash32
	copy(ret[:], data)
	return ret
}

// cborEncMode uses core deterministic encoding so that equal entities
// always produce equal digest preimages
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func cborEncode(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

func cborDecode(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// hashEntity digests the canonical CBOR encoding of the provided value.
// Encoding a wire struct cannot fail outside of programmer error, so any
// encode error panics rather than being threaded through every Hash() call
func hashEntity(v any) Hash32 {
	data, err := cborEncode(v)
	if err != nil {
		panic(err)
	}
	return blake2b.Sum256(data)
}
