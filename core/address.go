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
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Signature is an opaque unlocking witness. Its interpretation is up to
// the Address scheme it is checked against
type Signature []byte

// Address is an opaque authorization target. An output, deposit, or
// withdrawal is spendable/claimable by whoever can produce a Signature
// its Address accepts
type Address interface {
	// CheckSignature reports whether the signature satisfies the
	// address's unlocking condition. Pure predicate
	CheckSignature(sig Signature) bool
	// Bytes returns the canonical tagged encoding used for entity
	// digests and serialization
	Bytes() []byte
}

// Address scheme tags (first byte of the canonical encoding)
const (
	addressTagHashLock byte = 0x00
	addressTagEd25519  byte = 0x01
)

var ErrUnknownAddressScheme = errors.New("unknown address scheme")

// HashLockAddress is unlocked by any preimage whose BLAKE2b-256 digest
// matches the committed hash
type HashLockAddress struct {
	Hash Hash32
}

// NewHashLockAddress commits to the digest of the given preimage
func NewHashLockAddress(preimage []byte) HashLockAddress {
	return HashLockAddress{Hash: blake2b.Sum256(preimage)}
}

func (a HashLockAddress) CheckSignature(sig Signature) bool {
	digest := blake2b.Sum256(sig)
	return bytes.Equal(digest[:], a.Hash[:])
}

func (a HashLockAddress) Bytes() []byte {
	ret := make([]byte, 0, 1+HashSize)
	ret = append(ret, addressTagHashLock)
	ret = append(ret, a.Hash[:]...)
	return ret
}

// Ed25519Address is unlocked by an Ed25519 signature over the address's
// own canonical bytes, verifying against the committed public key
type Ed25519Address struct {
	PubKey ed25519.PublicKey
}

func (a Ed25519Address) CheckSignature(sig Signature) bool {
	if len(a.PubKey) != ed25519.PublicKeySize {
		return false
	}
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(a.PubKey, a.Bytes(), sig)
}

func (a Ed25519Address) Bytes() []byte {
	ret := make([]byte, 0, 1+ed25519.PublicKeySize)
	ret = append(ret, addressTagEd25519)
	ret = append(ret, a.PubKey...)
	return ret
}

// SignEd25519 produces the Signature accepted by the Ed25519Address
// derived from the given private key
func SignEd25519(priv ed25519.PrivateKey) Signature {
	addr := Ed25519Address{
		PubKey: priv.Public().(ed25519.PublicKey),
	}
	return ed25519.Sign(priv, addr.Bytes())
}

// DecodeAddress reverses Address.Bytes()
func DecodeAddress(data []byte) (Address, error) {
	if len(data) == 0 {
		return nil, errors.New("empty address")
	}
	switch data[0] {
	case addressTagHashLock:
		if len(data) != 1+HashSize {
			return nil, fmt.Errorf(
				"hash-lock address: expected %d bytes, got %d",
				1+HashSize,
				len(data),
			)
		}
		return HashLockAddress{Hash: NewHash32(data[1:])}, nil
	case addressTagEd25519:
		if len(data) != 1+ed25519.PublicKeySize {
			return nil, fmt.Errorf(
				"ed25519 address: expected %d bytes, got %d",
				1+ed25519.PublicKeySize,
				len(data),
			)
		}
		pubKey := make(ed25519.PublicKey, ed25519.PublicKeySize)
		copy(pubKey, data[1:])
		return Ed25519Address{PubKey: pubKey}, nil
	default:
		return nil, fmt.Errorf(
			"%w: tag 0x%02x",
			ErrUnknownAddressScheme,
			data[0],
		)
	}
}
