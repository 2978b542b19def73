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

import "fmt"

// OutpointKind discriminates the two outpoint variants
type OutpointKind uint8

const (
	// OutpointCoinbase identifies the n-th reward output of a block
	OutpointCoinbase OutpointKind = iota + 1
	// OutpointRegular identifies the n-th output of a transaction
	OutpointRegular
)

func (k OutpointKind) String() string {
	switch k {
	case OutpointCoinbase:
		return "coinbase"
	case OutpointRegular:
		return "regular"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Outpoint is a globally unique reference to one output of either a
// block's coinbase (Hash is the block hash) or a transaction (Hash is
// the txid). It is comparable and used directly as a map key.
// Uniqueness holds by construction: hashes are collision resistant and
// Index is unique within a body/transaction
type Outpoint struct {
	Hash  Hash32
	Index uint32
	Kind  OutpointKind
}

// NewCoinbaseOutpoint references the n-th coinbase output of the block
// identified by blockHash
func NewCoinbaseOutpoint(blockHash Hash32, index uint32) Outpoint {
	return Outpoint{
		Kind:  OutpointCoinbase,
		Hash:  blockHash,
		Index: index,
	}
}

// NewRegularOutpoint references the n-th output of the transaction
// identified by txId
func NewRegularOutpoint(txId Hash32, index uint32) Outpoint {
	return Outpoint{
		Kind:  OutpointRegular,
		Hash:  txId,
		Index: index,
	}
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%s:%d", o.Kind, o.Hash, o.Index)
}

// Ref is a main-chain-side reference key. Deposits and refundable
// withdrawals are addressed by the outpoint scheme of the main chain,
// not by this ledger's digest identity
type Ref struct {
	TxId  Hash32
	Index uint32
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.TxId, r.Index)
}
