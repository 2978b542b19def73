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

// Output is a spendable ledger entry. Created only as part of a block
// body and never mutated afterwards
type Output struct {
	Address Address
	Amount  uint64
}

// Deposit is value recognized as entering the ledger from the main
// chain, claimable once via a DepositInput. Owned by the main-chain
// oracle; read-only from this ledger's perspective
type Deposit struct {
	Address Address
	Amount  uint64
}

// Withdrawal is a ledger-originated request to move value back to the
// main chain. If it fails there, its value becomes reclaimable through
// a RefundInput
type Withdrawal struct {
	Address Address
	Amount  uint64
}

// Input spends an existing UTXO
type Input struct {
	Outpoint  Outpoint
	Signature Signature
}

// DepositInput claims a main-chain deposit by its main-chain reference
type DepositInput struct {
	Ref       Ref
	Signature Signature
}

// RefundInput reclaims the value of a failed withdrawal by its
// main-chain reference
type RefundInput struct {
	Ref       Ref
	Signature Signature
}

// Transaction groups claims on external value (deposit and refund
// inputs), spends of existing UTXOs, and the new value it creates
// (withdrawals and outputs). Its identity is the digest of its contents
type Transaction struct {
	DepositInputs []DepositInput
	RefundInputs  []RefundInput
	Inputs        []Input

	Withdrawals []Withdrawal
	Outputs     []Output
}

// Header carries the parent linkage and body commitment for a block.
// Consensus semantics (proof of work, timestamps, fork choice) are
// external to this core
type Header struct {
	ParentHash Hash32
	BodyHash   Hash32
	Height     uint64
}

// Body is the payload of a block: an ordered coinbase output sequence
// plus an ordered transaction sequence
type Body struct {
	Coinbase     []Output
	Transactions []Transaction
}

// Wire forms. Addresses are carried as their canonical tagged bytes so
// the deterministic CBOR encoding stays independent of the concrete
// authorization scheme in use

type outputWire struct {
	_       struct{} `cbor:",toarray"`
	Amount  uint64
	Address []byte
}

type refWire struct {
	_     struct{} `cbor:",toarray"`
	TxId  []byte
	Index uint32
}

type outpointWire struct {
	_     struct{} `cbor:",toarray"`
	Kind  uint8
	Hash  []byte
	Index uint32
}

type inputWire struct {
	_         struct{} `cbor:",toarray"`
	Outpoint  outpointWire
	Signature []byte
}

type claimWire struct {
	_         struct{} `cbor:",toarray"`
	Ref       refWire
	Signature []byte
}

type transactionWire struct {
	_             struct{} `cbor:",toarray"`
	DepositInputs []claimWire
	RefundInputs  []claimWire
	Inputs        []inputWire
	Withdrawals   []outputWire
	Outputs       []outputWire
}

type bodyWire struct {
	_            struct{} `cbor:",toarray"`
	Coinbase     []outputWire
	Transactions []transactionWire
}

type headerWire struct {
	_          struct{} `cbor:",toarray"`
	ParentHash []byte
	BodyHash   []byte
	Height     uint64
}

func outputToWire(amount uint64, addr Address) outputWire {
	return outputWire{
		Amount:  amount,
		Address: addr.Bytes(),
	}
}

func outputFromWire(w outputWire) (uint64, Address, error) {
	addr, err := DecodeAddress(w.Address)
	if err != nil {
		return 0, nil, err
	}
	return w.Amount, addr, nil
}

func refToWire(r Ref) refWire {
	return refWire{
		TxId:  r.TxId.Bytes(),
		Index: r.Index,
	}
}

func refFromWire(w refWire) Ref {
	return Ref{
		TxId:  NewHash32(w.TxId),
		Index: w.Index,
	}
}

func (o Outpoint) toWire() outpointWire {
	return outpointWire{
		Kind:  uint8(o.Kind),
		Hash:  o.Hash.Bytes(),
		Index: o.Index,
	}
}

func outpointFromWire(w outpointWire) (Outpoint, error) {
	kind := OutpointKind(w.Kind)
	switch kind {
	case OutpointCoinbase, OutpointRegular:
	default:
		return Outpoint{}, fmt.Errorf("invalid outpoint kind: %d", w.Kind)
	}
	return Outpoint{
		Kind:  kind,
		Hash:  NewHash32(w.Hash),
		Index: w.Index,
	}, nil
}

func (t *Transaction) toWire() transactionWire {
	ret := transactionWire{
		DepositInputs: make([]claimWire, 0, len(t.DepositInputs)),
		RefundInputs:  make([]claimWire, 0, len(t.RefundInputs)),
		Inputs:        make([]inputWire, 0, len(t.Inputs)),
		Withdrawals:   make([]outputWire, 0, len(t.Withdrawals)),
		Outputs:       make([]outputWire, 0, len(t.Outputs)),
	}
	for _, di := range t.DepositInputs {
		ret.DepositInputs = append(ret.DepositInputs, claimWire{
			Ref:       refToWire(di.Ref),
			Signature: di.Signature,
		})
	}
	for _, ri := range t.RefundInputs {
		ret.RefundInputs = append(ret.RefundInputs, claimWire{
			Ref:       refToWire(ri.Ref),
			Signature: ri.Signature,
		})
	}
	for _, in := range t.Inputs {
		ret.Inputs = append(ret.Inputs, inputWire{
			Outpoint:  in.Outpoint.toWire(),
			Signature: in.Signature,
		})
	}
	for _, wd := range t.Withdrawals {
		ret.Withdrawals = append(
			ret.Withdrawals,
			outputToWire(wd.Amount, wd.Address),
		)
	}
	for _, out := range t.Outputs {
		ret.Outputs = append(
			ret.Outputs,
			outputToWire(out.Amount, out.Address),
		)
	}
	return ret
}

func transactionFromWire(w transactionWire) (Transaction, error) {
	ret := Transaction{}
	for _, di := range w.DepositInputs {
		ret.DepositInputs = append(ret.DepositInputs, DepositInput{
			Ref:       refFromWire(di.Ref),
			Signature: di.Signature,
		})
	}
	for _, ri := range w.RefundInputs {
		ret.RefundInputs = append(ret.RefundInputs, RefundInput{
			Ref:       refFromWire(ri.Ref),
			Signature: ri.Signature,
		})
	}
	for _, in := range w.Inputs {
		outpoint, err := outpointFromWire(in.Outpoint)
		if err != nil {
			return ret, err
		}
		ret.Inputs = append(ret.Inputs, Input{
			Outpoint:  outpoint,
			Signature: in.Signature,
		})
	}
	for _, wd := range w.Withdrawals {
		amount, addr, err := outputFromWire(wd)
		if err != nil {
			return ret, err
		}
		ret.Withdrawals = append(ret.Withdrawals, Withdrawal{
			Amount:  amount,
			Address: addr,
		})
	}
	for _, out := range w.Outputs {
		amount, addr, err := outputFromWire(out)
		if err != nil {
			return ret, err
		}
		ret.Outputs = append(ret.Outputs, Output{
			Amount:  amount,
			Address: addr,
		})
	}
	return ret, nil
}

func (b *Body) toWire() bodyWire {
	ret := bodyWire{
		Coinbase:     make([]outputWire, 0, len(b.Coinbase)),
		Transactions: make([]transactionWire, 0, len(b.Transactions)),
	}
	for _, out := range b.Coinbase {
		ret.Coinbase = append(
			ret.Coinbase,
			outputToWire(out.Amount, out.Address),
		)
	}
	for i := range b.Transactions {
		ret.Transactions = append(
			ret.Transactions,
			b.Transactions[i].toWire(),
		)
	}
	return ret
}

// Hash returns the transaction's digest identity
func (t *Transaction) Hash() Hash32 {
	return hashEntity(t.toWire())
}

// Encode serializes the transaction with the canonical CBOR encoding
func (t *Transaction) Encode() ([]byte, error) {
	return cborEncode(t.toWire())
}

// DecodeTransaction deserializes a transaction previously produced by
// Encode
func DecodeTransaction(data []byte) (*Transaction, error) {
	var w transactionWire
	if err := cborDecode(data, &w); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	tx, err := transactionFromWire(w)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &tx, nil
}

// Hash returns the block hash
func (h *Header) Hash() Hash32 {
	return hashEntity(headerWire{
		ParentHash: h.ParentHash.Bytes(),
		BodyHash:   h.BodyHash.Bytes(),
		Height:     h.Height,
	})
}

// Hash returns the body's payload digest, committed to by the header
func (b *Body) Hash() Hash32 {
	return hashEntity(b.toWire())
}

// Encode serializes the body with the canonical CBOR encoding
func (b *Body) Encode() ([]byte, error) {
	return cborEncode(b.toWire())
}

// DecodeBody deserializes a body previously produced by Encode
func DecodeBody(data []byte) (*Body, error) {
	var w bodyWire
	if err := cborDecode(data, &w); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	ret := &Body{}
	for _, out := range w.Coinbase {
		amount, addr, err := outputFromWire(out)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		ret.Coinbase = append(ret.Coinbase, Output{
			Amount:  amount,
			Address: addr,
		})
	}
	for _, tw := range w.Transactions {
		tx, err := transactionFromWire(tw)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		ret.Transactions = append(ret.Transactions, tx)
	}
	return ret, nil
}
