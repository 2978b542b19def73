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

import "maps"

// LedgerState is the authoritative UTXO state: the set of unspent
// outpoints plus an index of every output ever created, spent or not.
// Spent records are retained so Disconnect can restore state without
// external history.
//
// LedgerState is a plain value with no internal locking. Validation is
// read-only and may run concurrently against snapshots (see Clone);
// Connect/Disconnect mutate and must be serialized by the caller
type LedgerState struct {
	utxos   map[Outpoint]struct{}
	outputs map[Outpoint]Output
}

func NewLedgerState() *LedgerState {
	return &LedgerState{
		utxos:   make(map[Outpoint]struct{}),
		outputs: make(map[Outpoint]Output),
	}
}

// Clone returns an independent snapshot, e.g. for validating a
// candidate fork without touching the canonical state
func (s *LedgerState) Clone() *LedgerState {
	return &LedgerState{
		utxos:   maps.Clone(s.utxos),
		outputs: maps.Clone(s.outputs),
	}
}

// HasUtxo reports whether the outpoint is currently unspent
func (s *LedgerState) HasUtxo(outpoint Outpoint) bool {
	_, ok := s.utxos[outpoint]
	return ok
}

// OutputByOutpoint looks up an output record, whether spent or not
func (s *LedgerState) OutputByOutpoint(outpoint Outpoint) (Output, bool) {
	out, ok := s.outputs[outpoint]
	return out, ok
}

// UtxoCount returns the number of currently unspent outputs
func (s *LedgerState) UtxoCount() int {
	return len(s.utxos)
}

// Restore seeds the state from persisted records during startup
// recovery. Spent outputs populate the index only. Not intended for use
// outside of recovery
func (s *LedgerState) Restore(outpoint Outpoint, output Output, spent bool) {
	s.outputs[outpoint] = output
	if !spent {
		s.utxos[outpoint] = struct{}{}
	}
}

// Connect applies a block's effect: spent-input outpoints leave the
// unspent set, the block's new outputs join both the unspent set and
// the output index. The block must have passed ValidateBlock against
// this exact state; Connect does not re-validate, and connecting the
// same block twice leaves the state undefined
func (s *LedgerState) Connect(header *Header, body *Body) error {
	for _, input := range body.Inputs() {
		delete(s.utxos, input.Outpoint)
	}
	for outpoint, output := range body.ProjectedOutputs(header) {
		s.utxos[outpoint] = struct{}{}
		s.outputs[outpoint] = output
	}
	return nil
}

// Disconnect exactly undoes a previous Connect of the same block:
// spent-input outpoints rejoin the unspent set, the block's outpoints
// leave it and their records leave the index. Blocks must be
// disconnected in reverse connection order (LIFO)
func (s *LedgerState) Disconnect(header *Header, body *Body) error {
	for _, input := range body.Inputs() {
		s.utxos[input.Outpoint] = struct{}{}
	}
	for outpoint := range body.ProjectedOutputs(header) {
		delete(s.utxos, outpoint)
		delete(s.outputs, outpoint)
	}
	return nil
}
