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

// Body projection: flat views over a block body in body order. These are
// pure derivations with no failure modes; malformed references are caught
// during validation

// ProjectedOutputs returns every output the block creates, keyed by its
// freshly minted outpoint: coinbase outputs under the block hash,
// per-transaction outputs under their txid. Keys are unique by
// construction, so no deduplication happens here
func (b *Body) ProjectedOutputs(header *Header) map[Outpoint]Output {
	blockHash := header.Hash()
	ret := make(map[Outpoint]Output)
	for i, out := range b.Coinbase {
		ret[NewCoinbaseOutpoint(blockHash, uint32(i))] = out //nolint:gosec
	}
	for i := range b.Transactions {
		tx := &b.Transactions[i]
		txId := tx.Hash()
		for j, out := range tx.Outputs {
			ret[NewRegularOutpoint(txId, uint32(j))] = out //nolint:gosec
		}
	}
	return ret
}

// Inputs flattens every transaction's spends in transaction order, then
// per-transaction input order
func (b *Body) Inputs() []Input {
	var ret []Input
	for i := range b.Transactions {
		ret = append(ret, b.Transactions[i].Inputs...)
	}
	return ret
}

// DepositInputs flattens every transaction's deposit claims
func (b *Body) DepositInputs() []DepositInput {
	var ret []DepositInput
	for i := range b.Transactions {
		ret = append(ret, b.Transactions[i].DepositInputs...)
	}
	return ret
}

// RefundInputs flattens every transaction's refund claims
func (b *Body) RefundInputs() []RefundInput {
	var ret []RefundInput
	for i := range b.Transactions {
		ret = append(ret, b.Transactions[i].RefundInputs...)
	}
	return ret
}

// Withdrawals flattens every transaction's exit requests
func (b *Body) Withdrawals() []Withdrawal {
	var ret []Withdrawal
	for i := range b.Transactions {
		ret = append(ret, b.Transactions[i].Withdrawals...)
	}
	return ret
}
