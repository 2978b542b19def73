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

package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/core"
)

func TestConnectSpendsAndCreates(t *testing.T) {
	state := core.NewLedgerState()
	oracle := core.NewMainChainState()
	outpoint := seedUtxo(t, state, oracle, 100)
	body := &core.Body{
		Transactions: []core.Transaction{
			{
				Inputs: []core.Input{
					{Outpoint: outpoint, Signature: testSig},
				},
				Outputs: []core.Output{
					{Amount: 60, Address: testAddr},
					{Amount: 40, Address: testAddr},
				},
			},
		},
	}
	header := testHeader(body, 2)
	require.True(t, state.ValidateBlock(oracle, header, body))
	require.NoError(t, state.Connect(header, body))

	require.False(t, state.HasUtxo(outpoint))
	// Spent output record is retained in the index
	_, ok := state.OutputByOutpoint(outpoint)
	require.True(t, ok)

	txId := body.Transactions[0].Hash()
	for i, expected := range []uint64{60, 40} {
		newOutpoint := core.NewRegularOutpoint(txId, uint32(i)) //nolint:gosec
		require.True(t, state.HasUtxo(newOutpoint))
		output, ok := state.OutputByOutpoint(newOutpoint)
		require.True(t, ok)
		require.Equal(t, expected, output.Amount)
	}
	require.Equal(t, 2, state.UtxoCount())
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	// disconnect(connect(S, B)) == S, unspent set and output index both
	state := core.NewLedgerState()
	oracle := core.NewMainChainState()
	outpoint := seedUtxo(t, state, oracle, 100)
	ref := core.Ref{TxId: core.NewHash32([]byte("main-tx")), Index: 3}
	oracle.SetDeposit(ref, core.Deposit{Amount: 40, Address: testAddr})

	before := state.Clone()
	body := &core.Body{
		Coinbase: []core.Output{
			{Amount: 5, Address: testAddr},
		},
		Transactions: []core.Transaction{
			{
				Inputs: []core.Input{
					{Outpoint: outpoint, Signature: testSig},
				},
				DepositInputs: []core.DepositInput{
					{Ref: ref, Signature: testSig},
				},
				Withdrawals: []core.Withdrawal{
					{Amount: 25, Address: testAddr},
				},
				Outputs: []core.Output{
					{Amount: 120, Address: testAddr},
				},
			},
		},
	}
	header := testHeader(body, 2)
	require.True(t, state.ValidateBlock(oracle, header, body))
	require.NoError(t, state.Connect(header, body))
	require.NotEqual(t, before, state)
	require.NoError(t, state.Disconnect(header, body))
	require.Equal(t, before, state)
}

func TestDisconnectLifo(t *testing.T) {
	state := core.NewLedgerState()
	oracle := core.NewMainChainState()
	outpoint := seedUtxo(t, state, oracle, 100)
	afterSeed := state.Clone()

	spend := &core.Body{
		Transactions: []core.Transaction{
			{
				Inputs: []core.Input{
					{Outpoint: outpoint, Signature: testSig},
				},
				Outputs: []core.Output{
					{Amount: 100, Address: testAddr},
				},
			},
		},
	}
	spendHeader := testHeader(spend, 2)
	require.True(t, state.ValidateBlock(oracle, spendHeader, spend))
	require.NoError(t, state.Connect(spendHeader, spend))
	afterSpend := state.Clone()

	childOutpoint := core.NewRegularOutpoint(spend.Transactions[0].Hash(), 0)
	respend := &core.Body{
		Transactions: []core.Transaction{
			{
				Inputs: []core.Input{
					{Outpoint: childOutpoint, Signature: testSig},
				},
				Outputs: []core.Output{
					{Amount: 100, Address: testAddr},
				},
			},
		},
	}
	respendHeader := testHeader(respend, 3)
	require.True(t, state.ValidateBlock(oracle, respendHeader, respend))
	require.NoError(t, state.Connect(respendHeader, respend))

	// Undo in reverse application order
	require.NoError(t, state.Disconnect(respendHeader, respend))
	require.Equal(t, afterSpend, state)
	require.NoError(t, state.Disconnect(spendHeader, spend))
	require.Equal(t, afterSeed, state)
}

func TestCloneIsIndependent(t *testing.T) {
	state := core.NewLedgerState()
	oracle := core.NewMainChainState()
	outpoint := seedUtxo(t, state, oracle, 100)
	snapshot := state.Clone()
	body := &core.Body{
		Transactions: []core.Transaction{
			{
				Inputs: []core.Input{
					{Outpoint: outpoint, Signature: testSig},
				},
				Outputs: []core.Output{
					{Amount: 100, Address: testAddr},
				},
			},
		},
	}
	header := testHeader(body, 2)
	require.NoError(t, state.Connect(header, body))
	require.False(t, state.HasUtxo(outpoint))
	require.True(t, snapshot.HasUtxo(outpoint))
}
