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

package database_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/database"
)

var testAddr = core.NewHashLockAddress([]byte("db-test"))

func testDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(nil, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestUtxoLifecycle(t *testing.T) {
	db := testDatabase(t)
	outpoint := core.NewRegularOutpoint(core.NewHash32([]byte("tx")), 0)
	output := core.Output{Amount: 100, Address: testAddr}

	require.NoError(
		t,
		db.AddUtxos(
			map[core.Outpoint]core.Output{outpoint: output},
			1,
			nil,
		),
	)

	row, err := db.UtxoByOutpoint(outpoint, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(100), row.Amount)
	require.Equal(t, uint64(0), row.SpentHeight)

	gotOutpoint, gotOutput, err := database.UtxoToLedger(row)
	require.NoError(t, err)
	require.Equal(t, outpoint, gotOutpoint)
	require.Equal(t, output.Amount, gotOutput.Amount)
	require.Equal(t, output.Address.Bytes(), gotOutput.Address.Bytes())

	// Spend, then roll the spend back
	require.NoError(t, db.SpendUtxos([]core.Outpoint{outpoint}, 2, nil))
	row, err = db.UtxoByOutpoint(outpoint, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(2), row.SpentHeight)

	// Double-spend of an already spent row fails
	err = db.SpendUtxos([]core.Outpoint{outpoint}, 3, nil)
	require.ErrorIs(t, err, database.ErrUtxoNotFound)

	require.NoError(t, db.UnspendUtxos(2, nil))
	row, err = db.UtxoByOutpoint(outpoint, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), row.SpentHeight)
}

func TestSpendUnknownUtxo(t *testing.T) {
	db := testDatabase(t)
	outpoint := core.NewRegularOutpoint(core.NewHash32([]byte("nope")), 9)
	err := db.SpendUtxos([]core.Outpoint{outpoint}, 1, nil)
	require.ErrorIs(t, err, database.ErrUtxoNotFound)
}

func TestLoadLedgerState(t *testing.T) {
	db := testDatabase(t)
	unspent := core.NewRegularOutpoint(core.NewHash32([]byte("tx1")), 0)
	spent := core.NewRegularOutpoint(core.NewHash32([]byte("tx2")), 1)
	require.NoError(t, db.AddUtxos(
		map[core.Outpoint]core.Output{
			unspent: {Amount: 10, Address: testAddr},
			spent:   {Amount: 20, Address: testAddr},
		},
		1,
		nil,
	))
	require.NoError(t, db.SpendUtxos([]core.Outpoint{spent}, 2, nil))

	state, err := db.LoadLedgerState(nil)
	require.NoError(t, err)
	require.Equal(t, 1, state.UtxoCount())
	require.True(t, state.HasUtxo(unspent))
	require.False(t, state.HasUtxo(spent))
	// Spent records are restored into the output index
	output, ok := state.OutputByOutpoint(spent)
	require.True(t, ok)
	require.Equal(t, uint64(20), output.Amount)
}

func TestBlockLifecycle(t *testing.T) {
	db := testDatabase(t)
	body := &core.Body{
		Coinbase: []core.Output{
			{Amount: 50, Address: testAddr},
		},
	}
	header := &core.Header{
		ParentHash: core.Hash32{},
		BodyHash:   body.Hash(),
		Height:     1,
	}
	bodyData, err := body.Encode()
	require.NoError(t, err)
	require.NoError(t, db.AddBlock(header, bodyData, nil))

	blockHash := header.Hash()
	row, err := db.BlockByHash(blockHash, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), row.Height)

	row, err = db.BlockByHeight(1, nil)
	require.NoError(t, err)
	require.Equal(t, blockHash.Bytes(), row.Hash)

	gotData, err := db.BlockBodyByHash(blockHash, nil)
	require.NoError(t, err)
	decoded, err := core.DecodeBody(gotData)
	require.NoError(t, err)
	require.Equal(t, body, decoded)

	recent, err := db.BlocksRecent(5, nil)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	require.NoError(t, db.DeleteBlock(blockHash, nil))
	_, err = db.BlockByHash(blockHash, nil)
	require.ErrorIs(t, err, database.ErrBlockNotFound)
	_, err = db.BlockBodyByHash(blockHash, nil)
	require.ErrorIs(t, err, database.ErrBlockNotFound)
}

func TestWithdrawalLog(t *testing.T) {
	db := testDatabase(t)
	blockHash := core.NewHash32([]byte("block"))
	withdrawals := []core.Withdrawal{
		{Amount: 5, Address: testAddr},
		{Amount: 7, Address: testAddr},
	}
	require.NoError(t, db.AddWithdrawals(blockHash, 3, withdrawals, nil))

	rows, err := db.WithdrawalsByHeight(3, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, db.DeleteWithdrawalsAtHeight(3, nil))
	rows, err = db.WithdrawalsByHeight(3, nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestTxnRollback(t *testing.T) {
	db := testDatabase(t)
	outpoint := core.NewRegularOutpoint(core.NewHash32([]byte("tx")), 0)
	txn := db.Transaction(true)
	err := db.AddUtxos(
		map[core.Outpoint]core.Output{
			outpoint: {Amount: 1, Address: testAddr},
		},
		1,
		txn,
	)
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())

	_, err = db.UtxoByOutpoint(outpoint, nil)
	require.ErrorIs(t, err, database.ErrUtxoNotFound)
}
