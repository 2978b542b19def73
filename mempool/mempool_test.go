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

package mempool_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/event"
	"github.com/pontoon-io/pontoon/ledger"
	"github.com/pontoon-io/pontoon/mempool"
)

var (
	testPreimage = []byte("mempool test preimage")
	testAddr     = core.NewHashLockAddress(testPreimage)
	testSig      = core.Signature(testPreimage)
)

type testEnv struct {
	ledger  *ledger.Ledger
	mempool *mempool.Mempool
	bus     *event.EventBus
	genesis *core.Header
}

// newTestEnv creates a ledger with a single 50-value coinbase output and
// a mempool validating against it
func newTestEnv(t *testing.T, capacity int64) *testEnv {
	t.Helper()
	bus := event.NewEventBus(nil, nil)
	l, err := ledger.New(ledger.LedgerConfig{
		DataDir:  t.TempDir(),
		EventBus: bus,
	})
	require.NoError(t, err)

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
	require.NoError(t, l.AddBlock(header, body))

	m := mempool.NewMempool(mempool.MempoolConfig{
		Validator:       l,
		EventBus:        bus,
		MempoolCapacity: capacity,
	})
	t.Cleanup(func() {
		m.Stop()
		bus.Stop()
		_ = l.Close()
	})
	return &testEnv{
		ledger:  l,
		mempool: m,
		bus:     bus,
		genesis: header,
	}
}

func (e *testEnv) spendTx(amount uint64) *core.Transaction {
	return &core.Transaction{
		Inputs: []core.Input{
			{
				Outpoint:  core.NewCoinbaseOutpoint(e.genesis.Hash(), 0),
				Signature: testSig,
			},
		},
		Outputs: []core.Output{
			{Amount: amount, Address: testAddr},
		},
	}
}

func TestAddTransaction(t *testing.T) {
	env := newTestEnv(t, 1048576)
	tx := env.spendTx(50)
	require.NoError(t, env.mempool.AddTransaction(tx))

	got, ok := env.mempool.GetTransaction(tx.Hash())
	require.True(t, ok)
	require.Equal(t, tx.Hash(), got.Hash)
	require.Len(t, env.mempool.Transactions(), 1)

	// Re-adding the same transaction refreshes it rather than duplicating
	require.NoError(t, env.mempool.AddTransaction(tx))
	require.Len(t, env.mempool.Transactions(), 1)
}

func TestAddTransactionInvalid(t *testing.T) {
	env := newTestEnv(t, 1048576)
	tx := &core.Transaction{
		Inputs: []core.Input{
			{
				Outpoint: core.NewRegularOutpoint(
					core.NewHash32([]byte("unknown")),
					0,
				),
				Signature: testSig,
			},
		},
	}
	err := env.mempool.AddTransaction(tx)
	require.ErrorIs(t, err, ledger.ErrTransactionRejected)
	require.Empty(t, env.mempool.Transactions())
}

func TestMempoolCapacity(t *testing.T) {
	env := newTestEnv(t, 1)
	err := env.mempool.AddTransaction(env.spendTx(50))
	var fullErr *mempool.MempoolFullError
	require.ErrorAs(t, err, &fullErr)
}

func TestRemoveTransaction(t *testing.T) {
	env := newTestEnv(t, 1048576)
	tx := env.spendTx(50)
	require.NoError(t, env.mempool.AddTransaction(tx))
	env.mempool.RemoveTransaction(tx.Hash())
	require.Empty(t, env.mempool.Transactions())
}

func TestConsumerNextTx(t *testing.T) {
	env := newTestEnv(t, 1048576)
	tx := env.spendTx(50)
	require.NoError(t, env.mempool.AddTransaction(tx))

	consumer := env.mempool.AddConsumer("producer-1")
	defer env.mempool.RemoveConsumer("producer-1")

	got := consumer.NextTx(false)
	require.NotNil(t, got)
	require.Equal(t, tx.Hash(), got.Hash)
	// Each transaction is delivered once per consumer
	require.Nil(t, consumer.NextTx(false))
	// But stays cached for retrieval by hash
	require.NotNil(t, consumer.GetTxFromCache(tx.Hash()))
}

func TestRevalidationAfterBlock(t *testing.T) {
	env := newTestEnv(t, 1048576)
	tx := env.spendTx(50)
	require.NoError(t, env.mempool.AddTransaction(tx))

	// Connect a block spending the same coinbase output out from under
	// the pooled transaction
	body := &core.Body{
		Transactions: []core.Transaction{*env.spendTx(50)},
	}
	header := &core.Header{
		ParentHash: env.genesis.Hash(),
		BodyHash:   body.Hash(),
		Height:     2,
	}
	require.NoError(t, env.ledger.AddBlock(header, body))

	require.Eventually(t, func() bool {
		return len(env.mempool.Transactions()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}
