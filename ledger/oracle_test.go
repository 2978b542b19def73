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

package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/ledger"
)

// countingOracle counts lookups that reach the wrapped oracle
type countingOracle struct {
	inner          *core.MainChainState
	depositGets    int
	withdrawalGets int
}

func (o *countingOracle) GetDeposit(ref core.Ref) (core.Deposit, bool) {
	o.depositGets++
	return o.inner.GetDeposit(ref)
}

func (o *countingOracle) GetWithdrawal(ref core.Ref) (core.Withdrawal, bool) {
	o.withdrawalGets++
	return o.inner.GetWithdrawal(ref)
}

func TestCachingOracleHit(t *testing.T) {
	inner := &countingOracle{inner: core.NewMainChainState()}
	ref := core.Ref{TxId: core.NewHash32([]byte("tx")), Index: 0}
	inner.inner.SetDeposit(ref, core.Deposit{Amount: 10, Address: testAddr})

	oracle := ledger.NewCachingOracle(inner, time.Minute)
	defer oracle.Stop()

	for range 3 {
		deposit, ok := oracle.GetDeposit(ref)
		require.True(t, ok)
		require.Equal(t, uint64(10), deposit.Amount)
	}
	require.Equal(t, 1, inner.depositGets)
}

func TestCachingOracleMissNotCached(t *testing.T) {
	inner := &countingOracle{inner: core.NewMainChainState()}
	ref := core.Ref{TxId: core.NewHash32([]byte("tx")), Index: 1}

	oracle := ledger.NewCachingOracle(inner, time.Minute)
	defer oracle.Stop()

	_, ok := oracle.GetWithdrawal(ref)
	require.False(t, ok)

	// The record shows up on the main chain later and must be visible
	// despite the earlier miss
	inner.inner.SetWithdrawal(ref, core.Withdrawal{Amount: 7, Address: testAddr})
	withdrawal, ok := oracle.GetWithdrawal(ref)
	require.True(t, ok)
	require.Equal(t, uint64(7), withdrawal.Amount)
	require.Equal(t, 2, inner.withdrawalGets)
}
