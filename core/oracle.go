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

// MainChainOracle resolves claims against main-chain state. It is an
// external, read-only dependency: this ledger never writes through it
type MainChainOracle interface {
	// GetDeposit resolves a claimed deposit by its main-chain
	// reference. The second return is false if the reference is
	// unknown
	GetDeposit(ref Ref) (Deposit, bool)
	// GetWithdrawal resolves a claimed refundable withdrawal by its
	// main-chain reference. The second return is false if the
	// reference is unknown
	GetWithdrawal(ref Ref) (Withdrawal, bool)
}

// MainChainState is an in-memory MainChainOracle, useful for tests and
// for embedding alongside a simulated main chain. Populating it is the
// embedder's job; this ledger only reads
type MainChainState struct {
	deposits    map[Ref]Deposit
	withdrawals map[Ref]Withdrawal
}

func NewMainChainState() *MainChainState {
	return &MainChainState{
		deposits:    make(map[Ref]Deposit),
		withdrawals: make(map[Ref]Withdrawal),
	}
}

func (m *MainChainState) SetDeposit(ref Ref, deposit Deposit) {
	m.deposits[ref] = deposit
}

func (m *MainChainState) SetWithdrawal(ref Ref, withdrawal Withdrawal) {
	m.withdrawals[ref] = withdrawal
}

func (m *MainChainState) GetDeposit(ref Ref) (Deposit, bool) {
	deposit, ok := m.deposits[ref]
	return deposit, ok
}

func (m *MainChainState) GetWithdrawal(ref Ref) (Withdrawal, bool) {
	withdrawal, ok := m.withdrawals[ref]
	return withdrawal, ok
}
