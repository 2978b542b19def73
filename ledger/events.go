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

package ledger

import (
	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/event"
)

const (
	BlockConnectedEventType      event.EventType = "ledger.block.connected"
	BlockRolledBackEventType     event.EventType = "ledger.block.rolledback"
	WithdrawalRequestedEventType event.EventType = "ledger.withdrawal.requested"
)

// BlockConnectedEvent is emitted after a block has been validated,
// connected, and persisted
type BlockConnectedEvent struct {
	Hash             core.Hash32
	Height           uint64
	TransactionCount int
}

// BlockRolledBackEvent is emitted after the tip block has been
// disconnected
type BlockRolledBackEvent struct {
	Hash   core.Hash32
	Height uint64
}

// WithdrawalRequestedEvent is emitted once per withdrawal in a
// connected block, so a main-chain relayer can pick up exit requests
type WithdrawalRequestedEvent struct {
	BlockHash core.Hash32
	Height    uint64
	Address   core.Address
	Amount    uint64
}
