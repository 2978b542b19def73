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

package models

// MigrateModels is the list of model schemas created at startup
var MigrateModels = []any{
	&Block{},
	&Utxo{},
	&Withdrawal{},
}

// Utxo is the queryable row for one output record. Spent outputs stay
// in the table with a non-zero SpentHeight so the ledger's output index
// can be rebuilt at startup and rollbacks can clear the spent mark
type Utxo struct {
	OutpointHash []byte `gorm:"index:outpoint,unique"`
	Address      []byte `gorm:"index"`
	ID           uint   `gorm:"primarykey"`
	Amount       uint64
	AddedHeight  uint64 `gorm:"index"`
	SpentHeight  uint64 `gorm:"index"` // 0 = unspent
	OutpointIdx  uint32 `gorm:"index:outpoint,unique"`
	OutpointKind uint8  `gorm:"index:outpoint,unique"`
}

func (u *Utxo) TableName() string {
	return "utxo"
}

// Block is the row for a connected block. Raw body bytes live in the
// blob store keyed by the block hash
type Block struct {
	Hash       []byte `gorm:"uniqueIndex"`
	ParentHash []byte `gorm:"index"`
	BodyHash   []byte
	ID         uint   `gorm:"primarykey"`
	Height     uint64 `gorm:"uniqueIndex"`
}

func (b *Block) TableName() string {
	return "block"
}

// Withdrawal is the log of exit requests created by connected blocks,
// kept for main-chain-side processing and audit
type Withdrawal struct {
	BlockHash []byte `gorm:"index"`
	Address   []byte
	ID        uint `gorm:"primarykey"`
	Amount    uint64
	Height    uint64 `gorm:"index"`
}

func (w *Withdrawal) TableName() string {
	return "withdrawal"
}
