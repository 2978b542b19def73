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

package database

import (
	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/database/models"
)

// AddWithdrawals logs the exit requests created by the block connected
// at the given height
func (d *Database) AddWithdrawals(
	blockHash core.Hash32,
	height uint64,
	withdrawals []core.Withdrawal,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	for _, withdrawal := range withdrawals {
		tmpWithdrawal := models.Withdrawal{
			BlockHash: blockHash.Bytes(),
			Address:   withdrawal.Address.Bytes(),
			Amount:    withdrawal.Amount,
			Height:    height,
		}
		if result := txn.Metadata().Create(&tmpWithdrawal); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// WithdrawalsByHeight returns the exit requests logged at the given height
func (d *Database) WithdrawalsByHeight(
	height uint64,
	txn *Txn,
) ([]models.Withdrawal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var ret []models.Withdrawal
	result := txn.Metadata().
		Where("height = ?", height).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// DeleteWithdrawalsAtHeight removes the exit requests logged at the
// given height, used when the block that created them is disconnected
func (d *Database) DeleteWithdrawalsAtHeight(
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	result := txn.Metadata().
		Where("height = ?", height).
		Delete(&models.Withdrawal{})
	return result.Error
}
