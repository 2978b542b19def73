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
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/database/models"
)

var ErrUtxoNotFound = errors.New("utxo not found")

func utxoModel(
	outpoint core.Outpoint,
	output core.Output,
	height uint64,
) models.Utxo {
	return models.Utxo{
		OutpointKind: uint8(outpoint.Kind),
		OutpointHash: outpoint.Hash.Bytes(),
		OutpointIdx:  outpoint.Index,
		Amount:       output.Amount,
		Address:      output.Address.Bytes(),
		AddedHeight:  height,
	}
}

// UtxoToLedger converts a stored row back into its outpoint and output
func UtxoToLedger(utxo *models.Utxo) (core.Outpoint, core.Output, error) {
	addr, err := core.DecodeAddress(utxo.Address)
	if err != nil {
		return core.Outpoint{}, core.Output{}, fmt.Errorf(
			"utxo %x:%d: %w",
			utxo.OutpointHash,
			utxo.OutpointIdx,
			err,
		)
	}
	outpoint := core.Outpoint{
		Kind:  core.OutpointKind(utxo.OutpointKind),
		Hash:  core.NewHash32(utxo.OutpointHash),
		Index: utxo.OutpointIdx,
	}
	return outpoint, core.Output{
		Amount:  utxo.Amount,
		Address: addr,
	}, nil
}

// AddUtxos records the outputs created by the block connected at the
// given height
func (d *Database) AddUtxos(
	utxos map[core.Outpoint]core.Output,
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	for outpoint, output := range utxos {
		tmpUtxo := utxoModel(outpoint, output, height)
		if result := txn.Metadata().Create(&tmpUtxo); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// SpendUtxos marks the given outpoints as spent at the given height.
// The rows are retained so the output index survives restarts and
// UnspendUtxos can undo the marks on rollback
func (d *Database) SpendUtxos(
	outpoints []core.Outpoint,
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	for _, outpoint := range outpoints {
		result := txn.Metadata().
			Model(&models.Utxo{}).
			Where(
				"outpoint_kind = ? AND outpoint_hash = ? AND outpoint_idx = ? AND spent_height = 0",
				uint8(outpoint.Kind),
				outpoint.Hash.Bytes(),
				outpoint.Index,
			).
			Update("spent_height", height)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrUtxoNotFound, outpoint)
		}
	}
	return nil
}

// UnspendUtxos clears the spent marks applied at the given height,
// returning those outputs to the unspent set during rollback
func (d *Database) UnspendUtxos(
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	result := txn.Metadata().
		Model(&models.Utxo{}).
		Where("spent_height = ?", height).
		Update("spent_height", 0)
	return result.Error
}

// DeleteUtxosAddedAtHeight removes the output records created at the
// given height, used when the block that created them is disconnected
func (d *Database) DeleteUtxosAddedAtHeight(
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	result := txn.Metadata().
		Where("added_height = ?", height).
		Delete(&models.Utxo{})
	return result.Error
}

// UtxoByOutpoint returns the row for an outpoint, spent or not
func (d *Database) UtxoByOutpoint(
	outpoint core.Outpoint,
	txn *Txn,
) (*models.Utxo, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret := &models.Utxo{}
	result := txn.Metadata().First(
		ret,
		"outpoint_kind = ? AND outpoint_hash = ? AND outpoint_idx = ?",
		uint8(outpoint.Kind),
		outpoint.Hash.Bytes(),
		outpoint.Index,
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUtxoNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// UtxosByAddress returns the currently unspent rows locked by the given
// address encoding
func (d *Database) UtxosByAddress(
	address core.Address,
	txn *Txn,
) ([]models.Utxo, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var ret []models.Utxo
	result := txn.Metadata().
		Where("spent_height = 0").
		Where("address = ?", address.Bytes()).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// LoadLedgerState rebuilds the in-memory ledger state from the full
// output table: unspent rows seed the UTXO set, every row seeds the
// output index
func (d *Database) LoadLedgerState(txn *Txn) (*core.LedgerState, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	state := core.NewLedgerState()
	var utxos []models.Utxo
	result := txn.Metadata().FindInBatches(
		&utxos,
		1000,
		func(tx *gorm.DB, batch int) error {
			for i := range utxos {
				outpoint, output, err := UtxoToLedger(&utxos[i])
				if err != nil {
					return err
				}
				state.Restore(outpoint, output, utxos[i].SpentHeight != 0)
			}
			return nil
		},
	)
	if result.Error != nil {
		return nil, result.Error
	}
	return state, nil
}
