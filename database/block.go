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

	badger "github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/database/models"
)

var ErrBlockNotFound = errors.New("block not found")

// BlockBlobKey generates the blob store key for a block body
func BlockBlobKey(hash core.Hash32) []byte {
	key := []byte("b")
	key = append(key, hash.Bytes()...)
	return key
}

// AddBlock records a connected block: raw body bytes in the blob store,
// the index row in the metadata store
func (d *Database) AddBlock(
	header *core.Header,
	bodyData []byte,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	blockHash := header.Hash()
	if err := txn.Blob().Set(BlockBlobKey(blockHash), bodyData); err != nil {
		return err
	}
	tmpBlock := models.Block{
		Hash:       blockHash.Bytes(),
		ParentHash: header.ParentHash.Bytes(),
		BodyHash:   header.BodyHash.Bytes(),
		Height:     header.Height,
	}
	if result := txn.Metadata().Create(&tmpBlock); result.Error != nil {
		return result.Error
	}
	return nil
}

// BlockByHeight returns the index row for the block at the given height
func (d *Database) BlockByHeight(
	height uint64,
	txn *Txn,
) (*models.Block, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret := &models.Block{}
	result := txn.Metadata().First(ret, "height = ?", height)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// BlockByHash returns the index row for the block with the given hash
func (d *Database) BlockByHash(
	hash core.Hash32,
	txn *Txn,
) (*models.Block, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret := &models.Block{}
	result := txn.Metadata().First(ret, "hash = ?", hash.Bytes())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// BlockBodyByHash returns the raw body bytes for the block with the
// given hash
func (d *Database) BlockBodyByHash(
	hash core.Hash32,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	item, err := txn.Blob().Get(BlockBlobKey(hash))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// BlocksRecent returns the most recently connected blocks, newest first
func (d *Database) BlocksRecent(
	limit int,
	txn *Txn,
) ([]models.Block, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	var ret []models.Block
	result := txn.Metadata().
		Order("height DESC").
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// DeleteBlock removes a disconnected block's index row and body blob
func (d *Database) DeleteBlock(
	hash core.Hash32,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	if err := txn.Blob().Delete(BlockBlobKey(hash)); err != nil {
		return err
	}
	result := txn.Metadata().
		Where("hash = ?", hash.Bytes()).
		Delete(&models.Block{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}
