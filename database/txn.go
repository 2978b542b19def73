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
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"
)

// Txn is a wrapper that coordinates paired blob and metadata
// transactions. The two stores cannot be committed atomically together;
// the blob transaction commits first so that a failure there never
// leaves metadata rows pointing at missing blobs
type Txn struct {
	db          *Database
	blobTxn     *badger.Txn
	metadataTxn *gorm.DB
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:          db,
		readWrite:   readWrite,
		blobTxn:     db.Blob().NewTransaction(readWrite),
		metadataTxn: db.Metadata().Begin(),
	}
}

func (t *Txn) DB() *Database {
	return t.db
}

// Blob returns the blob transaction handle
func (t *Txn) Blob() *badger.Txn {
	return t.blobTxn
}

// Metadata returns the metadata transaction handle
func (t *Txn) Metadata() *gorm.DB {
	return t.metadataTxn
}

// Do executes the specified function in the context of the transaction.
// Any error returned results in the transaction being rolled back
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if err2 := t.Rollback(); err2 != nil {
			return fmt.Errorf(
				"rollback failed: %w: original error: %w",
				err2,
				err,
			)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	// No need to commit for read-only, but we do want to free up resources
	if !t.readWrite {
		return t.rollback()
	}
	if err := t.blobTxn.Commit(); err != nil {
		t.metadataTxn.Rollback()
		t.finished = true
		return fmt.Errorf("blob commit failed: %w", err)
	}
	if result := t.metadataTxn.Commit(); result.Error != nil {
		t.db.logger.Error(
			"partial commit: blob committed, metadata failed",
			"error", result.Error,
		)
		t.finished = true
		return fmt.Errorf(
			"partial commit: metadata commit failed after blob commit: %w",
			result.Error,
		)
	}
	t.finished = true
	return nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	var errs []error
	t.blobTxn.Discard()
	if result := t.metadataTxn.Rollback(); result.Error != nil {
		errs = append(
			errs,
			fmt.Errorf("metadata rollback: %w", result.Error),
		)
	}
	t.finished = true
	return errors.Join(errs...)
}

// Release releases transaction resources. For read-write transactions
// this is equivalent to Rollback. Errors are logged but not returned,
// making this safe for deferred calls
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
