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
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pontoon-io/pontoon/database/models"
)

// Database is a dual-store: raw immutable bytes (block bodies) in a
// Badger blob store, queryable rows (UTXO set, block index, withdrawal
// log) in SQLite via GORM. Both stores are in-memory when dataDir is
// empty, which is what the tests use
type Database struct {
	logger   *slog.Logger
	blob     *badger.DB
	metadata *gorm.DB
	dataDir  string
}

// Blob returns the underlying blob store instance
func (d *Database) Blob() *badger.DB {
	return d.blob
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *gorm.DB {
	return d.metadata
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		if sqlDb, sqlErr := d.metadata.DB(); sqlErr == nil {
			err = errors.Join(err, sqlDb.Close())
		}
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// New creates a new database instance with optional persistence using
// the provided data directory
func New(
	logger *slog.Logger,
	dataDir string,
) (*Database, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	blobDb, err := newBlobStore(logger, dataDir)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	metadataDb, err := newMetadataStore(dataDir)
	if err != nil {
		_ = blobDb.Close()
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  dataDir,
	}
	return db, nil
}

func newBlobStore(logger *slog.Logger, dataDir string) (*badger.DB, error) {
	if dataDir == "" {
		badgerOpts := badger.DefaultOptions("").
			WithLogger(newBadgerLogger(logger)).
			WithInMemory(true)
		return badger.Open(badgerOpts)
	}
	blobDir := filepath.Join(dataDir, "blob")
	if err := ensureDir(blobDir); err != nil {
		return nil, err
	}
	badgerOpts := badger.DefaultOptions(blobDir).
		WithLogger(newBadgerLogger(logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	return badger.Open(badgerOpts)
}

func newMetadataStore(dataDir string) (*gorm.DB, error) {
	var metadataDb *gorm.DB
	var err error
	if dataDir == "" {
		// cache=shared allows multiple connections to share the same
		// in-memory database
		metadataDb, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
	} else {
		if dirErr := ensureDir(dataDir); dirErr != nil {
			return nil, dirErr
		}
		metadataDbPath := filepath.Join(dataDir, "metadata.sqlite")
		// WAL journal mode and no sync on write
		metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
		metadataDb, err = gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
			),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
	}
	if err != nil {
		return nil, err
	}
	for _, model := range models.MigrateModels {
		if err := metadataDb.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	return metadataDb, nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	return nil
}
