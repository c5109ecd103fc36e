// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package dbaccess is the consensus core's KV store contract: a thin,
// goleveldb-backed context with narrow Get/Put/Delete/Batch calls,
// mirroring the teacher's infrastructure/db/dbaccess.DatabaseContext shape.
// The datastructures/blockchaincache and mainchainstorage layers do not use
// it; both keep their state in memory.
package dbaccess

import (
	"os"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// schemaVersionKey is a reserved cell holding the on-disk layout version.
// A mismatch between currentSchemaVersion and the stored value means the
// database predates a breaking storage change and must be re-initialized.
var schemaVersionKey = []byte("dbaccess/schema-version")

const currentSchemaVersion = 1

// DatabaseContext represents a context in which all database queries run.
type DatabaseContext struct {
	path string
	ldb  *leveldb.DB
}

// New creates a new DatabaseContext with the database at the specified
// `path`, initializing the schema version cell on first use and refusing
// to open a database stamped with an incompatible version.
func New(path string) (*DatabaseContext, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening database at %s", path)
	}

	ctx := &DatabaseContext{path: path, ldb: ldb}
	if err := ctx.ensureSchemaVersion(); err != nil {
		ldb.Close()
		return nil, err
	}
	return ctx, nil
}

func (ctx *DatabaseContext) ensureSchemaVersion() error {
	version, err := ctx.ldb.Get(schemaVersionKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return ctx.ldb.Put(schemaVersionKey, []byte{currentSchemaVersion}, nil)
	}
	if err != nil {
		return errors.Wrap(err, "error reading schema version cell")
	}
	if len(version) != 1 || version[0] != currentSchemaVersion {
		return errors.Errorf("database at %s has incompatible schema version %v, expected %d",
			ctx.path, version, currentSchemaVersion)
	}
	return nil
}

// Close closes the DatabaseContext's connection, if it's open.
func (ctx *DatabaseContext) Close() error {
	return ctx.ldb.Close()
}

// Get returns the value stored under key, or ErrNotFound if no such key
// exists.
func (ctx *DatabaseContext) Get(key []byte) ([]byte, error) {
	value, err := ctx.ldb.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error getting value for key %x", key)
	}
	return value, nil
}

// Has reports whether key exists in the database.
func (ctx *DatabaseContext) Has(key []byte) (bool, error) {
	has, err := ctx.ldb.Has(key, nil)
	if err != nil {
		return false, errors.Wrapf(err, "error checking existence of key %x", key)
	}
	return has, nil
}

// Put stores value under key.
func (ctx *DatabaseContext) Put(key, value []byte) error {
	if err := ctx.ldb.Put(key, value, nil); err != nil {
		return errors.Wrapf(err, "error putting key %x", key)
	}
	return nil
}

// Delete removes key from the database. Deleting a missing key is not an
// error.
func (ctx *DatabaseContext) Delete(key []byte) error {
	if err := ctx.ldb.Delete(key, nil); err != nil {
		return errors.Wrapf(err, "error deleting key %x", key)
	}
	return nil
}

// CursorFrom returns an iterator over all keys sharing prefix, ordered
// lexicographically, for scanning a key range.
func (ctx *DatabaseContext) CursorFrom(prefix []byte) iterator.Iterator {
	return ctx.ldb.NewIterator(util.BytesPrefix(prefix), nil)
}

// Batch accumulates writes for atomic application via Commit, mirroring
// the teacher's transaction-context shape without the teacher's
// noTxContext/txContext split: the consensus core never needs nested or
// read-your-writes transactions, only atomic batch commits.
type Batch struct {
	batch *leveldb.Batch
}

// NewBatch starts a new atomic batch.
func (ctx *DatabaseContext) NewBatch() *Batch {
	return &Batch{batch: new(leveldb.Batch)}
}

// Put stages a write in the batch.
func (b *Batch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

// Delete stages a deletion in the batch.
func (b *Batch) Delete(key []byte) {
	b.batch.Delete(key)
}

// Commit atomically applies every staged write and deletion.
func (ctx *DatabaseContext) Commit(b *Batch) error {
	if err := ctx.ldb.Write(b.batch, nil); err != nil {
		return errors.Wrap(err, "error committing batch")
	}
	return nil
}

// Destroy closes the database and removes it from disk, then re-opens a
// fresh, empty instance at the same path.
func (ctx *DatabaseContext) Destroy() (*DatabaseContext, error) {
	if err := ctx.ldb.Close(); err != nil {
		return nil, errors.Wrap(err, "error closing database before destroy")
	}
	if err := os.RemoveAll(ctx.path); err != nil {
		return nil, errors.Wrapf(err, "error removing database directory %s", ctx.path)
	}
	return New(ctx.path)
}

// ErrNotFound is returned by Get when the requested key does not exist.
var ErrNotFound = errors.New("dbaccess: key not found")
