// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package mainchainstorage implements the append-only raw-block vector
// spec §6's "persistent state layout" describes: the serialized bytes for
// every block currently on the main chain, rewritten on each chain switch so
// it always equals root→tip. The vector is held in memory only; nothing
// writes it to disk.
package mainchainstorage

import (
	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// ErrIndexOutOfRange is returned by Get/PopBlock when index is not within
// [0, Count()).
var ErrIndexOutOfRange = errors.New("mainchainstorage: index out of range")

// Store is the append-only main-chain raw-block vector, kept in memory. It
// is not persisted across restarts.
type Store struct {
	blocks []externalapi.RawBlock
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Count returns the number of blocks currently stored.
func (s *Store) Count() uint32 {
	return uint32(len(s.blocks))
}

// PushBlock appends a block to the end of the vector.
func (s *Store) PushBlock(block externalapi.RawBlock) {
	s.blocks = append(s.blocks, block.Clone())
}

// PopBlock removes and returns the last block in the vector, used when
// cutting back to a common ancestor during a reorg or startup
// reconciliation.
func (s *Store) PopBlock() (externalapi.RawBlock, error) {
	if len(s.blocks) == 0 {
		return externalapi.RawBlock{}, ErrIndexOutOfRange
	}
	last := s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]
	return last, nil
}

// CutToIndex truncates the vector so that index becomes the new top
// (inclusive), used by startup reconciliation and reorg rewrites.
func (s *Store) CutToIndex(index uint32) error {
	if index >= uint32(len(s.blocks)) {
		return ErrIndexOutOfRange
	}
	s.blocks = s.blocks[:index+1]
	return nil
}

// Get returns the raw block at index.
func (s *Store) Get(index uint32) (externalapi.RawBlock, error) {
	if index >= uint32(len(s.blocks)) {
		return externalapi.RawBlock{}, ErrIndexOutOfRange
	}
	return s.blocks[index], nil
}

// RewriteFrom replaces every block from index onward with the supplied
// sequence, used after a chain switch so the store again equals
// root→newTip.
func (s *Store) RewriteFrom(index uint32, blocks []externalapi.RawBlock) error {
	if index > uint32(len(s.blocks)) {
		return ErrIndexOutOfRange
	}
	s.blocks = s.blocks[:index]
	for _, block := range blocks {
		s.blocks = append(s.blocks, block.Clone())
	}
	return nil
}
