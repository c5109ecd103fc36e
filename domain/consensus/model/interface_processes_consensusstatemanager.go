package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// ConsensusStateManager owns the segment tree: it finds the segment
// containing a block, splits and merges segments, performs chain switches,
// and is the single place mutating on-disk chain state.
type ConsensusStateManager interface {
	// AddBlock inserts an already block-validated, transaction-validated
	// block into the segment tree, performing a split/chain-switch as
	// needed, and returns the resulting AddBlockErrorCode. transactions are
	// block's non-base transactions, parsed, in TransactionHashes order;
	// raw carries the serialized bytes the segment tree stores verbatim.
	AddBlock(block *externalapi.DomainBlock, transactions []*externalapi.DomainTransaction,
		raw externalapi.RawBlock) *externalapi.AddBlockResult

	// TopIndex returns the main chain tip's block index.
	TopIndex() uint32
	// TopHash returns the main chain tip's block hash.
	TopHash() externalapi.DomainHash
	// HashAt returns the main-chain block hash at index.
	HashAt(index uint32) (externalapi.DomainHash, bool)
	// RawBlockAt returns the main-chain raw block at index.
	RawBlockAt(index uint32) (externalapi.RawBlock, bool)
	// TimestampAt returns the main-chain block timestamp at index.
	TimestampAt(index uint32) (uint64, bool)
	// IndexOf returns the block index of hash, wherever in the forest
	// (main or alternative chain) it lives.
	IndexOf(hash externalapi.DomainHash) (uint32, bool)
	// AlreadyGeneratedCoinsAt returns the cumulative emission as of index,
	// on whichever branch owns it.
	AlreadyGeneratedCoinsAt(index uint32) (uint64, bool)

	// OutputKeys resolves a ring's global output indexes for the given
	// amount to their public keys, as of the chain state rooted at
	// tipIndex.
	OutputKeys(amount uint64, globalIndexes []uint32, tipIndex uint32) ([]*externalapi.OutputEntry, externalapi.ExtractOutputKeysResult)

	// IsKeyImageSpent reports whether keyImage is already spent in any
	// ancestor of the block at tipIndex.
	IsKeyImageSpent(keyImage externalapi.DomainKeyImage, tipIndex uint32) bool

	// RandomOutputs returns k randomly selected OutputEntry values for
	// amount, drawn from outputs unlocked as of tipIndex.
	RandomOutputs(amount uint64, k int, tipIndex uint32) ([]*externalapi.OutputEntry, bool)
}
