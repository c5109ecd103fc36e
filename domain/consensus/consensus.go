// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package consensus wires the validator, builder and state-manager
// processes behind the single surface the protocol and RPC layers depend
// on, mirroring the external operation list spec §6 names. Pool-backed
// operations (poolHashes, poolTransaction, poolChanges,
// addTransactionToPool, transactionStatus) and the wallet-sync window are
// not part of this surface; the transaction pool lives in
// domain/miningmanager. The queries answered from the segment tree are
// implemented here.
package consensus

import (
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/consensusstatemanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/syncmanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.CNSS)

// Consensus is the node's single consensus-core handle: submitting
// blocks and transactions, building block templates, and querying chain
// state.
type Consensus interface {
	// SubmitBlock deserializes and validates rawBlock, inserting it into
	// the segment tree on success.
	SubmitBlock(rawBlock externalapi.RawBlock) *externalapi.AddBlockResult

	// BuildBlockTemplate assembles a candidate block extending the
	// current tip.
	BuildBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData,
		poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)

	// ValidateTransaction runs both the semantic and the
	// current-tip-contextual checks against tx.
	ValidateTransaction(tx *externalapi.DomainTransaction) error

	// TopIndex returns the main chain tip's block index.
	TopIndex() uint32
	// TopHash returns the main chain tip's block hash.
	TopHash() externalapi.DomainHash
	// HashAt returns the main-chain block hash at index.
	HashAt(index uint32) (externalapi.DomainHash, bool)
	// TimestampAt returns the main-chain block timestamp at index.
	TimestampAt(index uint32) (uint64, bool)
	// GetRawBlock returns the main-chain raw block at index.
	GetRawBlock(index uint32) (externalapi.RawBlock, bool)
	// GetBlock returns a read-facing BlockTemplate view of the main-chain
	// block at index.
	GetBlock(index uint32) (*externalapi.BlockTemplate, bool)
	// HasBlock reports whether hash is known anywhere in the forest,
	// main or alternative chain.
	HasBlock(hash externalapi.DomainHash) bool
	// IndexOf returns the block index of hash, wherever in the forest it
	// lives.
	IndexOf(hash externalapi.DomainHash) (uint32, bool)

	// AlreadyGeneratedCoins returns the cumulative emission as of index.
	AlreadyGeneratedCoins(index uint32) (uint64, bool)
	// DifficultyForNextBlock returns the difficulty the block extending
	// the current tip must satisfy.
	DifficultyForNextBlock() (uint64, error)

	// TransactionLocation resolves hash to its block index and in-block
	// position, searching the main chain only.
	TransactionLocation(hash externalapi.DomainHash) (blockIndex uint32, txIndex uint16, found bool)
	// TransactionHashesByPaymentID returns the main-chain transaction
	// hashes carrying paymentID in their extra field.
	TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash

	// RandomOutputs returns k randomly selected OutputEntry values for
	// amount, drawn from outputs unlocked as of the current tip.
	RandomOutputs(amount uint64, k int) ([]*externalapi.OutputEntry, bool)

	// AddObserver registers fn to receive every ConsensusNotification
	// this core emits, in emission order.
	AddObserver(fn func(externalapi.ConsensusNotification))

	// SparseChain returns a geometrically-thinned list of main-chain
	// hashes, newest first, for a protocol driver to offer a peer as the
	// requester side of the §4.8 sparse-chain handshake.
	SparseChain() []externalapi.DomainHash
	// FindCommonAncestor returns the index of the first of knownHashes
	// that is on the main chain, the responder side of the handshake.
	FindCommonAncestor(knownHashes []externalapi.DomainHash) (uint32, bool)
	// MainChainHashesAfter returns up to limit main-chain hashes
	// strictly after index, for a requester to pull once the common
	// ancestor is found.
	MainChainHashesAfter(index uint32, limit int) []externalapi.DomainHash
}

type consensus struct {
	blockProcessor       model.BlockProcessor
	blockBuilder         model.BlockBuilder
	transactionValidator model.TransactionValidator
	stateManager         *consensusstatemanager.ConsensusStateManager
	syncManager          *syncmanager.SyncManager
}

// SubmitBlock implements Consensus.
func (c *consensus) SubmitBlock(rawBlock externalapi.RawBlock) *externalapi.AddBlockResult {
	return c.blockProcessor.ValidateAndInsertBlock(rawBlock)
}

// BuildBlockTemplate implements Consensus.
func (c *consensus) BuildBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData,
	poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {
	return c.blockBuilder.BuildBlockTemplate(coinbaseData, poolTransactions)
}

// ValidateTransaction implements Consensus.
func (c *consensus) ValidateTransaction(tx *externalapi.DomainTransaction) error {
	if err := c.transactionValidator.ValidateSemantically(tx); err != nil {
		return err
	}
	return c.transactionValidator.ValidateInContext(tx, c.stateManager.TopIndex())
}

// TopIndex implements Consensus.
func (c *consensus) TopIndex() uint32 { return c.stateManager.TopIndex() }

// TopHash implements Consensus.
func (c *consensus) TopHash() externalapi.DomainHash { return c.stateManager.TopHash() }

// HashAt implements Consensus.
func (c *consensus) HashAt(index uint32) (externalapi.DomainHash, bool) {
	return c.stateManager.HashAt(index)
}

// TimestampAt implements Consensus.
func (c *consensus) TimestampAt(index uint32) (uint64, bool) {
	return c.stateManager.TimestampAt(index)
}

// GetRawBlock implements Consensus.
func (c *consensus) GetRawBlock(index uint32) (externalapi.RawBlock, bool) {
	return c.stateManager.RawBlockAt(index)
}

// GetBlock implements Consensus.
func (c *consensus) GetBlock(index uint32) (*externalapi.BlockTemplate, bool) {
	raw, ok := c.stateManager.RawBlockAt(index)
	if !ok {
		return nil, false
	}
	block, err := serialization.DeserializeBlock(raw.Block)
	if err != nil {
		log.Warnf("GetBlock: stored block at index %d failed to deserialize: %s", index, err)
		return nil, false
	}
	hash, _ := c.stateManager.HashAt(index)
	return &externalapi.BlockTemplate{
		Index:             index,
		Hash:              hash,
		Header:            *block.Header,
		BaseTransaction:   block.BaseTransaction,
		TransactionHashes: block.TransactionHashes,
	}, true
}

// HasBlock implements Consensus.
func (c *consensus) HasBlock(hash externalapi.DomainHash) bool {
	return c.stateManager.HasBlock(hash)
}

// IndexOf implements Consensus.
func (c *consensus) IndexOf(hash externalapi.DomainHash) (uint32, bool) {
	return c.stateManager.IndexOf(hash)
}

// AlreadyGeneratedCoins implements Consensus.
func (c *consensus) AlreadyGeneratedCoins(index uint32) (uint64, bool) {
	return c.stateManager.AlreadyGeneratedCoinsAt(index)
}

// DifficultyForNextBlock implements Consensus.
func (c *consensus) DifficultyForNextBlock() (uint64, error) {
	return c.stateManager.RequiredDifficultyForNextBlock()
}

// TransactionLocation implements Consensus.
func (c *consensus) TransactionLocation(hash externalapi.DomainHash) (uint32, uint16, bool) {
	return c.stateManager.TransactionLocation(hash)
}

// TransactionHashesByPaymentID implements Consensus.
func (c *consensus) TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash {
	return c.stateManager.TransactionHashesByPaymentID(paymentID)
}

// RandomOutputs implements Consensus.
func (c *consensus) RandomOutputs(amount uint64, k int) ([]*externalapi.OutputEntry, bool) {
	return c.stateManager.RandomOutputs(amount, k, c.stateManager.TopIndex())
}

// AddObserver implements Consensus.
func (c *consensus) AddObserver(fn func(externalapi.ConsensusNotification)) {
	c.stateManager.AddObserver(fn)
}

// SparseChain implements Consensus.
func (c *consensus) SparseChain() []externalapi.DomainHash {
	return c.syncManager.SparseChain()
}

// FindCommonAncestor implements Consensus.
func (c *consensus) FindCommonAncestor(knownHashes []externalapi.DomainHash) (uint32, bool) {
	return c.syncManager.FindCommonAncestor(knownHashes)
}

// MainChainHashesAfter implements Consensus.
func (c *consensus) MainChainHashesAfter(index uint32, limit int) []externalapi.DomainHash {
	return c.syncManager.MainChainHashesAfter(index, limit)
}
