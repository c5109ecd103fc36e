// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package externalapi

// DeleteTransactionReason tags why a transaction left the pool without
// being queried for again.
type DeleteTransactionReason int

const (
	// DeleteTransactionReasonInBlock means the transaction was included in
	// an accepted block.
	DeleteTransactionReasonInBlock DeleteTransactionReason = iota
	// DeleteTransactionReasonOutdated means the cleaner evicted it after
	// its receive time exceeded the pool's live-time.
	DeleteTransactionReasonOutdated
	// DeleteTransactionReasonNotActual means a re-validation pass against
	// the current tip rejected it (e.g. a spent key image).
	DeleteTransactionReasonNotActual
)

// ConsensusNotification is the tagged union of messages an observer queue
// receives, emitted in the order the core produced them.
type ConsensusNotification interface {
	isConsensusNotification()
}

// NewBlockNotification announces a block added to the main chain.
type NewBlockNotification struct {
	Index uint32
	Hash  DomainHash
}

func (*NewBlockNotification) isConsensusNotification() {}

// NewAlternativeBlockNotification announces a block added to a
// non-main-chain segment.
type NewAlternativeBlockNotification struct {
	Index uint32
	Hash  DomainHash
}

func (*NewAlternativeBlockNotification) isConsensusNotification() {}

// ChainSwitchNotification announces a reorg: the common ancestor index and
// the new main-chain hashes from that ancestor forward.
type ChainSwitchNotification struct {
	CommonRootIndex uint32
	Hashes          []DomainHash
}

func (*ChainSwitchNotification) isConsensusNotification() {}

// AddTransactionNotification announces transactions admitted to the pool.
type AddTransactionNotification struct {
	Hashes []DomainHash
}

func (*AddTransactionNotification) isConsensusNotification() {}

// DeleteTransactionNotification announces transactions removed from the
// pool, with the reason they left.
type DeleteTransactionNotification struct {
	Hashes []DomainHash
	Reason DeleteTransactionReason
}

func (*DeleteTransactionNotification) isConsensusNotification() {}
