// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package externalapi

// BlockTemplate is the simplified, read-facing form of a block `getBlock`
// returns: header fields, the base transaction, and the included
// transaction hashes, without requiring the raw bytes round trip.
type BlockTemplate struct {
	Index             uint32
	Hash              DomainHash
	Header            DomainBlockHeader
	BaseTransaction   *DomainTransaction
	TransactionHashes []DomainHash
}

// PoolChanges is poolChanges' result: the set of hashes added to and
// deleted from the pool since the caller's last known state, plus whether
// the caller's last-known tip is still the current tip.
type PoolChanges struct {
	Added         []DomainHash
	Deleted       []DomainHash
	TipStillValid bool
}

// RandomOutputsResult is randomOutputs' result: the resolved global
// indexes and the public keys at those indexes, index-aligned.
type RandomOutputsResult struct {
	GlobalIndexes []uint32
	PublicKeys    []DomainPublicKey
}

// TransactionStatus tags where a queried transaction hash was found.
type TransactionStatus int

const (
	// TransactionStatusUnknown means the hash was found nowhere.
	TransactionStatusUnknown TransactionStatus = iota
	// TransactionStatusInPool means the hash is a pending pool entry.
	TransactionStatusInPool
	// TransactionStatusInBlock means the hash is included in a main-chain
	// block.
	TransactionStatusInBlock
)

// SimplifiedTransaction is a wallet-sync-facing transaction view: hash,
// public key extracted from extra, payment id if present, and outputs.
type SimplifiedTransaction struct {
	Hash          DomainHash
	PublicKey     DomainPublicKey
	PaymentID     *DomainHash
	Outputs       []*DomainTransactionOutput
	UnlockTime    uint64
}

// WalletBlockInfo is one entry of a wallet-sync window response: a block's
// height, hash, timestamp, simplified coinbase, and simplified contained
// transactions.
type WalletBlockInfo struct {
	Height       uint32
	Hash         DomainHash
	Timestamp    uint64
	Coinbase     SimplifiedTransaction
	Transactions []SimplifiedTransaction
}

// CoreStatistics is a diagnostic snapshot of the running core, exposed for
// operator tooling rather than consensus itself.
type CoreStatistics struct {
	TopIndex           uint32
	TopHash            DomainHash
	AlternativeBlocks  uint32
	TransactionPoolSize uint32
	AlreadyGeneratedCoins uint64
}
