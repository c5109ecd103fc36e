// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// Mempool holds transactions that have passed semantic and
// current-tip-contextual validation and are waiting to be mined,
// evicting stale or newly-invalid entries on a periodic cleaner pass.
type Mempool interface {
	// AddTransaction runs pool admission (§4.3 plus the key-image
	// intersection and recently-deleted checks) and, on success, adds
	// tx to the pool.
	AddTransaction(tx *externalapi.DomainTransaction) (*PoolTransaction, error)

	// RemoveTransaction evicts hash from the pool, if present.
	RemoveTransaction(hash externalapi.DomainHash) bool

	// GetTransaction returns the pool entry for hash, if present.
	GetTransaction(hash externalapi.DomainHash) (*PoolTransaction, bool)

	// TransactionHashes returns every pool entry's hash.
	TransactionHashes() []externalapi.DomainHash

	// AllTransactions returns every pool entry's transaction.
	AllTransactions() []*externalapi.DomainTransaction

	// TransactionHashesByPaymentID returns the pool hashes carrying
	// paymentID in their extra field.
	TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash

	// Changes returns the pool's hashes as added and removed lists, and
	// whether lastKnownTopHash is still the current tip. The pool keeps no
	// change log: it reports every held hash as added, nothing as removed,
	// and always reports the tip as still valid.
	Changes(lastKnownTopHash externalapi.DomainHash) (added []externalapi.DomainHash, deleted []externalapi.DomainHash, tipStillValid bool)

	// Clean runs the TTL-eviction and re-validation cleaner pass,
	// returning the hashes it evicted.
	Clean() []externalapi.DomainHash

	// ActualizePoolTransactions drains the pool and re-admits every
	// entry against the current tip; entries that fail re-validation
	// are dropped. Used after a chain switch.
	ActualizePoolTransactions() []externalapi.DomainHash

	// ActualizePoolTransactionsLite removes only entries whose key
	// images intersect state, without re-validating every survivor.
	ActualizePoolTransactionsLite(state *externalapi.TransactionValidatorState) []externalapi.DomainHash

	// BlockCandidateTransactions returns the pool's transactions in the
	// order a block template should try to include them: zero-fee fusion
	// transactions first, then fee-paying transactions in the order they
	// were received. The caller (blockbuilder) applies the cumulative
	// size cutoff.
	BlockCandidateTransactions() []*externalapi.DomainTransaction
}
