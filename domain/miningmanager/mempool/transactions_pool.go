// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package mempool holds transactions that passed validation and are
// waiting to be mined, re-validating them against the current tip on a
// periodic cleaner pass and after a chain switch.
package mempool

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashserialization"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/txextra"
	miningmodel "github.com/kryptokrona/kryptokrona-sub001/domain/miningmanager/model"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.MMGR)

// consensusReader is the narrow slice of the consensus core the pool
// needs: the live tip, and the semantic-plus-contextual validation every
// admission and re-validation pass runs new and held transactions through.
type consensusReader interface {
	TopIndex() uint32
	ValidateTransaction(tx *externalapi.DomainTransaction) error
}

// transactionsPool is the single in-memory pool: a hash-keyed set of pool
// entries, a payment-id index over them, and the aggregate key-image state
// every admission and re-validation pass checks new transactions against.
type transactionsPool struct {
	mu sync.Mutex

	currency  *cryptonote.Currency
	consensus consensusReader
	wallClock func() uint64

	transactions miningmodel.IDToPoolTransaction
	order        []externalapi.DomainHash
	byPaymentID  map[externalapi.DomainHash]map[externalapi.DomainHash]struct{}
	state        *externalapi.TransactionValidatorState

	// recentlyDeleted suppresses re-admission of a TTL-evicted hash
	// until it ages out of the mempool live-time window again.
	recentlyDeleted map[externalapi.DomainHash]uint64
}

// New returns a Mempool configured by currency, validating new and held
// transactions through consensusState.
func New(currency *cryptonote.Currency, consensusState consensusReader, wallClock func() uint64) miningmodel.Mempool {
	return &transactionsPool{
		currency:        currency,
		consensus:       consensusState,
		wallClock:       wallClock,
		transactions:    miningmodel.IDToPoolTransaction{},
		byPaymentID:     make(map[externalapi.DomainHash]map[externalapi.DomainHash]struct{}),
		state:           externalapi.NewTransactionValidatorState(),
		recentlyDeleted: make(map[externalapi.DomainHash]uint64),
	}
}

// AddTransaction implements model.Mempool.
func (tp *transactionsPool) AddTransaction(tx *externalapi.DomainTransaction) (*miningmodel.PoolTransaction, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	hash := hashserialization.TransactionHash(tx)

	if _, exists := tp.transactions[hash]; exists {
		return nil, errors.Errorf("mempool: transaction %s is already in the pool", hash)
	}
	if deletedAt, wasDeleted := tp.recentlyDeleted[hash]; wasDeleted {
		if tp.wallClock()-deletedAt < tp.currency.MempoolTxLiveTime() {
			return nil, errors.Errorf("mempool: transaction %s was recently evicted and cannot be re-added yet", hash)
		}
		delete(tp.recentlyDeleted, hash)
	}

	if err := tp.consensus.ValidateTransaction(tx); err != nil {
		return nil, err
	}

	txState := keyImageState(tx)
	if tp.state.Intersects(txState) {
		return nil, errors.Errorf("mempool: transaction %s spends a key image already in the pool", hash)
	}

	entry := tp.newPoolEntry(tx, hash)
	tp.insert(entry)

	return entry, nil
}

// RemoveTransaction implements model.Mempool.
func (tp *transactionsPool) RemoveTransaction(hash externalapi.DomainHash) bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.remove(hash)
}

// GetTransaction implements model.Mempool.
func (tp *transactionsPool) GetTransaction(hash externalapi.DomainHash) (*miningmodel.PoolTransaction, bool) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	entry, ok := tp.transactions[hash]
	return entry, ok
}

// TransactionHashes implements model.Mempool.
func (tp *transactionsPool) TransactionHashes() []externalapi.DomainHash {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	hashes := make([]externalapi.DomainHash, len(tp.order))
	copy(hashes, tp.order)
	return hashes
}

// AllTransactions implements model.Mempool.
func (tp *transactionsPool) AllTransactions() []*externalapi.DomainTransaction {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	txs := make([]*externalapi.DomainTransaction, 0, len(tp.order))
	for _, hash := range tp.order {
		txs = append(txs, tp.transactions[hash].Transaction)
	}
	return txs
}

// Changes implements model.Mempool. A mempool has no block-indexed change
// log of its own, so it reports every currently-held hash as added and
// nothing as deleted; tipStillValid is always true, since the pool itself
// never tracks which chain tip a caller last observed.
func (tp *transactionsPool) Changes(externalapi.DomainHash) (added, deleted []externalapi.DomainHash, tipStillValid bool) {
	return tp.TransactionHashes(), nil, true
}

// Clean implements model.Mempool: it evicts transactions whose received
// timestamp has aged past the mempool live-time window, then re-validates
// every survivor against the current tip, evicting whatever now fails.
// Evicted hashes are recorded in recentlyDeleted so a lagging peer cannot
// immediately push them back in.
func (tp *transactionsPool) Clean() []externalapi.DomainHash {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	now := tp.wallClock()
	liveTime := tp.currency.MempoolTxLiveTime()

	var evicted []externalapi.DomainHash
	for _, hash := range append([]externalapi.DomainHash(nil), tp.order...) {
		entry := tp.transactions[hash]
		if now-entry.ReceivedAt > liveTime {
			tp.remove(hash)
			evicted = append(evicted, hash)
			continue
		}
		if err := tp.consensus.ValidateTransaction(entry.Transaction); err != nil {
			log.Debugf("mempool cleaner: evicting %s, no longer valid: %s", hash, err)
			tp.remove(hash)
			evicted = append(evicted, hash)
		}
	}

	for _, hash := range evicted {
		tp.recentlyDeleted[hash] = now
	}

	for hash, deletedAt := range tp.recentlyDeleted {
		if now-deletedAt >= liveTime {
			delete(tp.recentlyDeleted, hash)
		}
	}

	return evicted
}

// ActualizePoolTransactions implements model.Mempool: it drains the pool
// and re-admits every held transaction against the current tip, dropping
// whatever no longer validates. Used after a chain switch, when the set of
// spent key images on the new main chain differs from the old one.
func (tp *transactionsPool) ActualizePoolTransactions() []externalapi.DomainHash {
	tp.mu.Lock()
	held := make([]*externalapi.DomainTransaction, 0, len(tp.order))
	for _, hash := range tp.order {
		held = append(held, tp.transactions[hash].Transaction)
	}
	tp.transactions = miningmodel.IDToPoolTransaction{}
	tp.order = nil
	tp.byPaymentID = make(map[externalapi.DomainHash]map[externalapi.DomainHash]struct{})
	tp.state = externalapi.NewTransactionValidatorState()
	tp.mu.Unlock()

	var dropped []externalapi.DomainHash
	for _, tx := range held {
		if _, err := tp.AddTransaction(tx); err != nil {
			dropped = append(dropped, hashserialization.TransactionHash(tx))
		}
	}
	return dropped
}

// ActualizePoolTransactionsLite implements model.Mempool.
func (tp *transactionsPool) ActualizePoolTransactionsLite(spent *externalapi.TransactionValidatorState) []externalapi.DomainHash {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	var dropped []externalapi.DomainHash
	for _, hash := range append([]externalapi.DomainHash(nil), tp.order...) {
		entry := tp.transactions[hash]
		if keyImageState(entry.Transaction).Intersects(spent) {
			tp.remove(hash)
			dropped = append(dropped, hash)
		}
	}
	return dropped
}

// BlockCandidateTransactions implements model.Mempool.
func (tp *transactionsPool) BlockCandidateTransactions() []*externalapi.DomainTransaction {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	var fusion, fee []*externalapi.DomainTransaction
	for _, hash := range tp.order {
		entry := tp.transactions[hash]
		if entry.IsFusion {
			fusion = append(fusion, entry.Transaction)
		} else {
			fee = append(fee, entry.Transaction)
		}
	}
	return append(fusion, fee...)
}

// newPoolEntry builds the pool-facing wrapper for tx, computing its fee,
// serialized size and fusion classification.
func (tp *transactionsPool) newPoolEntry(tx *externalapi.DomainTransaction, hash externalapi.DomainHash) *miningmodel.PoolTransaction {
	size := uint64(len(serialization.SerializeTransaction(tx)))
	fee := transactionFee(tx)
	return &miningmodel.PoolTransaction{
		Transaction: tx,
		Hash:        hash,
		Fee:         fee,
		Size:        size,
		IsFusion:    fee == 0 && isFusionTransaction(tx, tp.currency, size),
		ReceivedAt:  tp.wallClock(),
	}
}

// insert MUST be called with the pool mutex locked for writes.
func (tp *transactionsPool) insert(entry *miningmodel.PoolTransaction) {
	tp.transactions[entry.Hash] = entry
	tp.order = append(tp.order, entry.Hash)
	tp.state.Merge(keyImageState(entry.Transaction))

	if paymentID, ok := txextra.ExtractPaymentID(entry.Transaction.Extra); ok {
		set, ok := tp.byPaymentID[paymentID]
		if !ok {
			set = make(map[externalapi.DomainHash]struct{})
			tp.byPaymentID[paymentID] = set
		}
		set[entry.Hash] = struct{}{}
	}
}

// remove MUST be called with the pool mutex locked for writes.
func (tp *transactionsPool) remove(hash externalapi.DomainHash) bool {
	entry, ok := tp.transactions[hash]
	if !ok {
		return false
	}
	delete(tp.transactions, hash)

	for i, h := range tp.order {
		if h == hash {
			tp.order = append(tp.order[:i], tp.order[i+1:]...)
			break
		}
	}

	for _, in := range entry.Transaction.Inputs {
		if in.Kind == externalapi.InputKindKey {
			delete(tp.state.SpentKeyImages, in.KeyImage)
		}
	}

	if paymentID, ok := txextra.ExtractPaymentID(entry.Transaction.Extra); ok {
		if set, ok := tp.byPaymentID[paymentID]; ok {
			delete(set, hash)
			if len(set) == 0 {
				delete(tp.byPaymentID, paymentID)
			}
		}
	}

	return true
}

// TransactionHashesByPaymentID implements model.Mempool.
func (tp *transactionsPool) TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	set, ok := tp.byPaymentID[paymentID]
	if !ok {
		return nil
	}
	hashes := make([]externalapi.DomainHash, 0, len(set))
	for hash := range set {
		hashes = append(hashes, hash)
	}
	return hashes
}

func keyImageState(tx *externalapi.DomainTransaction) *externalapi.TransactionValidatorState {
	state := externalapi.NewTransactionValidatorState()
	for _, in := range tx.Inputs {
		if in.Kind == externalapi.InputKindKey {
			state.SpentKeyImages[in.KeyImage] = struct{}{}
		}
	}
	return state
}

func transactionFee(tx *externalapi.DomainTransaction) uint64 {
	var totalIn, totalOut uint64
	for _, in := range tx.Inputs {
		totalIn += in.KeyAmount
	}
	for _, out := range tx.Outputs {
		totalOut += out.Amount
	}
	if totalIn < totalOut {
		return 0
	}
	return totalIn - totalOut
}

// isFusionTransaction reports whether tx looks like a zero-fee output
// consolidation transaction: small enough, with enough inputs relative to
// its outputs.
func isFusionTransaction(tx *externalapi.DomainTransaction, currency *cryptonote.Currency, size uint64) bool {
	if size > currency.FusionTxMaxSize() {
		return false
	}
	if uint64(len(tx.Inputs)) < currency.FusionTxMinInputCount() {
		return false
	}
	ratio := currency.FusionTxMinInOutCountRatio()
	if ratio == 0 {
		return true
	}
	return uint64(len(tx.Inputs)) >= uint64(len(tx.Outputs))*ratio
}
