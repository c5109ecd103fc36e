// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package miningmanager sits between the transaction pool and a miner:
// it validates and admits incoming transactions, and assembles block
// templates by handing the pool's candidate transactions to the
// consensus core's block builder.
package miningmanager

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/miningmanager/model"
)

// MiningManager validates incoming transactions into the pool and builds
// block templates from the pool's candidates.
type MiningManager interface {
	GetBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData) (*externalapi.DomainBlock, error)
	ValidateAndInsertTransaction(tx *externalapi.DomainTransaction) (*model.PoolTransaction, error)
	RemoveTransaction(hash externalapi.DomainHash) bool
	GetTransaction(hash externalapi.DomainHash) (*model.PoolTransaction, bool)
	AllTransactions() []*externalapi.DomainTransaction
	TransactionHashes() []externalapi.DomainHash
	TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash
	Clean() []externalapi.DomainHash
	// TemplateByJobID looks up a previously issued block template by its
	// job ID. GetBlockTemplate does not return the job ID to its caller;
	// the IDs are held only in the manager's table of outstanding templates.
	TemplateByJobID(jobID string) (*externalapi.DomainBlock, bool)
}

type miningManager struct {
	consensus consensus.Consensus
	mempool   model.Mempool

	templatesMu          sync.Mutex
	outstandingTemplates map[uuid.UUID]*externalapi.DomainBlock
}

// New returns a MiningManager backed by mempool, building templates
// through consensusInstance's block builder.
func New(consensusInstance consensus.Consensus, mempool model.Mempool) MiningManager {
	return &miningManager{
		consensus:            consensusInstance,
		mempool:              mempool,
		outstandingTemplates: make(map[uuid.UUID]*externalapi.DomainBlock),
	}
}

// GetBlockTemplate implements MiningManager. Each issued template is
// tagged with a fresh job ID and retained until the next Clean() pass. The
// job ID is not returned with the template.
func (mm *miningManager) GetBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData) (*externalapi.DomainBlock, error) {
	block, err := mm.consensus.BuildBlockTemplate(coinbaseData, mm.mempool.BlockCandidateTransactions())
	if err != nil {
		return nil, err
	}

	jobID := uuid.New()
	mm.templatesMu.Lock()
	mm.outstandingTemplates[jobID] = block
	mm.templatesMu.Unlock()

	return block, nil
}

// TemplateByJobID implements MiningManager.
func (mm *miningManager) TemplateByJobID(jobID string) (*externalapi.DomainBlock, bool) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, false
	}

	mm.templatesMu.Lock()
	defer mm.templatesMu.Unlock()
	block, ok := mm.outstandingTemplates[id]
	return block, ok
}

// ValidateAndInsertTransaction implements MiningManager.
func (mm *miningManager) ValidateAndInsertTransaction(tx *externalapi.DomainTransaction) (*model.PoolTransaction, error) {
	return mm.mempool.AddTransaction(tx)
}

// RemoveTransaction implements MiningManager.
func (mm *miningManager) RemoveTransaction(hash externalapi.DomainHash) bool {
	return mm.mempool.RemoveTransaction(hash)
}

// GetTransaction implements MiningManager.
func (mm *miningManager) GetTransaction(hash externalapi.DomainHash) (*model.PoolTransaction, bool) {
	return mm.mempool.GetTransaction(hash)
}

// AllTransactions implements MiningManager.
func (mm *miningManager) AllTransactions() []*externalapi.DomainTransaction {
	return mm.mempool.AllTransactions()
}

// TransactionHashes implements MiningManager.
func (mm *miningManager) TransactionHashes() []externalapi.DomainHash {
	return mm.mempool.TransactionHashes()
}

// TransactionHashesByPaymentID implements MiningManager.
func (mm *miningManager) TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash {
	return mm.mempool.TransactionHashesByPaymentID(paymentID)
}

// Clean implements MiningManager, running the pool's periodic
// TTL-eviction and re-validation pass.
func (mm *miningManager) Clean() []externalapi.DomainHash {
	mm.templatesMu.Lock()
	mm.outstandingTemplates = make(map[uuid.UUID]*externalapi.DomainBlock)
	mm.templatesMu.Unlock()

	return mm.mempool.Clean()
}
