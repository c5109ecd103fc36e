// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package blockprocessor is the single entry point an incoming raw block
// passes through: deserialize, validate against the segment the block's
// parent owns, then hand it to the consensus state manager for insertion.
// Grounded on original_source/src/cryptonote_core/core.cpp's addNewBlock,
// which performs the same deserialize/validate/add sequence before ever
// touching the blockchain cache.
package blockprocessor

import (
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/blockchaincache"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.CNSS)

type blockProcessor struct {
	blockValidator        model.BlockValidator
	consensusStateManager model.ConsensusStateManager
}

// New instantiates a new BlockProcessor.
func New(blockValidator model.BlockValidator, consensusStateManager model.ConsensusStateManager) model.BlockProcessor {
	return &blockProcessor{
		blockValidator:        blockValidator,
		consensusStateManager: consensusStateManager,
	}
}

// ValidateAndInsertBlock implements model.BlockProcessor.
func (bp *blockProcessor) ValidateAndInsertBlock(rawBlock externalapi.RawBlock) *externalapi.AddBlockResult {
	block, err := serialization.DeserializeBlock(rawBlock.Block)
	if err != nil {
		return &externalapi.AddBlockResult{Code: externalapi.DeserializationFailed, Cause: err}
	}

	transactions := make([]*externalapi.DomainTransaction, len(rawBlock.Transactions))
	for i, raw := range rawBlock.Transactions {
		tx, _, err := serialization.DeserializeTransaction(raw)
		if err != nil {
			return &externalapi.AddBlockResult{Code: externalapi.DeserializationFailed, Cause: err}
		}
		transactions[i] = tx
	}

	parentIndex := blockchaincache.InvalidBlockIndex
	var alreadyGeneratedCoins uint64
	if !block.Header.PreviousBlockHash.IsZero() {
		index, ok := bp.consensusStateManager.IndexOf(block.Header.PreviousBlockHash)
		if !ok {
			return &externalapi.AddBlockResult{Code: externalapi.RejectedAsOrphaned}
		}
		parentIndex = index
		alreadyGeneratedCoins, _ = bp.consensusStateManager.AlreadyGeneratedCoinsAt(index)
	}

	if err := bp.blockValidator.ValidateBlock(block, transactions, rawBlock, parentIndex, alreadyGeneratedCoins); err != nil {
		return &externalapi.AddBlockResult{Code: externalapi.BlockValidationFailed, Cause: err}
	}

	return bp.consensusStateManager.AddBlock(block, transactions, rawBlock)
}
