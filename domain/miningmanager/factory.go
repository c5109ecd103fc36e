// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package miningmanager

import (
	"time"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus"
	"github.com/kryptokrona/kryptokrona-sub001/domain/miningmanager/mempool"
)

// Factory instantiates new mining managers.
type Factory interface {
	NewMiningManager(currency *cryptonote.Currency, consensusInstance consensus.Consensus) MiningManager
}

type factory struct{}

// NewMiningManager instantiates a new mining manager backed by a fresh
// transaction pool.
func (f *factory) NewMiningManager(currency *cryptonote.Currency, consensusInstance consensus.Consensus) MiningManager {
	wallClock := func() uint64 { return uint64(time.Now().Unix()) }
	txPool := mempool.New(currency, consensusInstance, wallClock)
	return New(consensusInstance, txPool)
}

// NewFactory creates a new mining manager factory.
func NewFactory() Factory {
	return &factory{}
}
