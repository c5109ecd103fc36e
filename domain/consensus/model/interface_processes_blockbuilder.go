package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// BlockBuilder assembles a candidate block template from the current tip,
// the pool's ready transactions, and miner-supplied coinbase data, using
// the two-phase base-transaction size-correction algorithm.
type BlockBuilder interface {
	BuildBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData,
		poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}

// TestBlockBuilder adds to BlockBuilder the method tests need to build off
// an explicit parent rather than the live tip.
type TestBlockBuilder interface {
	BlockBuilder
	BuildBlockTemplateWithParent(parentHash externalapi.DomainHash, coinbaseData *externalapi.DomainCoinbaseData,
		poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}
