// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// BlockValidator decides whether a candidate block may be appended to a
// given parent segment, running the contextual rules spec §4.2 lists in
// order. None of its checks mutate state.
type BlockValidator interface {
	// ValidateBlock runs every §4.2 rule for block against the segment
	// whose tip is parentIndex. transactions are the block's non-base
	// transactions, parsed, in the order TransactionHashes declares; raw
	// carries the serialized bytes the cumulative-size rules measure.
	ValidateBlock(block *externalapi.DomainBlock, transactions []*externalapi.DomainTransaction,
		raw externalapi.RawBlock, parentIndex uint32, alreadyGeneratedCoins uint64) error
}
