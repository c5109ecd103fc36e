// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// PoolTransaction is a pending transaction's pool-facing wrapper: the
// transaction itself plus the bookkeeping the pool's admission, cleaner
// and fill-budget logic need that isn't part of consensus state.
type PoolTransaction struct {
	Transaction *externalapi.DomainTransaction
	Hash        externalapi.DomainHash
	Fee         uint64
	Size        uint64
	IsFusion    bool
	ReceivedAt  uint64
}

// IDToPoolTransaction maps a transaction hash to its pool entry.
type IDToPoolTransaction map[externalapi.DomainHash]*PoolTransaction
