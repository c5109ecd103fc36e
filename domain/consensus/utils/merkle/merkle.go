// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package merkle exposes the block-facing entry point over the
// transaction-hash tree that package hashing computes internally.
package merkle

import (
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashing"
)

// CalculateRoot computes the Merkle root over a block's base-transaction
// hash followed by its included transaction hashes, matching the order the
// reference implementation feeds tree_hash.
func CalculateRoot(baseTransactionHash externalapi.DomainHash, transactionHashes []*externalapi.DomainHash) externalapi.DomainHash {
	leaves := make([]externalapi.DomainHash, 0, len(transactionHashes)+1)
	leaves = append(leaves, baseTransactionHash)
	for _, hash := range transactionHashes {
		leaves = append(leaves, *hash)
	}
	return hashing.TreeHash(leaves)
}
