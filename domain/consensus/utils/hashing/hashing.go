// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package hashing implements the bit-exact binary-array construction and
// fast-hash function consensus depends on: cn_fast_hash (Keccak-256) over
// canonical transaction and block binary arrays, and the PoW hash contract
// that the cryptographic-primitive layer plugs into.
package hashing

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// domainSeparatorBaseTransaction is the fixed constant mixed into a
// version >= 2 base transaction's 3-field hash tree, identifying the leaf
// as a base-transaction prefix hash rather than an arbitrary blob.
var domainSeparatorBaseTransaction = externalapi.DomainHash{}

// FastHash computes cn_fast_hash: Keccak-256 (not NIST SHA3-256) over data.
func FastHash(data []byte) externalapi.DomainHash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out externalapi.DomainHash
	h.Sum(out[:0])
	return out
}

// TreeHash computes the CryptoNote tree_hash (a binary Merkle tree with a
// duplicated-last-leaf rule for odd counts) over a leaf hash list. Used both
// for a block's transaction-hash Merkle root and, historically, for the
// base-transaction's 3-field hash tree.
func TreeHash(leaves []externalapi.DomainHash) externalapi.DomainHash {
	switch len(leaves) {
	case 0:
		return externalapi.DomainHash{}
	case 1:
		return leaves[0]
	case 2:
		return FastHash(concat(leaves[0][:], leaves[1][:]))
	}

	count := countPowerOfTwo(len(leaves))
	buf := make([]externalapi.DomainHash, count)
	copy(buf, leaves[:2*count-len(leaves)])
	for i, j := 2*count-len(leaves), 2*count-len(leaves); i < len(leaves); i, j = i+2, j+1 {
		buf[j] = FastHash(concat(leaves[i][:], leaves[i+1][:]))
	}
	for count > 1 {
		count >>= 1
		for i := 0; i < count; i++ {
			buf[i] = FastHash(concat(buf[i*2][:], buf[i*2+1][:]))
		}
	}
	return buf[0]
}

// countPowerOfTwo returns the largest power of two <= count, matching the
// reference tree_hash's leaf-folding schedule for non-power-of-two counts.
func countPowerOfTwo(count int) int {
	pow := 1
	for pow*2 <= count {
		pow *= 2
	}
	return pow
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// BaseTransactionHash computes the 3-field hash tree a version >= 2 base
// transaction hashes to: tree_hash(prefixHash, domainSeparator, padding),
// where padding is a single zero hash.
func BaseTransactionHash(prefixHash externalapi.DomainHash) externalapi.DomainHash {
	return TreeHash([]externalapi.DomainHash{prefixHash, domainSeparatorBaseTransaction, {}})
}

// BlockHashingBinaryArray builds the length-prefixed binary array a block
// hashes: a varint length prefix followed by the concatenation of the
// serialized header, the base-transaction hash, the transaction-hash Merkle
// root and the 8-byte little-endian transaction count.
func BlockHashingBinaryArray(header []byte, baseTxHash externalapi.DomainHash, txRoot externalapi.DomainHash, txCount uint64) []byte {
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], txCount)

	body := make([]byte, 0, len(header)+externalapi.DomainHashSize*2+len(countBuf))
	body = append(body, header...)
	body = append(body, baseTxHash[:]...)
	body = append(body, txRoot[:]...)
	body = append(body, countBuf[:]...)

	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(body)))
	out := make([]byte, 0, n+len(body))
	out = append(out, lenBuf[:n]...)
	return append(out, body...)
}

// PoWHasher computes a block's long (proof-of-work) hash. CryptoNight and
// its height-parameterized "soft-shell" variants are a cryptographic
// primitive outside this package's scope; callers supply a concrete
// implementation satisfying this contract.
type PoWHasher interface {
	PoWHash(blockBlob []byte, blockIndex uint32, majorVersion uint8) externalapi.DomainHash
}

// scaffoldPoWHasher stands in for CryptoNight: it runs cn_fast_hash alone,
// with neither the scratchpad expansion nor the per-height variant
// selection the real algorithm requires. Never mistake its output for a
// real proof-of-work hash; production deployments must inject a real
// CryptoNight implementation.
type scaffoldPoWHasher struct{}

// NewScaffoldPoWHasher returns the placeholder PoWHasher used where no
// production CryptoNight collaborator has been wired in yet.
func NewScaffoldPoWHasher() PoWHasher { return scaffoldPoWHasher{} }

func (scaffoldPoWHasher) PoWHash(blockBlob []byte, _ uint32, _ uint8) externalapi.DomainHash {
	return FastHash(blockBlob)
}
