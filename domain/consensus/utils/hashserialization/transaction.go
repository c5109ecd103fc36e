// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package hashserialization builds the canonical binary arrays a
// transaction and a block header hash over: prefix encoding (version,
// varint-counted inputs/outputs, extra) for transactions, and the
// fixed-field header encoding for blocks.
package hashserialization

import (
	"encoding/binary"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashing"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/varint"
)

// SerializePrefix builds the canonical binary array of tx's signed prefix:
// version, unlock-time, inputs (tagged by kind), outputs, and extra. Ring
// signatures are never part of the prefix encoding.
func SerializePrefix(tx *externalapi.DomainTransaction) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, tx.Version)
	buf = varint.Encode(buf, tx.UnlockTime)

	buf = varint.Encode(buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = appendInput(buf, in)
	}

	buf = varint.Encode(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = appendOutput(buf, out)
	}

	buf = varint.Encode(buf, uint64(len(tx.Extra)))
	buf = append(buf, tx.Extra...)

	return buf
}

func appendInput(buf []byte, in *externalapi.DomainTransactionInput) []byte {
	buf = append(buf, byte(in.Kind))
	switch in.Kind {
	case externalapi.InputKindBase:
		var indexBuf [4]byte
		binary.LittleEndian.PutUint32(indexBuf[:], in.BaseBlockIndex)
		buf = append(buf, indexBuf[:]...)
	default:
		buf = varint.Encode(buf, in.KeyAmount)
		buf = varint.Encode(buf, uint64(len(in.KeyOutputIndexes)))
		for _, idx := range in.KeyOutputIndexes {
			buf = varint.Encode(buf, uint64(idx))
		}
		buf = append(buf, in.KeyImage[:]...)
	}
	return buf
}

func appendOutput(buf []byte, out *externalapi.DomainTransactionOutput) []byte {
	buf = varint.Encode(buf, out.Amount)
	buf = append(buf, byte(out.Kind))
	buf = append(buf, out.PublicKey[:]...)
	return buf
}

// PrefixHash returns cn_fast_hash over tx's canonical prefix encoding.
func PrefixHash(tx *externalapi.DomainTransaction) externalapi.DomainHash {
	return hashing.FastHash(SerializePrefix(tx))
}

// TransactionHash returns the hash a transaction is identified by on the
// chain: for version < 2 transactions, the prefix hash directly; for
// version >= 2 (including every base transaction), the 3-field hash tree
// over the prefix hash, per spec's "Transaction hashing" rule.
func TransactionHash(tx *externalapi.DomainTransaction) externalapi.DomainHash {
	prefixHash := PrefixHash(tx)
	if tx.Version < 2 {
		return prefixHash
	}
	return hashing.BaseTransactionHash(prefixHash)
}
