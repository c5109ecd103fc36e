// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package hashserialization

import (
	"encoding/binary"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashing"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/merkle"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/varint"
)

// SerializeHeader builds the fixed-field binary array of a block header:
// major/minor version, timestamp, previous-block hash, the embedded
// merge-mining parent block (v>=2 only), and the nonce.
func SerializeHeader(header *externalapi.DomainBlockHeader) []byte {
	buf := make([]byte, 0, 64+len(header.ParentBlock))
	buf = append(buf, header.MajorVersion, header.MinorVersion)
	buf = varint.Encode(buf, header.Timestamp)
	buf = append(buf, header.PreviousBlockHash[:]...)

	if header.MajorVersion >= 2 {
		buf = append(buf, header.ParentBlock...)
	}

	var nonceBuf [4]byte
	binary.LittleEndian.PutUint32(nonceBuf[:], header.Nonce)
	buf = append(buf, nonceBuf[:]...)
	return buf
}

// BlockHash computes a block's identifying hash: cn_fast_hash over the
// length-prefixed binary array of (serialized header, base-transaction
// hash, transaction-hash Merkle root, transaction count).
func BlockHash(block *externalapi.DomainBlock) externalapi.DomainHash {
	baseTxHash := TransactionHash(block.BaseTransaction)
	txRoot := merkle.CalculateRoot(baseTxHash, block.TransactionHashes)
	headerBytes := SerializeHeader(block.Header)
	blob := hashing.BlockHashingBinaryArray(headerBytes, baseTxHash, txRoot, uint64(len(block.TransactionHashes))+1)
	return hashing.FastHash(blob)
}
