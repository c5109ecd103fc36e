// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package externalapi

// DomainBlockHeader is the fixed part of a block, independent of its
// transaction list. Matches spec §3's "fixed header": major/minor version,
// timestamp, previous-hash, nonce, and (from v2) the embedded merge-mining
// parent block.
type DomainBlockHeader struct {
	MajorVersion      uint8
	MinorVersion      uint8
	Timestamp         uint64
	PreviousBlockHash DomainHash
	Nonce             uint32

	// ParentBlock is populated only for MajorVersion >= 2, and holds the
	// bytes of the embedded (always major-version-1) merge-mining parent
	// block header, already serialized.
	ParentBlock []byte
}

// Clone returns a deep copy of the header.
func (h *DomainBlockHeader) Clone() *DomainBlockHeader {
	if h == nil {
		return nil
	}
	clone := *h
	if h.ParentBlock != nil {
		clone.ParentBlock = append([]byte(nil), h.ParentBlock...)
	}
	return &clone
}

// DomainBlock is a full block: header, coinbase (base) transaction, and the
// ordered hashes of the transactions it includes (bodies travel separately
// as a RawBlock).
type DomainBlock struct {
	Header            *DomainBlockHeader
	BaseTransaction   *DomainTransaction
	TransactionHashes []*DomainHash
}

// Clone returns a deep copy of the block.
func (b *DomainBlock) Clone() *DomainBlock {
	if b == nil {
		return nil
	}
	return &DomainBlock{
		Header:            b.Header.Clone(),
		BaseTransaction:   b.BaseTransaction.Clone(),
		TransactionHashes: CloneHashes(b.TransactionHashes),
	}
}

// RawBlock is the serialized block template bytes plus the serialized
// transaction bodies, in the order declared by TransactionHashes — the unit
// the append-only main-chain storage persists.
type RawBlock struct {
	Block        []byte
	Transactions [][]byte
}

// Clone returns a deep copy of the raw block.
func (b RawBlock) Clone() RawBlock {
	clone := RawBlock{Block: append([]byte(nil), b.Block...)}
	clone.Transactions = make([][]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		clone.Transactions[i] = append([]byte(nil), tx...)
	}
	return clone
}

// CachedBlock pairs a DomainBlock with its block hash and the block index
// it occupies once accepted. Construct with NewCachedBlock; the hash is
// supplied by the caller. It does not keep the hashing binary arrays or the
// long (PoW) hash.
type CachedBlock struct {
	Block      *DomainBlock
	blockHash  DomainHash
	blockIndex uint32
}

// NewCachedBlock wraps block together with its already computed hash and
// its block index.
func NewCachedBlock(block *DomainBlock, blockIndex uint32, hash DomainHash) *CachedBlock {
	return &CachedBlock{Block: block, blockHash: hash, blockIndex: blockIndex}
}

// BlockHash returns the memoized block hash.
func (c *CachedBlock) BlockHash() *DomainHash { return &c.blockHash }

// BlockIndex returns the height this block occupies.
func (c *CachedBlock) BlockIndex() uint32 { return c.blockIndex }

// BlockInsertionResult reports where a successfully-validated block landed,
// mirroring AddBlockErrorCode's accepted outcomes (§7) without conflating
// them with rejection reasons.
type BlockInsertionResult struct {
	VirtualSelectedParentChainChanges *SelectedParentChainChanges
}

// SelectedParentChainChanges describes a chain switch: the common-ancestor
// index, and the new main-chain hashes from that ancestor forward.
type SelectedParentChainChanges struct {
	CommonRootIndex uint32
	Added           []*DomainHash
	Removed         []*DomainHash
}
