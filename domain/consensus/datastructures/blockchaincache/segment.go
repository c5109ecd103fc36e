// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package blockchaincache implements the segment tree spec §4.1 describes:
// a forest of contiguous block ranges sharing history with their parent,
// each carrying the per-block indices (key-image spend markers, amount
// buckets, transaction/payment-id lookups, and difficulty/size prefix
// sums) needed to validate and serve queries without re-walking history.
package blockchaincache

import (
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// InvalidBlockIndex marks "no such block", mirroring the reference
// implementation's INVALID_BLOCK_INDEX sentinel.
const InvalidBlockIndex = ^uint32(0)

type txLocation struct {
	blockIndex uint32
	txIndex    uint16
}

// blockRecord is one block's worth of per-block state, retained for the
// lifetime of the segment that introduced it.
type blockRecord struct {
	cachedBlock            *externalapi.CachedBlock
	rawBlock                externalapi.RawBlock
	size                    uint64
	cumulativeDifficulty    uint64
	alreadyGeneratedCoins   uint64
	alreadyGeneratedTxCount uint64
	timestamp               uint64
}

// Segment is a contiguous block range [startIndex, startIndex+len(blocks))
// sharing history with its parent at startIndex-1. The root segment's
// parent is nil and its startIndex is 0 (the genesis block).
type Segment struct {
	parent     *Segment
	children   []*Segment
	startIndex uint32
	blocks     []blockRecord

	// keyImageSpentAt maps a spent key image to the block index, within
	// this segment, that spent it.
	keyImageSpentAt map[externalapi.DomainKeyImage]uint32

	// outputsByAmount maps an amount to the ordered list of outputs
	// introduced in this segment carrying that amount, in global-index
	// order.
	outputsByAmount map[uint64][]*externalapi.OutputEntry

	// txLocationByHash maps a transaction hash to where it lives in this
	// segment's blocks.
	txLocationByHash map[externalapi.DomainHash]txLocation

	// txHashesByPaymentID maps a payment id to the transaction hashes
	// that carry it, within this segment.
	txHashesByPaymentID map[externalapi.DomainHash][]externalapi.DomainHash
}

// NewRootSegment creates the empty root segment starting at block index 0.
func NewRootSegment() *Segment {
	return newSegment(nil, 0)
}

func newSegment(parent *Segment, startIndex uint32) *Segment {
	return &Segment{
		parent:              parent,
		startIndex:          startIndex,
		keyImageSpentAt:      make(map[externalapi.DomainKeyImage]uint32),
		outputsByAmount:      make(map[uint64][]*externalapi.OutputEntry),
		txLocationByHash:     make(map[externalapi.DomainHash]txLocation),
		txHashesByPaymentID:  make(map[externalapi.DomainHash][]externalapi.DomainHash),
	}
}

// StartIndex returns the first block index this segment owns.
func (s *Segment) StartIndex() uint32 { return s.startIndex }

// Count returns how many blocks this segment owns.
func (s *Segment) Count() int { return len(s.blocks) }

// EndIndex returns one past the last block index this segment owns.
func (s *Segment) EndIndex() uint32 { return s.startIndex + uint32(len(s.blocks)) }

// Parent returns the segment's parent, or nil for the root.
func (s *Segment) Parent() *Segment { return s.parent }

// Children returns the segment's child segments.
func (s *Segment) Children() []*Segment { return s.children }

// AddChild attaches child to s.
func (s *Segment) AddChild(child *Segment) {
	child.parent = s
	s.children = append(s.children, child)
}

// RemoveChild detaches child from s, used after a merge absorbs it.
func (s *Segment) RemoveChild(child *Segment) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// NewChild creates a brand-new, empty child segment starting at startIndex
// and attaches it to s, used to open an alternative-chain branch at a
// point s has already reached (as opposed to Split, which divides an
// existing block run).
func (s *Segment) NewChild(startIndex uint32) *Segment {
	child := newSegment(s, startIndex)
	s.AddChild(child)
	return child
}

// Owns reports whether blockIndex falls within this segment's own range
// (not a parent's).
func (s *Segment) Owns(blockIndex uint32) bool {
	return blockIndex >= s.startIndex && blockIndex < s.EndIndex()
}

// recordAt returns the blockRecord for blockIndex, which must be owned by
// this segment.
func (s *Segment) recordAt(blockIndex uint32) *blockRecord {
	return &s.blocks[blockIndex-s.startIndex]
}

// PushBlock appends a new block to the end of the segment, indexing the
// key images its transactions spend. Outputs and transaction hashes are
// indexed separately, through IndexOutput and IndexTransaction.
func (s *Segment) PushBlock(cached *externalapi.CachedBlock, raw externalapi.RawBlock, state *externalapi.TransactionValidatorState,
	size uint64, blockDifficulty uint64, generatedCoinsThisBlock uint64, txCountThisBlock uint64, timestamp uint64) {

	index := s.EndIndex()

	var prevCumDiff, prevGeneratedCoins, prevGeneratedTxCount uint64
	if len(s.blocks) > 0 {
		prev := &s.blocks[len(s.blocks)-1]
		prevCumDiff = prev.cumulativeDifficulty
		prevGeneratedCoins = prev.alreadyGeneratedCoins
		prevGeneratedTxCount = prev.alreadyGeneratedTxCount
	} else if s.parent != nil {
		prevCumDiff = s.parent.CumulativeDifficultyAt(s.startIndex - 1)
		prevGeneratedCoins = s.parent.AlreadyGeneratedCoinsAt(s.startIndex - 1)
		prevGeneratedTxCount = s.parent.AlreadyGeneratedTransactionsAt(s.startIndex - 1)
	}

	s.blocks = append(s.blocks, blockRecord{
		cachedBlock:             cached,
		rawBlock:                raw,
		size:                    size,
		cumulativeDifficulty:    prevCumDiff + blockDifficulty,
		alreadyGeneratedCoins:   prevGeneratedCoins + generatedCoinsThisBlock,
		alreadyGeneratedTxCount: prevGeneratedTxCount + txCountThisBlock,
		timestamp:               timestamp,
	})

	for keyImage := range state.SpentKeyImages {
		s.keyImageSpentAt[keyImage] = index
	}
}

// IndexOutput records a newly created output under its amount bucket so it
// can later be resolved by global index or selected as a random mixin.
func (s *Segment) IndexOutput(amount uint64, entry *externalapi.OutputEntry) {
	s.outputsByAmount[amount] = append(s.outputsByAmount[amount], entry)
}

// IndexTransaction records where a transaction hash (and, if present, its
// payment id) lives within this segment.
func (s *Segment) IndexTransaction(hash externalapi.DomainHash, blockIndex uint32, txIndex uint16, paymentID *externalapi.DomainHash) {
	s.txLocationByHash[hash] = txLocation{blockIndex: blockIndex, txIndex: txIndex}
	if paymentID != nil {
		s.txHashesByPaymentID[*paymentID] = append(s.txHashesByPaymentID[*paymentID], hash)
	}
}

// BlockAt returns the cached block at blockIndex, searching this segment
// and walking to parents for indexes it doesn't own.
func (s *Segment) BlockAt(blockIndex uint32) (*externalapi.CachedBlock, bool) {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg.recordAt(blockIndex).cachedBlock, true
		}
	}
	return nil, false
}

// RawBlockAt returns the raw block bytes at blockIndex.
func (s *Segment) RawBlockAt(blockIndex uint32) (externalapi.RawBlock, bool) {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg.recordAt(blockIndex).rawBlock, true
		}
	}
	return externalapi.RawBlock{}, false
}

// CumulativeDifficultyAt returns the cumulative difficulty through
// blockIndex.
func (s *Segment) CumulativeDifficultyAt(blockIndex uint32) uint64 {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg.recordAt(blockIndex).cumulativeDifficulty
		}
	}
	return 0
}

// AlreadyGeneratedCoinsAt returns the cumulative coin supply through
// blockIndex.
func (s *Segment) AlreadyGeneratedCoinsAt(blockIndex uint32) uint64 {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg.recordAt(blockIndex).alreadyGeneratedCoins
		}
	}
	return 0
}

// AlreadyGeneratedTransactionsAt returns the cumulative transaction count
// through blockIndex.
func (s *Segment) AlreadyGeneratedTransactionsAt(blockIndex uint32) uint64 {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg.recordAt(blockIndex).alreadyGeneratedTxCount
		}
	}
	return 0
}

// TimestampAt returns the timestamp of the block at blockIndex.
func (s *Segment) TimestampAt(blockIndex uint32) (uint64, bool) {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg.recordAt(blockIndex).timestamp, true
		}
	}
	return 0, false
}

// LastTimestamps returns up to count timestamps ending at blockIndex,
// oldest first, walking into parent segments as needed.
func (s *Segment) LastTimestamps(count int, blockIndex uint32) []uint64 {
	return s.lastUnits(count, blockIndex, func(r *blockRecord) uint64 { return r.timestamp })
}

// LastCumulativeDifficulties returns up to count cumulative-difficulty
// values ending at blockIndex, oldest first.
func (s *Segment) LastCumulativeDifficulties(count int, blockIndex uint32) []uint64 {
	return s.lastUnits(count, blockIndex, func(r *blockRecord) uint64 { return r.cumulativeDifficulty })
}

// LastBlockSizes returns up to count block-size values ending at
// blockIndex, oldest first.
func (s *Segment) LastBlockSizes(count int, blockIndex uint32) []uint64 {
	return s.lastUnits(count, blockIndex, func(r *blockRecord) uint64 { return r.size })
}

func (s *Segment) lastUnits(count int, blockIndex uint32, pick func(*blockRecord) uint64) []uint64 {
	result := make([]uint64, 0, count)
	remaining := count
	index := blockIndex
	for remaining > 0 {
		seg := s.segmentOwning(index)
		if seg == nil {
			break
		}
		for remaining > 0 && seg.Owns(index) {
			result = append(result, pick(seg.recordAt(index)))
			remaining--
			if index == 0 {
				index = InvalidBlockIndex
				break
			}
			index--
		}
		if index == InvalidBlockIndex {
			break
		}
	}
	// result is newest-first; reverse to oldest-first.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

func (s *Segment) segmentOwning(blockIndex uint32) *Segment {
	for seg := s; seg != nil; seg = seg.parent {
		if seg.Owns(blockIndex) {
			return seg
		}
	}
	return nil
}

// IsSpent reports whether keyImage was spent anywhere in the ancestry of
// blockIndex.
func (s *Segment) IsSpent(keyImage externalapi.DomainKeyImage, blockIndex uint32) bool {
	for seg := s; seg != nil; seg = seg.parent {
		if spentAt, ok := seg.keyImageSpentAt[keyImage]; ok && spentAt <= blockIndex {
			return true
		}
		if seg.startIndex == 0 {
			break
		}
	}
	return false
}

// ExtractOutputKeys resolves globalIndexes within amount's bucket,
// searching this segment's ancestry, and reports whether every output is
// both present and unlocked as of blockIndex.
func (s *Segment) ExtractOutputKeys(amount uint64, globalIndexes []uint32, blockIndex uint32, isUnlocked func(unlockTime uint64, blockIndex uint32) bool) ([]*externalapi.OutputEntry, externalapi.ExtractOutputKeysResult) {
	all := s.collectAmountBucket(amount)
	result := make([]*externalapi.OutputEntry, len(globalIndexes))
	for i, globalIndex := range globalIndexes {
		if int(globalIndex) >= len(all) {
			return nil, externalapi.ExtractOutputKeysInvalidGlobalIndex
		}
		entry := all[globalIndex]
		if !isUnlocked(entry.UnlockTime, blockIndex) {
			return nil, externalapi.ExtractOutputKeysOutputLocked
		}
		result[i] = entry
	}
	return result, externalapi.ExtractOutputKeysSuccess
}

// KeyOutputsCountForAmount returns how many enumerable outputs exist for
// amount across this segment's ancestry, as of blockIndex.
func (s *Segment) KeyOutputsCountForAmount(amount uint64, blockIndex uint32) int {
	count := 0
	for _, entry := range s.collectAmountBucket(amount) {
		if entry.BlockIndex <= blockIndex {
			count++
		}
	}
	return count
}

// collectAmountBucket walks from root to this segment, concatenating each
// segment's slice for amount in startIndex order, producing the
// global-index-ordered output list.
func (s *Segment) collectAmountBucket(amount uint64) []*externalapi.OutputEntry {
	var chain []*Segment
	for seg := s; seg != nil; seg = seg.parent {
		chain = append(chain, seg)
	}
	var all []*externalapi.OutputEntry
	for i := len(chain) - 1; i >= 0; i-- {
		all = append(all, chain[i].outputsByAmount[amount]...)
	}
	return all
}

// TransactionLocation returns the (blockIndex, txIndex) of hash within
// this segment's ancestry.
func (s *Segment) TransactionLocation(hash externalapi.DomainHash) (blockIndex uint32, txIndex uint16, found bool) {
	for seg := s; seg != nil; seg = seg.parent {
		if loc, ok := seg.txLocationByHash[hash]; ok {
			return loc.blockIndex, loc.txIndex, true
		}
	}
	return 0, 0, false
}

// TransactionHashesByPaymentID returns the transaction hashes carrying
// paymentID within this segment's ancestry.
func (s *Segment) TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash {
	var out []externalapi.DomainHash
	for seg := s; seg != nil; seg = seg.parent {
		out = append(out, seg.txHashesByPaymentID[paymentID]...)
	}
	return out
}

// Split divides s at splitBlockIndex: a new child segment is created
// owning [splitBlockIndex, s.EndIndex()), s is truncated to
// [s.startIndex, splitBlockIndex), and s's existing children are
// reattached under the new child. The new child is returned.
func (s *Segment) Split(splitBlockIndex uint32) *Segment {
	offset := int(splitBlockIndex - s.startIndex)

	child := newSegment(s, splitBlockIndex)
	child.blocks = append(child.blocks, s.blocks[offset:]...)
	s.blocks = s.blocks[:offset:offset]

	for keyImage, at := range s.keyImageSpentAt {
		if at >= splitBlockIndex {
			child.keyImageSpentAt[keyImage] = at
			delete(s.keyImageSpentAt, keyImage)
		}
	}
	for amount, entries := range s.outputsByAmount {
		var kept, moved []*externalapi.OutputEntry
		for _, entry := range entries {
			if entry.BlockIndex >= splitBlockIndex {
				moved = append(moved, entry)
			} else {
				kept = append(kept, entry)
			}
		}
		s.outputsByAmount[amount] = kept
		if len(moved) > 0 {
			child.outputsByAmount[amount] = moved
		}
	}
	for hash, loc := range s.txLocationByHash {
		if loc.blockIndex >= splitBlockIndex {
			child.txLocationByHash[hash] = loc
			delete(s.txLocationByHash, hash)
		}
	}
	for paymentID, hashes := range s.txHashesByPaymentID {
		var kept []externalapi.DomainHash
		for _, hash := range hashes {
			if loc, ok := child.txLocationByHash[hash]; ok {
				child.txHashesByPaymentID[paymentID] = append(child.txHashesByPaymentID[paymentID], hash)
				_ = loc
			} else {
				kept = append(kept, hash)
			}
		}
		s.txHashesByPaymentID[paymentID] = kept
	}

	child.children = s.children
	for _, grandchild := range child.children {
		grandchild.parent = child
	}
	s.children = []*Segment{child}

	return child
}

// MergeChild absorbs an only-child segment into s, used when a losing
// alternative-chain branch collapses to a single remaining path. child
// must be s's sole child and must immediately follow s.
func (s *Segment) MergeChild(child *Segment) {
	s.blocks = append(s.blocks, child.blocks...)
	for k, v := range child.keyImageSpentAt {
		s.keyImageSpentAt[k] = v
	}
	for amount, entries := range child.outputsByAmount {
		s.outputsByAmount[amount] = append(s.outputsByAmount[amount], entries...)
	}
	for hash, loc := range child.txLocationByHash {
		s.txLocationByHash[hash] = loc
	}
	for paymentID, hashes := range child.txHashesByPaymentID {
		s.txHashesByPaymentID[paymentID] = append(s.txHashesByPaymentID[paymentID], hashes...)
	}
	s.children = child.children
	for _, grandchild := range s.children {
		grandchild.parent = s
	}
}
