// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package blockchaincache

import (
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// Forest owns the segment tree rooted at the genesis block: the set of
// live leaf segments (main chain plus alternative chains), and the hash
// and block index indices needed to find which segment owns a given
// block without walking the whole tree.
type Forest struct {
	root *Segment
	main *Segment // the leaf segment currently on the main chain

	leaves []*Segment

	blockIndexByHash map[externalapi.DomainHash]uint32
	segmentByHash    map[externalapi.DomainHash]*Segment
}

// NewForest creates a forest with a single empty root segment, which is
// also the initial main-chain leaf.
func NewForest() *Forest {
	root := NewRootSegment()
	return &Forest{
		root:             root,
		main:             root,
		leaves:           []*Segment{root},
		blockIndexByHash: make(map[externalapi.DomainHash]uint32),
		segmentByHash:    make(map[externalapi.DomainHash]*Segment),
	}
}

// MainLeaf returns the segment currently holding the main-chain tip.
func (f *Forest) MainLeaf() *Segment { return f.main }

// TopIndex returns the main chain's tip block index, or InvalidBlockIndex
// if the chain is empty (only the genesis slot reserved, nothing pushed).
func (f *Forest) TopIndex() uint32 {
	if f.main.EndIndex() == 0 {
		return InvalidBlockIndex
	}
	return f.main.EndIndex() - 1
}

// HasBlock reports whether hash is known anywhere in the forest.
func (f *Forest) HasBlock(hash externalapi.DomainHash) bool {
	_, ok := f.blockIndexByHash[hash]
	return ok
}

// BlockIndexOf returns the block index of hash, if known.
func (f *Forest) BlockIndexOf(hash externalapi.DomainHash) (uint32, bool) {
	index, ok := f.blockIndexByHash[hash]
	return index, ok
}

// FindSegmentContainingBlock returns the segment owning blockIndex,
// probing the main-chain leaf first as spec §4.1 directs.
func (f *Forest) FindSegmentContainingBlock(blockIndex uint32) (*Segment, bool) {
	if seg := f.main.segmentOwning(blockIndex); seg != nil {
		return seg, true
	}
	for _, leaf := range f.leaves {
		if leaf == f.main {
			continue
		}
		if seg := leaf.segmentOwning(blockIndex); seg != nil {
			return seg, true
		}
	}
	return nil, false
}

// FindSegmentContainingHash returns the segment owning hash.
func (f *Forest) FindSegmentContainingHash(hash externalapi.DomainHash) (*Segment, bool) {
	seg, ok := f.segmentByHash[hash]
	return seg, ok
}

// RegisterBlock records hash's location once pushed, so future lookups
// don't need to walk the tree.
func (f *Forest) RegisterBlock(hash externalapi.DomainHash, index uint32, segment *Segment) {
	f.blockIndexByHash[hash] = index
	f.segmentByHash[hash] = segment
}

// AddLeaf registers a newly created segment as a leaf (the result of a
// split, or a brand-new chain branching off an existing block).
func (f *Forest) AddLeaf(segment *Segment) {
	f.leaves = append(f.leaves, segment)
}

// RemoveLeaf removes segment from the leaf set, used once it gains a
// child (stops being a leaf) or is merged away.
func (f *Forest) RemoveLeaf(segment *Segment) {
	for i, leaf := range f.leaves {
		if leaf == segment {
			f.leaves = append(f.leaves[:i], f.leaves[i+1:]...)
			return
		}
	}
}

// Leaves returns the current leaf segments.
func (f *Forest) Leaves() []*Segment { return f.leaves }

// HeaviestLeaf returns the leaf with the greatest cumulative difficulty at
// its own tip, which the main-chain leaf must always equal by invariant.
func (f *Forest) HeaviestLeaf() *Segment {
	var best *Segment
	var bestDiff uint64
	for _, leaf := range f.leaves {
		if leaf.EndIndex() == 0 {
			continue
		}
		diff := leaf.CumulativeDifficultyAt(leaf.EndIndex() - 1)
		if best == nil || diff > bestDiff {
			best = leaf
			bestDiff = diff
		}
	}
	if best == nil {
		return f.root
	}
	return best
}

// SwitchMain updates the main-chain leaf pointer. Callers recompute the
// raw-block file and notify observers separately; this only updates the
// forest's notion of which leaf is main.
func (f *Forest) SwitchMain(newMain *Segment) {
	f.main = newMain
}

// PathFromRoot returns the chain of segments from the root down to s,
// root first.
func PathFromRoot(s *Segment) []*Segment {
	var chain []*Segment
	for seg := s; seg != nil; seg = seg.parent {
		chain = append(chain, seg)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// CommonAncestorIndex returns the highest block index shared by a and b's
// ancestries (the last block before their paths diverge), or
// InvalidBlockIndex if they share nothing but an empty root.
func CommonAncestorIndex(a, b *Segment) uint32 {
	pathA := PathFromRoot(a)
	pathB := PathFromRoot(b)
	var common uint32 = InvalidBlockIndex
	for i := 0; i < len(pathA) && i < len(pathB); i++ {
		if pathA[i] != pathB[i] {
			break
		}
		if pathA[i].EndIndex() > 0 {
			common = pathA[i].EndIndex() - 1
		}
	}
	return common
}
