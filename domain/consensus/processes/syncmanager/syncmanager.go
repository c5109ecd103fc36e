// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package syncmanager implements spec §4.8's sparse-chain handshake: the
// geometrically-thinned hash list a requester offers a peer, the
// common-ancestor search a responder runs against it, and the
// after-the-common-ancestor hash fill a requester needs to catch up.
// This is the pure chain-state half of §4.8; the wire framing and
// network transport it would ride over are external collaborators per
// spec §1's Non-goals and are not implemented here.
package syncmanager

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// chainReader is the slice of ConsensusStateManager this package needs:
// tip height and main-chain hash lookups by index or by hash.
type chainReader interface {
	TopIndex() uint32
	HashAt(index uint32) (externalapi.DomainHash, bool)
	IndexOf(hash externalapi.DomainHash) (uint32, bool)
}

// SyncManager implements model.SyncManager.
type SyncManager struct {
	chain chainReader
}

// New returns a SyncManager reading main-chain state through chain.
func New(chain chainReader) *SyncManager {
	return &SyncManager{chain: chain}
}

// SparseChain returns a geometrically-thinned list of main-chain hashes,
// newest first: every one of the last 10 indexes, then a step that
// doubles each time (matching the request-size growth a real IBD
// handshake uses to keep both small-reorg and long-reorg cases cheap),
// down to and including the root.
func (sm *SyncManager) SparseChain() []externalapi.DomainHash {
	top := sm.chain.TopIndex()

	var hashes []externalapi.DomainHash
	step := uint32(1)
	index := top
	denseUntil := int64(top) - 10
	for {
		if hash, ok := sm.chain.HashAt(index); ok {
			hashes = append(hashes, hash)
		}
		if index == 0 {
			break
		}
		if int64(index) > denseUntil {
			index--
			continue
		}
		step *= 2
		if step > index {
			index = 0
			continue
		}
		index -= step
	}
	return hashes
}

// FindCommonAncestor walks knownHashes (assumed newest first, as
// SparseChain returns them) and returns the index of the first one that
// is on the main chain, or false if none are — meaning the two chains
// share no common ancestor this node still retains (a pruned or
// unrelated chain).
func (sm *SyncManager) FindCommonAncestor(knownHashes []externalapi.DomainHash) (uint32, bool) {
	for _, hash := range knownHashes {
		if index, ok := sm.chain.IndexOf(hash); ok {
			if mainHash, ok := sm.chain.HashAt(index); ok && mainHash == hash {
				return index, true
			}
		}
	}
	return 0, false
}

// MainChainHashesAfter returns up to limit main-chain hashes strictly
// after index, oldest first, for a requester to pull and validate in
// order once FindCommonAncestor has located where the chains diverge.
func (sm *SyncManager) MainChainHashesAfter(index uint32, limit int) []externalapi.DomainHash {
	top := sm.chain.TopIndex()
	hashes := make([]externalapi.DomainHash, 0, limit)
	for i := index + 1; i <= top && len(hashes) < limit; i++ {
		hash, ok := sm.chain.HashAt(i)
		if !ok {
			break
		}
		hashes = append(hashes, hash)
	}
	return hashes
}
