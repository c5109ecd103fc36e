package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// SyncManager implements the sparse-chain handshake spec §4.8 describes:
// a geometrically-thinned list of known hashes from the requester, and the
// tail of the main chain past the most recent common block from the
// responder.
type SyncManager interface {
	// SparseChain returns a geometrically-thinned list of main-chain
	// hashes, newest first, sparser with distance from the tip.
	SparseChain() []externalapi.DomainHash

	// FindCommonAncestor walks knownHashes (assumed newest first) and
	// returns the index of the first one that is on the main chain, or
	// false if none are.
	FindCommonAncestor(knownHashes []externalapi.DomainHash) (uint32, bool)

	// MainChainHashesAfter returns up to limit main-chain hashes
	// strictly after index.
	MainChainHashesAfter(index uint32, limit int) []externalapi.DomainHash
}
