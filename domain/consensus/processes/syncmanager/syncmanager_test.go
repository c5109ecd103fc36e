// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package syncmanager

import (
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// fakeChain is a chainReader test double over a simple in-memory slice.
type fakeChain struct {
	hashes []externalapi.DomainHash
}

func (f *fakeChain) TopIndex() uint32 { return uint32(len(f.hashes) - 1) }

func (f *fakeChain) HashAt(index uint32) (externalapi.DomainHash, bool) {
	if int(index) >= len(f.hashes) {
		return externalapi.DomainHash{}, false
	}
	return f.hashes[index], true
}

func (f *fakeChain) IndexOf(hash externalapi.DomainHash) (uint32, bool) {
	for i, h := range f.hashes {
		if h == hash {
			return uint32(i), true
		}
	}
	return 0, false
}

func newFakeChain(count int) *fakeChain {
	hashes := make([]externalapi.DomainHash, count)
	for i := range hashes {
		hashes[i][0] = byte(i)
		hashes[i][1] = byte(i >> 8)
	}
	return &fakeChain{hashes: hashes}
}

func TestSparseChainIncludesTipAndRoot(t *testing.T) {
	chain := newFakeChain(30)
	sm := New(chain)

	sparse := sm.SparseChain()
	if len(sparse) == 0 {
		t.Fatalf("expected a non-empty sparse chain")
	}
	if sparse[0] != chain.hashes[29] {
		t.Fatalf("expected the sparse chain to start at the tip")
	}
	if sparse[len(sparse)-1] != chain.hashes[0] {
		t.Fatalf("expected the sparse chain to end at the root")
	}
}

func TestFindCommonAncestorLocatesSharedHash(t *testing.T) {
	chain := newFakeChain(10)
	sm := New(chain)

	known := []externalapi.DomainHash{
		{0xff}, // not on the chain
		chain.hashes[4],
		chain.hashes[2],
	}

	index, ok := sm.FindCommonAncestor(known)
	if !ok {
		t.Fatalf("expected a common ancestor to be found")
	}
	if index != 4 {
		t.Fatalf("expected common ancestor index 4, got %d", index)
	}
}

func TestFindCommonAncestorReportsNoneWhenUnrelated(t *testing.T) {
	chain := newFakeChain(5)
	sm := New(chain)

	if _, ok := sm.FindCommonAncestor([]externalapi.DomainHash{{0xaa}, {0xbb}}); ok {
		t.Fatalf("expected no common ancestor for an unrelated hash list")
	}
}

func TestMainChainHashesAfterRespectsLimitAndTip(t *testing.T) {
	chain := newFakeChain(10)
	sm := New(chain)

	hashes := sm.MainChainHashesAfter(6, 2)
	if len(hashes) != 2 || hashes[0] != chain.hashes[7] || hashes[1] != chain.hashes[8] {
		t.Fatalf("expected hashes at indexes 7,8, got %v", hashes)
	}

	tail := sm.MainChainHashesAfter(8, 5)
	if len(tail) != 1 || tail[0] != chain.hashes[9] {
		t.Fatalf("expected MainChainHashesAfter to stop at the tip, got %v", tail)
	}
}
