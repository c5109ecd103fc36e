// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package blockbuilder

import (
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/blockchaincache"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/coinbasemanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/upgrademanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
)

type stubChain struct {
	topIndex      uint32
	topHash       externalapi.DomainHash
	indexes       map[externalapi.DomainHash]uint32
	generated     uint64
	sizeWindow    []uint64
}

func (s *stubChain) TopIndex() uint32                { return s.topIndex }
func (s *stubChain) TopHash() externalapi.DomainHash { return s.topHash }
func (s *stubChain) IndexOf(hash externalapi.DomainHash) (uint32, bool) {
	index, ok := s.indexes[hash]
	return index, ok
}
func (s *stubChain) AlreadyGeneratedCoinsAt(uint32) (uint64, bool) { return s.generated, true }
func (s *stubChain) SizeWindow(uint32, uint64) []uint64            { return s.sizeWindow }

func genesisChain() *stubChain {
	return &stubChain{
		topIndex: blockchaincache.InvalidBlockIndex,
		topHash:  externalapi.DomainHash{},
		indexes:  map[externalapi.DomainHash]uint32{},
	}
}

func testScriptPublicKey() []byte {
	return make([]byte, 32)
}

func newTestBuilder(chain *stubChain) *blockBuilder {
	currency := cryptonote.NewCurrencyBuilder().Build()
	b := New(currency, upgrademanager.New(), coinbasemanager.New(currency), chain, func() uint64 { return 1_700_000_000 })
	return b.(*blockBuilder)
}

func TestBuildBlockTemplateGenesis(t *testing.T) {
	b := newTestBuilder(genesisChain())

	block, err := b.BuildBlockTemplate(&externalapi.DomainCoinbaseData{ScriptPublicKey: testScriptPublicKey()}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.Header.MajorVersion != cryptonote.BlockMajorVersion1 {
		t.Fatalf("expected major version 1, got %d", block.Header.MajorVersion)
	}
	if !block.Header.PreviousBlockHash.IsZero() {
		t.Fatalf("expected zero previous hash for genesis template")
	}
	if len(block.BaseTransaction.Inputs) != 1 || block.BaseTransaction.Inputs[0].Kind != externalapi.InputKindBase {
		t.Fatalf("expected a single base input")
	}
	if block.BaseTransaction.Inputs[0].BaseBlockIndex != 0 {
		t.Fatalf("expected base block index 0, got %d", block.BaseTransaction.Inputs[0].BaseBlockIndex)
	}
	if len(block.BaseTransaction.Outputs) == 0 {
		t.Fatalf("expected at least one base transaction output")
	}
}

func TestBuildBlockTemplateWithParentExtendsGivenParent(t *testing.T) {
	chain := genesisChain()
	parentHash := externalapi.DomainHash{0xaa}
	chain.indexes[parentHash] = 5
	chain.generated = 12345

	b := newTestBuilder(chain)

	block, err := b.BuildBlockTemplateWithParent(parentHash, &externalapi.DomainCoinbaseData{ScriptPublicKey: testScriptPublicKey()}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.Header.PreviousBlockHash != parentHash {
		t.Fatalf("expected previous hash to be the given parent")
	}
	if block.BaseTransaction.Inputs[0].BaseBlockIndex != 6 {
		t.Fatalf("expected base block index 6, got %d", block.BaseTransaction.Inputs[0].BaseBlockIndex)
	}
}

func TestBuildBlockTemplateWithParentUnknownParent(t *testing.T) {
	b := newTestBuilder(genesisChain())

	_, err := b.BuildBlockTemplateWithParent(externalapi.DomainHash{0xff}, &externalapi.DomainCoinbaseData{ScriptPublicKey: testScriptPublicKey()}, nil)
	if err == nil {
		t.Fatalf("expected an error for an unknown parent hash")
	}
}

func TestBuildBlockTemplateExcludesOversizedPool(t *testing.T) {
	chain := genesisChain()
	b := newTestBuilder(chain)

	oversized := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version: 2,
			Extra:   make([]byte, 200000),
		},
	}

	block, err := b.BuildBlockTemplate(&externalapi.DomainCoinbaseData{ScriptPublicKey: testScriptPublicKey()}, []*externalapi.DomainTransaction{oversized})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.TransactionHashes) != 0 {
		t.Fatalf("expected the oversized transaction to be excluded, got %d included", len(block.TransactionHashes))
	}
}

func TestBuildBlockTemplateIsDeterministicForSameInputs(t *testing.T) {
	chain := genesisChain()
	data := &externalapi.DomainCoinbaseData{ScriptPublicKey: testScriptPublicKey()}

	first, err := newTestBuilder(chain).BuildBlockTemplate(data, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newTestBuilder(chain).BuildBlockTemplate(data, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(serialization.SerializeTransaction(first.BaseTransaction)) != string(serialization.SerializeTransaction(second.BaseTransaction)) {
		t.Fatalf("expected identical base transactions for identical inputs")
	}
}
