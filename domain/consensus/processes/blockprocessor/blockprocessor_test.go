// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package blockprocessor

import (
	"errors"
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/blockchaincache"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
)

var errTestValidation = errors.New("test validation failure")

type stubBlockValidator struct {
	err            error
	gotParentIndex uint32
}

func (s *stubBlockValidator) ValidateBlock(block *externalapi.DomainBlock, transactions []*externalapi.DomainTransaction,
	raw externalapi.RawBlock, parentIndex uint32, alreadyGeneratedCoins uint64) error {
	s.gotParentIndex = parentIndex
	return s.err
}

type stubConsensusStateManager struct {
	indexes map[externalapi.DomainHash]uint32
	result  *externalapi.AddBlockResult
}

func (s *stubConsensusStateManager) AddBlock(block *externalapi.DomainBlock, transactions []*externalapi.DomainTransaction,
	raw externalapi.RawBlock) *externalapi.AddBlockResult {
	return s.result
}
func (s *stubConsensusStateManager) TopIndex() uint32                          { return 0 }
func (s *stubConsensusStateManager) TopHash() externalapi.DomainHash           { return externalapi.DomainHash{} }
func (s *stubConsensusStateManager) HashAt(uint32) (externalapi.DomainHash, bool) {
	return externalapi.DomainHash{}, false
}
func (s *stubConsensusStateManager) TimestampAt(uint32) (uint64, bool) { return 0, false }
func (s *stubConsensusStateManager) RawBlockAt(uint32) (externalapi.RawBlock, bool) {
	return externalapi.RawBlock{}, false
}
func (s *stubConsensusStateManager) IndexOf(hash externalapi.DomainHash) (uint32, bool) {
	index, ok := s.indexes[hash]
	return index, ok
}
func (s *stubConsensusStateManager) AlreadyGeneratedCoinsAt(uint32) (uint64, bool) { return 0, true }
func (s *stubConsensusStateManager) OutputKeys(uint64, []uint32, uint32) ([]*externalapi.OutputEntry, externalapi.ExtractOutputKeysResult) {
	return nil, externalapi.ExtractOutputKeysInvalidGlobalIndex
}
func (s *stubConsensusStateManager) IsKeyImageSpent(externalapi.DomainKeyImage, uint32) bool {
	return false
}
func (s *stubConsensusStateManager) RandomOutputs(uint64, int, uint32) ([]*externalapi.OutputEntry, bool) {
	return nil, false
}

func testBlock(prevHash externalapi.DomainHash) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			MajorVersion:      1,
			Timestamp:         1_700_000_000,
			PreviousBlockHash: prevHash,
		},
		BaseTransaction: &externalapi.DomainTransaction{
			DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
				Version: 2,
				Inputs:  []*externalapi.DomainTransactionInput{{Kind: externalapi.InputKindBase}},
				Outputs: []*externalapi.DomainTransactionOutput{{Kind: externalapi.OutputKindKey, Amount: 1000}},
			},
		},
	}
}

func TestValidateAndInsertBlockDeserializationFailure(t *testing.T) {
	bp := New(&stubBlockValidator{}, &stubConsensusStateManager{})

	result := bp.ValidateAndInsertBlock(externalapi.RawBlock{Block: []byte{0xff}})
	if result.Code != externalapi.DeserializationFailed {
		t.Fatalf("expected DeserializationFailed, got %v", result.Code)
	}
}

func TestValidateAndInsertBlockGenesisUsesInvalidParentIndex(t *testing.T) {
	validator := &stubBlockValidator{}
	csm := &stubConsensusStateManager{
		indexes: map[externalapi.DomainHash]uint32{},
		result:  &externalapi.AddBlockResult{Code: externalapi.AddedToMain},
	}
	bp := New(validator, csm)

	genesis := testBlock(externalapi.DomainHash{})
	raw := externalapi.RawBlock{Block: serialization.SerializeBlock(genesis)}

	result := bp.ValidateAndInsertBlock(raw)
	if result.Code != externalapi.AddedToMain {
		t.Fatalf("expected AddedToMain, got %v (cause %v)", result.Code, result.Cause)
	}
	if validator.gotParentIndex != blockchaincache.InvalidBlockIndex {
		t.Fatalf("expected InvalidBlockIndex for genesis parent, got %d", validator.gotParentIndex)
	}
}

func TestValidateAndInsertBlockRejectsOrphan(t *testing.T) {
	bp := New(&stubBlockValidator{}, &stubConsensusStateManager{indexes: map[externalapi.DomainHash]uint32{}})

	orphan := testBlock(externalapi.DomainHash{0xaa})
	raw := externalapi.RawBlock{Block: serialization.SerializeBlock(orphan)}

	result := bp.ValidateAndInsertBlock(raw)
	if result.Code != externalapi.RejectedAsOrphaned {
		t.Fatalf("expected RejectedAsOrphaned, got %v", result.Code)
	}
}

func TestValidateAndInsertBlockValidationFailure(t *testing.T) {
	validator := &stubBlockValidator{err: errTestValidation}
	csm := &stubConsensusStateManager{indexes: map[externalapi.DomainHash]uint32{}}
	bp := New(validator, csm)

	genesis := testBlock(externalapi.DomainHash{})
	raw := externalapi.RawBlock{Block: serialization.SerializeBlock(genesis)}

	result := bp.ValidateAndInsertBlock(raw)
	if result.Code != externalapi.BlockValidationFailed {
		t.Fatalf("expected BlockValidationFailed, got %v", result.Code)
	}
}
