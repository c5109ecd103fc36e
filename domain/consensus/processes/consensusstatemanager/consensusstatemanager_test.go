// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package consensusstatemanager

import (
	"math/rand"
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/difficultymanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashserialization"
)

func testCurrency() *cryptonote.Currency {
	return cryptonote.NewCurrencyBuilder().Build()
}

func newTestManager() *ConsensusStateManager {
	currency := testCurrency()
	return New(currency, difficultymanager.New(currency), rand.New(rand.NewSource(1)))
}

// block builds a block extending prevHash with a single coinbase output of
// amount paid to a deterministic one-byte public key.
func block(prevHash externalapi.DomainHash, nonce uint32, amount uint64, pubKeyByte byte) *externalapi.DomainBlock {
	base := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version: 2,
			Inputs: []*externalapi.DomainTransactionInput{{
				Kind: externalapi.InputKindBase,
			}},
			Outputs: []*externalapi.DomainTransactionOutput{{
				Kind:      externalapi.OutputKindKey,
				Amount:    amount,
				PublicKey: externalapi.DomainPublicKey{pubKeyByte},
			}},
		},
	}
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			MajorVersion:      cryptonote.BlockMajorVersion1,
			Timestamp:         1_700_000_000 + uint64(nonce),
			PreviousBlockHash: prevHash,
			Nonce:             nonce,
		},
		BaseTransaction: base,
	}
}

func rawFor(block *externalapi.DomainBlock) externalapi.RawBlock {
	return externalapi.RawBlock{Block: []byte{byte(block.Header.Nonce)}}
}

func TestAddBlockGenesis(t *testing.T) {
	csm := newTestManager()

	genesis := block(externalapi.DomainHash{}, 0, 1000, 1)
	result := csm.AddBlock(genesis, nil, rawFor(genesis))
	if result.Code != externalapi.AddedToMain {
		t.Fatalf("expected AddedToMain, got %v (cause %v)", result.Code, result.Cause)
	}
	if csm.TopIndex() != 0 {
		t.Fatalf("expected top index 0, got %d", csm.TopIndex())
	}
}

func TestAddBlockLinearExtension(t *testing.T) {
	csm := newTestManager()

	genesis := block(externalapi.DomainHash{}, 0, 1000, 1)
	csm.AddBlock(genesis, nil, rawFor(genesis))
	genesisHash := csm.TopHash()

	next := block(genesisHash, 1, 1000, 2)
	result := csm.AddBlock(next, nil, rawFor(next))
	if result.Code != externalapi.AddedToMain {
		t.Fatalf("expected AddedToMain, got %v (cause %v)", result.Code, result.Cause)
	}
	if csm.TopIndex() != 1 {
		t.Fatalf("expected top index 1, got %d", csm.TopIndex())
	}
}

func TestAddBlockAlreadyExists(t *testing.T) {
	csm := newTestManager()

	genesis := block(externalapi.DomainHash{}, 0, 1000, 1)
	csm.AddBlock(genesis, nil, rawFor(genesis))

	result := csm.AddBlock(genesis, nil, rawFor(genesis))
	if result.Code != externalapi.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", result.Code)
	}
}

func TestAddBlockRejectsOrphan(t *testing.T) {
	csm := newTestManager()

	genesis := block(externalapi.DomainHash{}, 0, 1000, 1)
	csm.AddBlock(genesis, nil, rawFor(genesis))

	orphan := block(externalapi.DomainHash{0xff}, 7, 1000, 3)
	result := csm.AddBlock(orphan, nil, rawFor(orphan))
	if result.Code != externalapi.RejectedAsOrphaned {
		t.Fatalf("expected RejectedAsOrphaned, got %v", result.Code)
	}
}

func TestAddBlockAlternativeThenSwitch(t *testing.T) {
	csm := newTestManager()

	genesis := block(externalapi.DomainHash{}, 0, 1000, 1)
	csm.AddBlock(genesis, nil, rawFor(genesis))
	genesisHash := csm.TopHash()

	mainTip := block(genesisHash, 1, 1000, 2)
	csm.AddBlock(mainTip, nil, rawFor(mainTip))
	mainHash := csm.TopHash()

	// An alternative branch off genesis cannot out-weigh the two-block main
	// chain with a single block, so it should land as AddedToAlternative.
	alt := block(genesisHash, 2, 1000, 3)
	result := csm.AddBlock(alt, nil, rawFor(alt))
	if result.Code != externalapi.AddedToAlternative {
		t.Fatalf("expected AddedToAlternative, got %v (cause %v)", result.Code, result.Cause)
	}
	if csm.TopHash() != mainHash {
		t.Fatalf("main chain tip should not have moved")
	}

	// Extending the alternative branch past main's cumulative difficulty
	// should trigger a chain switch.
	altHash := hashserialization.BlockHash(alt)

	altSecond := block(altHash, 3, 1000, 4)
	result = csm.AddBlock(altSecond, nil, rawFor(altSecond))
	if result.Code != externalapi.AddedToAlternativeAndSwitched {
		t.Fatalf("expected AddedToAlternativeAndSwitched, got %v (cause %v)", result.Code, result.Cause)
	}
	if csm.TopIndex() != 2 {
		t.Fatalf("expected top index 2 after switch, got %d", csm.TopIndex())
	}
}

func TestIsKeyImageSpentAndOutputKeys(t *testing.T) {
	csm := newTestManager()

	genesis := block(externalapi.DomainHash{}, 0, 1000, 1)
	csm.AddBlock(genesis, nil, rawFor(genesis))

	keyImage := externalapi.DomainKeyImage{0x42}
	spendTx := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version: 2,
			Inputs: []*externalapi.DomainTransactionInput{{
				Kind:             externalapi.InputKindKey,
				KeyAmount:        1000,
				KeyOutputIndexes: []uint32{0},
				KeyImage:         keyImage,
			}},
			Outputs: []*externalapi.DomainTransactionOutput{{
				Kind:      externalapi.OutputKindKey,
				Amount:    1000,
				PublicKey: externalapi.DomainPublicKey{9},
			}},
		},
	}

	next := block(csm.TopHash(), 1, 0, 2)
	result := csm.AddBlock(next, []*externalapi.DomainTransaction{spendTx}, rawFor(next))
	if result.Code != externalapi.AddedToMain {
		t.Fatalf("expected AddedToMain, got %v (cause %v)", result.Code, result.Cause)
	}

	if !csm.IsKeyImageSpent(keyImage, csm.TopIndex()) {
		t.Fatal("expected key image to be reported spent")
	}
	if csm.IsKeyImageSpent(externalapi.DomainKeyImage{0x99}, csm.TopIndex()) {
		t.Fatal("unrelated key image should not be reported spent")
	}

	entries, status := csm.OutputKeys(1000, []uint32{0}, csm.TopIndex())
	if status != externalapi.ExtractOutputKeysSuccess {
		t.Fatalf("expected success extracting output keys, got %v", status)
	}
	if len(entries) != 1 || entries[0].PublicKey != (externalapi.DomainPublicKey{1}) {
		t.Fatalf("unexpected output entries: %+v", entries)
	}
}
