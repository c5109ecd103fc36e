// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package miningmanager

import (
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

func newTestConsensus(t *testing.T) (consensus.Consensus, *cryptonote.Currency) {
	t.Helper()
	currency := cryptonote.NewCurrencyBuilder().Build()
	key := make([]byte, 32)
	key[0] = 0x01
	c, err := consensus.NewFactory().NewConsensus(currency, consensus.GenesisConfig{
		ScriptPublicKey: key, Timestamp: 1_700_000_000,
	})
	if err != nil {
		t.Fatalf("NewConsensus failed: %s", err)
	}
	return c, currency
}

func TestMiningManagerGetBlockTemplateWithEmptyPool(t *testing.T) {
	c, currency := newTestConsensus(t)
	mm := NewFactory().NewMiningManager(currency, c)

	key := make([]byte, 32)
	key[0] = 0x02
	block, err := mm.GetBlockTemplate(&externalapi.DomainCoinbaseData{ScriptPublicKey: key})
	if err != nil {
		t.Fatalf("GetBlockTemplate failed: %s", err)
	}
	if block.Header.PreviousBlockHash != c.TopHash() {
		t.Fatalf("expected the template to extend the current tip")
	}
}

func TestMiningManagerGetBlockTemplateIsResolvableByJobID(t *testing.T) {
	c, currency := newTestConsensus(t)
	mm := NewFactory().NewMiningManager(currency, c).(*miningManager)

	key := make([]byte, 32)
	key[0] = 0x03
	block, err := mm.GetBlockTemplate(&externalapi.DomainCoinbaseData{ScriptPublicKey: key})
	if err != nil {
		t.Fatalf("GetBlockTemplate failed: %s", err)
	}

	if _, ok := mm.TemplateByJobID("not-a-uuid"); ok {
		t.Fatalf("expected an unparsable job ID to resolve to nothing")
	}

	found := false
	for jobID, issued := range mm.outstandingTemplates {
		if issued == block {
			if _, ok := mm.TemplateByJobID(jobID.String()); !ok {
				t.Fatalf("expected TemplateByJobID to resolve the job ID it was issued")
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected GetBlockTemplate to register an outstanding template")
	}
}

func TestMiningManagerCleanDropsOutstandingTemplates(t *testing.T) {
	c, currency := newTestConsensus(t)
	mm := NewFactory().NewMiningManager(currency, c).(*miningManager)

	key := make([]byte, 32)
	key[0] = 0x04
	if _, err := mm.GetBlockTemplate(&externalapi.DomainCoinbaseData{ScriptPublicKey: key}); err != nil {
		t.Fatalf("GetBlockTemplate failed: %s", err)
	}

	mm.Clean()

	if len(mm.outstandingTemplates) != 0 {
		t.Fatalf("expected Clean to drop all outstanding templates, got %d", len(mm.outstandingTemplates))
	}
}

func TestMiningManagerRejectsSemanticallyInvalidTransaction(t *testing.T) {
	c, currency := newTestConsensus(t)
	mm := NewFactory().NewMiningManager(currency, c)

	tx := &externalapi.DomainTransaction{}
	if _, err := mm.ValidateAndInsertTransaction(tx); err == nil {
		t.Fatalf("expected an empty transaction to be rejected")
	}
}
