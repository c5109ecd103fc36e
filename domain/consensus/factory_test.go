// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package consensus

import (
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

func testGenesisConfig() GenesisConfig {
	key := make([]byte, 32)
	key[0] = 0x01
	return GenesisConfig{ScriptPublicKey: key, Timestamp: 1_700_000_000}
}

func TestNewConsensusInsertsGenesis(t *testing.T) {
	currency := cryptonote.NewCurrencyBuilder().Build()

	c, err := NewFactory().NewConsensus(currency, testGenesisConfig())
	if err != nil {
		t.Fatalf("NewConsensus failed: %s", err)
	}

	if c.TopIndex() != 0 {
		t.Fatalf("expected top index 0 after genesis, got %d", c.TopIndex())
	}

	hash := c.TopHash()
	if !c.HasBlock(hash) {
		t.Fatalf("expected genesis hash %s to be known", hash)
	}

	if _, ok := c.GetRawBlock(0); !ok {
		t.Fatalf("expected raw block 0 to be retrievable")
	}
}

func TestNewConsensusRejectsShortScriptPublicKey(t *testing.T) {
	currency := cryptonote.NewCurrencyBuilder().Build()

	_, err := NewFactory().NewConsensus(currency, GenesisConfig{ScriptPublicKey: []byte{0x01}, Timestamp: 1_700_000_000})
	if err == nil {
		t.Fatalf("expected an error building genesis from a too-short script public key")
	}
}

func TestNewConsensusBuildBlockTemplateExtendsGenesis(t *testing.T) {
	currency := cryptonote.NewCurrencyBuilder().Build()

	c, err := NewFactory().NewConsensus(currency, testGenesisConfig())
	if err != nil {
		t.Fatalf("NewConsensus failed: %s", err)
	}

	key := make([]byte, 32)
	key[0] = 0x02
	template, err := c.BuildBlockTemplate(&externalapi.DomainCoinbaseData{ScriptPublicKey: key}, nil)
	if err != nil {
		t.Fatalf("BuildBlockTemplate failed: %s", err)
	}
	if template.Header.PreviousBlockHash != c.TopHash() {
		t.Fatalf("expected template to extend the current tip")
	}
}
