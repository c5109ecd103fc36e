// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package consensus

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/blockchaincache"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/blockbuilder"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/blockprocessor"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/blockvalidator"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/checkpoints"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/coinbasemanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/consensusstatemanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/difficultymanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/syncmanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/transactionvalidator"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/processes/upgrademanager"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashing"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/ringsignature"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
)

// GenesisConfig carries the one block-specific input a Factory needs
// beyond the Currency itself: the miner payout key and extra bytes the
// genesis base transaction is built from.
type GenesisConfig struct {
	ScriptPublicKey []byte
	ExtraData       []byte
	Timestamp       uint64
}

// Factory instantiates new Consensuses.
type Factory interface {
	NewConsensus(currency *cryptonote.Currency, genesis GenesisConfig) (Consensus, error)
}

type factory struct{}

// NewFactory creates a new Consensus factory.
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus wires every collaborator process around a fresh,
// in-memory segment tree and inserts the genesis block built from
// genesis before returning the handle.
func (f *factory) NewConsensus(currency *cryptonote.Currency, genesis GenesisConfig) (Consensus, error) {
	difficultyManager := difficultymanager.New(currency)
	upgradeManager := upgrademanager.New()
	checkpointSet := checkpoints.New()
	coinbaseManager := coinbasemanager.New(currency)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	stateManager := consensusstatemanager.New(currency, difficultyManager, rng)

	subgroupChecker := ringsignature.NewScaffoldChecker()
	curveValidator := ringsignature.NewScaffoldCurveValidator()
	ringVerifier := ringsignature.NewScaffoldRingVerifier()
	powHasher := hashing.NewScaffoldPoWHasher()

	txValidator := transactionvalidator.New(currency, stateManager, subgroupChecker, curveValidator, ringVerifier)

	wallClock := func() uint64 { return uint64(time.Now().Unix()) }

	blkValidator := blockvalidator.New(currency, stateManager, upgradeManager, checkpointSet, coinbaseManager,
		difficultyManager, txValidator, curveValidator, powHasher, wallClock)

	blkProcessor := blockprocessor.New(blkValidator, stateManager)

	blkBuilder := blockbuilder.New(currency, upgradeManager, coinbaseManager, stateManager, wallClock)

	syncMgr := syncmanager.New(stateManager)

	c := &consensus{
		blockProcessor:       blkProcessor,
		blockBuilder:         blkBuilder,
		transactionValidator: txValidator,
		stateManager:         stateManager,
		syncManager:          syncMgr,
	}

	if err := insertGenesis(c, coinbaseManager, genesis); err != nil {
		return nil, err
	}

	return c, nil
}

// insertGenesis builds the genesis base transaction through the same
// coinbaseManager the block builder uses, at the parentIndex sentinel
// that addresses "no block yet", and submits it through the ordinary
// SubmitBlock path rather than mutating the segment tree directly.
func insertGenesis(c *consensus, coinbaseManager model.CoinbaseManager, genesis GenesisConfig) error {
	baseTransaction, err := coinbaseManager.ExpectedBaseTransaction(blockchaincache.InvalidBlockIndex, 0, 0, 0, 0,
		&externalapi.DomainCoinbaseData{ScriptPublicKey: genesis.ScriptPublicKey, ExtraData: genesis.ExtraData})
	if err != nil {
		return errors.Wrap(err, "consensus: failed building genesis base transaction")
	}

	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			MajorVersion: cryptonote.BlockMajorVersion1,
			Timestamp:    genesis.Timestamp,
		},
		BaseTransaction: baseTransaction,
	}

	raw := externalapi.RawBlock{Block: serialization.SerializeBlock(block)}
	result := c.SubmitBlock(raw)
	if !result.Code.Accepted() {
		return errors.Errorf("consensus: genesis block was rejected: %s (%v)", result.Code, result.Cause)
	}
	return nil
}
