// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package blockbuilder assembles a candidate block template: it resolves
// the version and reward owed at the next height, sizes the base
// transaction against the real cumulative block size through the
// iterative correction loop original_source/src/cryptonote_core/core.cpp's
// getBlockTemplate runs (roughly lines 1540-1700), and packs in as many
// pool transactions as the cumulative size limit allows.
package blockbuilder

import (
	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/blockchaincache"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashserialization"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/serialization"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.BBLD)

// maxSizeCorrectionAttempts bounds the base-transaction size-correction
// loop, matching core.cpp's getBlockTemplate tryCount limit of 10.
const maxSizeCorrectionAttempts = 10

// chainReader is the narrow slice of the consensus state manager this
// package needs: the live tip, a hash-to-index lookup for an explicit
// parent, the emission as of a given index, and the trailing size window
// the median-size rule samples.
type chainReader interface {
	TopIndex() uint32
	TopHash() externalapi.DomainHash
	IndexOf(hash externalapi.DomainHash) (uint32, bool)
	AlreadyGeneratedCoinsAt(index uint32) (uint64, bool)
	SizeWindow(tipIndex uint32, count uint64) []uint64
}

type blockBuilder struct {
	currency        *cryptonote.Currency
	upgradeManager  model.UpgradeManager
	coinbaseManager model.CoinbaseManager
	chainState      chainReader
	wallClock       func() uint64
}

// New returns a BlockBuilder/TestBlockBuilder configured by currency.
func New(currency *cryptonote.Currency, upgradeManager model.UpgradeManager, coinbaseManager model.CoinbaseManager,
	chainState chainReader, wallClock func() uint64) model.TestBlockBuilder {

	return &blockBuilder{
		currency:        currency,
		upgradeManager:  upgradeManager,
		coinbaseManager: coinbaseManager,
		chainState:      chainState,
		wallClock:       wallClock,
	}
}

// BuildBlockTemplate implements model.BlockBuilder, extending the live
// main-chain tip.
func (b *blockBuilder) BuildBlockTemplate(coinbaseData *externalapi.DomainCoinbaseData,
	poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	return b.build(b.chainState.TopHash(), b.chainState.TopIndex(), coinbaseData, poolTransactions)
}

// BuildBlockTemplateWithParent implements model.TestBlockBuilder, extending
// an explicit parent rather than the live tip.
func (b *blockBuilder) BuildBlockTemplateWithParent(parentHash externalapi.DomainHash, coinbaseData *externalapi.DomainCoinbaseData,
	poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	parentIndex := blockchaincache.InvalidBlockIndex
	if !parentHash.IsZero() {
		index, ok := b.chainState.IndexOf(parentHash)
		if !ok {
			return nil, errors.Errorf("blockbuilder: unknown parent block %s", parentHash)
		}
		parentIndex = index
	}

	return b.build(parentHash, parentIndex, coinbaseData, poolTransactions)
}

func (b *blockBuilder) build(parentHash externalapi.DomainHash, parentIndex uint32, coinbaseData *externalapi.DomainCoinbaseData,
	poolTransactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	blockIndex := parentIndex + 1

	alreadyGeneratedCoins, _ := b.chainState.AlreadyGeneratedCoinsAt(parentIndex)

	header := &externalapi.DomainBlockHeader{
		PreviousBlockHash: parentHash,
		Timestamp:         b.wallClock(),
	}
	header.MajorVersion, header.MinorVersion, header.ParentBlock = b.resolveVersion(blockIndex)

	transactions, transactionsSize, fee, err := b.selectPoolTransactions(blockIndex, poolTransactions)
	if err != nil {
		return nil, err
	}

	medianSize := medianOf(b.chainState.SizeWindow(parentIndex, b.currency.RewardBlocksWindow()))

	hashes := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		hash := hashserialization.TransactionHash(tx)
		hashes[i] = &hash
	}

	baseTransaction, err := b.buildBaseTransaction(parentIndex, medianSize, transactionsSize, alreadyGeneratedCoins, fee, coinbaseData)
	if err != nil {
		return nil, err
	}

	return &externalapi.DomainBlock{
		Header:            header,
		BaseTransaction:   baseTransaction,
		TransactionHashes: hashes,
	}, nil
}

// resolveVersion resolves the mandatory major version at blockIndex and the
// minor version / embedded merge-mining parent that accompany it, mirroring
// core.cpp getBlockTemplate's BLOCK_MAJOR_VERSION_1/2/3 fallback ladder.
func (b *blockBuilder) resolveVersion(blockIndex uint32) (major, minor uint8, parentBlock []byte) {
	major = b.upgradeManager.MajorFor(blockIndex)
	upgradeHeights := b.currency.UpgradeHeights()
	heightOf := func(version uint8) uint32 {
		height, ok := upgradeHeights[version]
		if !ok {
			return cryptonote.UndefHeight
		}
		return height
	}

	switch {
	case major == cryptonote.BlockMajorVersion1:
		if heightOf(cryptonote.BlockMajorVersion2) == cryptonote.UndefHeight {
			minor = cryptonote.BlockMinorVersion1
		} else {
			minor = cryptonote.BlockMinorVersion0
		}
	case major >= cryptonote.BlockMajorVersion2:
		if heightOf(cryptonote.BlockMajorVersion3) == cryptonote.UndefHeight {
			if major == cryptonote.BlockMajorVersion2 {
				minor = cryptonote.BlockMinorVersion1
			} else {
				minor = cryptonote.BlockMinorVersion0
			}
		} else {
			minor = cryptonote.BlockMinorVersion0
		}
		parentBlock = serialization.SerializeHeader(&externalapi.DomainBlockHeader{MajorVersion: cryptonote.BlockMajorVersion1})
	}

	return major, minor, parentBlock
}

// selectPoolTransactions greedily takes pool transactions, in the order
// given, up to the cumulative size limit at blockIndex, and totals their
// fees and serialized size.
func (b *blockBuilder) selectPoolTransactions(blockIndex uint32, poolTransactions []*externalapi.DomainTransaction,
) (selected []*externalapi.DomainTransaction, size uint64, fee uint64, err error) {

	limit := b.currency.MaxBlockCumulativeSize(uint64(blockIndex))
	for _, tx := range poolTransactions {
		txSize := uint64(len(serialization.SerializeTransaction(tx)))
		if size+txSize > limit {
			break
		}
		txFee, err := transactionFee(tx)
		if err != nil {
			return nil, 0, 0, err
		}
		selected = append(selected, tx)
		size += txSize
		fee += txFee
	}
	return selected, size, fee, nil
}

// buildBaseTransaction runs the two-phase size-correction loop: the first
// pass sizes the base transaction against transactionsSize alone, and each
// retry pads or trims its Extra field by the delta between the cumulative
// size the last attempt assumed and the size it actually produced, until
// the two agree or maxSizeCorrectionAttempts is exhausted.
func (b *blockBuilder) buildBaseTransaction(parentIndex uint32, medianSize uint64, transactionsSize uint64,
	alreadyGeneratedCoins uint64, fee uint64, coinbaseData *externalapi.DomainCoinbaseData) (*externalapi.DomainTransaction, error) {

	cumulativeSize := transactionsSize
	data := *coinbaseData

	for attempt := 0; attempt < maxSizeCorrectionAttempts; attempt++ {
		tx, err := b.coinbaseManager.ExpectedBaseTransaction(parentIndex, medianSize, cumulativeSize, alreadyGeneratedCoins, fee, &data)
		if err != nil {
			return nil, err
		}

		actualSize := uint64(len(serialization.SerializeTransaction(tx)))
		assumedBaseSize := cumulativeSize - transactionsSize

		if actualSize > assumedBaseSize {
			cumulativeSize = transactionsSize + actualSize
			continue
		}

		if actualSize == assumedBaseSize {
			return tx, nil
		}

		delta := assumedBaseSize - actualSize
		data.ExtraData = append(append([]byte(nil), data.ExtraData...), make([]byte, delta)...)

		tx, err = b.coinbaseManager.ExpectedBaseTransaction(parentIndex, medianSize, cumulativeSize, alreadyGeneratedCoins, fee, &data)
		if err != nil {
			return nil, err
		}
		paddedSize := uint64(len(serialization.SerializeTransaction(tx)))
		if paddedSize == cumulativeSize-transactionsSize {
			return tx, nil
		}

		// The varint length prefix flipped by one byte when Extra grew;
		// trim the padding back and retry against the adjusted target.
		data.ExtraData = data.ExtraData[:len(data.ExtraData)-1]
		cumulativeSize += delta - 1
	}

	return nil, errors.New("blockbuilder: base transaction size did not converge")
}

func medianOf(values []uint64) uint64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]uint64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted[len(sorted)/2]
}

func transactionFee(tx *externalapi.DomainTransaction) (uint64, error) {
	var totalIn, totalOut uint64
	for _, in := range tx.Inputs {
		totalIn += in.KeyAmount
	}
	for _, out := range tx.Outputs {
		totalOut += out.Amount
	}
	if totalIn < totalOut {
		return 0, errors.New("blockbuilder: pool transaction inputs do not cover its outputs")
	}
	return totalIn - totalOut, nil
}
