// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package blockvalidator runs the contextual block-acceptance rules spec
// §4.2 lists in order, grounded on
// original_source/src/cryptonote_core/Currency.cpp's checkBlockVersion/
// checkParentBlockSize/checkBlockTimestamp and core.cpp's block-acceptance
// pipeline in addNewBlock.
package blockvalidator

import (
	"math/bits"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/errors/ruleerrors"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashing"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashserialization"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/ringsignature"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.VALD)

// chainReader is the narrow slice of the consensus state manager this
// package needs to resolve a candidate block's context: the trailing
// windows the timestamp, size-penalty and difficulty rules sample, and the
// hash at a given main-chain index the checkpoint rule pins against.
type chainReader interface {
	HashAt(index uint32) (externalapi.DomainHash, bool)

	// TimestampWindow returns up to count of the trailing block
	// timestamps ending at tipIndex, oldest first.
	TimestampWindow(tipIndex uint32, count uint64) []uint64

	// SizeWindow returns up to count of the trailing block cumulative
	// sizes ending at tipIndex, oldest first.
	SizeWindow(tipIndex uint32, count uint64) []uint64

	// DifficultyWindow returns up to count of the trailing block
	// timestamps and cumulative difficulties ending at tipIndex, oldest
	// first, aligned by index.
	DifficultyWindow(tipIndex uint32, count uint64) (timestamps []uint64, cumulativeDifficulties []uint64)
}

type blockValidator struct {
	currency *cryptonote.Currency

	chainState           chainReader
	upgradeManager       model.UpgradeManager
	checkpoints          model.CheckpointSet
	coinbaseManager      model.CoinbaseManager
	difficultyManager    model.DifficultyManager
	transactionValidator model.TransactionValidator
	curveValidator       ringsignature.CurveValidator

	powHasher hashing.PoWHasher

	wallClock func() uint64
}

// New returns a BlockValidator configured by currency and its collaborator
// processes. wallClock supplies the current adjusted time for the
// future-timestamp rule; pass a function wrapping time.Now().Unix() in
// production and a deterministic stub in tests.
func New(currency *cryptonote.Currency, chainState chainReader, upgradeManager model.UpgradeManager,
	checkpoints model.CheckpointSet, coinbaseManager model.CoinbaseManager, difficultyManager model.DifficultyManager,
	transactionValidator model.TransactionValidator, curveValidator ringsignature.CurveValidator,
	powHasher hashing.PoWHasher, wallClock func() uint64) *blockValidator {

	return &blockValidator{
		currency:             currency,
		chainState:           chainState,
		upgradeManager:       upgradeManager,
		checkpoints:          checkpoints,
		coinbaseManager:      coinbaseManager,
		difficultyManager:    difficultyManager,
		transactionValidator: transactionValidator,
		curveValidator:       curveValidator,
		powHasher:            powHasher,
		wallClock:            wallClock,
	}
}

// ValidateBlock runs every §4.2 rule, in the order the spec lists them,
// against block as a candidate to extend the segment whose tip is
// parentIndex.
func (v *blockValidator) ValidateBlock(block *externalapi.DomainBlock, transactions []*externalapi.DomainTransaction,
	raw externalapi.RawBlock, parentIndex uint32, alreadyGeneratedCoins uint64) error {

	blockIndex := parentIndex + 1

	if err := v.checkVersion(block.Header, blockIndex); err != nil {
		return err
	}
	if err := v.checkTimestamp(block.Header, blockIndex); err != nil {
		return err
	}

	currentBlockSize := uint64(len(raw.Block))
	for _, tx := range raw.Transactions {
		currentBlockSize += uint64(len(tx))
	}
	medianSize := medianOf(v.chainState.SizeWindow(parentIndex, v.currency.RewardBlocksWindow()))

	var fee uint64
	for _, tx := range transactions {
		txFee, err := transactionFee(tx)
		if err != nil {
			return err
		}
		fee += txFee
	}

	if err := v.checkBaseTransaction(block.BaseTransaction, parentIndex, medianSize, currentBlockSize, alreadyGeneratedCoins, fee); err != nil {
		return err
	}
	if err := v.checkCumulativeSize(currentBlockSize, blockIndex); err != nil {
		return err
	}
	if err := v.checkTransactions(transactions, blockIndex); err != nil {
		return err
	}
	if err := v.checkProofOfWork(block, parentIndex, blockIndex); err != nil {
		return err
	}

	return nil
}

// checkVersion is rule 1 (and rule 2 for the embedded merge-mining parent).
func (v *blockValidator) checkVersion(header *externalapi.DomainBlockHeader, blockIndex uint32) error {
	expected := v.upgradeManager.MajorFor(blockIndex)
	if header.MajorVersion != expected {
		return ruleerrors.Newf(ruleerrors.ErrWrongBlockVersion,
			"block major version %d does not match the version %d required at index %d",
			header.MajorVersion, expected, blockIndex)
	}

	if header.MajorVersion >= cryptonote.BlockMajorVersion2 {
		if len(header.ParentBlock) == 0 {
			return ruleerrors.New(ruleerrors.ErrParentBlockWrongVersion, "merge-mined block is missing its embedded parent block")
		}
		if header.ParentBlock[0] != cryptonote.BlockMajorVersion1 {
			return ruleerrors.New(ruleerrors.ErrParentBlockWrongVersion, "merge-mined parent block major version must be 1")
		}
		if len(header.ParentBlock) > parentBlockMaxSize {
			return ruleerrors.Newf(ruleerrors.ErrParentBlockSizeTooBig,
				"merge-mined parent block is %d bytes, exceeding the %d byte maximum", len(header.ParentBlock), parentBlockMaxSize)
		}
	}

	return nil
}

// parentBlockMaxSize bounds the embedded merge-mining parent block's
// serialized size, per spec §4.2 rule 2.
const parentBlockMaxSize = 2048

// checkTimestamp is rules 3 and 4.
func (v *blockValidator) checkTimestamp(header *externalapi.DomainBlockHeader, blockIndex uint32) error {
	limit := v.wallClock() + v.currency.BlockFutureTimeLimit(blockIndex)
	if header.Timestamp > limit {
		return ruleerrors.Newf(ruleerrors.ErrTimestampTooFarInFuture,
			"block timestamp %d is more than %d seconds ahead of the adjusted time",
			header.Timestamp, v.currency.BlockFutureTimeLimit(blockIndex))
	}

	window := v.chainState.TimestampWindow(blockIndex-1, v.currency.TimestampCheckWindow(blockIndex))
	if uint64(len(window)) < v.currency.TimestampCheckWindow(blockIndex) {
		return nil
	}
	median := medianOf(window)
	if header.Timestamp < median {
		return ruleerrors.Newf(ruleerrors.ErrTimestampTooFarInPast,
			"block timestamp %d is before the median %d of the preceding window", header.Timestamp, median)
	}

	return nil
}

// checkBaseTransaction is rules 5, 6, 7 and (via the expected-reward
// comparison coinbaseManager performs) 9.
func (v *blockValidator) checkBaseTransaction(tx *externalapi.DomainTransaction, parentIndex uint32,
	medianSize uint64, currentBlockSize uint64, alreadyGeneratedCoins uint64, fee uint64) error {

	for _, out := range tx.Outputs {
		if out.Kind != externalapi.OutputKindKey {
			return ruleerrors.New(ruleerrors.ErrBaseTransactionWrongOutputKind, "base transaction output is not a KeyOutput")
		}
		if out.Amount == 0 {
			return ruleerrors.New(ruleerrors.ErrTransactionOutputZeroAmount, "base transaction output has a zero amount")
		}
		if !v.curveValidator.IsCurveValid(out.PublicKey) {
			return ruleerrors.New(ruleerrors.ErrTransactionInvalidRingSignature, "base transaction output key is not curve-valid")
		}
	}

	return v.coinbaseManager.ValidateBaseTransaction(tx, parentIndex, medianSize, currentBlockSize, alreadyGeneratedCoins, fee)
}

// checkCumulativeSize is rule 8.
func (v *blockValidator) checkCumulativeSize(currentBlockSize uint64, blockIndex uint32) error {
	limit := v.currency.MaxBlockCumulativeSize(uint64(blockIndex))
	if currentBlockSize > limit {
		return ruleerrors.Newf(ruleerrors.ErrCumulativeBlockSizeTooBig,
			"block cumulative size %d exceeds the maximum %d allowed at index %d", currentBlockSize, limit, blockIndex)
	}
	return nil
}

// checkTransactions is rule 10: every included transaction validates, and
// together they share no key image.
func (v *blockValidator) checkTransactions(transactions []*externalapi.DomainTransaction, blockIndex uint32) error {
	tipIndex := blockIndex - 1
	seen := make(map[externalapi.DomainKeyImage]struct{})

	for _, tx := range transactions {
		if err := v.transactionValidator.ValidateSemantically(tx); err != nil {
			return err
		}
		if err := v.transactionValidator.ValidateInContext(tx, tipIndex); err != nil {
			return err
		}
		for _, in := range tx.Inputs {
			if _, exists := seen[in.KeyImage]; exists {
				return ruleerrors.New(ruleerrors.ErrTransactionDuplicateKeyImage,
					"block contains two transactions spending the same key image")
			}
			seen[in.KeyImage] = struct{}{}
		}
	}

	return nil
}

// checkProofOfWork is rule 11: a checkpointed height must match its pinned
// hash; otherwise the long hash must satisfy the required difficulty.
func (v *blockValidator) checkProofOfWork(block *externalapi.DomainBlock, parentIndex uint32, blockIndex uint32) error {
	blockHash := hashserialization.BlockHash(block)

	if v.checkpoints.IsInCheckpointZone(blockIndex) {
		ok, isCheckpoint := v.checkpoints.CheckBlock(blockIndex, blockHash)
		if isCheckpoint && !ok {
			return ruleerrors.Newf(ruleerrors.ErrCheckpointBlockHashMismatch,
				"block hash at index %d does not match the pinned checkpoint", blockIndex)
		}
		if ok {
			return nil
		}
	}

	timestamps, cumulativeDifficulties := v.chainState.DifficultyWindow(parentIndex, v.currency.DifficultyBlocksCountByBlockVersion(blockIndex))
	difficulty, err := v.difficultyManager.RequiredDifficulty(parentIndex, timestamps, cumulativeDifficulties)
	if err != nil {
		return err
	}

	headerBytes := hashserialization.SerializeHeader(block.Header)
	longHash := v.powHasher.PoWHash(headerBytes, blockIndex, block.Header.MajorVersion)

	if !hashMeetsDifficulty(longHash, difficulty) {
		return ruleerrors.Newf(ruleerrors.ErrProofOfWorkTooWeak,
			"block long hash does not satisfy the required difficulty of %d", difficulty)
	}

	return nil
}

// hashMeetsDifficulty checks hash*difficulty fits in 192 bits, the
// overflow-free carry-chain test the reference check_hash performs without
// a big-integer division: hash is treated as a 256-bit little-endian
// integer split into four 64-bit words, multiplied word-by-word against
// difficulty with carry propagation into a 320-bit product; the top two
// words (bits 192-319) must be zero.
func hashMeetsDifficulty(hash externalapi.DomainHash, difficulty uint64) bool {
	if difficulty == 0 {
		return false
	}

	var carry, word3 uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(littleEndianWord(hash, i), difficulty)
		sum, carryOut := bits.Add64(lo, carry, 0)
		carry = hi + carryOut
		if i == 3 {
			word3 = sum
		}
	}

	return word3 == 0 && carry == 0
}

func littleEndianWord(hash externalapi.DomainHash, word int) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(hash[word*8+i]) << (8 * i)
	}
	return v
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
		return 0, ruleerrors.New(ruleerrors.ErrTransactionInputsOutputsMismatch, "transaction input amount does not cover its outputs")
	}
	return totalIn - totalOut, nil
}
