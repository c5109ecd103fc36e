// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package difficultymanager resolves the difficulty a block at a given
// height must satisfy, switching from the legacy trimmed-mean window to an
// LWMA (linearly weighted moving average) window at a configured height,
// as original_source/src/cryptonote_core/currency.h's nextDifficulty
// height-gating does.
package difficultymanager

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.DIFF)

// ErrInsufficientWindow is returned when fewer than two timestamps are
// supplied, since a difficulty estimate needs at least one interval.
var ErrInsufficientWindow = errors.New("difficultymanager: insufficient timestamp window")

// minimumDifficulty is returned before the chain has accumulated enough
// blocks to sample a difficulty window.
const minimumDifficulty = 1

type difficultyManager struct {
	currency *cryptonote.Currency
}

// New returns a DifficultyManager configured by currency.
func New(currency *cryptonote.Currency) *difficultyManager {
	return &difficultyManager{currency: currency}
}

// RequiredDifficulty resolves the difficulty the block at tipIndex+1 must
// satisfy. timestamps and cumulativeDifficulties are the trailing window
// ending at tipIndex, oldest first; callers supply a window at least as
// large as the larger of the two algorithms' requirements.
func (dm *difficultyManager) RequiredDifficulty(tipIndex uint32, timestamps []uint64, cumulativeDifficulties []uint64) (uint64, error) {
	nextIndex := tipIndex + 1
	if nextIndex < uint32(dm.currency.RewardBlocksWindow()) {
		return minimumDifficulty, nil
	}

	if nextIndex >= dm.currency.LWMADifficultyBlockIndex() {
		return dm.lwmaDifficulty(timestamps, cumulativeDifficulties)
	}
	return dm.legacyDifficulty(nextIndex, timestamps, cumulativeDifficulties)
}

// legacyDifficulty implements the trimmed-mean window: drop the
// currency's configured "cut" count of the highest and lowest timestamps
// from each end, average the remainder, and divide the cumulative
// difficulty delta across that window by the resulting target interval.
func (dm *difficultyManager) legacyDifficulty(nextIndex uint32, timestamps []uint64, cumulativeDifficulties []uint64) (uint64, error) {
	window := int(dm.currency.DifficultyBlocksCountByBlockVersion(nextIndex))
	if len(timestamps) < 2 || len(timestamps) != len(cumulativeDifficulties) {
		return 0, ErrInsufficientWindow
	}
	if len(timestamps) > window {
		timestamps = timestamps[len(timestamps)-window:]
		cumulativeDifficulties = cumulativeDifficulties[len(cumulativeDifficulties)-window:]
	}

	length := len(timestamps)
	cut := int(dm.currency.DifficultyCut())
	if length <= cut*2 {
		cut = 0
	}

	sorted := append([]uint64(nil), timestamps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	trimmed := sorted[cut : length-cut]

	timeSpan := trimmed[len(trimmed)-1] - trimmed[0]
	if timeSpan == 0 {
		timeSpan = 1
	}

	totalWork := new(big.Int).SetUint64(cumulativeDifficulties[length-1] - cumulativeDifficulties[0])
	totalWork.Mul(totalWork, big.NewInt(int64(dm.currency.DifficultyTarget())))
	totalWork.Add(totalWork, big.NewInt(int64(timeSpan)-1))
	totalWork.Div(totalWork, big.NewInt(int64(timeSpan)))

	if !totalWork.IsUint64() || totalWork.Uint64() == 0 {
		return 1, nil
	}
	return totalWork.Uint64(), nil
}

// lwmaDifficulty implements LWMA2: a linearly weighted moving average of
// solve times, weighting recent blocks more heavily, resistant to the
// timestamp manipulation the legacy trimmed mean is vulnerable to at low
// hashrate.
func (dm *difficultyManager) lwmaDifficulty(timestamps []uint64, cumulativeDifficulties []uint64) (uint64, error) {
	n := len(timestamps)
	if n < 2 {
		return minimumDifficulty, nil
	}

	target := dm.currency.DifficultyTarget()
	var weightedTimestamps int64
	var totalWeight int64

	for i := 1; i < n; i++ {
		solveTime := int64(timestamps[i]) - int64(timestamps[i-1])
		maxSolveTime := int64(target) * 6
		if solveTime < -maxSolveTime {
			solveTime = -maxSolveTime
		}
		if solveTime > maxSolveTime {
			solveTime = maxSolveTime
		}
		weight := int64(i)
		weightedTimestamps += solveTime * weight
		totalWeight += weight
	}

	if weightedTimestamps <= 0 {
		weightedTimestamps = 1
	}

	averageDifficulty := new(big.Int).SetUint64(cumulativeDifficulties[n-1] - cumulativeDifficulties[0])
	averageDifficulty.Div(averageDifficulty, big.NewInt(int64(n-1)))

	next := new(big.Int).Mul(averageDifficulty, big.NewInt(int64(target)))
	next.Mul(next, big.NewInt(totalWeight))
	denominator := big.NewInt(weightedTimestamps)
	next.Div(next, denominator)

	if !next.IsUint64() || next.Uint64() == 0 {
		return 1, nil
	}
	return next.Uint64(), nil
}
