// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2014-2018, The Monero Project
// Copyright (c) 2018, The TurtleCoin Developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package cryptonote carries the consensus-tunable parameters of a
// CryptoNote-family currency: block/tx size limits, the reward curve,
// the difficulty windows, and the fork-height schedule. It is the Go
// analogue of cryptonote_core/currency.h: a Currency built once through a
// CurrencyBuilder and handed, read-only, to every consensus process.
package cryptonote

import "math/big"

// Block major versions in ascending activation order.
const (
	BlockMajorVersion1 uint8 = 1
	BlockMajorVersion2 uint8 = 2
	BlockMajorVersion3 uint8 = 3
	BlockMajorVersion4 uint8 = 4
	BlockMajorVersion5 uint8 = 5
)

// Block minor versions, used only alongside BlockMajorVersion1/2/3.
const (
	BlockMinorVersion0 uint8 = 0
	BlockMinorVersion1 uint8 = 1
)

// UndefHeight marks a version that has not been scheduled to activate.
const UndefHeight = ^uint32(0)

// MaxExtraSize bounds the transaction extra field once its fork height is active.
const (
	MaxExtraSizeV1   = 1024 * 1024
	MaxExtraSizeV2   = 140
	MaxExtraSizePool = 1024
)

// DomainHashSize is the width in bytes of every hash used across the core.
const DomainHashSize = 32

// KeyImageSize and PublicKeySize are Ed25519-point sizes.
const (
	KeyImageSize  = 32
	PublicKeySize = 32
)

// MaxBlockNumberUnlockThreshold separates the two encodings an output's
// UnlockTime can carry: a value below the threshold is a block index, a
// value at or above it is a Unix timestamp. Conventional across the
// CryptoNote fork family.
const MaxBlockNumberUnlockThreshold = 500000000

// IsSpendTimeUnlocked reports whether unlockTime has elapsed as of
// blockIndex/blockTimestamp, branching on which of the two encodings
// unlockTime uses.
func IsSpendTimeUnlocked(unlockTime uint64, blockIndex uint32, blockTimestamp uint64) bool {
	if unlockTime < MaxBlockNumberUnlockThreshold {
		return uint64(blockIndex) >= unlockTime
	}
	return blockTimestamp >= unlockTime
}

// Currency holds every consensus-tunable parameter of the network. All
// fields are unexported; construct one with CurrencyBuilder and treat the
// result as immutable for the lifetime of the process.
type Currency struct {
	maxBlockHeight        uint32
	maxBlockBlobSize      uint64
	maxTxSize             uint64
	minedMoneyUnlockWindow uint32

	timestampCheckWindow   uint64
	blockFutureTimeLimit   uint64

	moneySupply         uint64
	emissionSpeedFactor uint
	genesisBlockReward  uint64

	rewardBlocksWindow        uint64
	blockGrantedFullRewardZone uint64
	minerTxBlobReservedSize   uint64

	numberOfDecimalPlaces uint
	coin                  uint64

	minimumFee           uint64
	defaultDustThreshold uint64

	difficultyTarget uint64
	difficultyWindow uint64
	difficultyLag    uint64
	difficultyCut    uint64

	lwmaDifficultyBlockIndex uint32

	maxBlockSizeInitial              uint64
	maxBlockSizeGrowthSpeedNumerator uint64
	maxBlockSizeGrowthSpeedDenominator uint64

	lockedTxAllowedDeltaBlocks uint64

	mempoolTxLiveTime                   uint64
	mempoolTxFromAltBlockLiveTime       uint64
	numberOfPeriodsToForgetDeletedTx    uint64

	fusionTxMaxSize            uint64
	fusionTxMinInputCount      uint64
	fusionTxMinInOutCountRatio uint64

	minMixin uint64
	maxMixin uint64

	upgradeHeights map[uint8]uint32

	powMax *big.Int

	publicAddressBase58Prefix uint64
}

// CurrencyBuilder assembles a Currency. Mirrors the chained-setter shape of
// the original CurrencyBuilder; each setter returns the receiver.
type CurrencyBuilder struct {
	c Currency
}

// NewCurrencyBuilder seeds the builder with the conservative defaults used
// throughout the reference implementation's mainnet configuration.
func NewCurrencyBuilder() *CurrencyBuilder {
	b := &CurrencyBuilder{c: Currency{
		maxBlockHeight:         500000000,
		maxBlockBlobSize:       500000000,
		maxTxSize:              1000000000,
		minedMoneyUnlockWindow: 10,

		timestampCheckWindow: 60,
		blockFutureTimeLimit: 60 * 60 * 2,

		moneySupply:         100000000000000,
		emissionSpeedFactor: 21,

		rewardBlocksWindow:        100,
		blockGrantedFullRewardZone: 10000,
		minerTxBlobReservedSize:    600,

		numberOfDecimalPlaces: 2,

		minimumFee:           10,
		defaultDustThreshold: 10,

		difficultyTarget: 90,
		difficultyWindow: 60,
		difficultyLag:    15,
		difficultyCut:    60,

		lwmaDifficultyBlockIndex: 100,

		maxBlockSizeInitial:                100000,
		maxBlockSizeGrowthSpeedNumerator:    100 * 1024,
		maxBlockSizeGrowthSpeedDenominator:  365 * 24 * 60 * 60 / 90,

		lockedTxAllowedDeltaBlocks: 1,

		mempoolTxLiveTime:                86400,
		mempoolTxFromAltBlockLiveTime:    604800,
		numberOfPeriodsToForgetDeletedTx: 5,

		fusionTxMaxSize:            4000,
		fusionTxMinInputCount:      12,
		fusionTxMinInOutCountRatio: 4,

		minMixin: 0,
		maxMixin: 100,

		upgradeHeights: map[uint8]uint32{BlockMajorVersion1: 0},

		publicAddressBase58Prefix: 0x2cca,
	}}
	b.c.coin = pow10(b.c.numberOfDecimalPlaces)
	return b
}

func pow10(n uint) uint64 {
	v := uint64(1)
	for i := uint(0); i < n; i++ {
		v *= 10
	}
	return v
}

// MaxBlockHeight sets the absolute height ceiling (a safety valve, not a
// consensus rule this core enforces directly).
func (b *CurrencyBuilder) MaxBlockHeight(v uint32) *CurrencyBuilder { b.c.maxBlockHeight = v; return b }

// MinedMoneyUnlockWindow sets the coinbase maturity window in blocks.
func (b *CurrencyBuilder) MinedMoneyUnlockWindow(v uint32) *CurrencyBuilder {
	b.c.minedMoneyUnlockWindow = v
	return b
}

// UpgradeHeight schedules majorVersion to activate at height.
func (b *CurrencyBuilder) UpgradeHeight(majorVersion uint8, height uint32) *CurrencyBuilder {
	b.c.upgradeHeights[majorVersion] = height
	return b
}

// MinimumFee sets the pool-admission minimum fee for non-fusion transactions.
func (b *CurrencyBuilder) MinimumFee(v uint64) *CurrencyBuilder { b.c.minimumFee = v; return b }

// MinMixin and MaxMixin set the ring-size bounds a transaction's inputs must
// satisfy.
func (b *CurrencyBuilder) MinMixin(v uint64) *CurrencyBuilder { b.c.minMixin = v; return b }
func (b *CurrencyBuilder) MaxMixin(v uint64) *CurrencyBuilder { b.c.maxMixin = v; return b }

// DifficultyTarget sets the target block time in seconds.
func (b *CurrencyBuilder) DifficultyTarget(v uint64) *CurrencyBuilder { b.c.difficultyTarget = v; return b }

// LWMADifficultyBlockIndex sets the height at which the LWMA difficulty
// window replaces the legacy trimmed-mean window.
func (b *CurrencyBuilder) LWMADifficultyBlockIndex(v uint32) *CurrencyBuilder {
	b.c.lwmaDifficultyBlockIndex = v
	return b
}

// PowMax sets the maximum allowed proof-of-work target (256-bit space).
func (b *CurrencyBuilder) PowMax(v *big.Int) *CurrencyBuilder { b.c.powMax = v; return b }

// PublicAddressBase58Prefix sets the varint tag prepended to an encoded
// account address, distinguishing this network's addresses from other
// CryptoNote forks.
func (b *CurrencyBuilder) PublicAddressBase58Prefix(v uint64) *CurrencyBuilder {
	b.c.publicAddressBase58Prefix = v
	return b
}

// Build finalizes the Currency, defaulting powMax to 2^256-1 when it was
// never set. It performs no other validation and never panics.
func (b *CurrencyBuilder) Build() *Currency {
	if b.c.powMax == nil {
		max := new(big.Int).Lsh(big.NewInt(1), 256)
		b.c.powMax = max.Sub(max, big.NewInt(1))
	}
	c := b.c
	return &c
}

// MinedMoneyUnlockWindow is the coinbase maturity window.
func (c *Currency) MinedMoneyUnlockWindow() uint32 { return c.minedMoneyUnlockWindow }

// MinimumFee is the pool-admission fee floor for non-fusion transactions.
func (c *Currency) MinimumFee() uint64 { return c.minimumFee }

// MinMixin and MaxMixin are the ring-size bounds mandated at any height;
// a future version could make these height-dependent the way
// DifficultyBlocksCountByBlockVersion is, but no fork changes them today.
func (c *Currency) MinMixin(uint32) uint64 { return c.minMixin }
func (c *Currency) MaxMixin(uint32) uint64 { return c.maxMixin }

// Coin is 10^numberOfDecimalPlaces, the atomic-unit scale.
func (c *Currency) Coin() uint64 { return c.coin }

// RewardBlocksWindow is the window used to compute the block-size median
// feeding into the reward penalty curve.
func (c *Currency) RewardBlocksWindow() uint64 { return c.rewardBlocksWindow }

// MinerTxBlobReservedSize is the byte budget reserved in the block-size
// cap for the coinbase transaction.
func (c *Currency) MinerTxBlobReservedSize() uint64 { return c.minerTxBlobReservedSize }

// FusionTxMaxSize, FusionTxMinInputCount, FusionTxMinInOutCountRatio gate
// whether a zero-fee transaction qualifies as a fusion transaction.
func (c *Currency) FusionTxMaxSize() uint64            { return c.fusionTxMaxSize }
func (c *Currency) FusionTxMinInputCount() uint64      { return c.fusionTxMinInputCount }
func (c *Currency) FusionTxMinInOutCountRatio() uint64 { return c.fusionTxMinInOutCountRatio }

// MempoolTxLiveTime is the TTL (seconds) after which the cleaner evicts a
// pool entry as Outdated.
func (c *Currency) MempoolTxLiveTime() uint64 { return c.mempoolTxLiveTime }

// DefaultDustThreshold is the amount-decomposition aggregation cutoff.
func (c *Currency) DefaultDustThreshold(uint32) uint64 { return c.defaultDustThreshold }

// BlockFutureTimeLimit returns the max seconds a block's timestamp may lead
// the adjusted wall clock, height-parameterized per spec §4.2 rule 3.
func (c *Currency) BlockFutureTimeLimit(uint32) uint64 { return c.blockFutureTimeLimit }

// TimestampCheckWindow returns how many of the previous block timestamps to
// take the median of, height-parameterized per spec §4.2 rule 4.
func (c *Currency) TimestampCheckWindow(uint32) uint64 { return c.timestampCheckWindow }

// DifficultyWindow, DifficultyLag, DifficultyCut are the legacy trimmed-mean
// window parameters; DifficultyBlocksCount derives the sample size the
// difficulty engine requests from the chain.
func (c *Currency) DifficultyWindow() uint64 { return c.difficultyWindow }
func (c *Currency) DifficultyLag() uint64    { return c.difficultyLag }
func (c *Currency) DifficultyCut() uint64    { return c.difficultyCut }
func (c *Currency) DifficultyTarget() uint64 { return c.difficultyTarget }

// LWMADifficultyBlockIndex is the height at which LWMA replaces the legacy window.
func (c *Currency) LWMADifficultyBlockIndex() uint32 { return c.lwmaDifficultyBlockIndex }

// DifficultyBlocksCountByBlockVersion returns the number of trailing blocks
// the difficulty engine should sample for the given version/height.
func (c *Currency) DifficultyBlocksCountByBlockVersion(height uint32) uint64 {
	if height >= c.lwmaDifficultyBlockIndex {
		return lwmaWindow + 1
	}
	return c.difficultyWindow + c.difficultyLag
}

// PowMax is the maximum proof-of-work target.
func (c *Currency) PowMax() *big.Int { return new(big.Int).Set(c.powMax) }

// PublicAddressBase58Prefix is the varint tag prepended to an encoded
// account address.
func (c *Currency) PublicAddressBase58Prefix() uint64 { return c.publicAddressBase58Prefix }

// MaxBlockCumulativeSize returns the block size ceiling at height, growing
// linearly from maxBlockSizeInitial at the configured growth speed.
func (c *Currency) MaxBlockCumulativeSize(height uint64) uint64 {
	grown := c.maxBlockSizeGrowthSpeedNumerator * height / c.maxBlockSizeGrowthSpeedDenominator
	limit := c.maxBlockSizeInitial + grown
	if limit < c.maxBlockSizeInitial {
		return c.maxBlockSizeInitial
	}
	return limit
}

// BlockGrantedFullRewardZone is the size below which no size penalty applies.
func (c *Currency) BlockGrantedFullRewardZone() uint64 { return c.blockGrantedFullRewardZone }

// UpgradeHeights exposes a copy of the version->height activation schedule.
func (c *Currency) UpgradeHeights() map[uint8]uint32 {
	out := make(map[uint8]uint32, len(c.upgradeHeights))
	for k, v := range c.upgradeHeights {
		out[k] = v
	}
	return out
}

const lwmaWindow = 60
