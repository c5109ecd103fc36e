// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2018, The TurtleCoin Developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package cryptonote

import "math/big"

// BlockReward computes the miner reward prescribed for a block, applying
// the quadratic oversize penalty from spec §4.2 rule 9:
//
//	penalized = base * size*(2*median - size) / median^2
//
// when currentBlockSize exceeds medianSize. Returns the reward, the net
// emission change (reward - fee, i.e. the penalized base reward, which is
// never negative), and false if the block's size violates the 2x-median
// hard cap.
func (c *Currency) BlockReward(medianSize, currentBlockSize, alreadyGeneratedCoins, fee uint64) (reward uint64, emissionChange int64, ok bool) {
	baseReward := c.baseReward(alreadyGeneratedCoins)

	if medianSize == 0 {
		medianSize = c.blockGrantedFullRewardZone
	}
	if medianSize < c.blockGrantedFullRewardZone {
		medianSize = c.blockGrantedFullRewardZone
	}

	if currentBlockSize > medianSize*2 {
		return 0, 0, false
	}

	penalizedReward := baseReward
	if currentBlockSize > medianSize {
		// base * size*(2*median - size) / median^2, computed with big.Int to
		// avoid the overflow a naive uint64 multiply would hit.
		size := new(big.Int).SetUint64(currentBlockSize)
		median := new(big.Int).SetUint64(medianSize)
		twoMedian := new(big.Int).Mul(median, big.NewInt(2))
		factor := new(big.Int).Sub(twoMedian, size)
		num := new(big.Int).Mul(size, factor)
		num.Mul(num, new(big.Int).SetUint64(baseReward))
		denom := new(big.Int).Mul(median, median)
		if denom.Sign() == 0 {
			return 0, 0, false
		}
		num.Div(num, denom)
		penalizedReward = num.Uint64()
	}

	reward = penalizedReward + fee
	emissionChange = int64(penalizedReward)
	return reward, emissionChange, true
}

// baseReward implements the standard CryptoNote emission curve:
//
//	base = (moneySupply - alreadyGeneratedCoins) >> emissionSpeedFactor
//
// falling back to genesisBlockReward once emission has fully tapered.
func (c *Currency) baseReward(alreadyGeneratedCoins uint64) uint64 {
	if c.moneySupply == 0 {
		return c.genesisBlockReward
	}
	remaining := c.moneySupply - alreadyGeneratedCoins
	if alreadyGeneratedCoins > c.moneySupply {
		remaining = 0
	}
	base := remaining >> c.emissionSpeedFactor
	if base == 0 {
		return c.genesisBlockReward
	}
	return base
}

// MoneySupply and EmissionSpeedFactor configure the emission curve.
func (b *CurrencyBuilder) MoneySupply(v uint64) *CurrencyBuilder        { b.c.moneySupply = v; return b }
func (b *CurrencyBuilder) EmissionSpeedFactor(v uint) *CurrencyBuilder  { b.c.emissionSpeedFactor = v; return b }
func (b *CurrencyBuilder) GenesisBlockReward(v uint64) *CurrencyBuilder { b.c.genesisBlockReward = v; return b }
