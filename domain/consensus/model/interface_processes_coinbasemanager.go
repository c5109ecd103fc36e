package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// CoinbaseManager builds and validates a block's base (coinbase)
// transaction against the reward curve and the median/cumulative size
// penalty.
type CoinbaseManager interface {
	// ExpectedBaseTransaction builds the base transaction a block at
	// parentIndex+1 must carry: one BaseInput, one or more KeyOutputs
	// summing to the decomposed block reward.
	ExpectedBaseTransaction(parentIndex uint32, medianSize uint64, currentBlockSize uint64,
		alreadyGeneratedCoins uint64, fee uint64, coinbaseData *externalapi.DomainCoinbaseData) (*externalapi.DomainTransaction, error)

	// ValidateBaseTransaction checks tx against the invariants spec §3
	// names for a block's base transaction at parentIndex+1.
	ValidateBaseTransaction(tx *externalapi.DomainTransaction, parentIndex uint32, medianSize uint64,
		currentBlockSize uint64, alreadyGeneratedCoins uint64, fee uint64) error
}
