// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package coinbasemanager builds and validates a block's base (coinbase)
// transaction: one BaseInput carrying the block index, and one or more
// KeyOutputs summing to the decomposed block reward, following
// original_source/src/cryptonote_core/core.cpp's fillBlockTemplate /
// miner-tx construction.
package coinbasemanager

import (
	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/errors/ruleerrors"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/amount"
)

const scriptPublicKeyMaxLength = 150

type coinbaseManager struct {
	currency *cryptonote.Currency
}

// New returns a CoinbaseManager configured by currency.
func New(currency *cryptonote.Currency) *coinbaseManager {
	return &coinbaseManager{currency: currency}
}

func (c *coinbaseManager) checkScriptPublicKey(scriptPublicKey []byte) error {
	if len(scriptPublicKey) > scriptPublicKeyMaxLength {
		return ruleerrors.Newf(ruleerrors.ErrBaseTransactionEmptyOutputs,
			"coinbase payload script public key is longer than the max allowed length of %d", scriptPublicKeyMaxLength)
	}
	return nil
}

// ExpectedBaseTransaction builds the base transaction a block at
// parentIndex+1 must carry.
func (c *coinbaseManager) ExpectedBaseTransaction(parentIndex uint32, medianSize uint64, currentBlockSize uint64,
	alreadyGeneratedCoins uint64, fee uint64, coinbaseData *externalapi.DomainCoinbaseData) (*externalapi.DomainTransaction, error) {

	if err := c.checkScriptPublicKey(coinbaseData.ScriptPublicKey); err != nil {
		return nil, err
	}

	blockIndex := parentIndex + 1

	reward, _, ok := c.currency.BlockReward(medianSize, currentBlockSize, alreadyGeneratedCoins, fee)
	if !ok {
		return nil, errors.New("coinbasemanager: block reward computation failed, block is oversized")
	}

	chunks := amount.Decompose(reward, c.currency.DefaultDustThreshold(blockIndex))

	key, err := publicKeyFromScript(coinbaseData.ScriptPublicKey)
	if err != nil {
		return nil, err
	}

	outputs := make([]*externalapi.DomainTransactionOutput, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == 0 {
			continue
		}
		outputs = append(outputs, &externalapi.DomainTransactionOutput{
			Kind:      externalapi.OutputKindKey,
			Amount:    chunk,
			PublicKey: key,
		})
	}

	tx := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version:    2,
			UnlockTime: uint64(blockIndex) + uint64(c.currency.MinedMoneyUnlockWindow()),
			Inputs: []*externalapi.DomainTransactionInput{{
				Kind:           externalapi.InputKindBase,
				BaseBlockIndex: blockIndex,
			}},
			Outputs: outputs,
			Extra:   coinbaseData.ExtraData,
		},
	}

	return tx, nil
}

// ValidateBaseTransaction checks tx against the base-transaction
// invariants: single BaseInput at parentIndex+1, matching unlock time, and
// outputs summing to the expected block reward.
func (c *coinbaseManager) ValidateBaseTransaction(tx *externalapi.DomainTransaction, parentIndex uint32, medianSize uint64,
	currentBlockSize uint64, alreadyGeneratedCoins uint64, fee uint64) error {

	if len(tx.Inputs) != 1 {
		return ruleerrors.New(ruleerrors.ErrBaseTransactionWrongInputCount, "base transaction must have exactly one input")
	}
	input := tx.Inputs[0]
	if input.Kind != externalapi.InputKindBase {
		return ruleerrors.New(ruleerrors.ErrBaseTransactionWrongInputKind, "base transaction's input is not a BaseInput")
	}

	expectedBlockIndex := parentIndex + 1
	if input.BaseBlockIndex != expectedBlockIndex {
		return ruleerrors.Newf(ruleerrors.ErrBaseTransactionWrongBlockIndex,
			"base transaction block index %d does not equal parent index %d plus one", input.BaseBlockIndex, parentIndex)
	}

	expectedUnlockTime := uint64(expectedBlockIndex) + uint64(c.currency.MinedMoneyUnlockWindow())
	if tx.UnlockTime != expectedUnlockTime {
		return ruleerrors.Newf(ruleerrors.ErrBaseTransactionWrongUnlockTime,
			"base transaction unlock time %d does not equal block index %d plus the unlock window", tx.UnlockTime, expectedBlockIndex)
	}

	if len(tx.Outputs) == 0 {
		return ruleerrors.New(ruleerrors.ErrBaseTransactionEmptyOutputs, "base transaction has no outputs")
	}

	var totalOut uint64
	for _, out := range tx.Outputs {
		totalOut += out.Amount
	}

	reward, _, ok := c.currency.BlockReward(medianSize, currentBlockSize, alreadyGeneratedCoins, fee)
	if !ok {
		return ruleerrors.New(ruleerrors.ErrBlockRewardMismatch, "block reward computation failed, block is oversized")
	}
	if totalOut != reward {
		return ruleerrors.Newf(ruleerrors.ErrBlockRewardMismatch,
			"base transaction outputs sum to %d, expected reward %d", totalOut, reward)
	}

	return nil
}

// publicKeyFromScript extracts the one-time output key a coinbase
// script-public-key carries. Deriving that one-time key from the miner's
// view/spend keys is a cryptographic primitive outside this package's
// scope; callers are expected to have already derived it into
// ScriptPublicKey.
func publicKeyFromScript(scriptPublicKey []byte) (externalapi.DomainPublicKey, error) {
	var key externalapi.DomainPublicKey
	if len(scriptPublicKey) < externalapi.DomainHashSize {
		return key, errors.New("coinbasemanager: script public key shorter than a public key")
	}
	copy(key[:], scriptPublicKey[:externalapi.DomainHashSize])
	return key, nil
}
