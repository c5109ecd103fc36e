// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package transactionvalidator checks a KeyInput transaction against the
// semantic (height-independent) and contextual (height-dependent) rules
// spec §4.3 describes, grounded on
// original_source/src/cryptonote_core/transaction_validators.cpp and
// TransactionValidator.cpp's checkTransactionInputs logic.
package transactionvalidator

import (
	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/errors/ruleerrors"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashserialization"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/ringsignature"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.VALD)

// chainStateReader is the narrow slice of consensusstatemanager this
// package needs: key-image spend checks and ring-member resolution
// against a given tip.
type chainStateReader interface {
	IsKeyImageSpent(keyImage externalapi.DomainKeyImage, tipIndex uint32) bool
	OutputKeys(amount uint64, globalIndexes []uint32, tipIndex uint32) ([]*externalapi.OutputEntry, externalapi.ExtractOutputKeysResult)
}

type transactionValidator struct {
	currency   *cryptonote.Currency
	chainState chainStateReader

	subgroupChecker ringsignature.KeyImageSubgroupChecker
	curveValidator  ringsignature.CurveValidator
	ringVerifier    ringsignature.RingVerifier
}

// New instantiates a TransactionValidator. subgroupChecker/curveValidator/
// ringVerifier are the injected Ed25519 collaborators.
// ringsignature.NewScaffoldChecker()/NewScaffoldCurveValidator() are
// structural stand-ins only; they do not perform the real cryptographic
// key-image and point checks.
func New(currency *cryptonote.Currency, chainState chainStateReader,
	subgroupChecker ringsignature.KeyImageSubgroupChecker,
	curveValidator ringsignature.CurveValidator,
	ringVerifier ringsignature.RingVerifier) *transactionValidator {

	return &transactionValidator{
		currency:        currency,
		chainState:      chainState,
		subgroupChecker: subgroupChecker,
		curveValidator:  curveValidator,
		ringVerifier:    ringVerifier,
	}
}

// ValidateSemantically runs the checks that do not depend on chain state.
func (v *transactionValidator) ValidateSemantically(tx *externalapi.DomainTransaction) error {
	if len(tx.Inputs) == 0 {
		return ruleerrors.New(ruleerrors.ErrTransactionEmptyInputs, "transaction has no inputs")
	}
	if len(tx.Outputs) == 0 {
		return ruleerrors.New(ruleerrors.ErrTransactionEmptyOutputs, "transaction has no outputs")
	}

	maxExtra := uint64(cryptonote.MaxExtraSizeV1)
	if len(tx.Extra) >= cryptonote.MaxExtraSizeV2 {
		maxExtra = cryptonote.MaxExtraSizeV2
	}
	if uint64(len(tx.Extra)) >= maxExtra {
		return ruleerrors.Newf(ruleerrors.ErrTransactionExtraTooBig,
			"transaction extra field of %d bytes exceeds the maximum of %d", len(tx.Extra), maxExtra)
	}

	seenKeyImages := make(map[externalapi.DomainKeyImage]struct{}, len(tx.Inputs))

	var totalInputs uint64
	for _, in := range tx.Inputs {
		if in.Kind != externalapi.InputKindKey {
			return ruleerrors.New(ruleerrors.ErrBaseTransactionWrongInputKind, "non-base transaction input must be of kind KeyInput")
		}
		if in.KeyAmount == 0 {
			return ruleerrors.New(ruleerrors.ErrTransactionInputZeroAmount, "transaction input has a zero amount")
		}
		if len(in.KeyOutputIndexes) == 0 {
			return ruleerrors.New(ruleerrors.ErrTransactionMixinTooLow, "transaction input has no output indexes")
		}
		for i, delta := range in.KeyOutputIndexes {
			if i > 0 && delta == 0 {
				return ruleerrors.New(ruleerrors.ErrTransactionDuplicateOutputIndex, "output index delta is zero after the first element")
			}
		}

		if !v.subgroupChecker.InSubgroup(in.KeyImage) {
			return ruleerrors.New(ruleerrors.ErrTransactionKeyImageNotInGroup, "key image is not a member of the prime-order subgroup")
		}
		if _, seen := seenKeyImages[in.KeyImage]; seen {
			return ruleerrors.New(ruleerrors.ErrTransactionDuplicateKeyImage, "transaction spends the same key image more than once")
		}
		seenKeyImages[in.KeyImage] = struct{}{}

		ringSize := len(in.KeyOutputIndexes)
		if uint64(ringSize) < v.currency.MinMixin(0) {
			return ruleerrors.Newf(ruleerrors.ErrTransactionMixinTooLow, "ring size %d is below the minimum mixin", ringSize)
		}
		if uint64(ringSize) > v.currency.MaxMixin(0) {
			return ruleerrors.Newf(ruleerrors.ErrTransactionMixinTooHigh, "ring size %d is above the maximum mixin", ringSize)
		}

		newTotal := totalInputs + in.KeyAmount
		if newTotal < totalInputs {
			return ruleerrors.New(ruleerrors.ErrTransactionInputOutputOverflow, "transaction input amount sum overflows")
		}
		totalInputs = newTotal
	}

	var totalOutputs uint64
	for _, out := range tx.Outputs {
		if out.Amount == 0 {
			return ruleerrors.New(ruleerrors.ErrTransactionOutputZeroAmount, "transaction output has a zero amount")
		}
		if !v.curveValidator.IsCurveValid(out.PublicKey) {
			return ruleerrors.New(ruleerrors.ErrTransactionInvalidRingSignature, "transaction output key is not curve-valid")
		}
		newTotal := totalOutputs + out.Amount
		if newTotal < totalOutputs {
			return ruleerrors.New(ruleerrors.ErrTransactionInputOutputOverflow, "transaction output amount sum overflows")
		}
		totalOutputs = newTotal
	}

	if totalInputs < totalOutputs {
		return ruleerrors.New(ruleerrors.ErrTransactionInputsOutputsMismatch, "transaction inputs do not cover its outputs")
	}

	return nil
}

// ValidateInContext runs the checks that depend on chain state at
// tipIndex: key-image-not-yet-spent, resolvable ring members, spend-time
// unlock (with the transient mixin-relaxation retest), and ring-signature
// verification.
func (v *transactionValidator) ValidateInContext(tx *externalapi.DomainTransaction, tipIndex uint32) error {
	blockIndex := tipIndex + 1
	prefixHash := hashserialization.PrefixHash(tx)

	for i, in := range tx.Inputs {
		if v.chainState.IsKeyImageSpent(in.KeyImage, tipIndex) {
			return ruleerrors.New(ruleerrors.ErrTransactionKeyImageAlreadySpent, "transaction key image was already spent on this chain")
		}

		globalIndexes := absoluteFromDeltas(in.KeyOutputIndexes)
		entries, result := v.chainState.OutputKeys(in.KeyAmount, globalIndexes, tipIndex)

		if result == externalapi.ExtractOutputKeysOutputLocked {
			unlockWindow := v.currency.MinedMoneyUnlockWindow()
			if blockIndex < unlockWindow {
				return ruleerrors.New(ruleerrors.ErrTransactionOutputLocked, "transaction input references an output that is still spend-time-locked")
			}
			entries, result = v.chainState.OutputKeys(in.KeyAmount, globalIndexes, tipIndex-unlockWindow)
			if result != externalapi.ExtractOutputKeysSuccess {
				return ruleerrors.New(ruleerrors.ErrTransactionOutputLocked, "transaction input references an output that is still spend-time-locked")
			}
		} else if result == externalapi.ExtractOutputKeysInvalidGlobalIndex {
			return ruleerrors.New(ruleerrors.ErrTransactionOutputGlobalIndexInvalid, "transaction input references a global output index that does not exist")
		}

		ring := make([]externalapi.DomainPublicKey, len(entries))
		for j, entry := range entries {
			ring[j] = entry.PublicKey
		}

		var signatures []externalapi.DomainSignature
		if i < len(tx.Signatures) {
			signatures = tx.Signatures[i]
		}
		if !v.ringVerifier.VerifyRing(prefixHash, ring, in.KeyImage, signatures) {
			return ruleerrors.New(ruleerrors.ErrTransactionInvalidRingSignature, "transaction ring signature does not verify")
		}
	}

	return nil
}

// absoluteFromDeltas converts the wire (first-absolute, rest-relative)
// outputIndexes form into a strictly increasing list of global indexes.
func absoluteFromDeltas(deltas []uint32) []uint32 {
	if len(deltas) == 0 {
		return nil
	}
	absolute := make([]uint32, len(deltas))
	absolute[0] = deltas[0]
	for i := 1; i < len(deltas); i++ {
		absolute[i] = absolute[i-1] + deltas[i]
	}
	return absolute
}
