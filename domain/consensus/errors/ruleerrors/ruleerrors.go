// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package ruleerrors defines the sentinel errors every consensus rule check
// returns, and the RuleError wrapper that marks an error as a rejection
// (rather than an internal/database failure) for callers that need to tell
// the two apart with errors.As.
package ruleerrors

import "github.com/pkg/errors"

// RuleError marks err as a consensus-rule rejection. Construct with New or
// by wrapping a sentinel from this package with errors.Wrapf; test
// membership with errors.As(err, &ruleerrors.RuleError{}).
type RuleError struct {
	Err error
}

// Error implements the error interface.
func (e RuleError) Error() string {
	if e.Err == nil {
		return "rule error"
	}
	return e.Err.Error()
}

// Unwrap lets errors.Is/errors.As see through to the wrapped sentinel.
func (e RuleError) Unwrap() error {
	return e.Err
}

// New wraps err as a RuleError, attaching msg as context.
func New(err error, msg string) error {
	return RuleError{Err: errors.Wrap(err, msg)}
}

// Newf wraps err as a RuleError, attaching a formatted message as context.
func Newf(err error, format string, args ...interface{}) error {
	return RuleError{Err: errors.Wrapf(err, format, args...)}
}

// Block header / version errors.
var (
	ErrWrongBlockVersion         = errors.New("block major version is not valid for this height")
	ErrParentBlockWrongVersion   = errors.New("merge-mined parent block major version must be 1")
	ErrParentBlockSizeTooBig     = errors.New("merge-mined parent block serialized size exceeds the allowed bound")
	ErrTimestampTooFarInFuture   = errors.New("block timestamp is too far in the future")
	ErrTimestampTooFarInPast     = errors.New("block timestamp is below the median of the last timestamp window")
	ErrCumulativeBlockSizeTooBig = errors.New("cumulative block size exceeds the maximum allowed at its height")
	ErrBlockRewardMismatch       = errors.New("base transaction does not pay the expected block reward plus fees")
	ErrCheckpointBlockHashMismatch = errors.New("block hash does not match the checkpoint pinned at this height")
	ErrProofOfWorkTooWeak        = errors.New("proof-of-work hash does not satisfy the required difficulty")
	ErrDifficultyOverhead        = errors.New("hash times difficulty overflows the allowed bit width")
	ErrPreviousBlockNotFound     = errors.New("previous block hash does not reference a known block")
	ErrAlreadyExists             = errors.New("block already exists")
)

// Base transaction errors.
var (
	ErrBaseTransactionWrongInputCount = errors.New("base transaction must have exactly one input")
	ErrBaseTransactionWrongInputKind  = errors.New("base transaction's single input must be of kind BaseInput")
	ErrBaseTransactionWrongBlockIndex = errors.New("base transaction's input block index does not equal parent index plus one")
	ErrBaseTransactionWrongUnlockTime = errors.New("base transaction's unlock time does not equal its block index plus the unlock window")
	ErrBaseTransactionEmptyOutputs    = errors.New("base transaction must have at least one output")
	ErrBaseTransactionWrongOutputKind = errors.New("base transaction output is not a KeyOutput")
)

// Transaction semantic (height-independent) errors.
var (
	ErrTransactionEmptyInputs          = errors.New("transaction has no inputs")
	ErrTransactionEmptyOutputs         = errors.New("transaction has no outputs")
	ErrTransactionInputZeroAmount      = errors.New("transaction input has a zero amount")
	ErrTransactionOutputZeroAmount     = errors.New("transaction output has a zero amount")
	ErrTransactionInputOutputOverflow  = errors.New("transaction input or output amount sum overflows")
	ErrTransactionDuplicateKeyImage    = errors.New("transaction spends the same key image more than once")
	ErrTransactionExtraTooBig          = errors.New("transaction extra field exceeds the maximum allowed size")
	ErrTransactionWrongVersion         = errors.New("transaction version is not supported")
	ErrTransactionKeyImageNotInGroup   = errors.New("key image is not a member of the prime-order subgroup")
	ErrTransactionMixinTooLow          = errors.New("transaction ring size is below the minimum required mixin")
	ErrTransactionMixinTooHigh         = errors.New("transaction ring size is above the maximum allowed mixin")
	ErrTransactionDuplicateOutputIndex = errors.New("transaction input references the same global output index more than once")
)

// Transaction contextual (height-dependent) errors.
var (
	ErrTransactionKeyImageAlreadySpent = errors.New("transaction key image was already spent on this chain")
	ErrTransactionInputsOutputsMismatch = errors.New("transaction input amount does not cover output amount plus fee")
	ErrTransactionInvalidRingSignature  = errors.New("transaction ring signature does not verify")
	ErrTransactionOutputGlobalIndexInvalid = errors.New("transaction input references a global output index that does not exist")
	ErrTransactionOutputLocked          = errors.New("transaction input references an output that is still spend-time-locked")
	ErrTransactionNotUnlocked           = errors.New("transaction is not yet unlocked at the requested block index")
	ErrFusionTransactionInvalid         = errors.New("transaction does not meet the fusion-transaction shape requirements")
)

// Pool admission errors.
var (
	ErrPoolTransactionAlreadyExists = errors.New("transaction already exists in the pool")
	ErrPoolTransactionTooBig        = errors.New("transaction exceeds the pool's maximum accepted size")
)
