// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package externalapi

// InputKind tags the runtime variant of a DomainTransactionInput. Callers
// never type-switch on the Go type of the variant's payload; they branch on
// Kind, matching design note "callers never dispatch by runtime-typeinfo
// but by tag".
type InputKind uint8

const (
	// InputKindKey is a ring-signature input spending a prior KeyOutput.
	InputKindKey InputKind = iota
	// InputKindBase is the single coinbase input of a base transaction.
	InputKindBase
)

// DomainTransactionInput is a tagged variant over KeyInput and BaseInput.
// Exactly one of the Key/Base fields is populated, selected by Kind.
type DomainTransactionInput struct {
	Kind InputKind

	// Key fields, valid when Kind == InputKindKey.
	KeyAmount        uint64
	KeyOutputIndexes []uint32 // wire form: first absolute, rest relative deltas
	KeyImage         DomainKeyImage

	// Base fields, valid when Kind == InputKindBase.
	BaseBlockIndex uint32
}

// Clone returns a deep copy of the input.
func (in *DomainTransactionInput) Clone() *DomainTransactionInput {
	if in == nil {
		return nil
	}
	clone := *in
	if in.KeyOutputIndexes != nil {
		clone.KeyOutputIndexes = append([]uint32(nil), in.KeyOutputIndexes...)
	}
	return &clone
}

// OutputKind tags the runtime variant of a DomainTransactionOutput. Only
// KeyOutput exists today, but the tag is kept exhaustive-match-ready for
// the same reason as InputKind.
type OutputKind uint8

// OutputKindKey is the sole output variant: a one-time stealth-address key.
const OutputKindKey OutputKind = iota

// DomainTransactionOutput is a tagged variant; today only OutputKindKey is
// defined.
type DomainTransactionOutput struct {
	Kind      OutputKind
	Amount    uint64
	PublicKey DomainPublicKey
}

// Clone returns a copy of the output.
func (out *DomainTransactionOutput) Clone() *DomainTransactionOutput {
	if out == nil {
		return nil
	}
	clone := *out
	return &clone
}

// DomainTransactionPrefix is the signed portion of a transaction: version,
// unlock-time, inputs, outputs, and the extra field (carrying the tx public
// key and an optional payment-id sub-tag).
type DomainTransactionPrefix struct {
	Version    uint8
	UnlockTime uint64
	Inputs     []*DomainTransactionInput
	Outputs    []*DomainTransactionOutput
	Extra      []byte
}

// DomainTransaction is a transaction prefix plus per-input ring signatures.
// Signatures[i] is the ring signature for Inputs[i]; base transactions
// carry no signatures.
type DomainTransaction struct {
	DomainTransactionPrefix
	Signatures [][]DomainSignature
}

// DomainSignature is a single Ed25519-family ring-signature component (one
// per ring member for a given input).
type DomainSignature [64]byte

// Clone returns a deep copy of the transaction.
func (tx *DomainTransaction) Clone() *DomainTransaction {
	if tx == nil {
		return nil
	}
	clone := &DomainTransaction{
		DomainTransactionPrefix: DomainTransactionPrefix{
			Version:    tx.Version,
			UnlockTime: tx.UnlockTime,
			Extra:      append([]byte(nil), tx.Extra...),
		},
	}
	clone.Inputs = make([]*DomainTransactionInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		clone.Inputs[i] = in.Clone()
	}
	clone.Outputs = make([]*DomainTransactionOutput, len(tx.Outputs))
	for i, out := range tx.Outputs {
		clone.Outputs[i] = out.Clone()
	}
	clone.Signatures = make([][]DomainSignature, len(tx.Signatures))
	for i, ring := range tx.Signatures {
		clone.Signatures[i] = append([]DomainSignature(nil), ring...)
	}
	return clone
}

// IsBaseTransaction reports whether tx is a coinbase transaction: exactly
// one input, of kind Base.
func (tx *DomainTransaction) IsBaseTransaction() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].Kind == InputKindBase
}

// DomainCoinbaseData is the miner-address/extra-data pair a block builder
// uses to construct the base transaction's output and extra field.
type DomainCoinbaseData struct {
	ScriptPublicKey []byte
	ExtraData       []byte
}

// TransactionValidatorState is the set of key images a pending set of
// transactions would spend, as described in spec §3. Two states intersect
// if their key-image sets overlap.
type TransactionValidatorState struct {
	SpentKeyImages map[DomainKeyImage]struct{}
}

// NewTransactionValidatorState returns an empty state.
func NewTransactionValidatorState() *TransactionValidatorState {
	return &TransactionValidatorState{SpentKeyImages: make(map[DomainKeyImage]struct{})}
}

// Merge folds other's key images into state.
func (state *TransactionValidatorState) Merge(other *TransactionValidatorState) {
	for ki := range other.SpentKeyImages {
		state.SpentKeyImages[ki] = struct{}{}
	}
}

// Intersects reports whether state and other share any key image.
func (state *TransactionValidatorState) Intersects(other *TransactionValidatorState) bool {
	small, big := state, other
	if len(big.SpentKeyImages) < len(small.SpentKeyImages) {
		small, big = big, small
	}
	for ki := range small.SpentKeyImages {
		if _, ok := big.SpentKeyImages[ki]; ok {
			return true
		}
	}
	return false
}
