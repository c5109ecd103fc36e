package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// TransactionValidator performs the semantic (height-independent) and
// contextual (height-dependent) checks spec §4.3 describes.
type TransactionValidator interface {
	// ValidateSemantically runs the checks that do not depend on chain
	// state: non-empty inputs/outputs, no duplicate key images within the
	// transaction, amount-overflow checks, extra-field size, mixin bounds.
	ValidateSemantically(tx *externalapi.DomainTransaction) error

	// ValidateInContext runs the checks that depend on chain state at
	// tipIndex: key-image-not-yet-spent, resolvable ring members,
	// spend-time unlock, input/output amount balance including fee, and
	// ring-signature verification.
	ValidateInContext(tx *externalapi.DomainTransaction, tipIndex uint32) error
}
