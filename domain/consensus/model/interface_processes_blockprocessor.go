package model

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

// BlockProcessor validates an incoming raw block and, if accepted, hands it
// to the ConsensusStateManager for segment insertion, returning the closed
// AddBlockErrorCode sum spec §7 defines rather than a bare error.
type BlockProcessor interface {
	ValidateAndInsertBlock(rawBlock externalapi.RawBlock) *externalapi.AddBlockResult
}
