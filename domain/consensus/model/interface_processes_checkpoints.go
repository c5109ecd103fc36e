package model

import (
	"io"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// CheckpointSet pins known-good block hashes at specific heights, used to
// short-circuit proof-of-work validation below a trusted height.
type CheckpointSet interface {
	// AddCheckpoint pins hash at index. It fails if a checkpoint already
	// exists at that index.
	AddCheckpoint(index uint32, hash externalapi.DomainHash) error

	// LoadFromCSV reads "index,hex-hash" records from r, adding each as
	// a checkpoint.
	LoadFromCSV(r io.Reader) error

	// IsInCheckpointZone reports whether index is at or below the
	// highest pinned checkpoint.
	IsInCheckpointZone(index uint32) bool

	// CheckBlock reports whether hash satisfies the checkpoint pinned at
	// index, if any, and whether index has a pinned checkpoint at all.
	CheckBlock(index uint32, hash externalapi.DomainHash) (ok bool, isCheckpoint bool)
}
