// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2014-2018, The Monero Project
// Copyright (c) 2018-2019, The TurtleCoin Developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package checkpoints pins known-good block hashes at specific heights, to
// short-circuit proof-of-work validation below a trusted height, as
// original_source/src/cryptonote_core/checkpoints.cpp does.
package checkpoints

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.CHKP)

// ErrDuplicateCheckpoint is returned by AddCheckpoint when index already
// has a pinned hash.
var ErrDuplicateCheckpoint = errors.New("checkpoints: a checkpoint already exists at this index")

// checkpoints is a map from block index to the required block hash at that
// index; the map itself keeps no order.
type checkpoints struct {
	points map[uint32]externalapi.DomainHash
}

// New returns an empty checkpoint set.
func New() *checkpoints {
	return &checkpoints{points: make(map[uint32]externalapi.DomainHash)}
}

// AddCheckpoint pins hash at index. It fails if a checkpoint already
// exists at that index.
func (c *checkpoints) AddCheckpoint(index uint32, hash externalapi.DomainHash) error {
	if _, exists := c.points[index]; exists {
		return ErrDuplicateCheckpoint
	}
	c.points[index] = hash
	return nil
}

// LoadFromCSV reads "index,hex-hash" records from r, one per line, adding
// each as a checkpoint. It stops at the first duplicate or malformed
// record.
func (c *checkpoints) LoadFromCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	loaded := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "checkpoints: malformed checkpoint record")
		}

		index, err := strconv.ParseUint(record[0], 10, 32)
		if err != nil {
			return errors.Wrapf(err, "checkpoints: invalid index %q", record[0])
		}

		h, err := hashFromHex(record[1])
		if err != nil {
			return errors.Wrapf(err, "checkpoints: invalid hash %q", record[1])
		}

		if err := c.AddCheckpoint(uint32(index), h); err != nil {
			return err
		}
		loaded++
	}

	log.Infof("loaded %d checkpoints", loaded)
	return nil
}

func hashFromHex(s string) (externalapi.DomainHash, error) {
	var h externalapi.DomainHash
	decoded, err := decodeHex(s)
	if err != nil {
		return h, err
	}
	h, ok := externalapi.HashFromBytes(decoded)
	if !ok {
		return h, errors.New("checkpoints: decoded hash has the wrong length")
	}
	return h, nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s) != externalapi.DomainHashSize*2 {
		return nil, errors.Errorf("hash string must be %d hex characters, got %d", externalapi.DomainHashSize*2, len(s))
	}
	b := make([]byte, externalapi.DomainHashSize)
	for i := 0; i < externalapi.DomainHashSize; i++ {
		hi, err := hexDigit(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexDigit(s[i*2+1])
		if err != nil {
			return nil, err
		}
		b[i] = hi<<4 | lo
	}
	return b, nil
}

func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, errors.Errorf("invalid hex digit %q", c)
	}
}

// IsInCheckpointZone reports whether index is at or below the highest
// pinned checkpoint, the range within which PoW is not independently
// re-derived.
func (c *checkpoints) IsInCheckpointZone(index uint32) bool {
	if len(c.points) == 0 {
		return false
	}
	var highest uint32
	found := false
	for i := range c.points {
		if !found || i > highest {
			highest = i
			found = true
		}
	}
	return index <= highest
}

// CheckBlock reports whether hash satisfies the checkpoint pinned at
// index, if any. isCheckpoint reports whether index has a pinned
// checkpoint at all; if it does not, CheckBlock returns true (no
// constraint to violate).
func (c *checkpoints) CheckBlock(index uint32, hash externalapi.DomainHash) (ok bool, isCheckpoint bool) {
	pinned, exists := c.points[index]
	if !exists {
		return true, false
	}
	if pinned == hash {
		return true, true
	}
	log.Warnf("checkpoint failed for index %d: expected %s, got %s", index, pinned, hash)
	return false, true
}
