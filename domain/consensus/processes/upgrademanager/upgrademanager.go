// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package upgrademanager resolves the major block version a given block
// index must carry, from a sorted (majorVersion, activationHeight) schedule,
// as original_source/src/cryptonote_core/currency.h's getBlockMajorVersionForHeight does.
package upgrademanager

import "sort"

// activation pairs a major version with the block index at which it
// becomes mandatory.
type activation struct {
	majorVersion  uint8
	activationIndex uint32
}

// upgradeManager holds the sorted version-by-height schedule.
type upgradeManager struct {
	schedule []activation
}

// New returns an UpgradeManager with no activations beyond version 1 at
// genesis. Callers add further activations with AddActivation.
func New() *upgradeManager {
	return &upgradeManager{
		schedule: []activation{{majorVersion: 1, activationIndex: 0}},
	}
}

// AddActivation registers a major version as becoming mandatory at
// activationIndex, keeping the schedule sorted by activation index.
func (u *upgradeManager) AddActivation(majorVersion uint8, activationIndex uint32) {
	u.schedule = append(u.schedule, activation{majorVersion: majorVersion, activationIndex: activationIndex})
	sort.Slice(u.schedule, func(i, j int) bool {
		return u.schedule[i].activationIndex < u.schedule[j].activationIndex
	})
}

// MajorFor returns the highest major version whose activation index is <=
// blockIndex.
func (u *upgradeManager) MajorFor(blockIndex uint32) uint8 {
	best := u.schedule[0].majorVersion
	for _, a := range u.schedule {
		if a.activationIndex > blockIndex {
			break
		}
		best = a.majorVersion
	}
	return best
}

// IsUpgradeBoundary reports whether blockIndex is itself a version's
// activation index, the block at which the new major version first becomes
// mandatory.
func (u *upgradeManager) IsUpgradeBoundary(blockIndex uint32) bool {
	for _, a := range u.schedule {
		if a.activationIndex == blockIndex {
			return true
		}
	}
	return false
}
