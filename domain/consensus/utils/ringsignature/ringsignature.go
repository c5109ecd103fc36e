// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package ringsignature names the Ed25519 ring-signature contracts the
// transaction validator depends on: prime-order subgroup membership for key
// images, curve validity for public keys, and ring signature verification
// itself. These are cryptographic primitives outside this repository's
// scope (an explicit Non-goal); this package declares the contract every
// caller programs against and supplies a structural scaffold, not a
// production implementation.
package ringsignature

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// groupOrder is the prime order L of the Ed25519 base-point subgroup, the
// divisor in the "keyImage * L == I" membership test.
var groupOrder, _ = new(big.Int).SetString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3", 16)

// KeyImageSubgroupChecker tests whether a key image lies in the
// prime-order subgroup, rejecting the small-subgroup key images spec §4.3
// and §8's edge cases name.
type KeyImageSubgroupChecker interface {
	InSubgroup(keyImage externalapi.DomainKeyImage) bool
}

// CurveValidator tests whether a public key decompresses to a valid curve
// point, the "curve-valid key" contract spec §4.2/§4.3 require of every
// output key and base-tx output.
type CurveValidator interface {
	IsCurveValid(key externalapi.DomainPublicKey) bool
}

// RingVerifier verifies a ring signature over a transaction's prefix hash
// against a resolved ring of public keys and the claimed key image.
type RingVerifier interface {
	VerifyRing(prefixHash externalapi.DomainHash, ring []externalapi.DomainPublicKey,
		keyImage externalapi.DomainKeyImage, signatures []externalapi.DomainSignature) bool
}

// scaffoldChecker is a structural stand-in for InSubgroup: it treats the
// key image as a little-endian scalar and range-checks it against the
// subgroup order with math/big. It also loads the key image into a btcec
// field element, but that value does not affect the result. It does
// not perform point decompression or scalar multiplication and must never
// be mistaken for a correct key-image check; production deployments must
// inject a real Ed25519 implementation.
type scaffoldChecker struct{}

// NewScaffoldChecker returns the placeholder KeyImageSubgroupChecker used
// where no production Ed25519 collaborator has been wired in yet.
func NewScaffoldChecker() KeyImageSubgroupChecker { return scaffoldChecker{} }

func (scaffoldChecker) InSubgroup(keyImage externalapi.DomainKeyImage) bool {
	if keyImage.IsZero() {
		return false
	}
	var field btcec.FieldVal
	field.SetByteSlice(keyImage[:])

	reversed := make([]byte, externalapi.DomainHashSize)
	for i, b := range keyImage {
		reversed[externalapi.DomainHashSize-1-i] = b
	}
	scalar := new(big.Int).SetBytes(reversed)
	return scalar.Cmp(groupOrder) < 0
}

// scaffoldCurveValidator accepts any non-zero key as curve-valid. Real
// point decompression is a cryptographic primitive this package only
// names a contract for.
type scaffoldCurveValidator struct{}

// NewScaffoldCurveValidator returns the placeholder CurveValidator.
func NewScaffoldCurveValidator() CurveValidator { return scaffoldCurveValidator{} }

func (scaffoldCurveValidator) IsCurveValid(key externalapi.DomainPublicKey) bool {
	for _, b := range key {
		if b != 0 {
			return true
		}
	}
	return false
}

// scaffoldRingVerifier accepts any ring whose signature count matches the
// ring size and whose signatures are non-zero. Real ring signature
// verification is a cryptographic primitive this package only names a
// contract for.
type scaffoldRingVerifier struct{}

// NewScaffoldRingVerifier returns the placeholder RingVerifier.
func NewScaffoldRingVerifier() RingVerifier { return scaffoldRingVerifier{} }

func (scaffoldRingVerifier) VerifyRing(_ externalapi.DomainHash, ring []externalapi.DomainPublicKey,
	_ externalapi.DomainKeyImage, signatures []externalapi.DomainSignature) bool {

	if len(signatures) != len(ring) {
		return false
	}
	for _, sig := range signatures {
		if sig == (externalapi.DomainSignature{}) {
			return false
		}
	}
	return true
}
