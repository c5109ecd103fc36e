// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package txextra reads the tagged fields out of a transaction's Extra
// byte string: the transaction public key and, when present, a payment id
// riding inside an extra-nonce sub-field.
//
// Layout, per original_source/src/cryptonote_core/core.cpp:
//
//	[...data...] 0x01 [32-byte public key] [...data...]
//	[...data...] 0x02 [nonce size] 0x00 [32-byte payment id] [...data...]
package txextra

import "github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"

const (
	tagPublicKey  = 0x01
	tagNonce      = 0x02
	tagPaymentID  = 0x00
	keySize       = 32
	paymentIDSize = 32
)

// ExtractPublicKey returns the transaction public key tagged in extra, if
// present.
func ExtractPublicKey(extra []byte) (externalapi.DomainPublicKey, bool) {
	for i := 0; i < len(extra); i++ {
		if extra[i] != tagPublicKey {
			continue
		}
		if len(extra)-i-1 < keySize {
			return externalapi.DomainPublicKey{}, false
		}
		var key externalapi.DomainPublicKey
		copy(key[:], extra[i+1:i+1+keySize])
		return key, true
	}
	return externalapi.DomainPublicKey{}, false
}

// ExtractPaymentID returns the payment id riding inside extra's nonce
// sub-field, if present.
func ExtractPaymentID(extra []byte) (externalapi.DomainHash, bool) {
	for i := 0; i < len(extra); i++ {
		if extra[i] != tagNonce {
			continue
		}
		if len(extra)-i-1 < paymentIDSize+2 {
			return externalapi.DomainHash{}, false
		}
		if extra[i+2] != tagPaymentID {
			continue
		}
		var id externalapi.DomainHash
		copy(id[:], extra[i+3:i+3+paymentIDSize])
		return id, true
	}
	return externalapi.DomainHash{}, false
}
