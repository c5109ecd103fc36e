// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2014-2018, The Monero Project
// Copyright (c) 2018, The TurtleCoin Developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package cryptonote

import (
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashing"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/varint"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// AccountPublicAddress is the spend/view key pair a stealth address
// resolves to, the Go analogue of cryptonote_basic_impl.cpp's
// AccountPublicAddress.
type AccountPublicAddress struct {
	SpendPublicKey externalapi.DomainPublicKey
	ViewPublicKey  externalapi.DomainPublicKey
}

const addressChecksumSize = 4

// EncodeAddress serializes addr as currency's public address tag
// followed by the spend/view key pair and a FastHash checksum, then
// base58-encodes the result, mirroring getAccountAddressAsStr's
// tag+data framing. The reference implementation's tools::base58
// encodes in 8-byte blocks rather than the whole buffer at once; that
// block variant's source was not present in the retrieval pack, so the
// standard whole-buffer base58 alphabet of mr-tron/base58 is used here
// instead (documented in DESIGN.md) — the wire format this produces is
// not interoperable with a real CryptoNote address, only internally
// consistent.
func (c *Currency) EncodeAddress(addr AccountPublicAddress) string {
	prefix := varint.Encode(nil, c.publicAddressBase58Prefix)

	payload := make([]byte, 0, len(prefix)+2*PublicKeySize+addressChecksumSize)
	payload = append(payload, prefix...)
	payload = append(payload, addr.SpendPublicKey[:]...)
	payload = append(payload, addr.ViewPublicKey[:]...)

	checksum := hashing.FastHash(payload)
	payload = append(payload, checksum[:addressChecksumSize]...)

	return base58.Encode(payload)
}

// DecodeAddress reverses EncodeAddress, rejecting an address whose tag
// does not match currency's publicAddressBase58Prefix or whose trailing
// checksum does not verify, mirroring parseAccountAddressString.
func (c *Currency) DecodeAddress(encoded string) (AccountPublicAddress, error) {
	payload, err := base58.Decode(encoded)
	if err != nil {
		return AccountPublicAddress{}, errors.Wrap(err, "malformed base58 address")
	}

	prefix, prefixLen, err := varint.Decode(payload)
	if err != nil {
		return AccountPublicAddress{}, errors.Wrap(err, "malformed address tag")
	}
	if prefix != c.publicAddressBase58Prefix {
		return AccountPublicAddress{}, errors.Errorf("address tag %d does not match network prefix %d",
			prefix, c.publicAddressBase58Prefix)
	}

	body := payload[prefixLen:]
	if len(body) != 2*PublicKeySize+addressChecksumSize {
		return AccountPublicAddress{}, errors.Errorf("address has wrong length %d", len(body))
	}

	data, checksum := body[:2*PublicKeySize], body[2*PublicKeySize:]
	expected := hashing.FastHash(payload[:prefixLen+2*PublicKeySize])
	for i := 0; i < addressChecksumSize; i++ {
		if checksum[i] != expected[i] {
			return AccountPublicAddress{}, errors.New("address checksum mismatch")
		}
	}

	var addr AccountPublicAddress
	copy(addr.SpendPublicKey[:], data[:PublicKeySize])
	copy(addr.ViewPublicKey[:], data[PublicKeySize:])
	return addr, nil
}
