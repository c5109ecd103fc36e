// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package cryptonote

import "testing"

func TestEncodeDecodeAddressRoundTrips(t *testing.T) {
	c := NewCurrencyBuilder().Build()

	var addr AccountPublicAddress
	addr.SpendPublicKey[0] = 0x01
	addr.ViewPublicKey[0] = 0x02

	encoded := c.EncodeAddress(addr)
	decoded, err := c.DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %s", err)
	}
	if decoded != addr {
		t.Fatalf("expected round-tripped address %+v, got %+v", addr, decoded)
	}
}

func TestDecodeAddressRejectsWrongPrefix(t *testing.T) {
	mainnet := NewCurrencyBuilder().Build()
	testnet := NewCurrencyBuilder().PublicAddressBase58Prefix(0x1234).Build()

	var addr AccountPublicAddress
	addr.SpendPublicKey[0] = 0x03

	encoded := mainnet.EncodeAddress(addr)
	if _, err := testnet.DecodeAddress(encoded); err == nil {
		t.Fatalf("expected an address encoded with a different network prefix to be rejected")
	}
}

func TestDecodeAddressRejectsCorruptChecksum(t *testing.T) {
	c := NewCurrencyBuilder().Build()

	var addr AccountPublicAddress
	addr.SpendPublicKey[0] = 0x04

	encoded := c.EncodeAddress(addr)
	corrupted := encoded[:len(encoded)-1] + "1"
	if corrupted == encoded {
		t.Skip("corruption did not change the encoded string")
	}

	if _, err := c.DecodeAddress(corrupted); err == nil {
		t.Fatalf("expected a corrupted address to fail checksum verification")
	}
}
