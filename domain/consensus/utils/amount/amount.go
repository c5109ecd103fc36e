// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package amount implements the CryptoNote amount-decomposition scheme used
// to build coinbase and change outputs: an amount is split into
// digit*10^k chunks so that outputs can be mixed with same-denomination
// decoys, with small chunks below a dust threshold aggregated into a
// single trailing chunk.
package amount

// Decompose splits amount into decimal digit*10^k chunks. Every chunk with
// value <= dustThreshold is aggregated and emitted once, as the final
// element, unless it would be zero. The emitted chunks always sum to
// amount.
func Decompose(amount, dustThreshold uint64) []uint64 {
	chunks := make([]uint64, 0, 20)
	var dust uint64
	multiplier := uint64(1)

	for amount > 0 {
		digit := amount % 10
		amount /= 10
		if digit == 0 {
			multiplier *= 10
			continue
		}
		chunk := digit * multiplier
		multiplier *= 10
		if chunk <= dustThreshold {
			dust += chunk
		} else {
			chunks = append(chunks, chunk)
		}
	}

	if dust > 0 {
		chunks = append(chunks, dust)
	}

	return chunks
}
