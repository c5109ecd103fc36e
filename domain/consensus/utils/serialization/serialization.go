// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package serialization is the wire codec: it turns a DomainBlock/
// DomainTransaction into the exact bytes stored in an externalapi.RawBlock
// and relayed over the network, and parses them back. The transaction
// prefix encoding mirrors hashserialization.SerializePrefix byte-for-byte
// (it must, since TransactionHash is computed over it); this package adds
// the signature trailer hashserialization deliberately omits, plus the
// decode direction neither package needed until now.
package serialization

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/varint"
)

// ErrTruncated is returned whenever a decode runs past the end of its input.
var ErrTruncated = errors.New("serialization: truncated input")

// SerializeTransaction encodes tx's prefix followed by its ring-signature
// trailer (absent for base transactions, one list of ring-size signatures
// per key input otherwise).
func SerializeTransaction(tx *externalapi.DomainTransaction) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, tx.Version)
	buf = varint.Encode(buf, tx.UnlockTime)

	buf = varint.Encode(buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = appendInput(buf, in)
	}

	buf = varint.Encode(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = appendOutput(buf, out)
	}

	buf = varint.Encode(buf, uint64(len(tx.Extra)))
	buf = append(buf, tx.Extra...)

	for _, ring := range tx.Signatures {
		for _, sig := range ring {
			buf = append(buf, sig[:]...)
		}
	}

	return buf
}

func appendInput(buf []byte, in *externalapi.DomainTransactionInput) []byte {
	buf = append(buf, byte(in.Kind))
	switch in.Kind {
	case externalapi.InputKindBase:
		var indexBuf [4]byte
		binary.LittleEndian.PutUint32(indexBuf[:], in.BaseBlockIndex)
		buf = append(buf, indexBuf[:]...)
	default:
		buf = varint.Encode(buf, in.KeyAmount)
		buf = varint.Encode(buf, uint64(len(in.KeyOutputIndexes)))
		for _, idx := range in.KeyOutputIndexes {
			buf = varint.Encode(buf, uint64(idx))
		}
		buf = append(buf, in.KeyImage[:]...)
	}
	return buf
}

func appendOutput(buf []byte, out *externalapi.DomainTransactionOutput) []byte {
	buf = varint.Encode(buf, out.Amount)
	buf = append(buf, byte(out.Kind))
	buf = append(buf, out.PublicKey[:]...)
	return buf
}

// DeserializeTransaction decodes a transaction previously produced by
// SerializeTransaction, returning the number of bytes consumed.
func DeserializeTransaction(data []byte) (*externalapi.DomainTransaction, int, error) {
	r := &reader{data: data}

	version := r.readByte()
	unlockTime := r.readVarint()

	inputCount := r.readVarint()
	inputs := make([]*externalapi.DomainTransactionInput, inputCount)
	ringSizes := make([]int, inputCount)
	for i := range inputs {
		in, ringSize, err := readInput(r)
		if err != nil {
			return nil, 0, err
		}
		inputs[i] = in
		ringSizes[i] = ringSize
	}

	outputCount := r.readVarint()
	outputs := make([]*externalapi.DomainTransactionOutput, outputCount)
	for i := range outputs {
		outputs[i] = readOutput(r)
	}

	extraLen := r.readVarint()
	extra := r.readBytes(int(extraLen))

	signatures := make([][]externalapi.DomainSignature, inputCount)
	for i, in := range inputs {
		if in.Kind != externalapi.InputKindKey {
			continue
		}
		ring := make([]externalapi.DomainSignature, ringSizes[i])
		for j := range ring {
			copy(ring[j][:], r.readBytes(64))
		}
		signatures[i] = ring
	}

	if r.err != nil {
		return nil, 0, r.err
	}

	tx := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version:    version,
			UnlockTime: unlockTime,
			Inputs:     inputs,
			Outputs:    outputs,
			Extra:      extra,
		},
		Signatures: signatures,
	}
	return tx, r.pos, nil
}

func readInput(r *reader) (*externalapi.DomainTransactionInput, int, error) {
	kind := externalapi.InputKind(r.readByte())
	in := &externalapi.DomainTransactionInput{Kind: kind}
	if kind == externalapi.InputKindBase {
		in.BaseBlockIndex = binary.LittleEndian.Uint32(r.readBytes(4))
		return in, 0, r.err
	}

	in.KeyAmount = r.readVarint()
	indexCount := r.readVarint()
	indexes := make([]uint32, indexCount)
	for i := range indexes {
		indexes[i] = uint32(r.readVarint())
	}
	in.KeyOutputIndexes = indexes
	copy(in.KeyImage[:], r.readBytes(externalapi.DomainHashSize))
	return in, int(indexCount), r.err
}

func readOutput(r *reader) *externalapi.DomainTransactionOutput {
	amount := r.readVarint()
	kind := externalapi.OutputKind(r.readByte())
	out := &externalapi.DomainTransactionOutput{Kind: kind, Amount: amount}
	copy(out.PublicKey[:], r.readBytes(externalapi.DomainHashSize))
	return out
}

// SerializeHeader encodes a block header's fixed fields: major/minor
// version, timestamp, previous-block hash, the embedded merge-mining
// parent (major version >= 2 only), and the nonce.
func SerializeHeader(header *externalapi.DomainBlockHeader) []byte {
	buf := make([]byte, 0, 64+len(header.ParentBlock))
	buf = append(buf, header.MajorVersion, header.MinorVersion)
	buf = varint.Encode(buf, header.Timestamp)
	buf = append(buf, header.PreviousBlockHash[:]...)
	if header.MajorVersion >= 2 {
		buf = varint.Encode(buf, uint64(len(header.ParentBlock)))
		buf = append(buf, header.ParentBlock...)
	}
	var nonceBuf [4]byte
	binary.LittleEndian.PutUint32(nonceBuf[:], header.Nonce)
	buf = append(buf, nonceBuf[:]...)
	return buf
}

// DeserializeHeader decodes a header previously produced by
// SerializeHeader, returning the number of bytes consumed.
func DeserializeHeader(data []byte) (*externalapi.DomainBlockHeader, int, error) {
	r := &reader{data: data}
	header := &externalapi.DomainBlockHeader{
		MajorVersion: r.readByte(),
		MinorVersion: r.readByte(),
		Timestamp:    r.readVarint(),
	}
	copy(header.PreviousBlockHash[:], r.readBytes(externalapi.DomainHashSize))
	if header.MajorVersion >= 2 {
		parentLen := r.readVarint()
		header.ParentBlock = append([]byte(nil), r.readBytes(int(parentLen))...)
	}
	header.Nonce = binary.LittleEndian.Uint32(r.readBytes(4))
	if r.err != nil {
		return nil, 0, r.err
	}
	return header, r.pos, nil
}

// SerializeBlock encodes a block's header, full base transaction, and
// transaction-hash list — the exact bytes an externalapi.RawBlock.Block
// carries.
func SerializeBlock(block *externalapi.DomainBlock) []byte {
	buf := SerializeHeader(block.Header)
	buf = append(buf, SerializeTransaction(block.BaseTransaction)...)
	buf = varint.Encode(buf, uint64(len(block.TransactionHashes)))
	for _, hash := range block.TransactionHashes {
		buf = append(buf, hash[:]...)
	}
	return buf
}

// DeserializeBlock decodes a block previously produced by SerializeBlock.
func DeserializeBlock(data []byte) (*externalapi.DomainBlock, error) {
	header, n, err := DeserializeHeader(data)
	if err != nil {
		return nil, errors.Wrap(err, "decoding block header")
	}
	data = data[n:]

	baseTx, n, err := DeserializeTransaction(data)
	if err != nil {
		return nil, errors.Wrap(err, "decoding base transaction")
	}
	data = data[n:]

	r := &reader{data: data}
	hashCount := r.readVarint()
	hashes := make([]*externalapi.DomainHash, hashCount)
	for i := range hashes {
		var hash externalapi.DomainHash
		copy(hash[:], r.readBytes(externalapi.DomainHashSize))
		hashes[i] = &hash
	}
	if r.err != nil {
		return nil, errors.Wrap(r.err, "decoding transaction hash list")
	}

	return &externalapi.DomainBlock{
		Header:            header,
		BaseTransaction:   baseTx,
		TransactionHashes: hashes,
	}, nil
}

// reader is a tiny cursor over a byte slice: once any read fails, every
// subsequent read becomes a no-op and the first error sticks.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) readByte() byte {
	b := r.readBytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) readVarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Decode(r.data[r.pos:])
	if err != nil {
		r.err = err
		return 0
	}
	r.pos += n
	return v
}
