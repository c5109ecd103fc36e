// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package blockvalidator

import (
	"errors"
	"io"
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/stretchr/testify/require"
)

type stubChainReader struct {
	hashes       map[uint32]externalapi.DomainHash
	timestamps   []uint64
	sizes        []uint64
	difficulties []uint64
}

func (s *stubChainReader) HashAt(index uint32) (externalapi.DomainHash, bool) {
	h, ok := s.hashes[index]
	return h, ok
}

func (s *stubChainReader) TimestampWindow(tipIndex uint32, count uint64) []uint64 {
	return lastN(s.timestamps, count)
}

func (s *stubChainReader) SizeWindow(tipIndex uint32, count uint64) []uint64 {
	return lastN(s.sizes, count)
}

func (s *stubChainReader) DifficultyWindow(tipIndex uint32, count uint64) ([]uint64, []uint64) {
	return lastN(s.timestamps, count), lastN(s.difficulties, count)
}

func lastN(values []uint64, n uint64) []uint64 {
	if uint64(len(values)) <= n {
		return values
	}
	return values[uint64(len(values))-n:]
}

type stubUpgradeManager struct{ major uint8 }

func (s stubUpgradeManager) MajorFor(uint32) uint8             { return s.major }
func (s stubUpgradeManager) IsUpgradeBoundary(uint32) bool     { return false }
func (s stubUpgradeManager) AddActivation(uint8, uint32)       {}

type stubCheckpoints struct{}

func (stubCheckpoints) AddCheckpoint(uint32, externalapi.DomainHash) error { return nil }
func (stubCheckpoints) LoadFromCSV(io.Reader) error                       { return nil }
func (stubCheckpoints) IsInCheckpointZone(uint32) bool                     { return false }
func (stubCheckpoints) CheckBlock(uint32, externalapi.DomainHash) (bool, bool) {
	return false, false
}

type stubCoinbaseManager struct{ err error }

func (s stubCoinbaseManager) ExpectedBaseTransaction(uint32, uint64, uint64, uint64, uint64,
	*externalapi.DomainCoinbaseData) (*externalapi.DomainTransaction, error) {
	return nil, nil
}

func (s stubCoinbaseManager) ValidateBaseTransaction(*externalapi.DomainTransaction, uint32, uint64, uint64, uint64, uint64) error {
	return s.err
}

type stubDifficultyManager struct{ difficulty uint64 }

func (s stubDifficultyManager) RequiredDifficulty(uint32, []uint64, []uint64) (uint64, error) {
	return s.difficulty, nil
}

type stubTransactionValidator struct{ err error }

func (s stubTransactionValidator) ValidateSemantically(*externalapi.DomainTransaction) error { return s.err }
func (s stubTransactionValidator) ValidateInContext(*externalapi.DomainTransaction, uint32) error {
	return s.err
}

type stubCurveValidator struct{ valid bool }

func (s stubCurveValidator) IsCurveValid(externalapi.DomainPublicKey) bool { return s.valid }

type stubPoWHasher struct{ hash externalapi.DomainHash }

func (s stubPoWHasher) PoWHash([]byte, uint32, uint8) externalapi.DomainHash { return s.hash }

func testCurrency() *cryptonote.Currency {
	return cryptonote.NewCurrencyBuilder().Build()
}

func baseTransaction(blockIndex uint32, unlockWindow uint32, amount uint64) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version:    2,
			UnlockTime: uint64(blockIndex) + uint64(unlockWindow),
			Inputs: []*externalapi.DomainTransactionInput{{
				Kind:           externalapi.InputKindBase,
				BaseBlockIndex: blockIndex,
			}},
			Outputs: []*externalapi.DomainTransactionOutput{{
				Kind:   externalapi.OutputKindKey,
				Amount: amount,
			}},
		},
	}
}

func newTestValidator(currency *cryptonote.Currency, chain *stubChainReader, major uint8, difficulty uint64,
	txErr error, coinbaseErr error, longHash externalapi.DomainHash) *blockValidator {

	return New(currency, chain, stubUpgradeManager{major: major}, stubCheckpoints{},
		stubCoinbaseManager{err: coinbaseErr}, stubDifficultyManager{difficulty: difficulty},
		stubTransactionValidator{err: txErr}, stubCurveValidator{valid: true}, stubPoWHasher{hash: longHash},
		func() uint64 { return 1_700_000_000 })
}

func TestCheckVersionRejectsWrongMajor(t *testing.T) {
	currency := testCurrency()
	v := newTestValidator(currency, &stubChainReader{}, 1, 1, nil, nil, externalapi.DomainHash{})

	header := &externalapi.DomainBlockHeader{MajorVersion: 2, Timestamp: 1_700_000_000}
	err := v.checkVersion(header, 10)
	require.Error(t, err, "expected a version mismatch error")
}

func TestCheckTimestampRejectsFarFuture(t *testing.T) {
	currency := testCurrency()
	v := newTestValidator(currency, &stubChainReader{}, 1, 1, nil, nil, externalapi.DomainHash{})

	header := &externalapi.DomainBlockHeader{
		MajorVersion: 1,
		Timestamp:    1_700_000_000 + currency.BlockFutureTimeLimit(1) + 1,
	}
	require.Error(t, v.checkTimestamp(header, 1), "expected a too-far-in-future timestamp error")
}

func TestCheckTimestampAcceptsWithinWindow(t *testing.T) {
	currency := testCurrency()
	v := newTestValidator(currency, &stubChainReader{}, 1, 1, nil, nil, externalapi.DomainHash{})

	header := &externalapi.DomainBlockHeader{MajorVersion: 1, Timestamp: 1_700_000_000}
	require.NoError(t, v.checkTimestamp(header, 1))
}

func TestHashMeetsDifficultyRejectsZeroDifficulty(t *testing.T) {
	var hash externalapi.DomainHash
	hash[0] = 1
	require.False(t, hashMeetsDifficulty(hash, 0), "zero difficulty must never be satisfied")
}

func TestHashMeetsDifficultyAcceptsSmallHash(t *testing.T) {
	var hash externalapi.DomainHash
	hash[0] = 1 // smallest non-zero 256-bit integer
	require.True(t, hashMeetsDifficulty(hash, 1<<40), "a tiny hash times a modest difficulty must satisfy the 192-bit bound")
}

func TestHashMeetsDifficultyRejectsLargeHash(t *testing.T) {
	var hash externalapi.DomainHash
	for i := range hash {
		hash[i] = 0xff
	}
	require.False(t, hashMeetsDifficulty(hash, 2), "a maximal 256-bit hash times any difficulty above 1 must overflow the 192-bit bound")
}

func TestMedianOfOddAndEven(t *testing.T) {
	require.EqualValues(t, 3, medianOf([]uint64{5, 1, 3}), "median of odd set")
	require.EqualValues(t, 3, medianOf([]uint64{1, 2, 3, 4}), "median of even set (upper-middle)")
	require.EqualValues(t, 0, medianOf(nil), "median of empty set")
}

func TestTransactionFeeRejectsUnderfundedTransaction(t *testing.T) {
	tx := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Inputs:  []*externalapi.DomainTransactionInput{{Kind: externalapi.InputKindKey, KeyAmount: 5}},
			Outputs: []*externalapi.DomainTransactionOutput{{Kind: externalapi.OutputKindKey, Amount: 10}},
		},
	}
	_, err := transactionFee(tx)
	require.Error(t, err, "expected an inputs-outputs mismatch error")
}

func TestTransactionFeeComputesDifference(t *testing.T) {
	tx := &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Inputs:  []*externalapi.DomainTransactionInput{{Kind: externalapi.InputKindKey, KeyAmount: 100}},
			Outputs: []*externalapi.DomainTransactionOutput{{Kind: externalapi.OutputKindKey, Amount: 90}},
		},
	}
	fee, err := transactionFee(tx)
	require.NoError(t, err)
	require.EqualValues(t, 10, fee, "fee")
}

func TestCheckTransactionsRejectsCrossTransactionDuplicateKeyImage(t *testing.T) {
	currency := testCurrency()
	v := newTestValidator(currency, &stubChainReader{}, 1, 1, nil, nil, externalapi.DomainHash{})

	var image externalapi.DomainKeyImage
	image[0] = 7

	txA := &externalapi.DomainTransaction{DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
		Inputs: []*externalapi.DomainTransactionInput{{Kind: externalapi.InputKindKey, KeyImage: image}},
	}}
	txB := &externalapi.DomainTransaction{DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
		Inputs: []*externalapi.DomainTransactionInput{{Kind: externalapi.InputKindKey, KeyImage: image}},
	}}

	err := v.checkTransactions([]*externalapi.DomainTransaction{txA, txB}, 11)
	require.Error(t, err, "expected a duplicate key image error across the block's transactions")
}

func TestCheckBaseTransactionPropagatesCoinbaseManagerRejection(t *testing.T) {
	currency := testCurrency()
	wantErr := errors.New("boom")
	v := newTestValidator(currency, &stubChainReader{}, 1, 1, nil, wantErr, externalapi.DomainHash{})

	tx := baseTransaction(1, currency.MinedMoneyUnlockWindow(), 1000)
	err := v.checkBaseTransaction(tx, 0, 0, 0, 0, 0)
	require.Error(t, err, "expected the coinbase manager's rejection to propagate")
	require.Contains(t, err.Error(), wantErr.Error())
}

func TestCheckProofOfWorkAcceptsSatisfyingHash(t *testing.T) {
	currency := testCurrency()
	var tinyHash externalapi.DomainHash
	tinyHash[0] = 1

	v := newTestValidator(currency, &stubChainReader{}, 1, 1<<20, nil, nil, tinyHash)

	block := &externalapi.DomainBlock{
		Header:          &externalapi.DomainBlockHeader{MajorVersion: 1, Timestamp: 1_700_000_000},
		BaseTransaction: baseTransaction(1, currency.MinedMoneyUnlockWindow(), 1),
	}

	require.NoError(t, v.checkProofOfWork(block, 0, 1))
}
