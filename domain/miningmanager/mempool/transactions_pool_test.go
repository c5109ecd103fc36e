// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

package mempool

import (
	"testing"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
)

// fakeConsensus is a consensusReader test double: ValidateTransaction
// succeeds unless the transaction's hash is listed in rejected.
type fakeConsensus struct {
	topIndex uint32
	rejected map[externalapi.DomainHash]bool
}

func (f *fakeConsensus) TopIndex() uint32 { return f.topIndex }

func (f *fakeConsensus) ValidateTransaction(tx *externalapi.DomainTransaction) error {
	hash := hashOf(tx)
	if f.rejected[hash] {
		return errTestRejected
	}
	return nil
}

var errTestRejected = testError("mempool_test: transaction rejected by fake consensus")

type testError string

func (e testError) Error() string { return string(e) }

func hashOf(tx *externalapi.DomainTransaction) externalapi.DomainHash {
	var hash externalapi.DomainHash
	if len(tx.Inputs) > 0 {
		hash = externalapi.DomainHash(tx.Inputs[0].KeyImage)
	}
	return hash
}

func testTransaction(keyImageByte byte, fee uint64) *externalapi.DomainTransaction {
	var keyImage externalapi.DomainKeyImage
	keyImage[0] = keyImageByte

	return &externalapi.DomainTransaction{
		DomainTransactionPrefix: externalapi.DomainTransactionPrefix{
			Version: 1,
			Inputs: []*externalapi.DomainTransactionInput{
				{Kind: externalapi.InputKindKey, KeyAmount: 100 + fee, KeyImage: keyImage},
			},
			Outputs: []*externalapi.DomainTransactionOutput{
				{Kind: externalapi.OutputKindKey, Amount: 100},
			},
		},
	}
}

func newTestPool(fc *fakeConsensus) *transactionsPool {
	currency := cryptonote.NewCurrencyBuilder().Build()
	now := uint64(1_700_000_000)
	return New(currency, fc, func() uint64 { return now }).(*transactionsPool)
}

func TestAddTransactionRejectsDuplicateKeyImage(t *testing.T) {
	fc := &fakeConsensus{rejected: map[externalapi.DomainHash]bool{}}
	pool := newTestPool(fc)

	tx1 := testTransaction(0x01, 5)
	if _, err := pool.AddTransaction(tx1); err != nil {
		t.Fatalf("AddTransaction failed: %s", err)
	}

	tx2 := testTransaction(0x01, 7)
	if _, err := pool.AddTransaction(tx2); err == nil {
		t.Fatalf("expected an error adding a transaction spending an already-pooled key image")
	}
}

func TestAddTransactionRejectsValidationFailure(t *testing.T) {
	tx := testTransaction(0x02, 5)
	fc := &fakeConsensus{rejected: map[externalapi.DomainHash]bool{hashOf(tx): true}}
	pool := newTestPool(fc)

	if _, err := pool.AddTransaction(tx); err == nil {
		t.Fatalf("expected the fake consensus's rejection to propagate")
	}
}

func TestRemoveTransactionFreesKeyImage(t *testing.T) {
	fc := &fakeConsensus{rejected: map[externalapi.DomainHash]bool{}}
	pool := newTestPool(fc)

	tx := testTransaction(0x03, 5)
	entry, err := pool.AddTransaction(tx)
	if err != nil {
		t.Fatalf("AddTransaction failed: %s", err)
	}

	if !pool.RemoveTransaction(entry.Hash) {
		t.Fatalf("expected RemoveTransaction to report the entry was present")
	}

	if _, err := pool.AddTransaction(testTransaction(0x03, 9)); err != nil {
		t.Fatalf("expected the key image to be reusable after removal: %s", err)
	}
}

func TestBlockCandidateTransactionsOrdersFusionFirst(t *testing.T) {
	fc := &fakeConsensus{rejected: map[externalapi.DomainHash]bool{}}
	pool := newTestPool(fc)

	feeTx := testTransaction(0x04, 5)
	fusionTx := testTransaction(0x05, 0)
	minInputs := int(pool.currency.FusionTxMinInputCount())
	for i := 1; i < minInputs; i++ {
		var keyImage externalapi.DomainKeyImage
		keyImage[0], keyImage[1] = 0x05, byte(i)
		fusionTx.Inputs = append(fusionTx.Inputs,
			&externalapi.DomainTransactionInput{Kind: externalapi.InputKindKey, KeyAmount: 100, KeyImage: keyImage})
	}
	fusionTx.Outputs[0].Amount = 100 * uint64(minInputs)

	if _, err := pool.AddTransaction(feeTx); err != nil {
		t.Fatalf("AddTransaction failed: %s", err)
	}
	if _, err := pool.AddTransaction(fusionTx); err != nil {
		t.Fatalf("AddTransaction failed: %s", err)
	}

	candidates := pool.BlockCandidateTransactions()
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0] != fusionTx || candidates[1] != feeTx {
		t.Fatalf("expected the fusion transaction ahead of the fee-paying one")
	}
}

func TestCleanEvictsAgedTransactions(t *testing.T) {
	fc := &fakeConsensus{rejected: map[externalapi.DomainHash]bool{}}
	currency := cryptonote.NewCurrencyBuilder().Build()

	now := uint64(1_700_000_000)
	pool := New(currency, fc, func() uint64 { return now }).(*transactionsPool)

	tx := testTransaction(0x06, 5)
	entry, err := pool.AddTransaction(tx)
	if err != nil {
		t.Fatalf("AddTransaction failed: %s", err)
	}

	now += currency.MempoolTxLiveTime() + 1

	evicted := pool.Clean()
	if len(evicted) != 1 || evicted[0] != entry.Hash {
		t.Fatalf("expected Clean to evict the aged transaction, got %v", evicted)
	}

	if _, err := pool.AddTransaction(tx); err == nil {
		t.Fatalf("expected recentlyDeleted to suppress immediate re-admission")
	}
}
