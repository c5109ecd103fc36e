// Copyright (c) 2012-2017, The CryptoNote developers, The Bytecoin developers
// Copyright (c) 2019, The Kryptokrona Developers
//
// Please see the included LICENSE file for more information.

// Package consensusstatemanager owns the segment tree: it finds the
// segment containing a block, drives Split/NewChild as a candidate lands
// mid-history or at an already-branched tip, switches the main chain when
// an alternative segment's cumulative difficulty overtakes it, and keeps
// the append-only main-chain store in lockstep. Grounded on
// original_source/src/cryptonote_core/core.cpp's addBlock/switchMainChain
// (roughly lines 900-1260), reshaped around the Segment/Forest types
// rather than the reference's vector-of-BlockchainCache.
package consensusstatemanager

import (
	"math/rand"

	"github.com/kryptokrona/kryptokrona-sub001/cryptonote"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/blockchaincache"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/datastructures/mainchainstorage"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/errors/ruleerrors"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/model/externalapi"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/hashserialization"
	"github.com/kryptokrona/kryptokrona-sub001/domain/consensus/utils/txextra"
	"github.com/kryptokrona/kryptokrona-sub001/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.CNSS)

// ConsensusStateManager is the single place that mutates chain state. The
// forest's InvalidBlockIndex sentinel (all bits set) means "no block here
// yet"; adding one to it wraps to zero, which doubles as "start from the
// genesis slot" wherever a tip index of InvalidBlockIndex would otherwise
// need a special case — used below in switchMain and
// RequiredDifficultyForNextBlock.
type ConsensusStateManager struct {
	currency          *cryptonote.Currency
	difficultyManager model.DifficultyManager

	forest    *blockchaincache.Forest
	mainStore *mainchainstorage.Store

	rng *rand.Rand

	observers []func(externalapi.ConsensusNotification)
}

// New returns a ConsensusStateManager configured by currency and its
// difficulty collaborator. rng drives RandomOutputs' mixin sampling; pass
// rand.New(rand.NewSource(time.Now().UnixNano())) in production and a
// fixed-seed source in tests.
func New(currency *cryptonote.Currency, difficultyManager model.DifficultyManager, rng *rand.Rand) *ConsensusStateManager {
	return &ConsensusStateManager{
		currency:          currency,
		difficultyManager: difficultyManager,
		forest:            blockchaincache.NewForest(),
		mainStore:         mainchainstorage.New(),
		rng:               rng,
	}
}

// AddObserver registers fn to be called, synchronously and in
// registration order, with every notification AddBlock produces.
func (csm *ConsensusStateManager) AddObserver(fn func(externalapi.ConsensusNotification)) {
	csm.observers = append(csm.observers, fn)
}

func (csm *ConsensusStateManager) notify(n externalapi.ConsensusNotification) {
	for _, observer := range csm.observers {
		observer(n)
	}
}

// AddBlock implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) AddBlock(block *externalapi.DomainBlock, transactions []*externalapi.DomainTransaction,
	raw externalapi.RawBlock) *externalapi.AddBlockResult {

	blockHash := hashserialization.BlockHash(block)
	if csm.forest.HasBlock(blockHash) {
		return &externalapi.AddBlockResult{Code: externalapi.AlreadyExists}
	}

	target, rejection := csm.resolveTarget(block)
	if rejection != nil {
		return rejection
	}

	state := externalapi.NewTransactionValidatorState()
	var feeTotal uint64
	for _, tx := range transactions {
		in, out := transactionTotals(tx)
		if out > in {
			return &externalapi.AddBlockResult{
				Code: externalapi.TransactionValidationFailed,
				Cause: ruleerrors.New(ruleerrors.ErrTransactionInputsOutputsMismatch,
					"already-validated block carries an underfunded transaction"),
			}
		}
		feeTotal += in - out
		for _, in := range tx.Inputs {
			state.SpentKeyImages[in.KeyImage] = struct{}{}
		}
	}

	var generatedCoinsThisBlock uint64
	if baseTotal := outputTotal(block.BaseTransaction); baseTotal > feeTotal {
		generatedCoinsThisBlock = baseTotal - feeTotal
	}

	blockIndex := target.EndIndex()
	size := blockSize(raw)

	tipIndex := blockIndex - 1
	window := csm.currency.DifficultyBlocksCountByBlockVersion(blockIndex)
	timestamps, cumulativeDifficulties := csm.DifficultyWindow(tipIndex, window)
	difficulty, err := csm.difficultyManager.RequiredDifficulty(tipIndex, timestamps, cumulativeDifficulties)
	if err != nil {
		return &externalapi.AddBlockResult{Code: externalapi.BlockValidationFailed, Cause: err}
	}

	cached := externalapi.NewCachedBlock(block, blockIndex, blockHash)
	target.PushBlock(cached, raw, state, size, difficulty, generatedCoinsThisBlock, uint64(len(transactions)+1), block.Header.Timestamp)
	csm.forest.RegisterBlock(blockHash, blockIndex, target)

	csm.indexOutputs(target, block.BaseTransaction, blockIndex, 0)
	csm.indexTransaction(target, block.BaseTransaction, blockIndex, 0)
	for i, tx := range transactions {
		txIndex := uint16(i + 1)
		csm.indexOutputs(target, tx, blockIndex, txIndex)
		csm.indexTransaction(target, tx, blockIndex, txIndex)
	}

	oldMain := csm.forest.MainLeaf()
	if target == oldMain {
		csm.mainStore.PushBlock(raw)
		csm.notify(&externalapi.NewBlockNotification{Index: blockIndex, Hash: blockHash})
		return &externalapi.AddBlockResult{Code: externalapi.AddedToMain, Insertion: &externalapi.BlockInsertionResult{}}
	}

	newDiff := target.CumulativeDifficultyAt(blockIndex)
	var mainDiff uint64
	if oldMain.EndIndex() > 0 {
		mainDiff = oldMain.CumulativeDifficultyAt(oldMain.EndIndex() - 1)
	}

	if newDiff <= mainDiff {
		csm.notify(&externalapi.NewAlternativeBlockNotification{Index: blockIndex, Hash: blockHash})
		return &externalapi.AddBlockResult{Code: externalapi.AddedToAlternative}
	}

	changes := csm.switchMain(target)
	csm.notify(&externalapi.ChainSwitchNotification{
		CommonRootIndex: changes.CommonRootIndex,
		Hashes:          dereferenceHashes(changes.Added),
	})
	return &externalapi.AddBlockResult{
		Code:      externalapi.AddedToAlternativeAndSwitched,
		Insertion: &externalapi.BlockInsertionResult{VirtualSelectedParentChainChanges: changes},
	}
}

// resolveTarget finds the segment block should be appended to, splitting
// or branching the tree as needed, and reports a terminal AddBlockResult
// if block cannot be placed at all.
func (csm *ConsensusStateManager) resolveTarget(block *externalapi.DomainBlock) (*blockchaincache.Segment, *externalapi.AddBlockResult) {
	if block.Header.PreviousBlockHash.IsZero() && csm.forest.TopIndex() == blockchaincache.InvalidBlockIndex {
		return csm.forest.MainLeaf(), nil
	}

	parentIndex, ok := csm.forest.BlockIndexOf(block.Header.PreviousBlockHash)
	if !ok {
		return nil, &externalapi.AddBlockResult{Code: externalapi.RejectedAsOrphaned}
	}
	parent, ok := csm.forest.FindSegmentContainingBlock(parentIndex)
	if !ok {
		return nil, &externalapi.AddBlockResult{Code: externalapi.RejectedAsOrphaned}
	}

	return csm.attachChild(parent, parentIndex), nil
}

// attachChild returns the segment a block extending parentIndex (owned by
// parent) should be pushed onto: parent itself when parentIndex is
// parent's own tip and parent is still a leaf; otherwise a new branch,
// splitting parent first when parentIndex falls strictly inside its range.
func (csm *ConsensusStateManager) attachChild(parent *blockchaincache.Segment, parentIndex uint32) *blockchaincache.Segment {
	if parentIndex+1 == parent.EndIndex() {
		if len(parent.Children()) == 0 {
			return parent
		}
		branch := parent.NewChild(parentIndex + 1)
		csm.forest.AddLeaf(branch)
		return branch
	}

	wasLeaf := len(parent.Children()) == 0
	wasMain := csm.forest.MainLeaf() == parent

	tail := parent.Split(parentIndex + 1)
	for i := tail.StartIndex(); i < tail.EndIndex(); i++ {
		if cached, ok := tail.BlockAt(i); ok {
			csm.forest.RegisterBlock(*cached.BlockHash(), i, tail)
		}
	}
	if wasLeaf {
		csm.forest.RemoveLeaf(parent)
		csm.forest.AddLeaf(tail)
	}
	if wasMain {
		csm.forest.SwitchMain(tail)
	}

	branch := parent.NewChild(parentIndex + 1)
	csm.forest.AddLeaf(branch)
	return branch
}

// switchMain makes target the new main-chain leaf, rewriting the
// append-only store so it again mirrors root through target's tip.
func (csm *ConsensusStateManager) switchMain(target *blockchaincache.Segment) *externalapi.SelectedParentChainChanges {
	oldMain := csm.forest.MainLeaf()
	commonIndex := blockchaincache.CommonAncestorIndex(target, oldMain)

	var removed, added []*externalapi.DomainHash
	for i := commonIndex + 1; oldMain.EndIndex() > 0 && i < oldMain.EndIndex(); i++ {
		if cached, ok := oldMain.BlockAt(i); ok {
			removed = append(removed, cached.BlockHash())
		}
	}

	var rawBlocks []externalapi.RawBlock
	for i := commonIndex + 1; i < target.EndIndex(); i++ {
		if cached, ok := target.BlockAt(i); ok {
			added = append(added, cached.BlockHash())
		}
		if raw, ok := target.RawBlockAt(i); ok {
			rawBlocks = append(rawBlocks, raw)
		}
	}

	var rewriteFrom uint32
	if commonIndex != blockchaincache.InvalidBlockIndex {
		rewriteFrom = commonIndex + 1
	}
	if err := csm.mainStore.RewriteFrom(rewriteFrom, rawBlocks); err != nil {
		log.Warnf("failed to rewrite main-chain storage during a chain switch: %s", err)
	}
	csm.forest.SwitchMain(target)

	return &externalapi.SelectedParentChainChanges{CommonRootIndex: commonIndex, Added: added, Removed: removed}
}

func (csm *ConsensusStateManager) indexOutputs(segment *blockchaincache.Segment, tx *externalapi.DomainTransaction, blockIndex uint32, txIndex uint16) {
	for outIndex, out := range tx.Outputs {
		if out.Kind != externalapi.OutputKindKey {
			continue
		}
		packed := externalapi.PackedOutIndex{BlockIndex: blockIndex, TransactionIndex: txIndex, OutputIndex: uint16(outIndex)}
		entry := externalapi.NewOutputEntry(out.Amount, out.PublicKey, blockIndex, tx.UnlockTime, packed)
		segment.IndexOutput(out.Amount, entry)
	}
}

func (csm *ConsensusStateManager) indexTransaction(segment *blockchaincache.Segment, tx *externalapi.DomainTransaction, blockIndex uint32, txIndex uint16) {
	hash := hashserialization.TransactionHash(tx)
	var paymentID *externalapi.DomainHash
	if id, ok := txextra.ExtractPaymentID(tx.Extra); ok {
		paymentID = &id
	}
	segment.IndexTransaction(hash, blockIndex, txIndex, paymentID)
}

// TopIndex implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) TopIndex() uint32 { return csm.forest.TopIndex() }

// TopHash implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) TopHash() externalapi.DomainHash {
	index := csm.forest.TopIndex()
	if index == blockchaincache.InvalidBlockIndex {
		return externalapi.DomainHash{}
	}
	hash, _ := csm.HashAt(index)
	return hash
}

// HashAt implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) HashAt(index uint32) (externalapi.DomainHash, bool) {
	cached, ok := csm.forest.MainLeaf().BlockAt(index)
	if !ok {
		return externalapi.DomainHash{}, false
	}
	return *cached.BlockHash(), true
}

// RawBlockAt implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) RawBlockAt(index uint32) (externalapi.RawBlock, bool) {
	raw, err := csm.mainStore.Get(index)
	if err != nil {
		return externalapi.RawBlock{}, false
	}
	return raw, true
}

// TimestampAt implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) TimestampAt(index uint32) (uint64, bool) {
	return csm.forest.MainLeaf().TimestampAt(index)
}

// IndexOf implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) IndexOf(hash externalapi.DomainHash) (uint32, bool) {
	return csm.forest.BlockIndexOf(hash)
}

// HasBlock reports whether hash is known anywhere in the forest, main or
// alternative chain.
func (csm *ConsensusStateManager) HasBlock(hash externalapi.DomainHash) bool {
	return csm.forest.HasBlock(hash)
}

// TransactionLocation resolves hash to its block index and in-block
// position, searching the main chain only.
func (csm *ConsensusStateManager) TransactionLocation(hash externalapi.DomainHash) (blockIndex uint32, txIndex uint16, found bool) {
	return csm.forest.MainLeaf().TransactionLocation(hash)
}

// TransactionHashesByPaymentID returns the main-chain transaction hashes
// carrying paymentID in their extra field.
func (csm *ConsensusStateManager) TransactionHashesByPaymentID(paymentID externalapi.DomainHash) []externalapi.DomainHash {
	return csm.forest.MainLeaf().TransactionHashesByPaymentID(paymentID)
}

// AlreadyGeneratedCoinsAt implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) AlreadyGeneratedCoinsAt(index uint32) (uint64, bool) {
	segment, ok := csm.forest.FindSegmentContainingBlock(index)
	if !ok {
		return 0, false
	}
	return segment.AlreadyGeneratedCoinsAt(index), true
}

// TimestampWindow returns up to count trailing block timestamps ending at
// tipIndex, oldest first; it satisfies blockvalidator's chainReader.
func (csm *ConsensusStateManager) TimestampWindow(tipIndex uint32, count uint64) []uint64 {
	segment, ok := csm.forest.FindSegmentContainingBlock(tipIndex)
	if !ok {
		return nil
	}
	return segment.LastTimestamps(int(count), tipIndex)
}

// SizeWindow returns up to count trailing block sizes ending at tipIndex,
// oldest first; it satisfies blockvalidator's chainReader.
func (csm *ConsensusStateManager) SizeWindow(tipIndex uint32, count uint64) []uint64 {
	segment, ok := csm.forest.FindSegmentContainingBlock(tipIndex)
	if !ok {
		return nil
	}
	return segment.LastBlockSizes(int(count), tipIndex)
}

// DifficultyWindow returns up to count trailing timestamps and cumulative
// difficulties ending at tipIndex, oldest first; it satisfies
// blockvalidator's chainReader.
func (csm *ConsensusStateManager) DifficultyWindow(tipIndex uint32, count uint64) (timestamps []uint64, cumulativeDifficulties []uint64) {
	segment, ok := csm.forest.FindSegmentContainingBlock(tipIndex)
	if !ok {
		return nil, nil
	}
	return segment.LastTimestamps(int(count), tipIndex), segment.LastCumulativeDifficulties(int(count), tipIndex)
}

// RequiredDifficultyForNextBlock resolves the difficulty the block that
// would extend the current main-chain tip must satisfy, for block
// template construction.
func (csm *ConsensusStateManager) RequiredDifficultyForNextBlock() (uint64, error) {
	tipIndex := csm.forest.TopIndex()
	window := csm.currency.DifficultyBlocksCountByBlockVersion(tipIndex + 1)
	timestamps, cumulativeDifficulties := csm.DifficultyWindow(tipIndex, window)
	return csm.difficultyManager.RequiredDifficulty(tipIndex, timestamps, cumulativeDifficulties)
}

// OutputKeys implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) OutputKeys(amount uint64, globalIndexes []uint32, tipIndex uint32) ([]*externalapi.OutputEntry, externalapi.ExtractOutputKeysResult) {
	segment, ok := csm.forest.FindSegmentContainingBlock(tipIndex)
	if !ok {
		return nil, externalapi.ExtractOutputKeysInvalidGlobalIndex
	}
	return segment.ExtractOutputKeys(amount, globalIndexes, tipIndex, csm.isUnlocked)
}

// IsKeyImageSpent implements model.ConsensusStateManager.
func (csm *ConsensusStateManager) IsKeyImageSpent(keyImage externalapi.DomainKeyImage, tipIndex uint32) bool {
	segment, ok := csm.forest.FindSegmentContainingBlock(tipIndex)
	if !ok {
		return false
	}
	return segment.IsSpent(keyImage, tipIndex)
}

// RandomOutputs implements model.ConsensusStateManager, drawing up to k
// distinct unlocked outputs for amount without replacement.
func (csm *ConsensusStateManager) RandomOutputs(amount uint64, k int, tipIndex uint32) ([]*externalapi.OutputEntry, bool) {
	if k <= 0 {
		return nil, false
	}
	segment, ok := csm.forest.FindSegmentContainingBlock(tipIndex)
	if !ok {
		return nil, false
	}
	count := segment.KeyOutputsCountForAmount(amount, tipIndex)
	if count == 0 {
		return nil, false
	}

	result := make([]*externalapi.OutputEntry, 0, k)
	for _, idx := range csm.rng.Perm(count) {
		if len(result) == k {
			break
		}
		entries, status := segment.ExtractOutputKeys(amount, []uint32{uint32(idx)}, tipIndex, csm.isUnlocked)
		if status == externalapi.ExtractOutputKeysSuccess {
			result = append(result, entries[0])
		}
	}
	if len(result) == 0 {
		return nil, false
	}
	return result, true
}

func (csm *ConsensusStateManager) isUnlocked(unlockTime uint64, blockIndex uint32) bool {
	if unlockTime < cryptonote.MaxBlockNumberUnlockThreshold {
		return cryptonote.IsSpendTimeUnlocked(unlockTime, blockIndex, 0)
	}
	timestamp, ok := csm.TimestampAt(blockIndex)
	if !ok {
		return false
	}
	return cryptonote.IsSpendTimeUnlocked(unlockTime, blockIndex, timestamp)
}

func transactionTotals(tx *externalapi.DomainTransaction) (totalIn, totalOut uint64) {
	for _, in := range tx.Inputs {
		totalIn += in.KeyAmount
	}
	for _, out := range tx.Outputs {
		totalOut += out.Amount
	}
	return totalIn, totalOut
}

func outputTotal(tx *externalapi.DomainTransaction) uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Amount
	}
	return total
}

func blockSize(raw externalapi.RawBlock) uint64 {
	size := uint64(len(raw.Block))
	for _, tx := range raw.Transactions {
		size += uint64(len(tx))
	}
	return size
}

func dereferenceHashes(hashes []*externalapi.DomainHash) []externalapi.DomainHash {
	out := make([]externalapi.DomainHash, len(hashes))
	for i, hash := range hashes {
		out[i] = *hash
	}
	return out
}
