// Copyright 2026 Pontoon Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/database"
	"github.com/pontoon-io/pontoon/event"
)

// ErrBlockRejected is returned by AddBlock when a block fails chain
// linkage or validation checks. Rejection is a normal outcome and does
// not change ledger state
var ErrBlockRejected = errors.New("block rejected")

// ErrEmptyChain is returned by RollbackBlock when there is no tip to
// disconnect
var ErrEmptyChain = errors.New("empty chain")

// Tip identifies the most recently connected block
type Tip struct {
	Hash   core.Hash32
	Height uint64
}

type LedgerConfig struct {
	Logger *slog.Logger
	// DataDir is the persistence root. Empty means in-memory only
	DataDir      string
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	// Oracle resolves deposit and refund claims against main-chain
	// state. Defaults to an empty in-memory oracle, which rejects every
	// claim
	Oracle core.MainChainOracle
}

// Ledger owns the canonical chain: the in-memory UTXO state, the
// persisted block/output/withdrawal records, and the tip. All
// state-changing operations are serialized internally; a block is
// connected or rolled back atomically across memory and disk
type Ledger struct {
	config  LedgerConfig
	logger  *slog.Logger
	db      *database.Database
	oracle  core.MainChainOracle
	state   *core.LedgerState
	tip     *Tip
	metrics *ledgerMetrics
	mutex   sync.Mutex
}

// New opens the ledger, recovering the UTXO state and tip from the
// database when a previous instance left records behind
func New(cfg LedgerConfig) (*Ledger, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = core.NewMainChainState()
	}
	db, err := database.New(logger, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	l := &Ledger{
		config: cfg,
		logger: logger,
		db:     db,
		oracle: oracle,
	}
	if cfg.PromRegistry != nil {
		l.metrics = newLedgerMetrics(cfg.PromRegistry)
	}
	if err := l.recover(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) recover() error {
	state, err := l.db.LoadLedgerState(nil)
	if err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}
	l.state = state
	recent, err := l.db.BlocksRecent(1, nil)
	if err != nil {
		return fmt.Errorf("load tip: %w", err)
	}
	if len(recent) > 0 {
		l.tip = &Tip{
			Hash:   core.NewHash32(recent[0].Hash),
			Height: recent[0].Height,
		}
		l.logger.Info(
			"recovered ledger state",
			"component", "ledger",
			"height", l.tip.Height,
			"tip_hash", l.tip.Hash.String(),
			"utxos", state.UtxoCount(),
		)
	}
	l.updateStateMetrics()
	return nil
}

// Tip returns the current tip, or nil when no block has been connected
func (l *Ledger) Tip() *Tip {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.tip == nil {
		return nil
	}
	tmpTip := *l.tip
	return &tmpTip
}

// UtxoCount returns the number of currently unspent outputs
func (l *Ledger) UtxoCount() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state.UtxoCount()
}

// HasUtxo reports whether the outpoint is currently unspent
func (l *Ledger) HasUtxo(outpoint core.Outpoint) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state.HasUtxo(outpoint)
}

// OutputByOutpoint looks up an output record, spent or not
func (l *Ledger) OutputByOutpoint(
	outpoint core.Outpoint,
) (core.Output, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state.OutputByOutpoint(outpoint)
}

// Database returns the underlying database, for read-only queries such
// as block and withdrawal history
func (l *Ledger) Database() *database.Database {
	return l.db
}

// AddBlock validates the block against the current state, connects it,
// and persists the result. On rejection the ledger is unchanged and the
// returned error wraps ErrBlockRejected
func (l *Ledger) AddBlock(header *core.Header, body *core.Body) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if header == nil || body == nil {
		return fmt.Errorf("%w: nil header or body", ErrBlockRejected)
	}
	if err := l.checkLinkage(header, body); err != nil {
		l.rejectBlock(header, err)
		return err
	}
	if !l.state.ValidateBlock(l.oracle, header, body) {
		err := fmt.Errorf("%w: validation failed", ErrBlockRejected)
		l.rejectBlock(header, err)
		return err
	}

	blockHash := header.Hash()
	bodyData, err := body.Encode()
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	spent := make([]core.Outpoint, 0, len(body.Inputs()))
	for _, input := range body.Inputs() {
		spent = append(spent, input.Outpoint)
	}
	withdrawals := body.Withdrawals()

	txn := l.db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := l.db.AddBlock(header, bodyData, txn); err != nil {
			return err
		}
		if err := l.db.AddUtxos(
			body.ProjectedOutputs(header),
			header.Height,
			txn,
		); err != nil {
			return err
		}
		if err := l.db.SpendUtxos(spent, header.Height, txn); err != nil {
			return err
		}
		return l.db.AddWithdrawals(
			blockHash,
			header.Height,
			withdrawals,
			txn,
		)
	})
	if err != nil {
		return fmt.Errorf("persist block %s: %w", blockHash, err)
	}

	// Persisted; the in-memory connect cannot fail for a validated block
	if err := l.state.Connect(header, body); err != nil {
		return fmt.Errorf("connect block %s: %w", blockHash, err)
	}
	l.tip = &Tip{Hash: blockHash, Height: header.Height}

	l.logger.Info(
		"connected block",
		"component", "ledger",
		"block_hash", blockHash.String(),
		"height", header.Height,
		"transactions", len(body.Transactions),
		"withdrawals", len(withdrawals),
	)
	if l.metrics != nil {
		l.metrics.blocksConnected.Inc()
		l.metrics.peginValue.Add(float64(l.claimedValue(body)))
		for _, withdrawal := range withdrawals {
			l.metrics.pegoutValue.Add(float64(withdrawal.Amount))
		}
	}
	l.updateStateMetrics()
	if l.config.EventBus != nil {
		l.config.EventBus.Publish(
			BlockConnectedEventType,
			event.NewEvent(
				BlockConnectedEventType,
				BlockConnectedEvent{
					Hash:             blockHash,
					Height:           header.Height,
					TransactionCount: len(body.Transactions),
				},
			),
		)
		for _, withdrawal := range withdrawals {
			l.config.EventBus.Publish(
				WithdrawalRequestedEventType,
				event.NewEvent(
					WithdrawalRequestedEventType,
					WithdrawalRequestedEvent{
						BlockHash: blockHash,
						Height:    header.Height,
						Address:   withdrawal.Address,
						Amount:    withdrawal.Amount,
					},
				),
			)
		}
	}
	return nil
}

// checkLinkage verifies body commitment and parent/height continuity.
// The first block must have height 1; its parent hash is unconstrained
func (l *Ledger) checkLinkage(header *core.Header, body *core.Body) error {
	if header.BodyHash != body.Hash() {
		return fmt.Errorf("%w: body hash mismatch", ErrBlockRejected)
	}
	if l.tip == nil {
		if header.Height != 1 {
			return fmt.Errorf(
				"%w: first block must have height 1, got %d",
				ErrBlockRejected,
				header.Height,
			)
		}
		return nil
	}
	if header.ParentHash != l.tip.Hash {
		return fmt.Errorf(
			"%w: parent hash %s does not match tip %s",
			ErrBlockRejected,
			header.ParentHash,
			l.tip.Hash,
		)
	}
	if header.Height != l.tip.Height+1 {
		return fmt.Errorf(
			"%w: expected height %d, got %d",
			ErrBlockRejected,
			l.tip.Height+1,
			header.Height,
		)
	}
	return nil
}

func (l *Ledger) rejectBlock(header *core.Header, err error) {
	l.logger.Warn(
		"rejected block",
		"component", "ledger",
		"block_hash", header.Hash().String(),
		"height", header.Height,
		"error", err,
	)
	if l.metrics != nil {
		l.metrics.blocksRejected.Inc()
	}
}

// claimedValue sums the main-chain value the block pulled in through
// deposit and refund claims. The block has already validated, so every
// reference resolves
func (l *Ledger) claimedValue(body *core.Body) uint64 {
	total := uint64(0)
	for _, input := range body.DepositInputs() {
		if deposit, ok := l.oracle.GetDeposit(input.Ref); ok {
			total += deposit.Amount
		}
	}
	for _, input := range body.RefundInputs() {
		if withdrawal, ok := l.oracle.GetWithdrawal(input.Ref); ok {
			total += withdrawal.Amount
		}
	}
	return total
}

// RollbackBlock disconnects the current tip, exactly undoing its
// connection in memory and on disk, and restores the previous tip.
// Blocks roll back strictly newest-first
func (l *Ledger) RollbackBlock() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.tip == nil {
		return ErrEmptyChain
	}
	tipHash := l.tip.Hash
	tipHeight := l.tip.Height
	blockRow, err := l.db.BlockByHash(tipHash, nil)
	if err != nil {
		return fmt.Errorf("load tip block: %w", err)
	}
	bodyData, err := l.db.BlockBodyByHash(tipHash, nil)
	if err != nil {
		return fmt.Errorf("load tip body: %w", err)
	}
	body, err := core.DecodeBody(bodyData)
	if err != nil {
		return fmt.Errorf("decode tip body: %w", err)
	}
	header := &core.Header{
		ParentHash: core.NewHash32(blockRow.ParentHash),
		BodyHash:   core.NewHash32(blockRow.BodyHash),
		Height:     blockRow.Height,
	}

	txn := l.db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := l.db.DeleteBlock(tipHash, txn); err != nil {
			return err
		}
		if err := l.db.DeleteUtxosAddedAtHeight(tipHeight, txn); err != nil {
			return err
		}
		if err := l.db.UnspendUtxos(tipHeight, txn); err != nil {
			return err
		}
		return l.db.DeleteWithdrawalsAtHeight(tipHeight, txn)
	})
	if err != nil {
		return fmt.Errorf("rollback block %s: %w", tipHash, err)
	}

	if err := l.state.Disconnect(header, body); err != nil {
		return fmt.Errorf("disconnect block %s: %w", tipHash, err)
	}
	if tipHeight == 1 {
		l.tip = nil
	} else {
		l.tip = &Tip{
			Hash:   header.ParentHash,
			Height: tipHeight - 1,
		}
	}

	l.logger.Info(
		"rolled back block",
		"component", "ledger",
		"block_hash", tipHash.String(),
		"height", tipHeight,
	)
	if l.metrics != nil {
		l.metrics.blocksRolledBack.Inc()
	}
	l.updateStateMetrics()
	if l.config.EventBus != nil {
		l.config.EventBus.Publish(
			BlockRolledBackEventType,
			event.NewEvent(
				BlockRolledBackEventType,
				BlockRolledBackEvent{
					Hash:   tipHash,
					Height: tipHeight,
				},
			),
		)
	}
	return nil
}

func (l *Ledger) updateStateMetrics() {
	if l.metrics == nil {
		return
	}
	height := uint64(0)
	if l.tip != nil {
		height = l.tip.Height
	}
	l.metrics.blockHeight.Set(float64(height))
	l.metrics.utxoCount.Set(float64(l.state.UtxoCount()))
}

// Close releases the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}
