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

package mempool

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/event"
	"github.com/pontoon-io/pontoon/ledger"
)

const (
	AddTransactionEventType    event.EventType = "mempool.add_tx"
	RemoveTransactionEventType event.EventType = "mempool.remove_tx"
)

type AddTransactionEvent struct {
	Hash core.Hash32
	Body []byte
}

type RemoveTransactionEvent struct {
	Hash core.Hash32
}

type MempoolTransaction struct {
	LastSeen time.Time
	Tx       *core.Transaction
	Cbor     []byte
	Hash     core.Hash32
}

// TxValidator defines the interface for transaction validation needed
// by the mempool. Satisfied by ledger.Ledger
type TxValidator interface {
	ValidateTransaction(tx *core.Transaction) error
}

type MempoolConfig struct {
	PromRegistry    prometheus.Registerer
	Validator       TxValidator
	Logger          *slog.Logger
	EventBus        *event.EventBus
	MempoolCapacity int64
}

// Mempool holds candidate transactions for block producers. Entries are
// re-validated whenever a block connects, so transactions whose inputs
// were spent by the new block fall out automatically
type Mempool struct {
	config  MempoolConfig
	metrics struct {
		txsProcessedNum prometheus.Counter
		txsInMempool    prometheus.Gauge
		mempoolBytes    prometheus.Gauge
	}
	validator    TxValidator
	logger       *slog.Logger
	eventBus     *event.EventBus
	consumers    map[string]*MempoolConsumer
	transactions []*MempoolTransaction
	done         chan struct{}
	doneOnce     sync.Once
	sync.RWMutex
	consumersMutex sync.Mutex
}

type MempoolFullError struct {
	CurrentSize int
	TxSize      int
	Capacity    int64
}

func (e *MempoolFullError) Error() string {
	return fmt.Sprintf(
		"mempool full: current size=%d bytes, tx size=%d bytes, capacity=%d bytes",
		e.CurrentSize,
		e.TxSize,
		e.Capacity,
	)
}

func NewMempool(config MempoolConfig) *Mempool {
	m := &Mempool{
		eventBus:  config.EventBus,
		consumers: make(map[string]*MempoolConsumer),
		validator: config.Validator,
		config:    config,
		done:      make(chan struct{}),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		m.logger = config.Logger
	}
	// Subscribe to chain update events
	if m.eventBus != nil {
		go m.processChainEvents()
	}
	// Init metrics
	promautoFactory := promauto.With(config.PromRegistry)
	m.metrics.txsProcessedNum = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "pontoon_mempool_txs_processed_total",
			Help: "total transactions processed",
		},
	)
	m.metrics.txsInMempool = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "pontoon_mempool_txs",
		Help: "current count of mempool transactions",
	})
	m.metrics.mempoolBytes = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "pontoon_mempool_bytes",
		Help: "current size of mempool transactions in bytes",
	})
	return m
}

// Stop ends chain event processing and unblocks any consumers waiting
// in NextTx
func (m *Mempool) Stop() {
	m.doneOnce.Do(func() { close(m.done) })
}

func (m *Mempool) AddConsumer(id string) *MempoolConsumer {
	m.consumersMutex.Lock()
	defer m.consumersMutex.Unlock()
	consumer := newConsumer(m)
	m.consumers[id] = consumer
	return consumer
}

func (m *Mempool) RemoveConsumer(id string) {
	m.consumersMutex.Lock()
	defer m.consumersMutex.Unlock()
	if consumer, ok := m.consumers[id]; ok {
		consumer.Close()
		delete(m.consumers, id)
	}
}

func (m *Mempool) Consumer(id string) *MempoolConsumer {
	m.consumersMutex.Lock()
	defer m.consumersMutex.Unlock()
	return m.consumers[id]
}

func (m *Mempool) processChainEvents() {
	blockSubId, blockChan := m.eventBus.Subscribe(
		ledger.BlockConnectedEventType,
	)
	defer func() {
		m.eventBus.Unsubscribe(ledger.BlockConnectedEventType, blockSubId)
	}()
	for {
		select {
		case _, ok := <-blockChan:
			if !ok {
				return
			}
		case <-m.done:
			return
		}
		m.Lock()
		// Re-validate each TX in mempool
		// We iterate backward to avoid issues with shifting indexes when deleting
		for i := len(m.transactions) - 1; i >= 0; i-- {
			tx := m.transactions[i]
			if err := m.validator.ValidateTransaction(tx.Tx); err != nil {
				m.removeTransactionByIndex(i)
				m.logger.Debug(
					"removed transaction after re-validation failure",
					"component", "mempool",
					"tx_hash", tx.Hash.String(),
					"error", err,
				)
			}
		}
		m.Unlock()
	}
}

func (m *Mempool) AddTransaction(tx *core.Transaction) error {
	// Validate transaction
	if err := m.validator.ValidateTransaction(tx); err != nil {
		return err
	}
	txBytes, err := tx.Encode()
	if err != nil {
		return err
	}
	// Build mempool entry
	entry := MempoolTransaction{
		Hash:     tx.Hash(),
		Tx:       tx,
		Cbor:     txBytes,
		LastSeen: time.Now(),
	}
	m.Lock()
	defer m.Unlock()
	// Update last seen for existing TX
	if existingTx := m.getTransaction(entry.Hash); existingTx != nil {
		existingTx.LastSeen = time.Now()
		m.logger.Debug(
			"updated last seen for transaction",
			"component", "mempool",
			"tx_hash", entry.Hash.String(),
		)
		return nil
	}
	// Enforce mempool capacity
	currentSize := 0
	for _, existing := range m.transactions {
		currentSize += len(existing.Cbor)
	}
	if currentSize+len(entry.Cbor) > int(m.config.MempoolCapacity) {
		return &MempoolFullError{
			CurrentSize: currentSize,
			TxSize:      len(entry.Cbor),
			Capacity:    m.config.MempoolCapacity,
		}
	}
	// Add transaction record
	m.transactions = append(m.transactions, &entry)
	m.logger.Debug(
		"added transaction",
		"component", "mempool",
		"tx_hash", entry.Hash.String(),
	)
	m.metrics.txsProcessedNum.Inc()
	m.metrics.txsInMempool.Inc()
	m.metrics.mempoolBytes.Add(float64(len(entry.Cbor)))
	// Generate event
	if m.eventBus != nil {
		m.eventBus.Publish(
			AddTransactionEventType,
			event.NewEvent(
				AddTransactionEventType,
				AddTransactionEvent{
					Hash: entry.Hash,
					Body: entry.Cbor,
				},
			),
		)
	}
	return nil
}

func (m *Mempool) GetTransaction(txHash core.Hash32) (MempoolTransaction, bool) {
	m.Lock()
	defer m.Unlock()
	ret := m.getTransaction(txHash)
	if ret == nil {
		return MempoolTransaction{}, false
	}
	return *ret, true
}

func (m *Mempool) Transactions() []MempoolTransaction {
	m.Lock()
	defer m.Unlock()
	ret := make([]MempoolTransaction, len(m.transactions))
	for i := range m.transactions {
		ret[i] = *m.transactions[i]
	}
	return ret
}

func (m *Mempool) getTransaction(txHash core.Hash32) *MempoolTransaction {
	for _, tx := range m.transactions {
		if tx.Hash == txHash {
			return tx
		}
	}
	return nil
}

func (m *Mempool) RemoveTransaction(txHash core.Hash32) {
	m.Lock()
	defer m.Unlock()
	if m.removeTransaction(txHash) {
		m.logger.Debug(
			"removed transaction",
			"component", "mempool",
			"tx_hash", txHash.String(),
		)
	}
}

func (m *Mempool) removeTransaction(txHash core.Hash32) bool {
	for txIdx, tx := range m.transactions {
		if tx.Hash == txHash {
			return m.removeTransactionByIndex(txIdx)
		}
	}
	return false
}

func (m *Mempool) removeTransactionByIndex(txIdx int) bool {
	if txIdx >= len(m.transactions) {
		return false
	}
	tx := m.transactions[txIdx]
	m.transactions = slices.Delete(
		m.transactions,
		txIdx,
		txIdx+1,
	)
	m.metrics.txsInMempool.Dec()
	m.metrics.mempoolBytes.Sub(float64(len(tx.Cbor)))
	// Update consumer indexes to reflect removed TX
	m.consumersMutex.Lock()
	for _, consumer := range m.consumers {
		// Decrement consumer index if the consumer has reached the removed TX
		if consumer.nextTxIdx > txIdx {
			consumer.nextTxIdx--
		}
	}
	m.consumersMutex.Unlock()
	// Generate event
	if m.eventBus != nil {
		m.eventBus.Publish(
			RemoveTransactionEventType,
			event.NewEvent(
				RemoveTransactionEventType,
				RemoveTransactionEvent{
					Hash: tx.Hash,
				},
			),
		)
	}
	return true
}
