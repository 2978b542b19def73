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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	blockHeight      prometheus.Gauge
	utxoCount        prometheus.Gauge
	blocksConnected  prometheus.Counter
	blocksRejected   prometheus.Counter
	blocksRolledBack prometheus.Counter
	peginValue       prometheus.Counter
	pegoutValue      prometheus.Counter
}

func newLedgerMetrics(promRegistry prometheus.Registerer) *ledgerMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &ledgerMetrics{
		blockHeight: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "pontoon_ledger_block_height",
			Help: "height of the current tip block",
		}),
		utxoCount: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "pontoon_ledger_utxos",
			Help: "number of unspent outputs",
		}),
		blocksConnected: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "pontoon_ledger_blocks_connected_total",
			Help: "total number of blocks connected",
		}),
		blocksRejected: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "pontoon_ledger_blocks_rejected_total",
			Help: "total number of blocks rejected by validation",
		}),
		blocksRolledBack: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "pontoon_ledger_blocks_rolledback_total",
			Help: "total number of blocks rolled back",
		}),
		peginValue: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "pontoon_ledger_pegin_value_total",
			Help: "total value claimed from main-chain deposits and refunds",
		}),
		pegoutValue: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "pontoon_ledger_pegout_value_total",
			Help: "total value requested for withdrawal to the main chain",
		}),
	}
}
