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
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/pontoon-io/pontoon/core"
)

// CachingOracle wraps a MainChainOracle with a TTL cache. Main-chain
// records are immutable once created, so positive results can be cached
// safely; misses are never cached since a reference unknown now may
// exist after the main chain advances
type CachingOracle struct {
	inner       core.MainChainOracle
	deposits    *ttlcache.Cache[core.Ref, core.Deposit]
	withdrawals *ttlcache.Cache[core.Ref, core.Withdrawal]
}

func NewCachingOracle(
	inner core.MainChainOracle,
	ttl time.Duration,
) *CachingOracle {
	o := &CachingOracle{
		inner: inner,
		deposits: ttlcache.New[core.Ref, core.Deposit](
			ttlcache.WithTTL[core.Ref, core.Deposit](ttl),
		),
		withdrawals: ttlcache.New[core.Ref, core.Withdrawal](
			ttlcache.WithTTL[core.Ref, core.Withdrawal](ttl),
		),
	}
	go o.deposits.Start()
	go o.withdrawals.Start()
	return o
}

func (o *CachingOracle) GetDeposit(ref core.Ref) (core.Deposit, bool) {
	if item := o.deposits.Get(ref); item != nil {
		return item.Value(), true
	}
	deposit, ok := o.inner.GetDeposit(ref)
	if !ok {
		return core.Deposit{}, false
	}
	o.deposits.Set(ref, deposit, ttlcache.DefaultTTL)
	return deposit, true
}

func (o *CachingOracle) GetWithdrawal(ref core.Ref) (core.Withdrawal, bool) {
	if item := o.withdrawals.Get(ref); item != nil {
		return item.Value(), true
	}
	withdrawal, ok := o.inner.GetWithdrawal(ref)
	if !ok {
		return core.Withdrawal{}, false
	}
	o.withdrawals.Set(ref, withdrawal, ttlcache.DefaultTTL)
	return withdrawal, true
}

// Stop shuts down the cache expiration goroutines
func (o *CachingOracle) Stop() {
	o.deposits.Stop()
	o.withdrawals.Stop()
}
