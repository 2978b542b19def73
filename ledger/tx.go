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

	"github.com/pontoon-io/pontoon/core"
)

// ErrTransactionRejected is returned by ValidateTransaction when a
// standalone transaction cannot be connected on top of the current tip
var ErrTransactionRejected = errors.New("transaction rejected")

// ValidateTransaction checks a standalone transaction against the
// current state: claims must be unique within the transaction, every
// reference must resolve, and every signature must verify. Conservation
// is not checked here; a block producer balances the block's coinbase
// against the transactions it includes
func (l *Ledger) ValidateTransaction(tx *core.Transaction) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	seenOutpoints := make(map[core.Outpoint]struct{}, len(tx.Inputs))
	for _, input := range tx.Inputs {
		if _, ok := seenOutpoints[input.Outpoint]; ok {
			return fmt.Errorf(
				"%w: duplicate input %s",
				ErrTransactionRejected,
				input.Outpoint,
			)
		}
		seenOutpoints[input.Outpoint] = struct{}{}
		if !l.state.HasUtxo(input.Outpoint) {
			return fmt.Errorf(
				"%w: unknown or spent outpoint %s",
				ErrTransactionRejected,
				input.Outpoint,
			)
		}
		output, ok := l.state.OutputByOutpoint(input.Outpoint)
		if !ok {
			return fmt.Errorf(
				"%w: no output record for %s",
				ErrTransactionRejected,
				input.Outpoint,
			)
		}
		if !output.Address.CheckSignature(input.Signature) {
			return fmt.Errorf(
				"%w: bad signature for %s",
				ErrTransactionRejected,
				input.Outpoint,
			)
		}
	}

	seenRefs := make(
		map[core.Ref]struct{},
		len(tx.DepositInputs)+len(tx.RefundInputs),
	)
	for _, input := range tx.DepositInputs {
		if _, ok := seenRefs[input.Ref]; ok {
			return fmt.Errorf(
				"%w: duplicate deposit claim %s:%d",
				ErrTransactionRejected,
				input.Ref.TxId,
				input.Ref.Index,
			)
		}
		seenRefs[input.Ref] = struct{}{}
		deposit, ok := l.oracle.GetDeposit(input.Ref)
		if !ok {
			return fmt.Errorf(
				"%w: unknown deposit %s:%d",
				ErrTransactionRejected,
				input.Ref.TxId,
				input.Ref.Index,
			)
		}
		if !deposit.Address.CheckSignature(input.Signature) {
			return fmt.Errorf(
				"%w: bad signature for deposit %s:%d",
				ErrTransactionRejected,
				input.Ref.TxId,
				input.Ref.Index,
			)
		}
	}
	seenRefs = make(map[core.Ref]struct{}, len(tx.RefundInputs))
	for _, input := range tx.RefundInputs {
		if _, ok := seenRefs[input.Ref]; ok {
			return fmt.Errorf(
				"%w: duplicate refund claim %s:%d",
				ErrTransactionRejected,
				input.Ref.TxId,
				input.Ref.Index,
			)
		}
		seenRefs[input.Ref] = struct{}{}
		withdrawal, ok := l.oracle.GetWithdrawal(input.Ref)
		if !ok {
			return fmt.Errorf(
				"%w: unknown withdrawal %s:%d",
				ErrTransactionRejected,
				input.Ref.TxId,
				input.Ref.Index,
			)
		}
		if !withdrawal.Address.CheckSignature(input.Signature) {
			return fmt.Errorf(
				"%w: bad signature for refund %s:%d",
				ErrTransactionRejected,
				input.Ref.TxId,
				input.Ref.Index,
			)
		}
	}
	return nil
}
