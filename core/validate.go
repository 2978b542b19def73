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

package core

import "math"

// ValidateBlock decides whether the block can be connected to this
// state. It is a pure predicate: no mutation, rejection is a normal
// outcome communicated by the boolean.
//
// A block is accepted when:
//   - no outpoint, deposit reference, or refund reference is claimed
//     more than once within the block
//   - every spent input resolves to a known unspent output, every
//     deposit/refund claim resolves through the main-chain oracle
//     (all-or-nothing: one missing reference rejects the whole block)
//   - every resolved claim's address accepts the supplied signature
//   - value is conserved: the coinbase total equals exactly the net
//     value the block introduces beyond what it consumed
func (s *LedgerState) ValidateBlock(
	oracle MainChainOracle,
	header *Header,
	body *Body,
) bool {
	inputs := body.Inputs()
	depositInputs := body.DepositInputs()
	refundInputs := body.RefundInputs()

	// Same-block double use of any claim is rejected up front.
	// Resolution below runs against the unmutated state, so without
	// this a duplicate would resolve twice against the same record
	if !uniqueOutpoints(inputs) ||
		!uniqueDepositRefs(depositInputs) ||
		!uniqueRefundRefs(refundInputs) {
		return false
	}

	// Resolve every reference
	spentOutputs := make([]Output, 0, len(inputs))
	for _, input := range inputs {
		if !s.HasUtxo(input.Outpoint) {
			return false
		}
		output, ok := s.OutputByOutpoint(input.Outpoint)
		if !ok {
			return false
		}
		spentOutputs = append(spentOutputs, output)
	}
	claimedDeposits := make([]Deposit, 0, len(depositInputs))
	for _, input := range depositInputs {
		deposit, ok := oracle.GetDeposit(input.Ref)
		if !ok {
			return false
		}
		claimedDeposits = append(claimedDeposits, deposit)
	}
	refundedWithdrawals := make([]Withdrawal, 0, len(refundInputs))
	for _, input := range refundInputs {
		withdrawal, ok := oracle.GetWithdrawal(input.Ref)
		if !ok {
			return false
		}
		refundedWithdrawals = append(refundedWithdrawals, withdrawal)
	}

	// Authorization: every resolved claim's address must accept the
	// supplied signature
	for i, input := range inputs {
		if !spentOutputs[i].Address.CheckSignature(input.Signature) {
			return false
		}
	}
	for i, input := range depositInputs {
		if !claimedDeposits[i].Address.CheckSignature(input.Signature) {
			return false
		}
	}
	for i, input := range refundInputs {
		if !refundedWithdrawals[i].Address.CheckSignature(input.Signature) {
			return false
		}
	}

	// Conservation. All sums are checked for uint64 overflow, and the
	// final subtraction for underflow: wrapped arithmetic must reject,
	// never silently pass
	totalInput := uint64(0)
	for _, output := range spentOutputs {
		var ok bool
		if totalInput, ok = addChecked(totalInput, output.Amount); !ok {
			return false
		}
	}
	for _, deposit := range claimedDeposits {
		var ok bool
		if totalInput, ok = addChecked(totalInput, deposit.Amount); !ok {
			return false
		}
	}
	for _, withdrawal := range refundedWithdrawals {
		var ok bool
		if totalInput, ok = addChecked(totalInput, withdrawal.Amount); !ok {
			return false
		}
	}

	totalOutput := uint64(0)
	for _, output := range body.ProjectedOutputs(header) {
		var ok bool
		if totalOutput, ok = addChecked(totalOutput, output.Amount); !ok {
			return false
		}
	}
	for _, withdrawal := range body.Withdrawals() {
		var ok bool
		if totalOutput, ok = addChecked(totalOutput, withdrawal.Amount); !ok {
			return false
		}
	}

	totalCoinbase := uint64(0)
	for _, output := range body.Coinbase {
		var ok bool
		if totalCoinbase, ok = addChecked(totalCoinbase, output.Amount); !ok {
			return false
		}
	}

	if totalOutput < totalInput {
		return false
	}
	return totalCoinbase == totalOutput-totalInput
}

func addChecked(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

func uniqueOutpoints(inputs []Input) bool {
	seen := make(map[Outpoint]struct{}, len(inputs))
	for _, input := range inputs {
		if _, ok := seen[input.Outpoint]; ok {
			return false
		}
		seen[input.Outpoint] = struct{}{}
	}
	return true
}

func uniqueDepositRefs(inputs []DepositInput) bool {
	seen := make(map[Ref]struct{}, len(inputs))
	for _, input := range inputs {
		if _, ok := seen[input.Ref]; ok {
			return false
		}
		seen[input.Ref] = struct{}{}
	}
	return true
}

func uniqueRefundRefs(inputs []RefundInput) bool {
	seen := make(map[Ref]struct{}, len(inputs))
	for _, input := range inputs {
		if _, ok := seen[input.Ref]; ok {
			return false
		}
		seen[input.Ref] = struct{}{}
	}
	return true
}
