package treasury

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfsorg/libtreasury-go/distribution"
	"github.com/bitfsorg/libtreasury-go/payout"
	"github.com/bitfsorg/libtreasury-go/store"
)

// CycleResult reports one completed distribution cycle.
type CycleResult struct {
	Plan       *distribution.Plan
	TxID       string // batch payout txid, empty without a payout service
	ExecutedAt time.Time
}

// eligible is the cycle gate: a full quarter has elapsed since the last
// cycle (or construction) and the pool strictly exceeds the threshold.
func (t *Treasury) eligible(now time.Time) bool {
	return t.quarterElapsed(now) && t.pool > t.minPool
}

func (t *Treasury) quarterElapsed(now time.Time) bool {
	return now.Unix() >= t.lastDistribution+int64(t.quarter/time.Second)
}

// CheckEligibility reports whether a distribution cycle is due. It is the
// poll half of the trigger protocol: external schedulers call it freely and
// pass the opaque payload, reserved and currently always nil, to Execute.
func (t *Treasury) CheckEligibility() (bool, []byte) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.eligible(t.clock()), nil
}

// Execute runs one distribution cycle. It is the execute half of the
// trigger protocol and is deliberately unprivileged: eligibility is
// re-checked here, so an untrusted or stale trigger cannot force an early
// cycle. The opaque payload from CheckEligibility is accepted and ignored.
func (t *Treasury) Execute(ctx context.Context, opaque []byte) (*CycleResult, error) {
	_ = opaque // reserved

	if err := t.beginOp(); err != nil {
		return nil, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	if !t.eligible(now) {
		return nil, ErrNotDue
	}
	return t.runCycle(ctx, now)
}

// DistributeRevenue runs one distribution cycle on the controller's
// authority. Unlike Execute it reports exactly which gate blocked it: the
// quarter or the pool threshold.
func (t *Treasury) DistributeRevenue(ctx context.Context, caller string) (*CycleResult, error) {
	if err := t.beginOp(); err != nil {
		return nil, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.controller {
		return nil, ErrNotAuthorized
	}
	now := t.clock()
	if !t.quarterElapsed(now) {
		return nil, ErrNotDue
	}
	if t.pool <= t.minPool {
		return nil, fmt.Errorf("%w: pool %d sat, threshold %d sat",
			ErrInsufficientPool, t.pool, t.minPool)
	}
	return t.runCycle(ctx, now)
}

// runCycle plans and delivers one distribution. Caller holds the guard and
// the lock and has verified eligibility. On any failure nothing is mutated:
// the pool, the records and the cycle timestamp all keep their values.
func (t *Treasury) runCycle(ctx context.Context, now time.Time) (*CycleResult, error) {
	plan, err := distribution.BuildPlan(
		t.pool, t.community.Addresses(), t.stakeholder.Addresses(), t.operating.Address)
	if err != nil {
		return nil, err
	}

	txid := ""
	if t.payout != nil && plan.Disbursed > 0 {
		receipt, err := t.payout.Send(ctx, planOutputs(plan))
		if err != nil {
			return nil, cycleFailure(plan, err)
		}
		txid = receipt.TxID
	}

	prev := t.snapshot()
	t.records.Apply(plan)
	t.pool = plan.Leftover
	t.lastDistribution = now.Unix()

	res := &CycleResult{Plan: plan, TxID: txid, ExecutedAt: now}
	if err := t.commit(store.EventDistribution, "", plan.Disbursed, txid, ""); err != nil {
		if txid == "" {
			// Accounting only; undo and leave the window open.
			t.rollback(prev)
			return nil, err
		}
		// The batch payout is on-chain, so the cycle must stand. The
		// store catches up on the next successful save.
		return res, fmt.Errorf("%w: cycle delivered as %s: %v", ErrStateNotPersisted, txid, err)
	}

	return res, nil
}

// planOutputs flattens a plan into payout outputs in disbursement order.
func planOutputs(plan *distribution.Plan) []payout.Output {
	payouts := plan.Payouts()
	outputs := make([]payout.Output, len(payouts))
	for i, p := range payouts {
		outputs[i] = payout.Output{Address: p.Address, Amount: p.Amount}
	}
	return outputs
}

// cycleFailure names the recipient behind a payout build failure, so the
// report carries the class and position instead of a bare output number.
func cycleFailure(plan *distribution.Plan, err error) error {
	var oe *payout.OutputError
	if errors.As(err, &oe) {
		payouts := plan.Payouts()
		if oe.Index >= 0 && oe.Index < len(payouts) {
			p := payouts[oe.Index]
			return fmt.Errorf("treasury: cycle aborted at %s recipient %d (%s): %w",
				p.Class, p.Index, p.Address, err)
		}
	}
	return fmt.Errorf("treasury: cycle aborted: %w", err)
}
