package token

import (
	"fmt"

	"go.uber.org/zap"

	"TaxLedger/internal/model"
	"TaxLedger/internal/observability"
	"TaxLedger/internal/recorder"
)

// SwapBack releases every accrued non-burn fee bucket from the contract
// account to router, which must be a registered liquidity source. Only the
// owner may call it, and only once pending fees reach the swap-back
// threshold. The conversion into the reference asset happens outside the
// ledger. An empty allocation is returned when nothing is pending.
func (t *Token) SwapBack(caller, router model.Address) (model.Allocation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	drained, err := t.swapBack(caller, router)
	if err != nil {
		observability.RecordRejection(model.Reason(err))
		t.log.Info("swap back rejected",
			zap.String("caller", string(caller)),
			zap.String("router", string(router)),
			zap.Error(err))
		return nil, err
	}
	if len(drained) == 0 {
		return drained, nil
	}

	total := drained.Sum()
	observability.RecordSwapBack()
	observability.UpdatePendingFees(t.ledger.PendingFees())
	t.log.Info("fee buckets released",
		zap.String("router", string(router)),
		zap.String("total", total.Dec()))
	if err := t.rec.RecordSwapBack(&recorder.SwapBackEvent{
		Router:     router,
		Total:      total.Dec(),
		Allocation: recorder.AllocationStrings(drained),
	}); err != nil {
		t.log.Error("record swap back", zap.Error(err))
	}
	t.save()
	return drained, nil
}

func (t *Token) swapBack(caller, router model.Address) (model.Allocation, error) {
	if err := t.requireOwner(caller); err != nil {
		return nil, fmt.Errorf("swap back: %w", err)
	}
	if !t.classifier.IsLiquiditySource(router) {
		return nil, fmt.Errorf("swap back to %s: not a liquidity source: %w", router, model.ErrInvalidAddress)
	}
	pending := t.ledger.PendingFees()
	if pending.IsZero() {
		return model.Allocation{}, nil
	}
	if pending.Lt(t.swapThreshold) {
		return nil, fmt.Errorf("%w: pending %s, threshold %s", model.ErrBelowSwapThreshold, pending.Dec(), t.swapThreshold.Dec())
	}

	drained, err := t.ledger.DrainBuckets(router)
	if err != nil {
		return nil, fmt.Errorf("swap back: %w", err)
	}
	return drained, nil
}
