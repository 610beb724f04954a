package token

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"TaxLedger/internal/model"
	"TaxLedger/internal/observability"
	"TaxLedger/internal/recorder"
)

// ownerChange runs apply for the owner under the lock, journals the attempt
// and persists on success. apply must leave state untouched when it fails.
func (t *Token) ownerChange(kind recorder.PolicyKind, caller model.Address, value string, apply func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.requireOwner(caller)
	if err == nil {
		err = apply()
	}

	evt := &recorder.PolicyEvent{
		Kind:     kind,
		Caller:   caller,
		Value:    value,
		Accepted: err == nil,
		Reason:   model.Reason(err),
	}
	if rerr := t.rec.RecordPolicyChange(evt); rerr != nil {
		t.log.Error("record policy change", zap.Error(rerr))
	}

	if err != nil {
		observability.RecordRejection(evt.Reason)
		t.log.Info("policy change rejected",
			zap.String("kind", string(kind)),
			zap.String("caller", string(caller)),
			zap.String("value", value),
			zap.Error(err))
		return err
	}
	observability.RecordPolicyChange(string(kind))
	t.log.Info("policy changed",
		zap.String("kind", string(kind)),
		zap.String("value", value))
	t.save()
	return nil
}

func formatFees(f model.FeeSchedule) string {
	return fmt.Sprintf("%d,%d,%d,%d,%d", f.Marketing, f.Development, f.Liquidity, f.Reflection, f.Burn)
}

func formatToggle(a model.Address, on bool) string {
	return string(a) + "=" + strconv.FormatBool(on)
}

// SetBuyFees replaces the buy schedule (marketing, development, liquidity, reflection, burn).
func (t *Token) SetBuyFees(caller model.Address, f model.FeeSchedule) error {
	return t.ownerChange(recorder.PolicyBuyFees, caller, formatFees(f), func() error {
		return t.fees.SetBuy(f)
	})
}

// SetSellFees replaces the sell schedule.
func (t *Token) SetSellFees(caller model.Address, f model.FeeSchedule) error {
	return t.ownerChange(recorder.PolicySellFees, caller, formatFees(f), func() error {
		return t.fees.SetSell(f)
	})
}

// SetMaxBalancePercentage sets the wallet cap in whole percent of supply.
func (t *Token) SetMaxBalancePercentage(caller model.Address, pct uint64) error {
	return t.ownerChange(recorder.PolicyMaxBalance, caller, strconv.FormatUint(pct, 10), func() error {
		return t.limits.SetMaxBalancePercentage(pct)
	})
}

// SetMaxTxPercentage sets the transaction cap in tenths of a percent of supply.
func (t *Token) SetMaxTxPercentage(caller model.Address, pct uint64) error {
	return t.ownerChange(recorder.PolicyMaxTx, caller, strconv.FormatUint(pct, 10), func() error {
		return t.limits.SetMaxTxPercentage(pct)
	})
}

// TriggerLaunch opens the launch gate. It can succeed only once.
func (t *Token) TriggerLaunch(caller model.Address) error {
	return t.ownerChange(recorder.PolicyLaunch, caller, string(model.Launched), func() error {
		if t.launch == model.Launched {
			return model.ErrAlreadyLaunched
		}
		t.launch = model.Launched
		observability.UpdateLaunched(true)
		return nil
	})
}

// checkExemptToggle keeps the contract and burn accounts exempt for good.
func (t *Token) checkExemptToggle(addr model.Address, on bool) error {
	if addr.IsZero() {
		return model.ErrInvalidAddress
	}
	if !on && (addr == t.ledger.Contract() || addr == t.ledger.BurnAddress()) {
		return fmt.Errorf("%w: %s must stay exempt", model.ErrUnauthorized, addr)
	}
	return nil
}

// SetFeeExempt adds or removes addr from the fee-exempt set.
func (t *Token) SetFeeExempt(caller, addr model.Address, on bool) error {
	return t.ownerChange(recorder.PolicyFeeExempt, caller, formatToggle(addr, on), func() error {
		if err := t.checkExemptToggle(addr, on); err != nil {
			return err
		}
		t.classifier.SetTaxExempt(addr, on)
		return nil
	})
}

// SetLimitExempt adds or removes addr from the limit-exempt set.
func (t *Token) SetLimitExempt(caller, addr model.Address, on bool) error {
	return t.ownerChange(recorder.PolicyLimitExempt, caller, formatToggle(addr, on), func() error {
		if err := t.checkExemptToggle(addr, on); err != nil {
			return err
		}
		t.classifier.SetLimitExempt(addr, on)
		return nil
	})
}

// SetLiquiditySource registers or removes an AMM pool or router address.
func (t *Token) SetLiquiditySource(caller, addr model.Address, on bool) error {
	return t.ownerChange(recorder.PolicyLiquiditySource, caller, formatToggle(addr, on), func() error {
		if addr.IsZero() {
			return model.ErrInvalidAddress
		}
		t.classifier.SetLiquiditySource(addr, on)
		return nil
	})
}

// TransferOwnership hands the owner role to next.
func (t *Token) TransferOwnership(caller, next model.Address) error {
	return t.ownerChange(recorder.PolicyOwnership, caller, string(next), func() error {
		if next.IsZero() {
			return model.ErrInvalidAddress
		}
		t.owner = next
		return nil
	})
}
