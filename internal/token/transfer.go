package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"TaxLedger/internal/classifier"
	"TaxLedger/internal/ledger"
	"TaxLedger/internal/model"
	"TaxLedger/internal/observability"
	"TaxLedger/internal/recorder"
	"TaxLedger/internal/tax"
)

// Transfer moves amount from caller to to, applying classification, limits
// and tax. On error no balance changes.
func (t *Token) Transfer(caller, to model.Address, amount *uint256.Int) (*model.TransferReceipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	receipt, err := t.transfer(caller, to, amount)
	t.afterTransfer("", caller, to, amount, receipt, err)
	return receipt, err
}

// TransferFrom moves amount from from to to on behalf of spender. The
// allowance is consumed only when the transfer commits.
func (t *Token) TransferFrom(spender, from, to model.Address, amount *uint256.Int) (*model.TransferReceipt, error) {
	if amount == nil {
		amount = new(uint256.Int)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var receipt *model.TransferReceipt
	err := t.ledger.CheckAllowance(from, spender, amount)
	if err == nil {
		receipt, err = t.transfer(from, to, amount)
	}
	if err == nil {
		t.ledger.SpendAllowance(from, spender, amount)
	}
	t.afterTransfer(spender, from, to, amount, receipt, err)
	return receipt, err
}

// Approve sets the amount spender may move from owner's balance.
func (t *Token) Approve(owner, spender model.Address, amount *uint256.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return fmt.Errorf("approve: %w", model.ErrInvalidAddress)
	}
	if amount == nil {
		amount = new(uint256.Int)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireSender(owner); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	t.ledger.Approve(owner, spender, amount)
	t.log.Debug("approval set",
		zap.String("owner", string(owner)),
		zap.String("spender", string(spender)),
		zap.String("amount", amount.Dec()))
	t.save()
	return nil
}

func (t *Token) transfer(from, to model.Address, amount *uint256.Int) (*model.TransferReceipt, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("transfer: %w", model.ErrInvalidAddress)
	}
	if err := t.requireSender(from); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	if amount == nil {
		amount = new(uint256.Int)
	}

	dir := t.classifier.Classify(from, to)
	quote := t.engine.Compute(tax.Request{
		Direction: dir,
		Launch:    t.launch,
		Exempt:    t.classifier.IsTaxExempt(from) || t.classifier.IsTaxExempt(to),
		Amount:    amount,
	})

	if dir != model.DirectionPeer {
		party := classifier.Counterparty(dir, from, to)
		if !t.classifier.IsLimitExempt(party) {
			if err := t.limits.Check(dir, amount, t.ledger.BalanceOf(to), quote.Net); err != nil {
				return nil, err
			}
		}
	}

	if err := t.ledger.Apply(ledger.Posting{
		From:       from,
		To:         to,
		Amount:     amount,
		Net:        quote.Net,
		Allocation: quote.Allocation,
	}); err != nil {
		return nil, err
	}

	return &model.TransferReceipt{
		From:       from,
		To:         to,
		Amount:     new(uint256.Int).Set(amount),
		Net:        quote.Net,
		Direction:  dir,
		Regime:     quote.Regime,
		Allocation: quote.Allocation,
	}, nil
}

// requireSender rejects the contract and burn accounts as senders. The
// contract only pays out through SwapBack; burned supply never moves again.
func (t *Token) requireSender(from model.Address) error {
	if from == t.ledger.Contract() || from == t.ledger.BurnAddress() {
		return fmt.Errorf("%w: %s cannot send", model.ErrUnauthorized, from)
	}
	return nil
}

// afterTransfer journals, counts and persists the outcome of a transfer.
func (t *Token) afterTransfer(spender, from, to model.Address, amount *uint256.Int, receipt *model.TransferReceipt, err error) {
	evt := &recorder.TransferEvent{
		Spender:  spender,
		From:     from,
		To:       to,
		Accepted: err == nil,
		Reason:   model.Reason(err),
	}
	if amount != nil {
		evt.Amount = amount.Dec()
	} else {
		evt.Amount = "0"
	}

	if err != nil {
		observability.RecordRejection(evt.Reason)
		t.log.Info("transfer rejected",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.String("amount", evt.Amount),
			zap.Error(err))
	} else {
		evt.Net = receipt.Net.Dec()
		evt.Direction = receipt.Direction
		evt.Regime = receipt.Regime
		evt.Allocation = recorder.AllocationStrings(receipt.Allocation)

		observability.RecordTransfer(string(receipt.Direction), string(receipt.Regime))
		for c, v := range receipt.Allocation {
			observability.RecordTax(string(c), v)
		}
		observability.UpdatePendingFees(t.ledger.PendingFees())
		t.log.Debug("transfer committed",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.String("amount", evt.Amount),
			zap.String("net", evt.Net),
			zap.String("direction", string(receipt.Direction)),
			zap.String("regime", string(receipt.Regime)))
		t.save()
	}

	if rerr := t.rec.RecordTransfer(evt); rerr != nil {
		t.log.Error("record transfer", zap.Error(rerr))
	}
}
