package token

import (
	"github.com/holiman/uint256"

	"TaxLedger/internal/fees"
	"TaxLedger/internal/model"
)

func (t *Token) Metadata() model.TokenMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}

func (t *Token) TotalSupply() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.TotalSupply()
}

func (t *Token) BalanceOf(a model.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.BalanceOf(a)
}

func (t *Token) Allowance(owner, spender model.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Allowance(owner, spender)
}

func (t *Token) Owner() model.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.owner
}

// SwapBackThreshold is the pending-fee total SwapBack waits for.
func (t *Token) SwapBackThreshold() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(uint256.Int).Set(t.swapThreshold)
}

func (t *Token) LaunchState() model.LaunchState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.launch
}

// TotalBuyTax is the sum of the configured buy components.
func (t *Token) TotalBuyTax() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.TotalBuy()
}

// TotalSellTax is the sum of the configured sell components.
func (t *Token) TotalSellTax() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.TotalSell()
}

func (t *Token) BuyFees() model.FeeSchedule {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.Buy()
}

func (t *Token) SellFees() model.FeeSchedule {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.Sell()
}

// EffectiveBuyTax is the rate a non-exempt buy pays right now.
func (t *Token) EffectiveBuyTax() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effective(t.fees.TotalBuy())
}

// EffectiveSellTax is the rate a non-exempt sell pays right now.
func (t *Token) EffectiveSellTax() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effective(t.fees.TotalSell())
}

func (t *Token) effective(configured uint64) uint64 {
	if t.launch != model.Launched {
		return fees.PenaltySchedule.Total()
	}
	return configured
}

func (t *Token) MaxBalancePercentage() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits.MaxBalancePercentage()
}

// MaxTxPercentage is in tenths of a percent.
func (t *Token) MaxTxPercentage() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits.MaxTxPercentage()
}

func (t *Token) MaxBalance() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits.MaxBalance()
}

func (t *Token) MaxTx() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits.MaxTx()
}

// PendingFees is the total held in non-burn fee buckets.
func (t *Token) PendingFees() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.PendingFees()
}

func (t *Token) Buckets() model.Allocation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Buckets()
}

// Burned is the balance of the burn address.
func (t *Token) Burned() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Burned()
}

// Circulating sums every balance; it always equals TotalSupply.
func (t *Token) Circulating() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Sum()
}

// Holders returns every address with a non-zero balance.
func (t *Token) Holders() []model.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Holders()
}

// Status returns a consistent read of the whole public surface.
func (t *Token) Status() model.TokenStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return model.TokenStatus{
		Metadata:             t.meta,
		TotalSupply:          t.ledger.TotalSupply(),
		Owner:                t.owner,
		Contract:             t.ledger.Contract(),
		Launch:               t.launch,
		BuyFees:              t.fees.Buy(),
		SellFees:             t.fees.Sell(),
		MaxBalancePercentage: t.limits.MaxBalancePercentage(),
		MaxTxPercentage:      t.limits.MaxTxPercentage(),
		MaxBalance:           t.limits.MaxBalance(),
		MaxTx:                t.limits.MaxTx(),
		Buckets:              t.ledger.Buckets(),
		PendingFees:          t.ledger.PendingFees(),
		Burned:               t.ledger.Burned(),
		LiquiditySources:     t.classifier.LiquiditySources(),
	}
}

// Snapshot returns the persisted form of the current state.
func (t *Token) Snapshot() *model.TokenState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}
