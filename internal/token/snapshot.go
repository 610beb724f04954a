package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"TaxLedger/internal/classifier"
	"TaxLedger/internal/fees"
	"TaxLedger/internal/ledger"
	"TaxLedger/internal/limits"
	"TaxLedger/internal/model"
	"TaxLedger/internal/tax"
)

func (t *Token) snapshot() *model.TokenState {
	st := &model.TokenState{
		Metadata:             t.meta,
		TotalSupply:          t.ledger.TotalSupply().Dec(),
		Owner:                t.owner,
		Contract:             t.ledger.Contract(),
		BurnAddress:          t.ledger.BurnAddress(),
		Launch:               t.launch,
		BuyFees:              t.fees.Buy(),
		SellFees:             t.fees.Sell(),
		MaxBalancePercentage: t.limits.MaxBalancePercentage(),
		MaxTxPercentage:      t.limits.MaxTxPercentage(),
		Balances:             make(map[model.Address]string),
		Buckets:              make(map[model.Component]string),
		FeeExempt:            t.classifier.TaxExempt(),
		LimitExempt:          t.classifier.LimitExempt(),
		LiquiditySources:     t.classifier.LiquiditySources(),
	}
	for a, v := range t.ledger.Balances() {
		st.Balances[a] = v.Dec()
	}
	for c, v := range t.ledger.Buckets() {
		st.Buckets[c] = v.Dec()
	}
	if allowances := t.ledger.Allowances(); len(allowances) > 0 {
		st.Allowances = make(map[model.Address]map[model.Address]string, len(allowances))
		for owner, m := range allowances {
			inner := make(map[model.Address]string, len(m))
			for spender, v := range m {
				inner[spender] = v.Dec()
			}
			st.Allowances[owner] = inner
		}
	}
	return st
}

// restore validates a persisted state as strictly as genesis does.
func restore(st *model.TokenState) (*Token, error) {
	supply, err := model.ParseAmount(st.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("restore: total supply: %w", err)
	}
	switch {
	case st.Owner.IsZero():
		return nil, fmt.Errorf("restore: owner: %w", model.ErrInvalidAddress)
	case st.Contract.IsZero():
		return nil, fmt.Errorf("restore: contract: %w", model.ErrInvalidAddress)
	case st.BurnAddress.IsZero():
		return nil, fmt.Errorf("restore: burn address: %w", model.ErrInvalidAddress)
	}
	if st.Launch != model.PreLaunch && st.Launch != model.Launched {
		return nil, fmt.Errorf("restore: unknown launch state %q", st.Launch)
	}
	schedule, err := fees.NewSchedule(st.BuyFees, st.SellFees)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	policy, err := limits.NewPolicy(supply, st.MaxBalancePercentage, st.MaxTxPercentage)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	balances := make(map[model.Address]*uint256.Int, len(st.Balances))
	for a, s := range st.Balances {
		v, err := model.ParseAmount(s)
		if err != nil {
			return nil, fmt.Errorf("restore: balance of %s: %w", a, err)
		}
		balances[a] = v
	}
	buckets := make(map[model.Component]*uint256.Int, len(st.Buckets))
	for c, s := range st.Buckets {
		v, err := model.ParseAmount(s)
		if err != nil {
			return nil, fmt.Errorf("restore: bucket %s: %w", c, err)
		}
		buckets[c] = v
	}
	l, err := ledger.Restore(supply, st.Contract, st.BurnAddress, balances, buckets)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	for owner, m := range st.Allowances {
		for spender, s := range m {
			v, err := model.ParseAmount(s)
			if err != nil {
				return nil, fmt.Errorf("restore: allowance %s->%s: %w", owner, spender, err)
			}
			l.Approve(owner, spender, v)
		}
	}

	c := classifier.New()
	for _, a := range st.FeeExempt {
		c.SetTaxExempt(a, true)
	}
	for _, a := range st.LimitExempt {
		c.SetLimitExempt(a, true)
	}
	for _, a := range st.LiquiditySources {
		if a.IsZero() {
			return nil, fmt.Errorf("restore: liquidity source: %w", model.ErrInvalidAddress)
		}
		c.SetLiquiditySource(a, true)
	}
	for _, a := range []model.Address{st.Contract, st.BurnAddress} {
		c.SetTaxExempt(a, true)
		c.SetLimitExempt(a, true)
	}

	return &Token{
		meta:       st.Metadata,
		owner:      st.Owner,
		launch:     st.Launch,
		fees:       schedule,
		limits:     policy,
		classifier: c,
		engine:     tax.NewEngine(schedule),
		ledger:     l,
	}, nil
}
