// Package classifier tells buys, sells and peer transfers apart by the
// liquidity source registry, and tracks fee and limit exemptions.
package classifier

import (
	"sort"

	"TaxLedger/internal/model"
)

type addressSet map[model.Address]struct{}

func (s addressSet) set(a model.Address, on bool) {
	if on {
		s[a] = struct{}{}
		return
	}
	delete(s, a)
}

func (s addressSet) has(a model.Address) bool {
	_, ok := s[a]
	return ok
}

func (s addressSet) sorted() []model.Address {
	out := make([]model.Address, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classifier decides transfer direction and party exemptions.
type Classifier struct {
	sources     addressSet
	feeExempt   addressSet
	limitExempt addressSet
}

// New creates an empty classifier.
func New() *Classifier {
	return &Classifier{
		sources:     make(addressSet),
		feeExempt:   make(addressSet),
		limitExempt: make(addressSet),
	}
}

// Classify returns Buy when from is a liquidity source, Sell when to is one,
// and Peer otherwise.
func (c *Classifier) Classify(from, to model.Address) model.Direction {
	switch {
	case c.sources.has(from):
		return model.DirectionBuy
	case c.sources.has(to):
		return model.DirectionSell
	default:
		return model.DirectionPeer
	}
}

// Counterparty returns the non-liquidity side of a classified transfer.
func Counterparty(dir model.Direction, from, to model.Address) model.Address {
	if dir == model.DirectionBuy {
		return to
	}
	return from
}

func (c *Classifier) IsLiquiditySource(a model.Address) bool { return c.sources.has(a) }
func (c *Classifier) IsTaxExempt(a model.Address) bool       { return c.feeExempt.has(a) }
func (c *Classifier) IsLimitExempt(a model.Address) bool     { return c.limitExempt.has(a) }

func (c *Classifier) SetLiquiditySource(a model.Address, on bool) { c.sources.set(a, on) }
func (c *Classifier) SetTaxExempt(a model.Address, on bool)       { c.feeExempt.set(a, on) }
func (c *Classifier) SetLimitExempt(a model.Address, on bool)     { c.limitExempt.set(a, on) }

// LiquiditySources returns the registered sources in sorted order.
func (c *Classifier) LiquiditySources() []model.Address { return c.sources.sorted() }
func (c *Classifier) TaxExempt() []model.Address        { return c.feeExempt.sorted() }
func (c *Classifier) LimitExempt() []model.Address      { return c.limitExempt.sorted() }
