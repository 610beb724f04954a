package model

import "github.com/holiman/uint256"

// Component names a fee bucket.
type Component string

const (
	ComponentMarketing   Component = "marketing"
	ComponentDevelopment Component = "development"
	ComponentLiquidity   Component = "liquidity"
	ComponentReflection  Component = "reflection"
	ComponentBurn        Component = "burn"
)

// Components lists every fee component in setter argument order.
var Components = []Component{
	ComponentMarketing,
	ComponentDevelopment,
	ComponentLiquidity,
	ComponentReflection,
	ComponentBurn,
}

// Regime records which rate table taxed a transfer.
type Regime string

const (
	RegimeUntaxed   Regime = "UNTAXED"
	RegimePenalty   Regime = "PENALTY"
	RegimeScheduled Regime = "SCHEDULED"
)

// FeeSchedule holds whole-percent rates per component for one direction.
type FeeSchedule struct {
	Marketing   uint64 `json:"marketing" yaml:"marketing"`
	Development uint64 `json:"development" yaml:"development"`
	Liquidity   uint64 `json:"liquidity" yaml:"liquidity"`
	Reflection  uint64 `json:"reflection" yaml:"reflection"`
	Burn        uint64 `json:"burn" yaml:"burn"`
}

// NewFeeSchedule builds a schedule from rates in Components order.
func NewFeeSchedule(marketing, development, liquidity, reflection, burn uint64) FeeSchedule {
	return FeeSchedule{
		Marketing:   marketing,
		Development: development,
		Liquidity:   liquidity,
		Reflection:  reflection,
		Burn:        burn,
	}
}

// Rate returns the percentage configured for c.
func (f FeeSchedule) Rate(c Component) uint64 {
	switch c {
	case ComponentMarketing:
		return f.Marketing
	case ComponentDevelopment:
		return f.Development
	case ComponentLiquidity:
		return f.Liquidity
	case ComponentReflection:
		return f.Reflection
	case ComponentBurn:
		return f.Burn
	}
	return 0
}

// Total is the sum of all component rates.
func (f FeeSchedule) Total() uint64 {
	return f.Marketing + f.Development + f.Liquidity + f.Reflection + f.Burn
}

// Allocation maps each fee component to a token amount.
type Allocation map[Component]*uint256.Int

// Sum returns the total allocated amount.
func (a Allocation) Sum() *uint256.Int {
	sum := new(uint256.Int)
	for _, v := range a {
		if v != nil {
			sum.Add(sum, v)
		}
	}
	return sum
}

// Clone returns a deep copy.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for c, v := range a {
		out[c] = new(uint256.Int).Set(v)
	}
	return out
}
