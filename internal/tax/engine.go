package tax

import (
	"github.com/holiman/uint256"

	"TaxLedger/internal/fees"
	"TaxLedger/internal/model"
)

// Request is a classified transfer awaiting a tax quote.
type Request struct {
	Direction model.Direction
	Launch    model.LaunchState
	// Exempt is true when either party is fee-exempt.
	Exempt bool
	Amount *uint256.Int
}

// Quote is the outcome of a tax computation. Net + Allocation.Sum() == Amount.
type Quote struct {
	Regime     model.Regime
	Rate       uint64
	Net        *uint256.Int
	Allocation model.Allocation
}

// Engine computes the tax split for a transfer.
type Engine struct {
	schedule *fees.Schedule
	penalty  model.FeeSchedule
}

// NewEngine creates an engine reading the configured schedule and applying
// fees.PenaltySchedule before launch.
func NewEngine(schedule *fees.Schedule) *Engine {
	return &Engine{schedule: schedule, penalty: fees.PenaltySchedule}
}

// selectRates picks the rate table for a request.
func (e *Engine) selectRates(r Request) (model.FeeSchedule, model.Regime) {
	if r.Direction == model.DirectionPeer || r.Exempt {
		return model.FeeSchedule{}, model.RegimeUntaxed
	}
	if r.Launch != model.Launched {
		return e.penalty, model.RegimePenalty
	}
	rates, ok := e.schedule.For(r.Direction)
	if !ok {
		return model.FeeSchedule{}, model.RegimeUntaxed
	}
	return rates, model.RegimeScheduled
}

// Compute never fails; inputs are assumed validated.
func (e *Engine) Compute(r Request) Quote {
	rates, regime := e.selectRates(r)
	net, alloc := Split(r.Amount, rates)
	return Quote{
		Regime:     regime,
		Rate:       rates.Total(),
		Net:        net,
		Allocation: alloc,
	}
}

// Split divides amount by component as floor(amount * rate / 100) and returns
// the remainder as net. Zero-rate components are omitted from the allocation.
func Split(amount *uint256.Int, rates model.FeeSchedule) (*uint256.Int, model.Allocation) {
	alloc := make(model.Allocation)
	net := new(uint256.Int).Set(amount)
	hundred := uint256.NewInt(100)
	for _, c := range model.Components {
		rate := rates.Rate(c)
		if rate == 0 {
			continue
		}
		part := new(uint256.Int).Mul(amount, uint256.NewInt(rate))
		part.Div(part, hundred)
		alloc[c] = part
		net.Sub(net, part)
	}
	return net, alloc
}
