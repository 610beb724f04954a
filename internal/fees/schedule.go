// Package fees holds the buy and sell fee schedules and the ceilings that
// bound them.
package fees

import (
	"fmt"

	"TaxLedger/internal/model"
)

// Ceilings bounds each component and the sum of a schedule.
type Ceilings struct {
	PerComponent model.FeeSchedule
	Aggregate    uint64
}

// NormalCeilings bound every owner-configured schedule.
var NormalCeilings = Ceilings{
	PerComponent: model.NewFeeSchedule(2, 3, 5, 5, 2),
	Aggregate:    15,
}

// PenaltyCeiling bounds the pre-launch deterrent schedule.
const PenaltyCeiling = 99

// PenaltySchedule is applied to non-exempt buys and sells before launch.
var PenaltySchedule = model.NewFeeSchedule(33, 33, 33, 0, 0)

// Validate checks s against c. Per-component ceilings are checked before the aggregate.
func (c Ceilings) Validate(s model.FeeSchedule) error {
	for _, comp := range model.Components {
		if rate, limit := s.Rate(comp), c.PerComponent.Rate(comp); rate > limit {
			return fmt.Errorf("%w: %s %d%% exceeds ceiling %d%%", model.ErrFeeTooHigh, comp, rate, limit)
		}
	}
	if total := s.Total(); total > c.Aggregate {
		return fmt.Errorf("%w: total %d%% exceeds ceiling %d%%", model.ErrFeeTooHigh, total, c.Aggregate)
	}
	return nil
}

// ValidatePenalty checks the deterrent schedule against PenaltyCeiling only.
func ValidatePenalty(s model.FeeSchedule) error {
	if total := s.Total(); total > PenaltyCeiling {
		return fmt.Errorf("%w: penalty total %d%% exceeds ceiling %d%%", model.ErrFeeTooHigh, total, PenaltyCeiling)
	}
	return nil
}

// Schedule holds the configured buy and sell schedules.
type Schedule struct {
	buy      model.FeeSchedule
	sell     model.FeeSchedule
	ceilings Ceilings
}

// NewSchedule validates both schedules against NormalCeilings.
func NewSchedule(buy, sell model.FeeSchedule) (*Schedule, error) {
	s := &Schedule{ceilings: NormalCeilings}
	if err := s.ceilings.Validate(buy); err != nil {
		return nil, fmt.Errorf("buy fees: %w", err)
	}
	if err := s.ceilings.Validate(sell); err != nil {
		return nil, fmt.Errorf("sell fees: %w", err)
	}
	s.buy, s.sell = buy, sell
	return s, nil
}

// SetBuy replaces the buy schedule. On error the previous schedule is kept.
func (s *Schedule) SetBuy(f model.FeeSchedule) error {
	if err := s.ceilings.Validate(f); err != nil {
		return err
	}
	s.buy = f
	return nil
}

// SetSell replaces the sell schedule. On error the previous schedule is kept.
func (s *Schedule) SetSell(f model.FeeSchedule) error {
	if err := s.ceilings.Validate(f); err != nil {
		return err
	}
	s.sell = f
	return nil
}

func (s *Schedule) Buy() model.FeeSchedule  { return s.buy }
func (s *Schedule) Sell() model.FeeSchedule { return s.sell }

// TotalBuy is the sum of the configured buy components.
func (s *Schedule) TotalBuy() uint64 { return s.buy.Total() }

// TotalSell is the sum of the configured sell components.
func (s *Schedule) TotalSell() uint64 { return s.sell.Total() }

// For returns the configured schedule for a buy or sell. Peer transfers have none.
func (s *Schedule) For(dir model.Direction) (model.FeeSchedule, bool) {
	switch dir {
	case model.DirectionBuy:
		return s.buy, true
	case model.DirectionSell:
		return s.sell, true
	}
	return model.FeeSchedule{}, false
}
