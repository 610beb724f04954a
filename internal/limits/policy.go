// Package limits derives anti-whale thresholds from percentages of the total supply.
package limits

import (
	"fmt"

	"github.com/holiman/uint256"

	"TaxLedger/internal/model"
)

const (
	// MaxBalanceFloor is the lowest accepted max-wallet percentage (whole percent).
	MaxBalanceFloor = 2
	// MaxTxFloor is the lowest accepted max-transaction value, in tenths of a percent.
	MaxTxFloor = 5

	balanceDivisor = 100
	txDivisor      = 1000
)

// Policy holds the limit percentages. Absolute thresholds are always derived
// from the percentage and the supply, never stored.
type Policy struct {
	supply     *uint256.Int
	balancePct uint64
	txPct      uint64
}

// NewPolicy validates both percentages against their floors.
func NewPolicy(supply *uint256.Int, balancePct, txPct uint64) (*Policy, error) {
	if err := validateBalance(balancePct); err != nil {
		return nil, err
	}
	if err := validateTx(txPct); err != nil {
		return nil, err
	}
	return &Policy{
		supply:     new(uint256.Int).Set(supply),
		balancePct: balancePct,
		txPct:      txPct,
	}, nil
}

func validateBalance(pct uint64) error {
	if pct < MaxBalanceFloor {
		return fmt.Errorf("%w: max balance %d%% below floor %d%%", model.ErrLimitTooLow, pct, MaxBalanceFloor)
	}
	return nil
}

func validateTx(pct uint64) error {
	if pct < MaxTxFloor {
		return fmt.Errorf("%w: max tx %d tenths of a percent below floor %d", model.ErrLimitTooLow, pct, MaxTxFloor)
	}
	return nil
}

// SetMaxBalancePercentage updates the wallet cap. On error nothing changes.
func (p *Policy) SetMaxBalancePercentage(pct uint64) error {
	if err := validateBalance(pct); err != nil {
		return err
	}
	p.balancePct = pct
	return nil
}

// SetMaxTxPercentage updates the transaction cap, in tenths of a percent.
func (p *Policy) SetMaxTxPercentage(pct uint64) error {
	if err := validateTx(pct); err != nil {
		return err
	}
	p.txPct = pct
	return nil
}

func (p *Policy) MaxBalancePercentage() uint64 { return p.balancePct }
func (p *Policy) MaxTxPercentage() uint64      { return p.txPct }

// MaxBalance is balancePct * supply / 100.
func (p *Policy) MaxBalance() *uint256.Int {
	return derive(p.supply, p.balancePct, balanceDivisor)
}

// MaxTx is txPct * supply / 1000.
func (p *Policy) MaxTx() *uint256.Int {
	return derive(p.supply, p.txPct, txDivisor)
}

func derive(supply *uint256.Int, pct, divisor uint64) *uint256.Int {
	v := new(uint256.Int).Mul(supply, uint256.NewInt(pct))
	return v.Div(v, uint256.NewInt(divisor))
}

// Check gates a buy or sell for a non-exempt party. recipientBalance and net
// are only consulted for buys. Peer transfers are never restricted.
func (p *Policy) Check(dir model.Direction, amount, recipientBalance, net *uint256.Int) error {
	switch dir {
	case model.DirectionBuy:
		if maxTx := p.MaxTx(); amount.Gt(maxTx) {
			return fmt.Errorf("%w: buy of %s above %s", model.ErrTransactionLimitExceeded, amount.Dec(), maxTx.Dec())
		}
		after, overflow := new(uint256.Int).AddOverflow(recipientBalance, net)
		if maxBal := p.MaxBalance(); overflow || after.Gt(maxBal) {
			return fmt.Errorf("%w: resulting balance %s above %s", model.ErrWalletLimitExceeded, after.Dec(), maxBal.Dec())
		}
	case model.DirectionSell:
		if maxTx := p.MaxTx(); amount.Gt(maxTx) {
			return fmt.Errorf("%w: sell of %s above %s", model.ErrTransactionLimitExceeded, amount.Dec(), maxTx.Dec())
		}
	}
	return nil
}
