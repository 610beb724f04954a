package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"TaxLedger/internal/model"
)

// Approve sets the amount spender may move on behalf of owner.
func (l *Ledger) Approve(owner, spender model.Address, amount *uint256.Int) {
	if amount.IsZero() {
		if m, ok := l.allowances[owner]; ok {
			delete(m, spender)
			if len(m) == 0 {
				delete(l.allowances, owner)
			}
		}
		return
	}
	m, ok := l.allowances[owner]
	if !ok {
		m = make(map[model.Address]*uint256.Int)
		l.allowances[owner] = m
	}
	m[spender] = new(uint256.Int).Set(amount)
}

// Allowance returns a copy of the approved amount.
func (l *Ledger) Allowance(owner, spender model.Address) *uint256.Int {
	if v, ok := l.allowances[owner][spender]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

// CheckAllowance fails when spender may not move amount from owner.
func (l *Ledger) CheckAllowance(owner, spender model.Address, amount *uint256.Int) error {
	if got := l.Allowance(owner, spender); got.Lt(amount) {
		return fmt.Errorf("%w: %s may spend %s of %s, needs %s", model.ErrInsufficientAllowance, spender, got.Dec(), owner, amount.Dec())
	}
	return nil
}

// SpendAllowance lowers the allowance by amount. Callers check first.
func (l *Ledger) SpendAllowance(owner, spender model.Address, amount *uint256.Int) {
	left := l.Allowance(owner, spender)
	left.Sub(left, amount)
	l.Approve(owner, spender, left)
}

// Allowances returns a copy of every non-zero allowance.
func (l *Ledger) Allowances() map[model.Address]map[model.Address]*uint256.Int {
	out := make(map[model.Address]map[model.Address]*uint256.Int, len(l.allowances))
	for o, m := range l.allowances {
		inner := make(map[model.Address]*uint256.Int, len(m))
		for s, v := range m {
			inner[s] = new(uint256.Int).Set(v)
		}
		out[o] = inner
	}
	return out
}
