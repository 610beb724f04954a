// Package ledger is the authoritative balance sheet: account balances, the
// per-component fee buckets held by the token contract, and allowances.
package ledger

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"TaxLedger/internal/model"
)

// Posting is a fully computed transfer: From is debited Amount, To is
// credited Net and each allocation component is credited to its bucket.
type Posting struct {
	From       model.Address
	To         model.Address
	Amount     *uint256.Int
	Net        *uint256.Int
	Allocation model.Allocation
}

// Ledger is not safe for concurrent use; the token serializes access.
type Ledger struct {
	supply     *uint256.Int
	contract   model.Address
	burn       model.Address
	balances   map[model.Address]*uint256.Int
	buckets    map[model.Component]*uint256.Int
	allowances map[model.Address]map[model.Address]*uint256.Int
}

// New creates a ledger whose whole supply is held by holder.
func New(supply *uint256.Int, contract, burn, holder model.Address) *Ledger {
	l := empty(supply, contract, burn)
	if !supply.IsZero() {
		l.balances[holder] = new(uint256.Int).Set(supply)
	}
	return l
}

func empty(supply *uint256.Int, contract, burn model.Address) *Ledger {
	return &Ledger{
		supply:     new(uint256.Int).Set(supply),
		contract:   contract,
		burn:       burn,
		balances:   make(map[model.Address]*uint256.Int),
		buckets:    make(map[model.Component]*uint256.Int),
		allowances: make(map[model.Address]map[model.Address]*uint256.Int),
	}
}

// Restore rebuilds a ledger from persisted amounts and checks that balances
// add up to the supply and that the contract holds at least its buckets.
func Restore(supply *uint256.Int, contract, burn model.Address, balances map[model.Address]*uint256.Int, buckets map[model.Component]*uint256.Int) (*Ledger, error) {
	l := empty(supply, contract, burn)
	for a, v := range balances {
		if !v.IsZero() {
			l.balances[a] = new(uint256.Int).Set(v)
		}
	}
	for c, v := range buckets {
		if c == model.ComponentBurn {
			return nil, fmt.Errorf("restore ledger: burn is not a held bucket")
		}
		if !v.IsZero() {
			l.buckets[c] = new(uint256.Int).Set(v)
		}
	}
	if sum := l.Sum(); !sum.Eq(l.supply) {
		return nil, fmt.Errorf("restore ledger: balances sum %s, supply %s", sum.Dec(), l.supply.Dec())
	}
	if pending := l.PendingFees(); pending.Gt(l.BalanceOf(contract)) {
		return nil, fmt.Errorf("restore ledger: buckets %s exceed contract balance %s", pending.Dec(), l.BalanceOf(contract).Dec())
	}
	return l, nil
}

func (l *Ledger) TotalSupply() *uint256.Int { return new(uint256.Int).Set(l.supply) }
func (l *Ledger) Contract() model.Address   { return l.contract }
func (l *Ledger) BurnAddress() model.Address { return l.burn }

// BalanceOf returns a copy of a's balance; unknown accounts hold zero.
func (l *Ledger) BalanceOf(a model.Address) *uint256.Int {
	if v, ok := l.balances[a]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

// Burned is the amount held by the burn address.
func (l *Ledger) Burned() *uint256.Int { return l.BalanceOf(l.burn) }

// Sum adds every account balance.
func (l *Ledger) Sum() *uint256.Int {
	sum := new(uint256.Int)
	for _, v := range l.balances {
		sum.Add(sum, v)
	}
	return sum
}

// Balances returns a copy of all non-zero balances.
func (l *Ledger) Balances() map[model.Address]*uint256.Int {
	out := make(map[model.Address]*uint256.Int, len(l.balances))
	for a, v := range l.balances {
		out[a] = new(uint256.Int).Set(v)
	}
	return out
}

// Holders returns all addresses with a non-zero balance, sorted.
func (l *Ledger) Holders() []model.Address {
	out := make([]model.Address, 0, len(l.balances))
	for a := range l.balances {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Buckets returns a copy of the accrued non-burn fee buckets.
func (l *Ledger) Buckets() model.Allocation {
	out := make(model.Allocation, len(l.buckets))
	for c, v := range l.buckets {
		out[c] = new(uint256.Int).Set(v)
	}
	return out
}

// PendingFees is the total held in non-burn buckets.
func (l *Ledger) PendingFees() *uint256.Int {
	return model.Allocation(l.buckets).Sum()
}

// Apply commits p or, on error, changes nothing.
func (l *Ledger) Apply(p Posting) error {
	if got := new(uint256.Int).Add(p.Net, p.Allocation.Sum()); !got.Eq(p.Amount) {
		return fmt.Errorf("posting does not balance: net %s + tax %s != %s", p.Net.Dec(), p.Allocation.Sum().Dec(), p.Amount.Dec())
	}
	if bal := l.spendable(p.From); bal.Lt(p.Amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", model.ErrInsufficientBalance, p.From, bal.Dec(), p.Amount.Dec())
	}

	l.debit(p.From, p.Amount)
	l.credit(p.To, p.Net)
	for c, v := range p.Allocation {
		if v.IsZero() {
			continue
		}
		if c == model.ComponentBurn {
			l.credit(l.burn, v)
			continue
		}
		l.credit(l.contract, v)
		l.addBucket(c, v)
	}
	return nil
}

// spendable is the balance a posting may debit. The contract's share that
// backs the fee buckets is reserved for DrainBuckets.
func (l *Ledger) spendable(a model.Address) *uint256.Int {
	bal := l.BalanceOf(a)
	if a != l.contract {
		return bal
	}
	if pending := l.PendingFees(); bal.Gt(pending) {
		return bal.Sub(bal, pending)
	}
	return new(uint256.Int)
}

// DrainBuckets moves every non-burn bucket from the contract account to
// recipient and zeroes the buckets. It returns the drained amounts.
func (l *Ledger) DrainBuckets(recipient model.Address) (model.Allocation, error) {
	drained := l.Buckets()
	total := drained.Sum()
	if bal := l.BalanceOf(l.contract); bal.Lt(total) {
		return nil, fmt.Errorf("%w: contract holds %s, buckets %s", model.ErrInsufficientBalance, bal.Dec(), total.Dec())
	}
	l.debit(l.contract, total)
	l.credit(recipient, total)
	l.buckets = make(map[model.Component]*uint256.Int)
	return drained, nil
}

func (l *Ledger) debit(a model.Address, v *uint256.Int) {
	bal := l.balances[a]
	if bal == nil {
		return
	}
	bal.Sub(bal, v)
	if bal.IsZero() {
		delete(l.balances, a)
	}
}

func (l *Ledger) credit(a model.Address, v *uint256.Int) {
	if v.IsZero() {
		return
	}
	if bal, ok := l.balances[a]; ok {
		bal.Add(bal, v)
		return
	}
	l.balances[a] = new(uint256.Int).Set(v)
}

func (l *Ledger) addBucket(c model.Component, v *uint256.Int) {
	if b, ok := l.buckets[c]; ok {
		b.Add(b, v)
		return
	}
	l.buckets[c] = new(uint256.Int).Set(v)
}
