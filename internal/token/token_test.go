package token

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TaxLedger/internal/model"
)

const (
	owner    model.Address = "0x00000000000000000000000000000000000000aa"
	contract model.Address = "0x00000000000000000000000000000000000000cc"
	pool     model.Address = "0x00000000000000000000000000000000000000f1"
	alice    model.Address = "0x0000000000000000000000000000000000000a11"
	bob      model.Address = "0x0000000000000000000000000000000000000b0b"
)

var oneToken = uint256.MustFromDecimal("1000000000000000000")

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), oneToken)
}

func testGenesis() Genesis {
	g := DefaultGenesis(owner, contract)
	g.LiquiditySources = []model.Address{pool}
	return g
}

func newTestToken(t *testing.T) *Token {
	t.Helper()
	tk, err := New(testGenesis(), Options{})
	require.NoError(t, err)
	return tk
}

// seedPool gives the pool inventory to sell to buyers. The owner is exempt
// so this moves the full amount.
func seedPool(t *testing.T, tk *Token, amount *uint256.Int) {
	t.Helper()
	_, err := tk.Transfer(owner, pool, amount)
	require.NoError(t, err)
}

func assertConserved(t *testing.T, tk *Token) {
	t.Helper()
	assert.True(t, tk.Circulating().Eq(tk.TotalSupply()),
		"sum of balances %s != supply %s", tk.Circulating().Dec(), tk.TotalSupply().Dec())
}

func TestGenesis(t *testing.T) {
	tk := newTestToken(t)

	assert.Equal(t, "CATMAO", tk.Metadata().Symbol)
	assert.Equal(t, uint8(18), tk.Metadata().Decimals)
	assert.Equal(t, "100000000000000000000000000", tk.TotalSupply().Dec())
	assert.True(t, tk.BalanceOf(owner).Eq(tk.TotalSupply()))
	assert.Equal(t, model.PreLaunch, tk.LaunchState())
	assert.Equal(t, "2000000000000000000000000", tk.MaxBalance().Dec())
	assert.Equal(t, "500000000000000000000000", tk.MaxTx().Dec())
	assert.Equal(t, uint64(0), tk.TotalBuyTax())
	assert.Equal(t, uint64(99), tk.EffectiveBuyTax())
	assert.Equal(t, uint64(99), tk.EffectiveSellTax())
	assertConserved(t, tk)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Genesis)
		want   error
	}{
		{"no owner", func(g *Genesis) { g.Owner = "" }, model.ErrInvalidAddress},
		{"zero contract", func(g *Genesis) { g.Contract = model.ZeroAddress }, model.ErrInvalidAddress},
		{"fees above ceiling", func(g *Genesis) { g.BuyFees = model.NewFeeSchedule(3, 3, 3, 3, 3) }, model.ErrFeeTooHigh},
		{"balance floor", func(g *Genesis) { g.MaxBalancePercentage = 1 }, model.ErrLimitTooLow},
		{"tx floor", func(g *Genesis) { g.MaxTxPercentage = 4 }, model.ErrLimitTooLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGenesis()
			tt.mutate(&g)
			_, err := New(g, Options{})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransfer_PeerChain(t *testing.T) {
	tk := newTestToken(t)

	_, err := tk.Transfer(owner, alice, uint256.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, "50", tk.BalanceOf(alice).Dec())

	r, err := tk.Transfer(alice, bob, uint256.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, model.DirectionPeer, r.Direction)
	assert.Equal(t, model.RegimeUntaxed, r.Regime)
	assert.Equal(t, "50", tk.BalanceOf(bob).Dec())
	assert.True(t, tk.BalanceOf(alice).IsZero())
	assertConserved(t, tk)
}

func TestTransfer_PeerIgnoresLimits(t *testing.T) {
	tk := newTestToken(t)
	require.NoError(t, tk.TriggerLaunch(owner))

	big := tokens(5_000_000) // 5% of supply, above both caps
	_, err := tk.Transfer(owner, alice, big)
	require.NoError(t, err)

	r, err := tk.Transfer(alice, bob, big)
	require.NoError(t, err)
	assert.True(t, r.Net.Eq(big))
	assert.Empty(t, r.Allocation)
	assert.True(t, tk.BalanceOf(bob).Eq(big))
}

func TestTransfer_Rejections(t *testing.T) {
	tk := newTestToken(t)

	_, err := tk.Transfer(alice, bob, uint256.NewInt(1))
	require.ErrorIs(t, err, model.ErrInsufficientBalance)

	_, err = tk.Transfer(owner, "", uint256.NewInt(1))
	require.ErrorIs(t, err, model.ErrInvalidAddress)

	_, err = tk.Transfer(owner, model.ZeroAddress, uint256.NewInt(1))
	require.ErrorIs(t, err, model.ErrInvalidAddress)

	assert.True(t, tk.BalanceOf(owner).Eq(tk.TotalSupply()))
}

func TestTransfer_ZeroAmount(t *testing.T) {
	tk := newTestToken(t)

	r, err := tk.Transfer(alice, bob, new(uint256.Int))
	require.NoError(t, err)
	assert.True(t, r.Net.IsZero())
	assert.Equal(t, []model.Address{owner}, tk.Holders())
	assertConserved(t, tk)
}

func TestTransfer_PreLaunchPenalty(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	// The configured schedule does not matter before launch.
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))

	r, err := tk.Transfer(pool, alice, uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, model.DirectionBuy, r.Direction)
	assert.Equal(t, model.RegimePenalty, r.Regime)
	assert.Equal(t, "1", r.Net.Dec())
	assert.Equal(t, "1", tk.BalanceOf(alice).Dec())
	assert.Equal(t, "99", tk.PendingFees().Dec())
	assert.Equal(t, "99", tk.BalanceOf(contract).Dec())

	r, err = tk.Transfer(alice, pool, uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, model.DirectionSell, r.Direction)
	assert.Equal(t, model.RegimePenalty, r.Regime)
	assert.Equal(t, "1", r.Net.Dec(), "penalty rounds down to zero for one unit")
	assertConserved(t, tk)
}

func TestTransfer_PreLaunchExemptUntaxed(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(1000))

	r, err := tk.Transfer(owner, pool, uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, model.DirectionSell, r.Direction)
	assert.Equal(t, model.RegimeUntaxed, r.Regime)
	assert.Equal(t, "100", r.Net.Dec())
}

func TestTransfer_ScheduledTax(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.TriggerLaunch(owner))

	r, err := tk.Transfer(pool, alice, uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, model.RegimeScheduled, r.Regime)
	assert.Equal(t, "850", r.Net.Dec())
	assert.Equal(t, "10", r.Allocation[model.ComponentMarketing].Dec())
	assert.Equal(t, "20", r.Allocation[model.ComponentDevelopment].Dec())
	assert.Equal(t, "50", r.Allocation[model.ComponentLiquidity].Dec())
	assert.Equal(t, "50", r.Allocation[model.ComponentReflection].Dec())
	assert.Equal(t, "20", r.Allocation[model.ComponentBurn].Dec())

	assert.Equal(t, "850", tk.BalanceOf(alice).Dec())
	assert.Equal(t, "130", tk.PendingFees().Dec())
	assert.Equal(t, "130", tk.BalanceOf(contract).Dec())
	assert.Equal(t, "20", tk.Burned().Dec())
	assert.Equal(t, "20", tk.BalanceOf(DefaultBurnAddress).Dec())
	assertConserved(t, tk)

	// Sell fees are still zero.
	r, err = tk.Transfer(alice, pool, uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, "100", r.Net.Dec())
}

func TestTransfer_FeeExemptUntaxed(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(1000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.TriggerLaunch(owner))
	require.NoError(t, tk.SetFeeExempt(owner, alice, true))

	r, err := tk.Transfer(pool, alice, uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, model.RegimeUntaxed, r.Regime)
	assert.Equal(t, "1000", tk.BalanceOf(alice).Dec())
}

func TestSetBuyFees(t *testing.T) {
	tk := newTestToken(t)

	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	assert.Equal(t, uint64(15), tk.TotalBuyTax())

	err := tk.SetBuyFees(owner, model.NewFeeSchedule(3, 3, 3, 3, 3))
	require.ErrorIs(t, err, model.ErrFeeTooHigh)
	assert.Equal(t, uint64(15), tk.TotalBuyTax())
	assert.Equal(t, model.NewFeeSchedule(1, 2, 5, 5, 2), tk.BuyFees())

	err = tk.SetBuyFees(owner, model.NewFeeSchedule(1, 30, 30, 1, 1))
	require.ErrorIs(t, err, model.ErrFeeTooHigh)
	assert.Equal(t, uint64(15), tk.TotalBuyTax())

	require.NoError(t, tk.SetSellFees(owner, model.NewFeeSchedule(2, 3, 5, 5, 0)))
	assert.Equal(t, uint64(15), tk.TotalSellTax())
	assert.Equal(t, uint64(15), tk.TotalBuyTax())
}

func TestOwnerGate(t *testing.T) {
	tk := newTestToken(t)

	calls := map[string]func() error{
		"buy fees":         func() error { return tk.SetBuyFees(alice, model.NewFeeSchedule(1, 1, 1, 1, 1)) },
		"sell fees":        func() error { return tk.SetSellFees(alice, model.NewFeeSchedule(1, 1, 1, 1, 1)) },
		"max balance":      func() error { return tk.SetMaxBalancePercentage(alice, 3) },
		"max tx":           func() error { return tk.SetMaxTxPercentage(alice, 10) },
		"launch":           func() error { return tk.TriggerLaunch(alice) },
		"fee exempt":       func() error { return tk.SetFeeExempt(alice, alice, true) },
		"limit exempt":     func() error { return tk.SetLimitExempt(alice, alice, true) },
		"liquidity source": func() error { return tk.SetLiquiditySource(alice, alice, true) },
		"ownership":        func() error { return tk.TransferOwnership(alice, alice) },
	}
	before := tk.Snapshot()
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, call(), model.ErrUnauthorized)
		})
	}
	after := tk.Snapshot()
	assert.Equal(t, before, after)
}

func TestLimits_Setters(t *testing.T) {
	tk := newTestToken(t)

	require.NoError(t, tk.SetMaxBalancePercentage(owner, 3))
	require.NoError(t, tk.SetMaxTxPercentage(owner, 10))
	assert.Equal(t, "3000000000000000000000000", tk.MaxBalance().Dec())
	assert.Equal(t, "1000000000000000000000000", tk.MaxTx().Dec())

	require.ErrorIs(t, tk.SetMaxBalancePercentage(owner, 1), model.ErrLimitTooLow)
	assert.Equal(t, "3000000000000000000000000", tk.MaxBalance().Dec())
	assert.Equal(t, uint64(3), tk.MaxBalancePercentage())

	require.ErrorIs(t, tk.SetMaxTxPercentage(owner, 4), model.ErrLimitTooLow)
	assert.Equal(t, "1000000000000000000000000", tk.MaxTx().Dec())
	assert.Equal(t, uint64(10), tk.MaxTxPercentage())
}

func TestLimits_WalletCapOnBuy(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.TriggerLaunch(owner))
	_, err := tk.Transfer(owner, alice, tokens(1_900_000))
	require.NoError(t, err)

	before := tk.BalanceOf(alice)
	_, err = tk.Transfer(pool, alice, tokens(200_000))
	require.ErrorIs(t, err, model.ErrWalletLimitExceeded)
	assert.True(t, tk.BalanceOf(alice).Eq(before))

	// Landing exactly on the cap is allowed.
	_, err = tk.Transfer(pool, alice, tokens(100_000))
	require.NoError(t, err)
	assert.True(t, tk.BalanceOf(alice).Eq(tk.MaxBalance()))
	assertConserved(t, tk)
}

func TestLimits_WalletCapUsesNet(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(2, 3, 5, 5, 0)))
	require.NoError(t, tk.TriggerLaunch(owner))
	_, err := tk.Transfer(owner, alice, tokens(1_600_000))
	require.NoError(t, err)

	// 500k gross is 425k net: 2.025M would break the cap.
	_, err = tk.Transfer(pool, alice, tokens(500_000))
	require.ErrorIs(t, err, model.ErrWalletLimitExceeded)

	// 400k gross is 340k net: 1.94M fits.
	_, err = tk.Transfer(pool, alice, tokens(400_000))
	require.NoError(t, err)
	assert.Equal(t, tokens(1_940_000).Dec(), tk.BalanceOf(alice).Dec())
}

func TestLimits_TxCapOnBuy(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.TriggerLaunch(owner))

	over := new(uint256.Int).AddUint64(tk.MaxTx(), 1)
	_, err := tk.Transfer(pool, alice, over)
	require.ErrorIs(t, err, model.ErrTransactionLimitExceeded)
	assert.True(t, tk.BalanceOf(alice).IsZero())
}

func TestLimits_SellAtCap(t *testing.T) {
	tk := newTestToken(t)
	require.NoError(t, tk.TriggerLaunch(owner))
	_, err := tk.Transfer(owner, alice, tokens(1_500_000))
	require.NoError(t, err)

	maxTx := tk.MaxTx()
	_, err = tk.Transfer(alice, pool, maxTx)
	require.NoError(t, err)
	assert.True(t, tk.BalanceOf(pool).Eq(maxTx))

	before := tk.BalanceOf(alice)
	over := new(uint256.Int).AddUint64(maxTx, 1)
	_, err = tk.Transfer(alice, pool, over)
	require.ErrorIs(t, err, model.ErrTransactionLimitExceeded)
	assert.True(t, tk.BalanceOf(alice).Eq(before))
}

func TestLimits_ExemptBuyer(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.TriggerLaunch(owner))
	require.NoError(t, tk.SetLimitExempt(owner, alice, true))

	_, err := tk.Transfer(pool, alice, tokens(3_000_000))
	require.NoError(t, err)
	assert.Equal(t, tokens(3_000_000).Dec(), tk.BalanceOf(alice).Dec())
}

func TestTriggerLaunch_Once(t *testing.T) {
	tk := newTestToken(t)

	require.NoError(t, tk.TriggerLaunch(owner))
	assert.Equal(t, model.Launched, tk.LaunchState())
	assert.Equal(t, uint64(0), tk.EffectiveBuyTax())

	require.ErrorIs(t, tk.TriggerLaunch(owner), model.ErrAlreadyLaunched)
	assert.Equal(t, model.Launched, tk.LaunchState())
}

func TestTransferOwnership(t *testing.T) {
	tk := newTestToken(t)

	require.ErrorIs(t, tk.TransferOwnership(owner, model.ZeroAddress), model.ErrInvalidAddress)
	require.NoError(t, tk.TransferOwnership(owner, alice))
	assert.Equal(t, alice, tk.Owner())

	require.ErrorIs(t, tk.SetMaxTxPercentage(owner, 10), model.ErrUnauthorized)
	require.NoError(t, tk.SetMaxTxPercentage(alice, 10))
}

func TestTransferFrom(t *testing.T) {
	tk := newTestToken(t)

	require.NoError(t, tk.Approve(owner, bob, uint256.NewInt(100)))
	assert.Equal(t, "100", tk.Allowance(owner, bob).Dec())

	_, err := tk.TransferFrom(bob, owner, alice, uint256.NewInt(60))
	require.NoError(t, err)
	assert.Equal(t, "60", tk.BalanceOf(alice).Dec())
	assert.Equal(t, "40", tk.Allowance(owner, bob).Dec())

	_, err = tk.TransferFrom(bob, owner, alice, uint256.NewInt(50))
	require.ErrorIs(t, err, model.ErrInsufficientAllowance)
	assert.Equal(t, "60", tk.BalanceOf(alice).Dec())
	assert.Equal(t, "40", tk.Allowance(owner, bob).Dec())

	require.ErrorIs(t, tk.Approve(owner, "", uint256.NewInt(1)), model.ErrInvalidAddress)
}

func TestTransferFrom_FailedTransferKeepsAllowance(t *testing.T) {
	tk := newTestToken(t)

	require.NoError(t, tk.Approve(alice, bob, uint256.NewInt(100)))
	_, err := tk.TransferFrom(bob, alice, owner, uint256.NewInt(10))
	require.ErrorIs(t, err, model.ErrInsufficientBalance)
	assert.Equal(t, "100", tk.Allowance(alice, bob).Dec())
}

func TestSwapBack(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.TriggerLaunch(owner))

	drained, err := tk.SwapBack(owner, pool)
	require.NoError(t, err)
	assert.Empty(t, drained)

	_, err = tk.Transfer(pool, alice, uint256.NewInt(1000))
	require.NoError(t, err)
	poolBefore := tk.BalanceOf(pool)

	_, err = tk.SwapBack(alice, pool)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = tk.SwapBack(owner, bob)
	require.ErrorIs(t, err, model.ErrInvalidAddress)
	assert.Equal(t, "130", tk.PendingFees().Dec())

	drained, err = tk.SwapBack(owner, pool)
	require.NoError(t, err)
	assert.Equal(t, "130", drained.Sum().Dec())
	assert.NotContains(t, drained, model.ComponentBurn)
	assert.True(t, tk.PendingFees().IsZero())
	assert.True(t, tk.BalanceOf(contract).IsZero())
	assert.Equal(t, "20", tk.Burned().Dec())

	want := new(uint256.Int).AddUint64(poolBefore, 130)
	assert.True(t, tk.BalanceOf(pool).Eq(want))
	assertConserved(t, tk)
}

func TestSwapBack_Threshold(t *testing.T) {
	tk, err := New(testGenesis(), Options{SwapBackThreshold: uint256.NewInt(131)})
	require.NoError(t, err)
	assert.Equal(t, "131", tk.SwapBackThreshold().Dec())
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.TriggerLaunch(owner))

	_, err = tk.Transfer(pool, alice, uint256.NewInt(1000))
	require.NoError(t, err)

	_, err = tk.SwapBack(owner, pool)
	require.ErrorIs(t, err, model.ErrBelowSwapThreshold)
	assert.Equal(t, "130", tk.PendingFees().Dec())
	assert.Equal(t, "130", tk.BalanceOf(contract).Dec())

	_, err = tk.Transfer(pool, alice, uint256.NewInt(10))
	require.NoError(t, err)
	drained, err := tk.SwapBack(owner, pool)
	require.NoError(t, err)
	assert.Equal(t, "131", drained.Sum().Dec())
}

func TestTransfer_ContractAndBurnCannotSend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	tk, err := Open(testGenesis(), Options{StatePath: path})
	require.NoError(t, err)
	seedPool(t, tk, tokens(10_000_000))

	_, err = tk.Transfer(pool, alice, uint256.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, "990", tk.PendingFees().Dec())
	require.Equal(t, "990", tk.BalanceOf(contract).Dec())
	_, err = tk.Transfer(owner, DefaultBurnAddress, uint256.NewInt(10))
	require.NoError(t, err)

	_, err = tk.Transfer(contract, bob, uint256.NewInt(990))
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = tk.Transfer(DefaultBurnAddress, bob, uint256.NewInt(10))
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = tk.TransferFrom(bob, contract, bob, new(uint256.Int))
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.ErrorIs(t, tk.Approve(contract, bob, uint256.NewInt(1)), model.ErrUnauthorized)
	require.ErrorIs(t, tk.Approve(DefaultBurnAddress, bob, uint256.NewInt(1)), model.ErrUnauthorized)

	assert.True(t, tk.Allowance(contract, bob).IsZero())
	assert.Equal(t, "990", tk.BalanceOf(contract).Dec())
	assert.Equal(t, "10", tk.Burned().Dec())
	assert.True(t, tk.BalanceOf(bob).IsZero())

	// The contract still pays out through SwapBack, and the saved state reopens.
	drained, err := tk.SwapBack(owner, pool)
	require.NoError(t, err)
	assert.Equal(t, "990", drained.Sum().Dec())

	reopened, err := Open(testGenesis(), Options{StatePath: path})
	require.NoError(t, err)
	assert.True(t, reopened.PendingFees().IsZero())
	assertConserved(t, reopened)
}

func TestExemptions_ContractAndBurnStayExempt(t *testing.T) {
	tk := newTestToken(t)

	require.ErrorIs(t, tk.SetFeeExempt(owner, contract, false), model.ErrUnauthorized)
	require.ErrorIs(t, tk.SetLimitExempt(owner, DefaultBurnAddress, false), model.ErrUnauthorized)
	require.NoError(t, tk.SetFeeExempt(owner, contract, true))

	st := tk.Snapshot()
	assert.Contains(t, st.FeeExempt, contract)
	assert.Contains(t, st.LimitExempt, DefaultBurnAddress)
}

func TestOpen_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	tk, err := Open(testGenesis(), Options{StatePath: path})
	require.NoError(t, err)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.SetMaxTxPercentage(owner, 10))
	require.NoError(t, tk.TriggerLaunch(owner))
	_, err = tk.Transfer(pool, alice, uint256.NewInt(1000))
	require.NoError(t, err)
	require.NoError(t, tk.Approve(alice, bob, uint256.NewInt(7)))

	// Genesis is ignored once a state file exists.
	reopened, err := Open(DefaultGenesis(bob, contract), Options{StatePath: path})
	require.NoError(t, err)

	assert.Equal(t, owner, reopened.Owner())
	assert.Equal(t, model.Launched, reopened.LaunchState())
	assert.Equal(t, uint64(15), reopened.TotalBuyTax())
	assert.Equal(t, uint64(10), reopened.MaxTxPercentage())
	assert.Equal(t, "850", reopened.BalanceOf(alice).Dec())
	assert.Equal(t, "130", reopened.PendingFees().Dec())
	assert.Equal(t, "7", reopened.Allowance(alice, bob).Dec())
	assert.Equal(t, tk.Status().LiquiditySources, reopened.Status().LiquiditySources)
	assertConserved(t, reopened)
}

func TestOpen_RejectsTamperedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	tk, err := Open(testGenesis(), Options{StatePath: path})
	require.NoError(t, err)
	st := tk.Snapshot()
	st.Balances[alice] = "1"
	require.NoError(t, SaveState(path, st))

	_, err = Open(testGenesis(), Options{StatePath: path})
	require.Error(t, err)
}

func TestOpen_RestoreReassertsExemptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	tk, err := Open(testGenesis(), Options{StatePath: path})
	require.NoError(t, err)

	st := tk.Snapshot()
	st.FeeExempt = []model.Address{owner}
	st.LimitExempt = nil
	require.NoError(t, SaveState(path, st))

	reopened, err := Open(testGenesis(), Options{StatePath: path})
	require.NoError(t, err)
	got := reopened.Snapshot()
	assert.ElementsMatch(t, []model.Address{owner, contract, DefaultBurnAddress}, got.FeeExempt)
	assert.ElementsMatch(t, []model.Address{contract, DefaultBurnAddress}, got.LimitExempt)
}

func TestOpen_RejectsZeroAccounts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(st *model.TokenState)
	}{
		{"contract", func(st *model.TokenState) { st.Contract = model.ZeroAddress }},
		{"burn address", func(st *model.TokenState) { st.BurnAddress = "" }},
		{"liquidity source", func(st *model.TokenState) {
			st.LiquiditySources = append(st.LiquiditySources, model.ZeroAddress)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			tk, err := Open(testGenesis(), Options{StatePath: path})
			require.NoError(t, err)

			st := tk.Snapshot()
			tt.mutate(st)
			require.NoError(t, SaveState(path, st))

			_, err = Open(testGenesis(), Options{StatePath: path})
			require.ErrorIs(t, err, model.ErrInvalidAddress)
		})
	}
}

func TestConservation_MixedSequence(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.SetSellFees(owner, model.NewFeeSchedule(2, 3, 5, 3, 2)))

	transfer := func(from, to model.Address, amount *uint256.Int) func() error {
		return func() error {
			_, err := tk.Transfer(from, to, amount)
			return err
		}
	}
	steps := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"pre-launch buy", transfer(pool, alice, tokens(1000)), nil},
		{"peer", transfer(alice, bob, tokens(5)), nil},
		{"pre-launch sell", transfer(bob, pool, tokens(1)), nil},
		{"launch", func() error { return tk.TriggerLaunch(owner) }, nil},
		{"buy", transfer(pool, alice, tokens(100_000)), nil},
		{"sell", transfer(alice, pool, tokens(50_000)), nil},
		{"overdrawn peer", transfer(bob, alice, tokens(1_000_000)), model.ErrInsufficientBalance},
		{"buy over tx cap", transfer(pool, bob, tokens(600_000)), model.ErrTransactionLimitExceeded},
		{"contract sends", transfer(contract, bob, uint256.NewInt(1)), model.ErrUnauthorized},
		{"swap back", func() error {
			_, err := tk.SwapBack(owner, pool)
			return err
		}, nil},
		{"approve", func() error { return tk.Approve(alice, bob, tokens(10)) }, nil},
		{"transfer from", func() error {
			_, err := tk.TransferFrom(bob, alice, owner, tokens(10))
			return err
		}, nil},
		{"buy after swap back", transfer(pool, bob, tokens(1000)), nil},
	}
	for _, step := range steps {
		err := step.run()
		if step.wantErr != nil {
			require.ErrorIs(t, err, step.wantErr, step.name)
		} else {
			require.NoError(t, err, step.name)
		}
		assertConserved(t, tk)
		assert.False(t, tk.BalanceOf(contract).Lt(tk.PendingFees()), step.name)
	}
}

func TestConservation_RandomSequence(t *testing.T) {
	tk := newTestToken(t)
	seedPool(t, tk, tokens(10_000_000))
	require.NoError(t, tk.SetBuyFees(owner, model.NewFeeSchedule(1, 2, 5, 5, 2)))
	require.NoError(t, tk.SetSellFees(owner, model.NewFeeSchedule(2, 3, 5, 3, 2)))

	actors := []model.Address{owner, pool, alice, bob, contract, DefaultBurnAddress}
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		if i == 250 {
			require.NoError(t, tk.TriggerLaunch(owner))
		}
		if rng.IntN(10) == 0 {
			_, _ = tk.SwapBack(owner, pool)
		} else {
			from := actors[rng.IntN(len(actors))]
			to := actors[rng.IntN(len(actors))]
			_, _ = tk.Transfer(from, to, tokens(rng.Uint64N(20_000)))
		}
		assertConserved(t, tk)
		require.False(t, tk.BalanceOf(contract).Lt(tk.PendingFees()), "step %d", i)
	}
}
