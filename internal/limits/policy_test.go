package limits

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TaxLedger/internal/model"
)

var supply = uint256.MustFromDecimal("100000000000000000000000000")

func units(s string) *uint256.Int { return uint256.MustFromDecimal(s) }

func TestNewPolicy_GenesisThresholds(t *testing.T) {
	p, err := NewPolicy(supply, 2, 5)
	require.NoError(t, err)

	assert.Equal(t, "2000000000000000000000000", p.MaxBalance().Dec())
	assert.Equal(t, "500000000000000000000000", p.MaxTx().Dec())
}

func TestSetPercentages_RecomputesThresholds(t *testing.T) {
	p, err := NewPolicy(supply, 2, 5)
	require.NoError(t, err)

	require.NoError(t, p.SetMaxBalancePercentage(3))
	require.NoError(t, p.SetMaxTxPercentage(10))

	assert.Equal(t, "3000000000000000000000000", p.MaxBalance().Dec())
	assert.Equal(t, "1000000000000000000000000", p.MaxTx().Dec())
}

func TestSetPercentages_BelowFloor(t *testing.T) {
	p, err := NewPolicy(supply, 3, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, p.SetMaxBalancePercentage(1), model.ErrLimitTooLow)
	assert.ErrorIs(t, p.SetMaxTxPercentage(4), model.ErrLimitTooLow)

	assert.Equal(t, uint64(3), p.MaxBalancePercentage())
	assert.Equal(t, uint64(10), p.MaxTxPercentage())
	assert.Equal(t, "3000000000000000000000000", p.MaxBalance().Dec())
	assert.Equal(t, "1000000000000000000000000", p.MaxTx().Dec())
}

func TestNewPolicy_RejectsBelowFloor(t *testing.T) {
	_, err := NewPolicy(supply, 1, 5)
	assert.ErrorIs(t, err, model.ErrLimitTooLow)
	_, err = NewPolicy(supply, 2, 4)
	assert.ErrorIs(t, err, model.ErrLimitTooLow)
}

func TestCheck(t *testing.T) {
	p, err := NewPolicy(units("1000"), 10, 50) // maxBalance 100, maxTx 50
	require.NoError(t, err)

	tests := []struct {
		name    string
		dir     model.Direction
		amount  string
		balance string
		net     string
		want    error
	}{
		{"buy within limits", model.DirectionBuy, "50", "40", "50", nil},
		{"buy above max tx", model.DirectionBuy, "51", "0", "51", model.ErrTransactionLimitExceeded},
		{"buy reaching max balance", model.DirectionBuy, "50", "50", "50", nil},
		{"buy over max balance", model.DirectionBuy, "50", "51", "50", model.ErrWalletLimitExceeded},
		{"taxed buy measured on net", model.DirectionBuy, "50", "60", "40", nil},
		{"sell at max tx", model.DirectionSell, "50", "0", "0", nil},
		{"sell above max tx", model.DirectionSell, "51", "0", "0", model.ErrTransactionLimitExceeded},
		{"sell ignores wallet cap", model.DirectionSell, "10", "999", "10", nil},
		{"peer unrestricted", model.DirectionPeer, "900", "900", "900", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(tt.dir, units(tt.amount), units(tt.balance), units(tt.net))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
