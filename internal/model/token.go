package model

import (
	"time"

	"github.com/holiman/uint256"
)

// Address is an opaque account identifier supplied by the host environment.
type Address string

// ZeroAddress is never a valid transfer party.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// IsZero reports whether a is empty or the zero address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// Direction is the classification of a transfer relative to the liquidity sources.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionPeer Direction = "PEER"
)

// LaunchState is the one-way launch gate.
type LaunchState string

const (
	PreLaunch LaunchState = "PRE_LAUNCH"
	Launched  LaunchState = "LAUNCHED"
)

// TokenMetadata is pass-through descriptive data.
type TokenMetadata struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// TransferReceipt describes a committed transfer.
type TransferReceipt struct {
	From       Address
	To         Address
	Amount     *uint256.Int
	Net        *uint256.Int
	Direction  Direction
	Regime     Regime
	Allocation Allocation
}

// TokenState is the persisted form of the whole token. Amounts are base-10 strings.
type TokenState struct {
	Metadata             TokenMetadata                  `json:"metadata"`
	TotalSupply          string                         `json:"total_supply"`
	Owner                Address                        `json:"owner"`
	Contract             Address                        `json:"contract"`
	BurnAddress          Address                        `json:"burn_address"`
	Launch               LaunchState                    `json:"launch"`
	BuyFees              FeeSchedule                    `json:"buy_fees"`
	SellFees             FeeSchedule                    `json:"sell_fees"`
	MaxBalancePercentage uint64                         `json:"max_balance_percentage"`
	MaxTxPercentage      uint64                         `json:"max_tx_percentage"`
	Balances             map[Address]string             `json:"balances"`
	Buckets              map[Component]string           `json:"buckets"`
	Allowances           map[Address]map[Address]string `json:"allowances,omitempty"`
	FeeExempt            []Address                      `json:"fee_exempt"`
	LimitExempt          []Address                      `json:"limit_exempt"`
	LiquiditySources     []Address                      `json:"liquidity_sources"`
	UpdatedAt            time.Time                      `json:"updated_at"`
}
