package model

import "github.com/holiman/uint256"

// TokenStatus is a point-in-time read of the token's public surface.
type TokenStatus struct {
	Metadata             TokenMetadata
	TotalSupply          *uint256.Int
	Owner                Address
	Contract             Address
	Launch               LaunchState
	BuyFees              FeeSchedule
	SellFees             FeeSchedule
	MaxBalancePercentage uint64
	MaxTxPercentage      uint64
	MaxBalance           *uint256.Int
	MaxTx                *uint256.Int
	Buckets              Allocation
	PendingFees          *uint256.Int
	Burned               *uint256.Int
	LiquiditySources     []Address
}
