package recorder

import (
	"time"

	"github.com/google/uuid"

	"TaxLedger/internal/model"
)

// TransferEvent records an accepted or rejected transfer.
type TransferEvent struct {
	ID         string
	At         time.Time
	Spender    model.Address // set for transferFrom
	From       model.Address
	To         model.Address
	Amount     string
	Net        string
	Direction  model.Direction
	Regime     model.Regime
	Allocation map[model.Component]string
	Accepted   bool
	Reason     string
}

// PolicyKind names an owner or host mutation.
type PolicyKind string

const (
	PolicyBuyFees         PolicyKind = "BUY_FEES"
	PolicySellFees        PolicyKind = "SELL_FEES"
	PolicyMaxBalance      PolicyKind = "MAX_BALANCE"
	PolicyMaxTx           PolicyKind = "MAX_TX"
	PolicyLaunch          PolicyKind = "LAUNCH"
	PolicyFeeExempt       PolicyKind = "FEE_EXEMPT"
	PolicyLimitExempt     PolicyKind = "LIMIT_EXEMPT"
	PolicyLiquiditySource PolicyKind = "LIQUIDITY_SOURCE"
	PolicyOwnership       PolicyKind = "OWNERSHIP"
)

// PolicyEvent records a configuration change attempt.
type PolicyEvent struct {
	ID       string
	At       time.Time
	Kind     PolicyKind
	Caller   model.Address
	Value    string
	Accepted bool
	Reason   string
}

// SwapBackEvent records fee buckets released to the router.
type SwapBackEvent struct {
	ID         string
	At         time.Time
	Router     model.Address
	Total      string
	Allocation map[model.Component]string
}

// Recorder persists the operation journal.
type Recorder interface {
	RecordTransfer(evt *TransferEvent) error
	RecordPolicyChange(evt *PolicyEvent) error
	RecordSwapBack(evt *SwapBackEvent) error
	Close() error
}

// NewEventID returns a fresh journal identifier.
func NewEventID() string {
	return uuid.NewString()
}

// Stamp fills in a missing ID and timestamp.
func Stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = NewEventID()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}

// AllocationStrings renders an allocation for storage.
func AllocationStrings(a model.Allocation) map[model.Component]string {
	if len(a) == 0 {
		return nil
	}
	out := make(map[model.Component]string, len(a))
	for c, v := range a {
		out[c] = v.Dec()
	}
	return out
}
