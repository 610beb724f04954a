// Package token is the transfer-authorization state machine. Every operation
// runs to completion under a single lock: classify, limit-check, tax, apply.
package token

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"TaxLedger/internal/classifier"
	"TaxLedger/internal/fees"
	"TaxLedger/internal/ledger"
	"TaxLedger/internal/limits"
	"TaxLedger/internal/model"
	"TaxLedger/internal/observability"
	"TaxLedger/internal/recorder"
	"TaxLedger/internal/tax"
)

// DefaultBurnAddress receives the burn component.
const DefaultBurnAddress model.Address = "0x000000000000000000000000000000000000dEaD"

// Genesis describes the initial distribution and policy.
type Genesis struct {
	Metadata             model.TokenMetadata
	TotalSupply          *uint256.Int
	Owner                model.Address
	Contract             model.Address
	BurnAddress          model.Address
	LiquiditySources     []model.Address
	BuyFees              model.FeeSchedule
	SellFees             model.FeeSchedule
	MaxBalancePercentage uint64
	MaxTxPercentage      uint64
}

// DefaultGenesis returns the reference distribution: 10^26 base units with
// 18 decimals, a 2% wallet cap and a 0.5% transaction cap.
func DefaultGenesis(owner, contract model.Address) Genesis {
	return Genesis{
		Metadata:             model.TokenMetadata{Name: "Catmao", Symbol: "CATMAO", Decimals: 18},
		TotalSupply:          uint256.MustFromDecimal("100000000000000000000000000"),
		Owner:                owner,
		Contract:             contract,
		BurnAddress:          DefaultBurnAddress,
		MaxBalancePercentage: 2,
		MaxTxPercentage:      5,
	}
}

// Options carries the ambient collaborators.
type Options struct {
	// StatePath, when set, receives the full state after every mutation.
	StatePath string
	// SwapBackThreshold is the pending-fee total SwapBack waits for. Nil means zero.
	SwapBackThreshold *uint256.Int
	Recorder          recorder.Recorder
	Logger            *zap.Logger
}

// Token is safe for concurrent use.
type Token struct {
	mu sync.Mutex

	meta       model.TokenMetadata
	owner      model.Address
	launch     model.LaunchState
	fees       *fees.Schedule
	limits     *limits.Policy
	classifier *classifier.Classifier
	engine     *tax.Engine
	ledger     *ledger.Ledger

	statePath     string
	swapThreshold *uint256.Int
	rec           recorder.Recorder
	log           *zap.Logger
}

func (o Options) apply(t *Token) {
	t.statePath = o.StatePath
	t.swapThreshold = new(uint256.Int)
	if o.SwapBackThreshold != nil {
		t.swapThreshold.Set(o.SwapBackThreshold)
	}
	t.rec = o.Recorder
	if t.rec == nil {
		t.rec = recorder.NewNoopRecorder()
	}
	t.log = o.Logger
	if t.log == nil {
		t.log = zap.NewNop()
	}
}

func validateGenesis(g Genesis) error {
	switch {
	case g.TotalSupply == nil:
		return fmt.Errorf("genesis: total supply is required")
	case g.Owner.IsZero():
		return fmt.Errorf("genesis: owner: %w", model.ErrInvalidAddress)
	case g.Contract.IsZero():
		return fmt.Errorf("genesis: contract: %w", model.ErrInvalidAddress)
	case g.BurnAddress.IsZero():
		return fmt.Errorf("genesis: burn address: %w", model.ErrInvalidAddress)
	}
	return fees.ValidatePenalty(fees.PenaltySchedule)
}

// New creates a token at genesis: the owner holds the whole supply and the
// owner, contract and burn address are exempt from fees and limits.
func New(g Genesis, opts Options) (*Token, error) {
	if err := validateGenesis(g); err != nil {
		return nil, err
	}
	schedule, err := fees.NewSchedule(g.BuyFees, g.SellFees)
	if err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	policy, err := limits.NewPolicy(g.TotalSupply, g.MaxBalancePercentage, g.MaxTxPercentage)
	if err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	c := classifier.New()
	for _, a := range []model.Address{g.Owner, g.Contract, g.BurnAddress} {
		c.SetTaxExempt(a, true)
		c.SetLimitExempt(a, true)
	}
	for _, a := range g.LiquiditySources {
		if a.IsZero() {
			return nil, fmt.Errorf("genesis: liquidity source: %w", model.ErrInvalidAddress)
		}
		c.SetLiquiditySource(a, true)
	}

	t := &Token{
		meta:       g.Metadata,
		owner:      g.Owner,
		launch:     model.PreLaunch,
		fees:       schedule,
		limits:     policy,
		classifier: c,
		engine:     tax.NewEngine(schedule),
		ledger:     ledger.New(g.TotalSupply, g.Contract, g.BurnAddress, g.Owner),
	}
	opts.apply(t)
	observability.UpdateLaunched(false)
	return t, nil
}

// Open restores the token from opts.StatePath, or runs genesis and writes the
// state file when it does not exist yet.
func Open(g Genesis, opts Options) (*Token, error) {
	if opts.StatePath == "" {
		return New(g, opts)
	}
	state, err := LoadState(opts.StatePath)
	if err != nil {
		return nil, err
	}
	if state == nil {
		t, err := New(g, opts)
		if err != nil {
			return nil, err
		}
		if err := t.saveLocked(); err != nil {
			return nil, fmt.Errorf("write genesis state: %w", err)
		}
		t.log.Info("genesis written",
			zap.String("path", opts.StatePath),
			zap.String("supply", g.TotalSupply.Dec()),
			zap.String("owner", string(g.Owner)))
		return t, nil
	}
	t, err := restore(state)
	if err != nil {
		return nil, err
	}
	opts.apply(t)
	observability.UpdateLaunched(t.launch == model.Launched)
	observability.UpdatePendingFees(t.ledger.PendingFees())
	t.log.Info("state restored",
		zap.String("path", opts.StatePath),
		zap.String("launch", string(t.launch)),
		zap.Int("holders", len(state.Balances)))
	return t, nil
}

func (t *Token) requireOwner(caller model.Address) error {
	if caller != t.owner {
		return fmt.Errorf("%w: %s is not the owner", model.ErrUnauthorized, caller)
	}
	return nil
}

// save persists after a committed mutation. Failures are logged, not returned:
// the mutation has already taken effect in memory.
func (t *Token) save() {
	if err := t.saveLocked(); err != nil {
		observability.RecordStateSaveError()
		t.log.Error("failed to save token state", zap.String("path", t.statePath), zap.Error(err))
	}
}

func (t *Token) saveLocked() error {
	if t.statePath == "" {
		return nil
	}
	return SaveState(t.statePath, t.snapshot())
}
