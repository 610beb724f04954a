package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"TaxLedger/internal/model"
	"TaxLedger/internal/notifier"
	"TaxLedger/internal/token"
)

// Sender delivers a formatted message. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Token    *token.Token
	Notifier Sender
	Router   model.Address
	Log      *zap.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. sender may be nil when notifications are disabled.
func NewScheduler(ctx context.Context, tk *token.Token, sender Sender, router model.Address, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Token:    tk,
		Notifier: sender,
		Router:   router,
		Log:      log,
		Ctx:      ctx,
	}
}

// RegisterAll registers the swap-back check and the status report.
func (s *Scheduler) RegisterAll(swapBackCron, reportCron string) error {
	if s.Router != "" {
		if _, err := s.Cron.AddFunc(swapBackCron, s.swapBackTask); err != nil {
			return fmt.Errorf("register swap-back task: %w", err)
		}
	} else {
		s.Log.Warn("swap_back.router not set, swap-back task disabled")
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunSwapBackNow executes the swap-back check immediately.
func (s *Scheduler) RunSwapBackNow() {
	s.swapBackTask()
}

// swapBackTask runs with the owner's authority; the token enforces the threshold.
func (s *Scheduler) swapBackTask() {
	drained, err := s.Token.SwapBack(s.Token.Owner(), s.Router)
	if errors.Is(err, model.ErrBelowSwapThreshold) {
		s.Log.Debug("swap-back skipped", zap.Error(err))
		return
	}
	if err != nil {
		s.Log.Error("swap-back failed", zap.String("router", string(s.Router)), zap.Error(err))
		s.trySend(fmt.Sprintf("❌ swap-back failed: %v", err))
		return
	}
	if len(drained) == 0 {
		s.Log.Debug("swap-back skipped, nothing pending")
		return
	}
	st := s.Token.Status()
	s.trySend(notifier.FormatSwapBack(&st, s.Router, drained))
}

func (s *Scheduler) reportTask() {
	s.Log.Info("running status report")
	st := s.Token.Status()
	s.trySend(notifier.FormatStatus(&st))
}

// AnnounceLaunch notifies the chat that trading is open.
func (s *Scheduler) AnnounceLaunch() {
	st := s.Token.Status()
	s.trySend(notifier.FormatLaunch(&st))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	// Group chats append the bot name: /status@taxledger_bot
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}
	st := s.Token.Status()
	switch command {
	case "/status":
		return notifier.FormatStatus(&st)
	case "/fees":
		return notifier.FormatFees(&st)
	case "/limits":
		return notifier.FormatLimits(&st)
	case "/buckets":
		return notifier.FormatBuckets(&st)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error("send notification", zap.Error(err))
	}
}
