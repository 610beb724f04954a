package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"TaxLedger/internal/fees"
	"TaxLedger/internal/model"
)

func units(st *model.TokenStatus, v *uint256.Int) string {
	return fmt.Sprintf("%s %s", model.FormatUnits(v, st.Metadata.Decimals), st.Metadata.Symbol)
}

func launchLabel(l model.LaunchState) string {
	if l == model.Launched {
		return "🟢 launched"
	}
	return "🔒 pre-launch"
}

// FormatStatus formats the token overview for display.
func FormatStatus(st *model.TokenStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🪙 <b>%s (%s)</b> | %s\n\n", st.Metadata.Name, st.Metadata.Symbol, time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("State: %s\n", launchLabel(st.Launch)))
	b.WriteString(fmt.Sprintf("Supply: %s\n", units(st, st.TotalSupply)))
	b.WriteString(fmt.Sprintf("Owner: <code>%s</code>\n", st.Owner))
	b.WriteString(fmt.Sprintf("Buy tax: %s | Sell tax: %s\n", effectiveRate(st, st.BuyFees), effectiveRate(st, st.SellFees)))
	b.WriteString(fmt.Sprintf("Max wallet: %s\n", units(st, st.MaxBalance)))
	b.WriteString(fmt.Sprintf("Max tx: %s\n", units(st, st.MaxTx)))
	b.WriteString(fmt.Sprintf("Pending fees: %s\n", units(st, st.PendingFees)))
	b.WriteString(fmt.Sprintf("Burned: %s\n", units(st, st.Burned)))
	return b.String()
}

func effectiveRate(st *model.TokenStatus, f model.FeeSchedule) string {
	if st.Launch != model.Launched {
		return fmt.Sprintf("%d%% (penalty)", fees.PenaltySchedule.Total())
	}
	return fmt.Sprintf("%d%%", f.Total())
}

func writeSchedule(b *strings.Builder, title string, f model.FeeSchedule) {
	b.WriteString(fmt.Sprintf("<b>%s</b> (total %d%%)\n", title, f.Total()))
	for _, c := range model.Components {
		b.WriteString(fmt.Sprintf("  %s: %d%%\n", c, f.Rate(c)))
	}
}

// FormatFees formats both configured schedules.
func FormatFees(st *model.TokenStatus) string {
	var b strings.Builder
	b.WriteString("💸 <b>Fee schedule</b>\n\n")
	writeSchedule(&b, "Buy", st.BuyFees)
	writeSchedule(&b, "Sell", st.SellFees)
	if st.Launch != model.Launched {
		b.WriteString(fmt.Sprintf("\n⚠️ Pre-launch: non-exempt trades pay %d%%\n", fees.PenaltySchedule.Total()))
	}
	return b.String()
}

// FormatLimits formats the anti-whale thresholds.
func FormatLimits(st *model.TokenStatus) string {
	var b strings.Builder
	b.WriteString("🐋 <b>Limits</b>\n\n")
	b.WriteString(fmt.Sprintf("Max wallet: %d%% = %s\n", st.MaxBalancePercentage, units(st, st.MaxBalance)))
	b.WriteString(fmt.Sprintf("Max tx: %d.%d%% = %s\n", st.MaxTxPercentage/10, st.MaxTxPercentage%10, units(st, st.MaxTx)))
	return b.String()
}

// FormatBuckets formats the accrued fee buckets.
func FormatBuckets(st *model.TokenStatus) string {
	var b strings.Builder
	b.WriteString("🪣 <b>Fee buckets</b>\n\n")
	for _, c := range model.Components {
		if c == model.ComponentBurn {
			continue
		}
		v := st.Buckets[c]
		if v == nil {
			v = new(uint256.Int)
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", c, units(st, v)))
	}
	b.WriteString(fmt.Sprintf("  ─────────────────\n  pending: %s\n", units(st, st.PendingFees)))
	b.WriteString(fmt.Sprintf("burned: %s\n", units(st, st.Burned)))
	return b.String()
}

// FormatSwapBack announces a bucket release.
func FormatSwapBack(st *model.TokenStatus, router model.Address, drained model.Allocation) string {
	var b strings.Builder
	b.WriteString("🔄 <b>Swap-back</b>\n\n")
	b.WriteString(fmt.Sprintf("Router: <code>%s</code>\n", router))
	for _, c := range model.Components {
		if v, ok := drained[c]; ok {
			b.WriteString(fmt.Sprintf("  %s: %s\n", c, units(st, v)))
		}
	}
	b.WriteString(fmt.Sprintf("Total: %s\n", units(st, drained.Sum())))
	return b.String()
}

// FormatLaunch announces the opening of trading.
func FormatLaunch(st *model.TokenStatus) string {
	return fmt.Sprintf("🚀 <b>%s is live</b>\n\nBuy tax: %d%% | Sell tax: %d%%\nMax wallet: %s\nMax tx: %s\n",
		st.Metadata.Symbol, st.BuyFees.Total(), st.SellFees.Total(), units(st, st.MaxBalance), units(st, st.MaxTx))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Commands:\n• /status\n• /fees\n• /limits\n• /buckets"
}
