package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/pipeline"
	"PriceSentinel/internal/recorder"
	"PriceSentinel/internal/watch"
)

func verdictIcon(v model.Verdict) string {
	switch v {
	case model.VerdictPerfect:
		return "🟢"
	case model.VerdictFair:
		return "🟡"
	case model.VerdictPoor:
		return "🟠"
	default:
		return "🔴"
	}
}

// FormatQualityReport formats one processed series into a Telegram message.
func FormatQualityReport(snap *collector.Snapshot) string {
	res := snap.Result
	d := res.Diagnostics
	stats := res.Repair.Stats

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", verdictIcon(res.Health.Verdict), html.EscapeString(snap.Symbol), snap.FetchedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Verdict: <b>%s</b> (%s)\n", res.Health.Verdict, res.State))
	b.WriteString(fmt.Sprintf("Source: %s\n", html.EscapeString(snap.Source)))
	b.WriteString(fmt.Sprintf("Points: %d raw, %d valid, %d fixed, %d dropped\n", stats.Raw, d.Valid, stats.Fixed, stats.Dropped))

	if res.State == pipeline.StateNoData {
		b.WriteString("\n⛔ No renderable data, chart skipped.\n")
	} else {
		obs := res.Repair.Observations
		last := obs[len(obs)-1]
		b.WriteString(fmt.Sprintf("Last close: %.2f (%s)\n", last.Close, html.EscapeString(last.Date)))
		fast, slow := res.Overlay.Fast, res.Overlay.Slow
		b.WriteString(fmt.Sprintf("EMA%d: %.2f | EMA%d: %.2f\n", res.Overlay.FastPeriod, fast[len(fast)-1], res.Overlay.SlowPeriod, slow[len(slow)-1]))
		if d.HasPriceRange {
			b.WriteString(fmt.Sprintf("Range: %.2f to %.2f (%.2f%%)\n", d.MinClose, d.MaxClose, d.VariationPct))
		}
		b.WriteString(fmt.Sprintf("Trend: %s (%d up / %d down / %d flat)\n", d.Trend, d.UpDays, d.DownDays, d.FlatDays))
	}

	if len(res.Health.Issues) > 0 {
		b.WriteString("\n⚠️ <b>Issues:</b>\n")
		for _, issue := range res.Health.Issues {
			b.WriteString(fmt.Sprintf("  • %s\n", html.EscapeString(issue)))
		}
	}
	return b.String()
}

// FormatTransition formats a verdict change alert.
func FormatTransition(tr watch.Transition, snap *collector.Snapshot) string {
	var b strings.Builder
	icon := "🔔"
	switch {
	case tr.Worsened:
		icon = "📉"
	case tr.Improved:
		icon = "📈"
	}
	b.WriteString(fmt.Sprintf("%s <b>Data quality changed</b> | %s\n", icon, html.EscapeString(tr.Symbol)))
	b.WriteString(fmt.Sprintf("%s → %s\n", orUnknown(tr.From), tr.To))
	if tr.FromState != tr.ToState {
		b.WriteString(fmt.Sprintf("Render state: %s → %s\n", orUnknown(tr.FromState), tr.ToState))
	}
	b.WriteString("\n")
	if snap != nil {
		b.WriteString(FormatQualityReport(snap))
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// FormatFetchFailure formats an alert for a series that could not be fetched.
func FormatFetchFailure(symbol string, err error, consecutive int) string {
	return fmt.Sprintf("❌ <b>Fetch failed</b> | %s\n\n%s\nConsecutive failures: %d",
		html.EscapeString(symbol), html.EscapeString(err.Error()), consecutive)
}

// FormatStatus lists the last known quality of every watched instrument.
func FormatStatus(states map[string]watch.InstrumentState) string {
	if len(states) == 0 {
		return "📦 No instruments checked yet."
	}
	symbols := make([]string, 0, len(states))
	for s := range states {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("📦 <b>Instrument status</b>\n\n")
	for _, sym := range symbols {
		st := states[sym]
		line := fmt.Sprintf("%s %s: %s", verdictIcon(model.Verdict(st.Verdict)), html.EscapeString(sym), st.Verdict)
		if st.Verdict == "" {
			line = fmt.Sprintf("⚪ %s: unchecked", html.EscapeString(sym))
		}
		if st.IssueCount > 0 {
			line += fmt.Sprintf(", %d issues", st.IssueCount)
		}
		if st.ConsecutiveDegraded > 1 {
			line += fmt.Sprintf(", degraded %d runs", st.ConsecutiveDegraded)
		}
		if st.ConsecutiveFailures > 0 {
			line += fmt.Sprintf(", %d failed fetches", st.ConsecutiveFailures)
		}
		if !st.CheckedAt.IsZero() {
			line += fmt.Sprintf(" (%s)", st.CheckedAt.Format("01-02 15:04"))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatDigest is the periodic summary: verdict counts followed by the status list.
func FormatDigest(states map[string]watch.InstrumentState, now time.Time) string {
	counts := map[string]int{}
	for _, st := range states {
		counts[st.Verdict]++
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Data quality digest</b> | %s\n\n", now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("perfect %d | fair %d | poor %d | no_data %d\n\n",
		counts[string(model.VerdictPerfect)], counts[string(model.VerdictFair)],
		counts[string(model.VerdictPoor)], counts[string(model.VerdictNoData)]))
	b.WriteString(FormatStatus(states))
	return b.String()
}

// FormatHistory lists recorded runs, newest first.
func FormatHistory(symbol string, runs []recorder.QualityRun) string {
	if len(runs) == 0 {
		return fmt.Sprintf("No recorded runs for %s.", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History</b> | %s\n\n", html.EscapeString(symbol)))
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s %s: %d/%d valid, %d dropped\n",
			verdictIcon(model.Verdict(r.Verdict)), r.Timestamp.Format("01-02 15:04"), r.Verdict,
			r.ValidCount, r.RawCount, r.DroppedCount))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /check SYMBOL: fetch and assess a series now\n" +
		"• /status: last verdict of every instrument\n" +
		"• /history SYMBOL: recent recorded runs\n" +
		"• /help: this message"
}
