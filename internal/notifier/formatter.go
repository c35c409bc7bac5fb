package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
	"github.com/thivinthegreat/gold-rate-tracker/internal/recorder"
)

var recommendationIcon = map[model.Recommendation]string{
	model.StrongBuy:  "🟢🟢",
	model.Buy:        "🟢",
	model.Hold:       "⚪",
	model.Sell:       "🔴",
	model.StrongSell: "🔴🔴",
}

var directionIcon = map[model.Direction]string{
	model.DirectionUp:   "▲",
	model.DirectionDown: "▼",
	model.DirectionSame: "▬",
}

// FormatReport formats a full snapshot: one block per metal in report order.
func FormatReport(r *model.Report) string {
	if r == nil {
		return "No report published yet."
	}
	var b strings.Builder
	b.WriteString("📊 <b>Gold Rate Tracker</b>\n")
	for _, m := range r.Metals {
		b.WriteString("\n")
		res := r.Results[m]
		if res.OK() {
			b.WriteString(FormatRecord(res.Record))
			continue
		}
		b.WriteString(FormatFailure(res))
	}
	return b.String()
}

// FormatRecord formats one decision record.
func FormatRecord(rec *model.DecisionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> | %s\n", strings.ToUpper(string(rec.Metal)), rec.Date.Format(model.DateLayout))

	fmt.Fprintf(&b, "Price: %s", rec.Price.StringFixed(2))
	if rec.Change.Valid {
		fmt.Fprintf(&b, " %s %s", directionIcon[rec.Direction], rec.Change.Decimal.StringFixed(2))
		if rec.ChangePct != nil {
			fmt.Fprintf(&b, " (%+.2f%%)", *rec.ChangePct)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s <b>%s</b> | score %d/100\n", recommendationIcon[rec.Recommendation], rec.Recommendation, rec.BuyScore)
	if rec.RSI14 != nil {
		fmt.Fprintf(&b, "RSI14: %.1f", *rec.RSI14)
		if rec.BollingerPositionPct != nil {
			fmt.Fprintf(&b, " | Bollinger: %.0f%%", *rec.BollingerPositionPct)
		}
		b.WriteString("\n")
	}
	if rec.Reasoning != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(rec.Reasoning))
	}
	return b.String()
}

// FormatFailure formats a metal that produced no record.
func FormatFailure(res model.MetalResult) string {
	label := "history is too short"
	if res.Status == model.StatusMalformed {
		label = "history is malformed"
	}
	s := fmt.Sprintf("<b>%s</b> | ⚠️ %s\n", strings.ToUpper(string(res.Metal)), label)
	if res.Error != "" {
		s += fmt.Sprintf("<code>%s</code>\n", html.EscapeString(res.Error))
	}
	return s
}

// FormatHelp lists the supported commands.
func FormatHelp(metals []model.Metal) string {
	var b strings.Builder
	b.WriteString("Available commands:\n• /report")
	for _, m := range metals {
		fmt.Fprintf(&b, "\n• /%s", m)
	}
	b.WriteString("\n• /history &lt;metal&gt; [30|90|180|365|ALL]")
	b.WriteString("\n• /history &lt;metal&gt; &lt;from&gt; &lt;to&gt;")
	b.WriteString("\n• /refresh")
	return b.String()
}

// FormatHistory summarises a window of one metal's history and its most
// recent recorded decisions.
func FormatHistory(series *model.PriceSeries, window string, recent []recorder.StoredRecord) string {
	var b strings.Builder
	observed := series.Observed()
	if len(observed) == 0 {
		fmt.Fprintf(&b, "<b>%s</b> | %s: no prices\n", strings.ToUpper(string(series.Metal)), window)
	} else {
		first, last := observed[0], observed[len(observed)-1]
		low, high := first.Price.Decimal, first.Price.Decimal
		for _, p := range observed[1:] {
			low = decimal.Min(low, p.Price.Decimal)
			high = decimal.Max(high, p.Price.Decimal)
		}
		fmt.Fprintf(&b, "<b>%s</b> | %s (%s to %s)\n", strings.ToUpper(string(series.Metal)), window,
			first.Date.Format(model.DateLayout), last.Date.Format(model.DateLayout))
		fmt.Fprintf(&b, "Readings: %d of %d days\n", len(observed), series.Len())
		fmt.Fprintf(&b, "Low: %s | High: %s | Last: %s\n",
			low.StringFixed(2), high.StringFixed(2), last.Price.Decimal.StringFixed(2))

		change := last.Price.Decimal.Sub(first.Price.Decimal)
		pct, _ := change.Div(first.Price.Decimal).Float64()
		fmt.Fprintf(&b, "Change: %s (%+.2f%%)\n", change.StringFixed(2), pct*100)
	}

	if len(recent) > 0 {
		b.WriteString("Recent decisions:\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "  %s %s %s %d/100\n", r.Date, recommendationIcon[r.Recommendation], r.Recommendation, r.BuyScore)
		}
	}
	return b.String()
}
