package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/edgetracker/ledger"
)

// FormatTradeOrg renders a trade as an Org-mode block for pasting into a
// written journal. Structured facts go in a PROPERTIES drawer, the notes
// and review headings stay free-form.
func FormatTradeOrg(t ledger.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s: %s (%s)\n", strings.ToUpper(t.Outcome.String()), t.Symbol, t.Strategy, shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ACCOUNT_ID: %s\n", t.AccountID)
	fmt.Fprintf(&b, ":DATE: %s\n", t.Date.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":STRATEGY: %s\n", t.Strategy)
	fmt.Fprintf(&b, ":ENTRY_MODEL: %s\n", t.EntryModel)
	if len(t.Confluences) > 0 {
		fmt.Fprintf(&b, ":CONFLUENCES: %s\n", strings.Join(t.Confluences, ", "))
	}
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":STOP_LOSS: %.5f\n", t.StopLoss)
	fmt.Fprintf(&b, ":TAKE_PROFIT: %.5f\n", t.TakeProfit)
	fmt.Fprintf(&b, ":OUTCOME: %s\n", t.Outcome)
	fmt.Fprintf(&b, ":PROFIT: %.2f\n", t.ProfitAmount)
	fmt.Fprintf(&b, ":PHASE: %d\n", t.Phase)
	b.WriteString(":END:\n\n")

	b.WriteString("*** Notes\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		b.WriteString(notes)
		b.WriteString("\n\n")
	} else {
		b.WriteString("- \n\n")
	}
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []ledger.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
