package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/ledger"
	"github.com/rustyeddy/edgetracker/phase"
	"github.com/rustyeddy/edgetracker/risk"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stageLabel(a account.Account) string {
	if a.IsFunded {
		return "Funded"
	}
	return fmt.Sprintf("Step %d", a.CurrentStep)
}

func printAccount(w io.Writer, a account.Account) {
	fmt.Fprintf(w, "%s  %s (%s)\n", a.ID, a.Name, a.Type)
	fmt.Fprintf(w, "  Stage:     %s\n", stageLabel(a))
	fmt.Fprintf(w, "  Balance:   %.2f (start %.2f, day start %.2f)\n", a.Balance, a.StartingBalance, a.DailyStartingBalance)
	if !a.IsFunded {
		fmt.Fprintf(w, "  Target:    %.2f\n", a.ProfitTargetAmount(a.CurrentStep))
	}
	l := a.RiskLimits
	fmt.Fprintf(w, "  Limits:    %d trades/day, %d losses/day, %d loss streak\n", l.MaxTradesPerDay, l.MaxLossesPerDay, l.MaxConsecutiveLosses)
}

func printAccounts(w io.Writer, accounts []account.Account, selected string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tTYPE\tSTAGE\tBALANCE")
	for _, a := range accounts {
		mark := ""
		if a.ID == selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\n", mark, a.ID, a.Name, a.Type, stageLabel(a), a.Balance)
	}
	tw.Flush()
}

func printTrades(w io.Writer, trades []ledger.Trade) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSYMBOL\tSTRATEGY\tMODEL\tOUTCOME\tP/L\tPHASE")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%d\n",
			t.ID, t.Date.UTC().Format("2006-01-02 15:04"), t.Symbol, t.Strategy, t.EntryModel, t.Outcome, t.ProfitAmount, t.Phase)
	}
	tw.Flush()
}

func printRisk(w io.Writer, st risk.Status) {
	if st.Severity == risk.None {
		fmt.Fprintf(w, "Risk guard: clear (%d trades, %d losses today, streak %d)\n", st.TradesToday, st.LossesToday, st.Streak)
		return
	}
	fmt.Fprintf(w, "Risk guard: %s: %s\n", strings.ToUpper(st.Severity.String()), st.Message)
}

func printPassed(w io.Writer, p *phase.PhasePassed) {
	if p == nil {
		return
	}
	next := "advance to the next step"
	if p.Final {
		next = "advance to funded"
	}
	fmt.Fprintf(w, "Phase %d passed: P/L %.2f reached target %.2f. Run `edgetracker phase advance %s` to %s.\n",
		p.Step, p.PnL, p.Target, p.AccountID, next)
}
