package report

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// PhaseReport is the input of the Org-mode phase review.
type PhaseReport struct {
	Summary    Summary
	Strategies []StrategyStats
	Created    time.Time
	Notes      []string
}

var orgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"stage": func(phase int) string {
		if phase == 4 {
			return "Funded"
		}
		return fmt.Sprintf("Phase %d", phase)
	},
}

var phaseOrg = template.Must(template.New("phase").Funcs(orgFuncs).Parse(PhaseOrgTemplate))

// WriteOrg renders r as an Org-mode review entry.
func (r PhaseReport) WriteOrg(w io.Writer) error {
	return phaseOrg.Execute(w, r)
}

const PhaseOrgTemplate = `* REVIEW: {{.Summary.AccountName}} {{stage .Summary.Phase}}
:PROPERTIES:
:ACCOUNT_ID:  {{.Summary.AccountID}}
:PHASE:       {{.Summary.Phase}}
:PNL:         {{printf "%.2f" .Summary.PnL}}
:TARGET:      {{printf "%.2f" .Summary.ProfitTarget}}
:PROGRESS:    {{printf "%.0f" .Summary.Progress}}%
:TRADES:      {{.Summary.Trades}}
:WINS:        {{.Summary.Wins}}
:LOSSES:      {{.Summary.Losses}}
:WIN_RATE:    {{printf "%.2f" .Summary.WinRate}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Limits
| Limit          | Amount |
|----------------+--------|
| Profit target  | {{printf "%.2f" .Summary.ProfitTarget}} |
| Max daily loss | {{printf "%.2f" .Summary.MaxDailyLoss}} |
| Max drawdown   | {{printf "%.2f" .Summary.MaxDrawdown}} |
| Drawdown now   | {{printf "%.2f" .Summary.CurrentDrawdown}} |

** Performance Summary
- Net P/L:   *{{printf "%.2f" .Summary.PnL}}*
- Today:     *{{printf "%.2f" .Summary.TodayPnL}}*
- Avg win:   *{{printf "%.2f" .Summary.AvgWin}}*
- Avg loss:  *{{printf "%.2f" .Summary.AvgLoss}}*
- Win rate:  *{{printf "%.1f" .Summary.WinRate}}%*
{{- if .Summary.CanAdvance }}
- Target reached, ready to advance.
{{- end }}
{{- if .Strategies }}

** Strategies
| Strategy | Model | Trades | Win % | P/L | Avg R:R |
|----------+-------+--------+-------+-----+---------|
{{- range .Strategies }}
| {{.Strategy}} | {{.EntryModel}} | {{.Trades}} | {{printf "%.1f" .WinRate}} | {{printf "%.2f" .PnL}} | {{printf "%.2f" .AvgRR}} |
{{- end }}
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
