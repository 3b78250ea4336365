package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/edgetracker/ledger"
)

var csvHeader = []string{
	"trade_id", "account_id", "date", "symbol", "strategy", "entry_model", "confluences",
	"entry_price", "stop_loss", "take_profit", "outcome", "profit_amount", "phase", "notes",
}

// WriteTradesCSV writes trades to w with a header row. Confluences are
// joined with ";".
func WriteTradesCSV(w io.Writer, trades []ledger.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.AccountID,
			t.Date.UTC().Format(time.RFC3339),
			t.Symbol,
			t.Strategy,
			t.EntryModel,
			strings.Join(t.Confluences, ";"),
			price(t.EntryPrice),
			price(t.StopLoss),
			price(t.TakeProfit),
			t.Outcome.String(),
			money(t.ProfitAmount),
			strconv.Itoa(t.Phase),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func price(x float64) string {
	return strconv.FormatFloat(x, 'f', 5, 64)
}

func money(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
