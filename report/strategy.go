package report

import (
	"sort"

	"github.com/rustyeddy/edgetracker/ledger"
	"github.com/rustyeddy/edgetracker/risk"
	"gonum.org/v1/gonum/stat"
)

// StrategyStats aggregates the trades of one strategy and entry model.
type StrategyStats struct {
	Strategy   string  `json:"strategy"`
	EntryModel string  `json:"entryModel"`
	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	PnL        float64 `json:"pnl"`
	WinRate    float64 `json:"winRate"`
	AvgRR      float64 `json:"avgRR"`
}

// Strategies groups trades by strategy and entry model, best P/L first.
// A non-empty model keeps only that entry model.
func Strategies(trades []ledger.Trade, model string) []StrategyStats {
	type group struct {
		stats StrategyStats
		rrs   []float64
	}

	var order []string
	groups := map[string]*group{}
	for _, t := range trades {
		if model != "" && t.EntryModel != model {
			continue
		}
		key := t.Strategy + "|" + t.EntryModel
		g, ok := groups[key]
		if !ok {
			g = &group{stats: StrategyStats{Strategy: t.Strategy, EntryModel: t.EntryModel}}
			groups[key] = g
			order = append(order, key)
		}
		g.stats.Trades++
		if t.Outcome == ledger.Win {
			g.stats.Wins++
		}
		g.stats.PnL += t.ProfitAmount
		g.rrs = append(g.rrs, risk.RR(t.EntryPrice, t.StopLoss, t.TakeProfit))
	}

	out := make([]StrategyStats, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.stats.WinRate = float64(g.stats.Wins) / float64(g.stats.Trades) * 100
		g.stats.AvgRR = stat.Mean(g.rrs, nil)
		out = append(out, g.stats)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PnL > out[j].PnL })
	return out
}

// Models lists the distinct entry models in first-seen order.
func Models(trades []ledger.Trade) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range trades {
		if !seen[t.EntryModel] {
			seen[t.EntryModel] = true
			out = append(out, t.EntryModel)
		}
	}
	return out
}
