package report

import (
	"time"

	"github.com/rustyeddy/edgetracker/ledger"
)

type DayStats struct {
	Date   string  `json:"date"`
	Day    int     `json:"day"`
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	PnL    float64 `json:"pnl"`
}

// Week is one Sunday-first row of the calendar. Days outside the month
// are nil.
type Week struct {
	Days [7]*DayStats `json:"days"`
	PnL  float64      `json:"pnl"`
}

type Month struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Weeks  []Week     `json:"weeks"`
	Trades int        `json:"trades"`
	PnL    float64    `json:"pnl"`
}

// Calendar lays out the daily P/L of trades dated in the given UTC month.
func Calendar(trades []ledger.Trade, year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()

	days := make([]DayStats, daysIn)
	for i := range days {
		d := first.AddDate(0, 0, i)
		days[i] = DayStats{Date: d.Format("2006-01-02"), Day: i + 1}
	}

	m := Month{Year: year, Month: month}
	for _, t := range trades {
		at := t.Date.UTC()
		if at.Year() != year || at.Month() != month {
			continue
		}
		d := &days[at.Day()-1]
		d.Trades++
		d.PnL += t.ProfitAmount
		switch t.Outcome {
		case ledger.Win:
			d.Wins++
		case ledger.Loss:
			d.Losses++
		case ledger.BreakEven, ledger.Pending:
		}
		m.Trades++
		m.PnL += t.ProfitAmount
	}

	offset := int(first.Weekday())
	for i := 0; i < offset+daysIn; i += 7 {
		var w Week
		for col := 0; col < 7; col++ {
			idx := i + col - offset
			if idx < 0 || idx >= daysIn {
				continue
			}
			w.Days[col] = &days[idx]
			w.PnL += days[idx].PnL
		}
		m.Weeks = append(m.Weeks, w)
	}
	return m
}
