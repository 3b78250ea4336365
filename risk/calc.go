package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// RR is the planned reward-to-risk multiple of a trade. A trade without a
// stop distance has no defined multiple and returns 0.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// PlannedRisk is the cash lost if the stop is hit, for units of the base
// instrument priced in quote currency.
func PlannedRisk(units, entry, stop, quoteToAccountRate float64) float64 {
	return units * abs(entry-stop) * quoteToAccountRate
}

// RiskPct is plannedRisk as a fraction of equity.
func RiskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}
