package risk

import (
	"fmt"
	"math"
	"strings"
)

// PairType selects the contract size and pip size used for lot sizing.
type PairType int

const (
	Standard PairType = iota
	JPY
	Gold
	Crypto
)

func (p PairType) String() string {
	switch p {
	case Standard:
		return "Standard"
	case JPY:
		return "JPY"
	case Gold:
		return "Gold"
	case Crypto:
		return "Crypto"
	}
	return "unknown"
}

func ParsePairType(s string) (PairType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return Standard, nil
	case "jpy":
		return JPY, nil
	case "gold", "xau":
		return Gold, nil
	case "crypto":
		return Crypto, nil
	}
	return Standard, fmt.Errorf("unknown pair type %q", s)
}

// contract returns units per lot and pip size.
func (p PairType) contract() (float64, float64) {
	switch p {
	case JPY:
		return 100000, 0.01
	case Gold:
		return 100, 0.1
	case Crypto:
		return 1, 1
	}
	return 100000, 0.0001
}

type Inputs struct {
	Balance    float64
	RiskPct    float64 // percent, 1 = 1%
	EntryPrice float64
	StopPrice  float64
	TakeProfit float64
	Pair       PairType
}

type Result struct {
	Lots         float64
	Units        float64
	StopPips     float64
	RiskAmount   float64
	RewardAmount float64
	RR           float64
}

// LotSize sizes a position so that hitting the stop loses RiskPct of
// Balance. A zero stop distance yields zero lots.
func LotSize(in Inputs) Result {
	perLot, pip := in.Pair.contract()
	dist := math.Abs(in.EntryPrice - in.StopPrice)

	res := Result{
		RiskAmount: in.Balance * in.RiskPct / 100,
		RR:         RR(in.EntryPrice, in.StopPrice, in.TakeProfit),
		StopPips:   dist / pip,
	}
	res.RewardAmount = res.RiskAmount * res.RR

	if dist == 0 {
		return res
	}
	res.Lots = res.RiskAmount / (dist * perLot)
	res.Units = res.Lots * perLot
	return res
}
