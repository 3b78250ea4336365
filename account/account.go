package account

import (
	"fmt"
	"strings"
)

// Funded is the stage number stamped on trades taken after every step
// of the evaluation has been passed.
const Funded = 4

// Type is the kind of funding program an account follows.
type Type int

const (
	TypeUnknown Type = iota
	Instant
	TwoStep
	ThreeStep
	Personal
)

var typeNames = map[Type]string{
	Instant:   "Instant",
	TwoStep:   "2-Step",
	ThreeStep: "3-Step",
	Personal:  "Personal",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseType accepts the display names ("2-Step") as well as a few
// shell friendly spellings ("2step", "two-step").
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instant":
		return Instant, nil
	case "2-step", "2step", "two-step", "twostep":
		return TwoStep, nil
	case "3-step", "3step", "three-step", "threestep":
		return ThreeStep, nil
	case "personal":
		return Personal, nil
	}
	return TypeUnknown, fmt.Errorf("unknown account type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("unknown account type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Steps is the number of evaluation steps the program requires.
func (t Type) Steps() int {
	switch t {
	case TwoStep:
		return 2
	case ThreeStep:
		return 3
	case Instant, Personal:
		return 1
	}
	return 0
}

// IsFinalStep reports whether passing step completes the evaluation.
func (t Type) IsFinalStep(step int) bool {
	return step >= t.Steps()
}

// StepConfig holds the targets of a single evaluation step, both in percent.
type StepConfig struct {
	ProfitTarget       float64 `json:"profitTarget" yaml:"profit_target"`
	DailyDrawdownLimit float64 `json:"dailyDrawdownLimit" yaml:"daily_drawdown_limit"`
}

type StepTargets struct {
	Step1 StepConfig  `json:"step1" yaml:"step1"`
	Step2 *StepConfig `json:"step2,omitempty" yaml:"step2,omitempty"`
	Step3 *StepConfig `json:"step3,omitempty" yaml:"step3,omitempty"`
}

// RiskLimits are the behavioral limits checked by the risk guard.
type RiskLimits struct {
	MaxLossesPerDay      int     `json:"maxLossesPerDay" yaml:"max_losses_per_day"`
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses" yaml:"max_consecutive_losses"`
	DailyProfitGoal      float64 `json:"dailyProfitGoal" yaml:"daily_profit_goal"`
	MaxTradesPerDay      int     `json:"maxTradesPerDay" yaml:"max_trades_per_day"`
}

// DefaultRiskLimits are stamped on every new account unless the caller
// configures others.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		MaxLossesPerDay:      3,
		MaxConsecutiveLosses: 2,
		DailyProfitGoal:      500,
		MaxTradesPerDay:      5,
	}
}

type Account struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Type                 Type        `json:"type"`
	StartingBalance      float64     `json:"startingBalance"`
	Balance              float64     `json:"balance"`
	DailyStartingBalance float64     `json:"dailyStartingBalance"`
	MaxDrawdownPercent   float64     `json:"maxDrawdownPercent"`
	StepTargets          StepTargets `json:"stepTargets"`
	CurrentStep          int         `json:"currentStep"`
	LastPassedStep       int         `json:"lastPassedStep,omitempty"`
	IsFunded             bool        `json:"isFunded"`
	LastResetDate        string      `json:"lastResetDate,omitempty"`
	RiskLimits           RiskLimits  `json:"riskLimits"`
}

// Clone returns a copy of a that shares no step configs with it.
func (a Account) Clone() Account {
	if a.StepTargets.Step2 != nil {
		s := *a.StepTargets.Step2
		a.StepTargets.Step2 = &s
	}
	if a.StepTargets.Step3 != nil {
		s := *a.StepTargets.Step3
		a.StepTargets.Step3 = &s
	}
	return a
}

// Stage is the phase number trades are stamped with: the current step,
// or Funded once the evaluation is complete.
func (a Account) Stage() int {
	if a.IsFunded {
		return Funded
	}
	return a.CurrentStep
}

// StepConfig returns the targets for step, or nil when the program does
// not define that step.
func (a Account) StepConfig(step int) *StepConfig {
	switch step {
	case 1:
		c := a.StepTargets.Step1
		return &c
	case 2:
		return a.StepTargets.Step2
	case 3:
		return a.StepTargets.Step3
	}
	return nil
}

func (a Account) HasStep(step int) bool {
	return a.StepConfig(step) != nil
}

// ProfitTargetAmount is the phase P/L needed to pass step.
func (a Account) ProfitTargetAmount(step int) float64 {
	c := a.StepConfig(step)
	if c == nil {
		return 0
	}
	return a.StartingBalance * c.ProfitTarget / 100
}
