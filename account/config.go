package account

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrValidation = errors.New("invalid account")

// ValidationError names the offending creation field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Config is the input for creating an account. Which step configs are
// required depends on Type; extras for steps the program does not have
// are ignored.
type Config struct {
	Name               string      `json:"name" yaml:"name"`
	Type               Type        `json:"type" yaml:"type"`
	StartingBalance    float64     `json:"startingBalance" yaml:"starting_balance"`
	MaxDrawdownPercent float64     `json:"maxDrawdownPercent" yaml:"max_drawdown_percent"`
	Step1              *StepConfig `json:"step1,omitempty" yaml:"step1,omitempty"`
	Step2              *StepConfig `json:"step2,omitempty" yaml:"step2,omitempty"`
	Step3              *StepConfig `json:"step3,omitempty" yaml:"step3,omitempty"`
}

// Validate returns the first problem found as a *ValidationError.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{"name", "account name is required"}
	}
	if c.StartingBalance <= 0 {
		return &ValidationError{"startingBalance", "valid starting balance is required"}
	}
	if c.MaxDrawdownPercent < 0 || c.MaxDrawdownPercent > 100 {
		return &ValidationError{"maxDrawdownPercent", "must be between 0 and 100"}
	}
	if c.Type.Steps() == 0 {
		return &ValidationError{"type", "account type is required"}
	}

	steps := []*StepConfig{c.Step1, c.Step2, c.Step3}
	for i := 0; i < c.Type.Steps(); i++ {
		field := fmt.Sprintf("step%d", i+1)
		s := steps[i]
		if s == nil {
			return &ValidationError{field, fmt.Sprintf("step %d profit target and daily drawdown are required for %s", i+1, c.Type)}
		}
		if s.ProfitTarget <= 0 {
			return &ValidationError{field + ".profitTarget", "must be positive"}
		}
		if s.DailyDrawdownLimit <= 0 || s.DailyDrawdownLimit > 100 {
			return &ValidationError{field + ".dailyDrawdownLimit", "must be between 0 and 100"}
		}
	}
	return nil
}

// New validates cfg and builds a fresh step 1 account.
func New(id string, cfg Config, limits RiskLimits, now time.Time) (Account, error) {
	if err := cfg.Validate(); err != nil {
		return Account{}, err
	}

	targets := StepTargets{Step1: *cfg.Step1}
	if cfg.Type.Steps() >= 2 {
		s := *cfg.Step2
		targets.Step2 = &s
	}
	if cfg.Type.Steps() >= 3 {
		s := *cfg.Step3
		targets.Step3 = &s
	}

	return Account{
		ID:                   id,
		Name:                 strings.TrimSpace(cfg.Name),
		Type:                 cfg.Type,
		StartingBalance:      cfg.StartingBalance,
		Balance:              cfg.StartingBalance,
		DailyStartingBalance: cfg.StartingBalance,
		MaxDrawdownPercent:   cfg.MaxDrawdownPercent,
		StepTargets:          targets,
		CurrentStep:          1,
		IsFunded:             false,
		LastResetDate:        Day(now),
		RiskLimits:           limits,
	}, nil
}

// Day is the UTC calendar day of t, formatted YYYY-MM-DD. All daily
// limits and roll-overs use this boundary.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
