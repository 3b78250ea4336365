package account

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(target, dd float64) *StepConfig {
	return &StepConfig{ProfitTarget: target, DailyDrawdownLimit: dd}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Type
	}{
		{"Instant", Instant},
		{"2-Step", TwoStep},
		{"2step", TwoStep},
		{"3-STEP", ThreeStep},
		{"three-step", ThreeStep},
		{" personal ", Personal},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseType("4-Step")
	assert.Error(t, err)
}

func TestTypeJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct{ T Type }{TwoStep})
	require.NoError(t, err)
	assert.JSONEq(t, `{"T":"2-Step"}`, string(b))

	var out struct{ T Type }
	require.NoError(t, json.Unmarshal([]byte(`{"T":"3-Step"}`), &out))
	assert.Equal(t, ThreeStep, out.T)

	_, err = json.Marshal(struct{ T Type }{TypeUnknown})
	assert.Error(t, err)
}

func TestIsFinalStep(t *testing.T) {
	t.Parallel()

	assert.True(t, Instant.IsFinalStep(1))
	assert.True(t, Personal.IsFinalStep(1))
	assert.False(t, TwoStep.IsFinalStep(1))
	assert.True(t, TwoStep.IsFinalStep(2))
	assert.False(t, ThreeStep.IsFinalStep(2))
	assert.True(t, ThreeStep.IsFinalStep(3))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name:  "missing name",
			cfg:   Config{Name: "  ", Type: Instant, StartingBalance: 1000, Step1: step(8, 5)},
			field: "name",
		},
		{
			name:  "zero balance",
			cfg:   Config{Name: "a", Type: Instant, Step1: step(8, 5)},
			field: "startingBalance",
		},
		{
			name:  "missing type",
			cfg:   Config{Name: "a", StartingBalance: 1000, Step1: step(8, 5)},
			field: "type",
		},
		{
			name:  "instant without step1",
			cfg:   Config{Name: "a", Type: Instant, StartingBalance: 1000},
			field: "step1",
		},
		{
			name:  "two step without step2",
			cfg:   Config{Name: "a", Type: TwoStep, StartingBalance: 1000, Step1: step(8, 5)},
			field: "step2",
		},
		{
			name:  "three step without step3",
			cfg:   Config{Name: "a", Type: ThreeStep, StartingBalance: 1000, Step1: step(8, 5), Step2: step(5, 5)},
			field: "step3",
		},
		{
			name:  "negative target",
			cfg:   Config{Name: "a", Type: Personal, StartingBalance: 1000, Step1: step(-1, 5)},
			field: "step1.profitTarget",
		},
		{
			name:  "drawdown over 100",
			cfg:   Config{Name: "a", Type: Personal, StartingBalance: 1000, Step1: step(8, 120)},
			field: "step1.dailyDrawdownLimit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 2, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	cfg := Config{
		Name:               " Apex 100k ",
		Type:               TwoStep,
		StartingBalance:    100000,
		MaxDrawdownPercent: 10,
		Step1:              step(8, 5),
		Step2:              step(5, 5),
		Step3:              step(5, 5),
	}

	a, err := New("acct-1", cfg, DefaultRiskLimits(), now)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", a.ID)
	assert.Equal(t, "Apex 100k", a.Name)
	assert.Equal(t, 100000.0, a.Balance)
	assert.Equal(t, 100000.0, a.DailyStartingBalance)
	assert.Equal(t, 1, a.CurrentStep)
	assert.Equal(t, 0, a.LastPassedStep)
	assert.False(t, a.IsFunded)
	assert.NotNil(t, a.StepTargets.Step2)
	assert.Nil(t, a.StepTargets.Step3, "3rd step is dropped for a 2-Step program")
	assert.Equal(t, "2024-05-03", a.LastResetDate)
	assert.Equal(t, DefaultRiskLimits(), a.RiskLimits)
	assert.Equal(t, 1, a.Stage())
	assert.InDelta(t, 8000.0, a.ProfitTargetAmount(1), 1e-9)
	assert.InDelta(t, 5000.0, a.ProfitTargetAmount(2), 1e-9)
	assert.Equal(t, 0.0, a.ProfitTargetAmount(3))
}

func TestStageFunded(t *testing.T) {
	t.Parallel()

	a := Account{CurrentStep: 2, IsFunded: true}
	assert.Equal(t, Funded, a.Stage())
}
