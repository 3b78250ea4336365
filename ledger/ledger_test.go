package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func testAccount() account.Account {
	return account.Account{
		ID:                   "acct-1",
		Type:                 account.TwoStep,
		StartingBalance:      100000,
		Balance:              100000,
		DailyStartingBalance: 100000,
		CurrentStep:          1,
		LastResetDate:        "2024-03-15",
		StepTargets: account.StepTargets{
			Step1: account.StepConfig{ProfitTarget: 8, DailyDrawdownLimit: 5},
			Step2: &account.StepConfig{ProfitTarget: 5, DailyDrawdownLimit: 5},
		},
	}
}

func TestNormalizeProfit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome Outcome
		in      float64
		want    float64
	}{
		{"loss positive", Loss, 250, -250},
		{"loss negative", Loss, -250, -250},
		{"win negative", Win, -300, 300},
		{"win positive", Win, 300, 300},
		{"be", BreakEven, 42, 0},
		{"pending negative", Pending, -15, -15},
		{"pending positive", Pending, 15, 15},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeProfit(tt.outcome, tt.in))
		})
	}
}

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Outcome{"win": Win, "LOSS": Loss, "be": BreakEven, "": Pending, "pending": Pending} {
		got, err := ParseOutcome(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOutcome("scratch")
	assert.Error(t, err)
}

func TestRecordStampsPhaseAndBalance(t *testing.T) {
	t.Parallel()

	l := New(nil)
	acct := testAccount()

	tr, updated, err := l.Record(&acct, "t1", Draft{
		Symbol:       " xauusd ",
		Outcome:      Loss,
		ProfitAmount: 400,
		Confluences:  []string{" OB ", "", "FVG"},
	}, t0)
	require.NoError(t, err)

	assert.Equal(t, "t1", tr.ID)
	assert.Equal(t, "acct-1", tr.AccountID)
	assert.Equal(t, 1, tr.Phase)
	assert.Equal(t, -400.0, tr.ProfitAmount)
	assert.Equal(t, "XAUUSD", tr.Symbol)
	assert.Equal(t, "No Strategy", tr.Strategy)
	assert.Equal(t, "No Model", tr.EntryModel)
	assert.Equal(t, []string{"OB", "FVG"}, tr.Confluences)
	assert.Equal(t, t0, tr.Date)

	assert.Equal(t, 99600.0, updated.Balance)
	assert.Equal(t, 100000.0, acct.Balance, "input account is not modified")
	assert.Equal(t, 1, l.Len())
}

func TestRecordFundedStampsPhase4(t *testing.T) {
	t.Parallel()

	l := New(nil)
	acct := testAccount()
	acct.IsFunded = true
	acct.CurrentStep = 2

	tr, _, err := l.Record(&acct, "t1", Draft{Outcome: Win, ProfitAmount: 10}, t0)
	require.NoError(t, err)
	assert.Equal(t, account.Funded, tr.Phase)
}

func TestRecordNoAccount(t *testing.T) {
	t.Parallel()

	l := New(nil)
	_, _, err := l.Record(nil, "t1", Draft{}, t0)
	assert.True(t, errors.Is(err, ErrNoActiveAccount))
	assert.Equal(t, 0, l.Len())
}

func TestRecordDuplicateID(t *testing.T) {
	t.Parallel()

	l := New(nil)
	acct := testAccount()
	_, _, err := l.Record(&acct, "t1", Draft{}, t0)
	require.NoError(t, err)
	_, _, err = l.Record(&acct, "t1", Draft{}, t0)
	assert.Error(t, err)
}

func nonFiniteDrafts() map[string]Draft {
	return map[string]Draft{
		"pending nan profit": {Outcome: Pending, ProfitAmount: math.NaN()},
		"win inf profit":     {Outcome: Win, ProfitAmount: math.Inf(1)},
		"loss -inf profit":   {Outcome: Loss, ProfitAmount: math.Inf(-1)},
		"be nan entry":       {Outcome: BreakEven, EntryPrice: math.NaN()},
		"inf stop":           {Outcome: Win, ProfitAmount: 10, StopLoss: math.Inf(1)},
		"nan take profit":    {Outcome: Win, ProfitAmount: 10, TakeProfit: math.NaN()},
	}
}

func TestRecordRejectsNonFinite(t *testing.T) {
	t.Parallel()

	for name, d := range nonFiniteDrafts() {
		d := d
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := New(nil)
			acct := testAccount()
			var err error
			require.NotPanics(t, func() { _, _, err = l.Record(&acct, "t1", d, t0) })
			assert.ErrorIs(t, err, ErrInvalidDraft)
			assert.Equal(t, 0, l.Len())
			assert.Equal(t, 100000.0, acct.Balance)
		})
	}
}

func TestEditRejectsNonFinite(t *testing.T) {
	t.Parallel()

	for name, d := range nonFiniteDrafts() {
		d := d
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := New(nil)
			acct := testAccount()
			orig, acct, err := l.Record(&acct, "t1", Draft{Outcome: Win, ProfitAmount: 500, Date: t0}, t0)
			require.NoError(t, err)

			require.NotPanics(t, func() { _, _, err = l.Edit(acct, "t1", d, t0) })
			assert.ErrorIs(t, err, ErrInvalidDraft)

			got, err := l.Get("t1")
			require.NoError(t, err)
			assert.Equal(t, orig, got)
		})
	}
}

func TestEditAppliesDiffAndKeepsPhase(t *testing.T) {
	t.Parallel()

	l := New(nil)
	acct := testAccount()
	_, acct, err := l.Record(&acct, "t1", Draft{Outcome: Win, ProfitAmount: 500, Date: t0}, t0)
	require.NoError(t, err)

	// The account moves on to step 2; the edited trade stays in phase 1.
	acct.CurrentStep = 2
	before := acct.Balance

	tr, updated, err := l.Edit(acct, "t1", Draft{Outcome: Loss, ProfitAmount: 200}, t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, tr.Phase)
	assert.Equal(t, -200.0, tr.ProfitAmount)
	assert.Equal(t, t0, tr.Date, "blank draft date keeps the original date")
	assert.InDelta(t, before-700, updated.Balance, 1e-9)

	got, err := l.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestEditUnknownTrade(t *testing.T) {
	t.Parallel()

	l := New(nil)
	_, _, err := l.Edit(testAccount(), "missing", Draft{}, t0)
	assert.True(t, errors.Is(err, ErrTradeNotFound))
}

func TestEditWrongAccount(t *testing.T) {
	t.Parallel()

	l := New(nil)
	acct := testAccount()
	_, _, err := l.Record(&acct, "t1", Draft{}, t0)
	require.NoError(t, err)

	other := testAccount()
	other.ID = "acct-2"
	_, _, err = l.Edit(other, "t1", Draft{}, t0)
	assert.Error(t, err)
}

func TestBalanceInvariant(t *testing.T) {
	t.Parallel()

	l := New(nil)
	acct := testAccount()
	amounts := []struct {
		o Outcome
		v float64
	}{{Win, 0.1}, {Win, 0.2}, {Loss, 0.3}, {BreakEven, 7}, {Pending, 12.5}, {Win, 1000.35}}

	for i, a := range amounts {
		var err error
		_, acct, err = l.Record(&acct, string(rune('a'+i)), Draft{Outcome: a.o, ProfitAmount: a.v}, t0)
		require.NoError(t, err)
	}

	sum := Sum(InPhase(l.Trades(), "acct-1", 1))
	assert.InDelta(t, acct.StartingBalance+sum, acct.Balance, 1e-9)
	assert.Equal(t, 101012.85, acct.Balance)
}

func TestRollDay(t *testing.T) {
	t.Parallel()

	acct := testAccount()
	acct.Balance = 101500

	assert.False(t, RollDay(&acct, t0.Add(2*time.Hour)))
	assert.Equal(t, 100000.0, acct.DailyStartingBalance)

	assert.True(t, RollDay(&acct, t0.Add(24*time.Hour)))
	assert.Equal(t, 101500.0, acct.DailyStartingBalance)
	assert.Equal(t, "2024-03-16", acct.LastResetDate)

	// A clock that runs backwards never rolls.
	assert.False(t, RollDay(&acct, t0))
}

func TestFilters(t *testing.T) {
	t.Parallel()

	trades := []Trade{
		{ID: "1", AccountID: "a", Phase: 1, Date: t0},
		{ID: "2", AccountID: "a", Phase: 2, Date: t0.Add(24 * time.Hour)},
		{ID: "3", AccountID: "b", Phase: 1, Date: t0},
		{ID: "4", AccountID: "a", Phase: 1, Date: time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)},
	}

	assert.Len(t, ForAccount(trades, "a"), 3)
	assert.Len(t, InPhase(trades, "a", 1), 2)
	today := OnDay(trades, "a", "2024-03-15")
	require.Len(t, today, 2)
	assert.Equal(t, "1", today[0].ID)
	assert.Equal(t, "4", today[1].ID)
}
