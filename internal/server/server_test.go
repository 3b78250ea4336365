package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/ledger"
	"github.com/rustyeddy/edgetracker/pkg/id"
	"github.com/rustyeddy/edgetracker/report"
	"github.com/rustyeddy/edgetracker/risk"
)

var testNow = time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, journal.Store) {
	t.Helper()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(Config{
		User:  "tester",
		Store: store,
		Engine: engine.Options{
			IDs:    &id.Sequence{Prefix: "id"},
			Now:    func() time.Time { return testNow },
			Logger: zerolog.Nop(),
		},
		Log: zerolog.Nop(),
	}), store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var twoStepBody = map[string]any{
	"name":               "Eval 100k",
	"type":               "2-Step",
	"startingBalance":    100000,
	"maxDrawdownPercent": 10,
	"step1":              map[string]any{"profitTarget": 8, "dailyDrawdownLimit": 5},
	"step2":              map[string]any{"profitTarget": 5, "dailyDrawdownLimit": 5},
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestCreateAccountValidation(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	body := map[string]any{"name": "Eval", "type": "3-Step", "startingBalance": 50000,
		"step1": map[string]any{"profitTarget": 8, "dailyDrawdownLimit": 5}}

	rec := do(t, s, http.MethodPost, "/api/accounts", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "step2", resp.Field)

	rec = do(t, s, http.MethodGet, "/api/accounts", nil)
	assert.Empty(t, decode[[]account.Account](t, rec))
}

func TestRecordTradeWithoutAccount(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/trades", map[string]any{"outcome": "win", "profitAmount": 10})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEvaluationFlow(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/accounts", twoStepBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	acct := decode[account.Account](t, rec)
	assert.Equal(t, account.TwoStep, acct.Type)
	assert.Equal(t, 1, acct.CurrentStep)

	rec = do(t, s, http.MethodPost, "/api/trades", map[string]any{"symbol": "eurusd", "strategy": "ICT", "entryModel": "FVG", "outcome": "win", "profitAmount": 5000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[engine.Result](t, rec)
	assert.Nil(t, first.PhasePassed)
	assert.Equal(t, "EURUSD", first.Trade.Symbol)

	rec = do(t, s, http.MethodPost, "/api/trades", map[string]any{"accountId": acct.ID, "outcome": "loss", "profitAmount": 1000})
	require.Equal(t, http.StatusCreated, rec.Code)
	lossRes := decode[engine.Result](t, rec)
	assert.Equal(t, -1000.0, lossRes.Trade.ProfitAmount)

	rec = do(t, s, http.MethodPut, "/api/trades/"+lossRes.Trade.ID, map[string]any{"outcome": "win", "profitAmount": 3000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decode[engine.Result](t, rec)
	assert.Equal(t, 108000.0, edited.Account.Balance)
	assert.Nil(t, edited.PhasePassed, "edits do not trigger phase evaluation")

	rec = do(t, s, http.MethodPost, "/api/trades", map[string]any{"outcome": "win", "profitAmount": 100})
	require.Equal(t, http.StatusCreated, rec.Code)
	passed := decode[engine.Result](t, rec)
	require.NotNil(t, passed.PhasePassed)
	assert.Equal(t, 1, passed.PhasePassed.Step)
	assert.Equal(t, 1, passed.Account.LastPassedStep)

	rec = do(t, s, http.MethodGet, "/api/accounts/"+acct.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[report.Summary](t, rec)
	assert.True(t, sum.CanAdvance)
	assert.Equal(t, 3, sum.Trades)

	rec = do(t, s, http.MethodPost, "/api/accounts/"+acct.ID+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	advanced := decode[account.Account](t, rec)
	assert.Equal(t, 2, advanced.CurrentStep)
	assert.Equal(t, 100000.0, advanced.Balance)

	rec = do(t, s, http.MethodGet, "/api/accounts/"+acct.ID+"/risk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[risk.Status](t, rec)
	assert.Equal(t, 3, st.TradesToday)
	assert.Equal(t, risk.None, st.Severity)

	ws, err := store.Load(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, ws.Accounts, 1)
	assert.Equal(t, 2, ws.Accounts[0].CurrentStep)
	assert.Len(t, ws.Trades, 3)
	assert.Equal(t, acct.ID, ws.LastActiveAccountID)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/accounts", twoStepBody).Code)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/api/trades/missing", map[string]any{"outcome": "win"}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/accounts/missing/advance", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/accounts/missing/risk", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/accounts/missing/select", nil).Code)
}

func TestSelectStoresTab(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	first := decode[account.Account](t, do(t, s, http.MethodPost, "/api/accounts", twoStepBody))
	second := decode[account.Account](t, do(t, s, http.MethodPost, "/api/accounts", twoStepBody))

	rec := do(t, s, http.MethodPost, "/api/accounts/"+second.ID+"/select", map[string]string{"tab": "journal"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[map[string]string](t, rec)
	assert.Equal(t, second.ID, got["lastActiveAccountId"])
	assert.Equal(t, "journal", got["lastActiveTab"])

	// Without a body the stored tab is kept.
	rec = do(t, s, http.MethodPost, "/api/accounts/"+first.ID+"/select", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ws, err := store.Load(context.Background(), "tester")
	require.NoError(t, err)
	assert.Equal(t, first.ID, ws.LastActiveAccountID)
	assert.Equal(t, "journal", ws.LastActiveTab)
}

func TestInvalidDraftIsBadRequest(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.writeError(rec, fmt.Errorf("record trade: %w", ledger.ErrInvalidDraft))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdvanceFundedConflict(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	body := map[string]any{"name": "Instant", "type": "Instant", "startingBalance": 10000,
		"step1": map[string]any{"profitTarget": 10, "dailyDrawdownLimit": 5}}
	rec := do(t, s, http.MethodPost, "/api/accounts", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	acct := decode[account.Account](t, rec)

	rec = do(t, s, http.MethodPost, "/api/accounts/"+acct.ID+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[account.Account](t, rec).IsFunded)

	rec = do(t, s, http.MethodPost, "/api/accounts/"+acct.ID+"/advance", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReports(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/accounts", twoStepBody).Code)
	for _, d := range []map[string]any{
		{"strategy": "ICT", "entryModel": "FVG", "outcome": "win", "profitAmount": 400},
		{"strategy": "ICT", "entryModel": "OB", "outcome": "loss", "profitAmount": 200},
	} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/trades", d).Code)
	}

	rec := do(t, s, http.MethodGet, "/api/reports/strategies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]report.StrategyStats](t, rec)
	require.Len(t, stats, 2)
	assert.Equal(t, "FVG", stats[0].EntryModel)

	rec = do(t, s, http.MethodGet, "/api/reports/strategies?model=OB", nil)
	assert.Len(t, decode[[]report.StrategyStats](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/reports/calendar?month=2024-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[report.Month](t, rec)
	assert.Equal(t, 2, cal.Trades)
	assert.InDelta(t, 200.0, cal.PnL, 1e-9)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/reports/calendar?month=May", nil).Code)

	rec = do(t, s, http.MethodGet, "/api/trades", nil)
	assert.Len(t, decode[[]ledger.Trade](t, rec), 2)
	rec = do(t, s, http.MethodGet, "/api/trades?account=other", nil)
	assert.Empty(t, decode[[]ledger.Trade](t, rec))
}
