package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/ledger"
	"github.com/rustyeddy/edgetracker/phase"
	"github.com/rustyeddy/edgetracker/report"
	"github.com/rustyeddy/edgetracker/risk"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Field = verr.Field
	case errors.Is(err, ledger.ErrInvalidDraft):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrTradeNotFound), errors.Is(err, engine.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrNoActiveAccount), errors.Is(err, phase.ErrAlreadyFunded):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Request failed")
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	var ws journal.Workspace
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		ws = e.Snapshot()
		return false, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	var accounts []account.Account
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		accounts = e.Accounts()
		return false, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var cfg account.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	var created account.Account
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		a, err := e.CreateAccount(cfg)
		created = a
		return err == nil, err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	var a account.Account
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		var err error
		a, err = e.Account(chi.URLParam(r, "accountID"))
		return false, err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

type selectRequest struct {
	Tab string `json:"tab"`
}

// handleSelect selects an account and, when the body names one, the UI tab
// to restore on the next load. The body is optional.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountID")

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, "invalid request body")
		return
	}

	var ws journal.Workspace
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		if err := e.Select(id); err != nil {
			return false, err
		}
		if req.Tab != "" {
			e.SetTab(req.Tab)
		}
		ws = e.Snapshot()
		return true, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"lastActiveAccountId": ws.LastActiveAccountID,
		"lastActiveTab":       ws.LastActiveTab,
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var a account.Account
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		var err error
		a, err = e.AdvancePhase(chi.URLParam(r, "accountID"))
		return err == nil, err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var st risk.Status
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		var err error
		st, err = e.CurrentRiskStatus(chi.URLParam(r, "accountID"))
		return false, err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	phaseNum := 0
	if v := r.URL.Query().Get("phase"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > account.Funded {
			s.badRequest(w, "phase must be 1-4")
			return
		}
		phaseNum = n
	}

	var sum report.Summary
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		a, err := e.Account(chi.URLParam(r, "accountID"))
		if err != nil {
			return false, err
		}
		sum = report.Summarize(a, e.Trades(), phaseNum, s.opts.Now())
		return false, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account")
	var trades []ledger.Trade
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		trades = e.Trades()
		if accountID != "" {
			trades = ledger.ForAccount(trades, accountID)
		}
		return false, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if trades == nil {
		trades = []ledger.Trade{}
	}
	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleRecordTrade(w http.ResponseWriter, r *http.Request) {
	var d ledger.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	var res engine.Result
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		var err error
		res, err = e.RecordTrade(d)
		return err == nil, err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleEditTrade(w http.ResponseWriter, r *http.Request) {
	var d ledger.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	var res engine.Result
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		var err error
		res, err = e.EditTrade(chi.URLParam(r, "tradeID"), d)
		return err == nil, err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	var stats []report.StrategyStats
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		trades := e.Trades()
		if id := r.URL.Query().Get("account"); id != "" {
			trades = ledger.ForAccount(trades, id)
		}
		stats = report.Strategies(trades, r.URL.Query().Get("model"))
		return false, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := s.opts.Now().UTC()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := time.Parse("2006-01", v)
		if err != nil {
			s.badRequest(w, "month must be YYYY-MM")
			return
		}
		month = m
	}

	var cal report.Month
	err := s.withEngine(r.Context(), func(e *engine.Engine) (bool, error) {
		trades := e.Trades()
		if id := r.URL.Query().Get("account"); id != "" {
			trades = ledger.ForAccount(trades, id)
		}
		cal = report.Calendar(trades, month.Year(), month.Month())
		return false, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cal)
}
