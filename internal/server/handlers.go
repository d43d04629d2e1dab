package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Investaur/internal/calculator"
	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/paper"
	"Investaur/internal/portfolio"
	"Investaur/internal/recorder"
	"Investaur/internal/screener"
	"Investaur/internal/watchlist"
)

type errorBody struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	s.writeJSON(w, status, errorBody{Kind: kind, Message: msg})
}

// writeProviderError maps data-layer errors to HTTP statuses.
func (s *Server) writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collector.ErrInvalidRequest):
		s.writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
	case errors.Is(err, collector.ErrNoData):
		s.writeError(w, http.StatusNotFound, "NoData", err.Error())
	case errors.Is(err, calculator.ErrInsufficientData):
		s.writeError(w, http.StatusUnprocessableEntity, "InsufficientData", err.Error())
	case collector.Unavailable(err):
		s.writeError(w, http.StatusBadGateway, "ProviderUnavailable", err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "Internal", err.Error())
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": s.state.Provider.Name()})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = collector.DefaultAnalysisPeriod
	}
	a, err := s.state.Collector.Analyze(r.Context(), chi.URLParam(r, "symbol"), period)
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	f, err := s.state.Provider.Fundamentals(r.Context(), portfolio.Normalize(chi.URLParam(r, "symbol")))
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state.PortfolioSnapshot(r.Context()))
}

type addHoldingRequest struct {
	Ticker   string  `json:"ticker"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
	Date     string  `json:"date"`
}

func (s *Server) handlePortfolioAdd(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	if !s.decode(w, r, &req) {
		return
	}
	var (
		h   model.Holding
		err error
	)
	s.state.WithPortfolio(func(l *portfolio.Ledger) {
		h, err = l.Add(req.Ticker, req.Shares, req.AvgPrice, req.Date)
	})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, string(paper.InvalidInput), err.Error())
		return
	}
	s.log.Info("holding added", zap.String("ticker", h.Ticker), zap.Float64("shares", h.Shares))
	s.writeJSON(w, http.StatusOK, h)
}

func (s *Server) handlePortfolioRemove(w http.ResponseWriter, r *http.Request) {
	s.state.WithPortfolio(func(l *portfolio.Ledger) { l.Remove(chi.URLParam(r, "ticker")) })
	w.WriteHeader(http.StatusNoContent)
}

type historyResponse struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}
	if err := collector.ValidatePeriod(period, "1d"); err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	resp := historyResponse{Dates: []string{}, Values: []float64{}}
	s.state.WithPortfolio(func(l *portfolio.Ledger) {
		dates, values := l.HistoricalValues(r.Context(), period)
		for i, d := range dates {
			resp.Dates = append(resp.Dates, d.Format(portfolio.DateLayout))
			resp.Values = append(resp.Values, values[i])
		}
	})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	var rep portfolio.DividendReport
	s.state.WithPortfolio(func(l *portfolio.Ledger) { rep = l.Dividends(r.Context()) })
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state.PaperValuation(r.Context()))
}

type tradeRequest struct {
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares"`
}

func (s *Server) handlePaperBuy(w http.ResponseWriter, r *http.Request) {
	s.trade(w, r, model.ActionBuy)
}

func (s *Server) handlePaperSell(w http.ResponseWriter, r *http.Request) {
	s.trade(w, r, model.ActionSell)
}

func (s *Server) trade(w http.ResponseWriter, r *http.Request, action model.TradeAction) {
	var req tradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.state.Trade(r.Context(), action, req.Ticker, req.Shares)
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	s.writeResult(w, res)
}

func (s *Server) writeResult(w http.ResponseWriter, res paper.Result) {
	if !res.OK {
		s.writeError(w, http.StatusUnprocessableEntity, string(res.Kind), res.Message)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePaperReset(w http.ResponseWriter, r *http.Request) {
	s.state.WithPaper(func(a *paper.Account) { a.Reset() })
	s.log.Info("paper account reset")
	s.writeJSON(w, http.StatusOK, paper.Result{OK: true, Message: "Paper account reset."})
}

type cashRequest struct {
	Cash float64 `json:"cash"`
}

func (s *Server) handlePaperCash(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if !s.decode(w, r, &req) {
		return
	}
	var res paper.Result
	s.state.WithPaper(func(a *paper.Account) { res = a.SetCash(req.Cash) })
	s.writeResult(w, res)
}

func (s *Server) handlePaperHistory(w http.ResponseWriter, r *http.Request) {
	var hist []model.TradeRecord
	s.state.WithPaper(func(a *paper.Account) { hist = a.History() })
	if hist == nil {
		hist = []model.TradeRecord{}
	}
	s.writeJSON(w, http.StatusOK, hist)
}

type watchlistResponse struct {
	Symbols    []string                   `json:"symbols"`
	Sentiments map[string]model.Sentiment `json:"sentiments"`
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, watchlistResponse{Symbols: s.state.WatchSymbols(), Sentiments: s.state.Sentiments()})
}

type symbolRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if !s.decode(w, r, &req) {
		return
	}
	sym := portfolio.Normalize(req.Symbol)
	if sym == "" {
		s.writeError(w, http.StatusUnprocessableEntity, string(paper.InvalidInput), "symbol is required")
		return
	}
	var added bool
	s.state.WithWatchlist(func(wl *watchlist.Watchlist) { added = wl.Add(sym) })
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, watchlistResponse{Symbols: s.state.WatchSymbols(), Sentiments: s.state.Sentiments()})
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	sym := portfolio.Normalize(chi.URLParam(r, "symbol"))
	var removed bool
	s.state.WithWatchlist(func(wl *watchlist.Watchlist) { removed = wl.Remove(sym) })
	if !removed {
		s.writeError(w, http.StatusNotFound, "NotWatched", sym+" is not on the watchlist")
		return
	}
	s.state.dropSentiment(sym)
	w.WriteHeader(http.StatusNoContent)
}

type marketsResponse struct {
	Markets []collector.MarketRow  `json:"markets"`
	Sectors []collector.SectorMove `json:"sectors"`
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	log := s.log.Named("markets")
	s.writeJSON(w, http.StatusOK, marketsResponse{
		Markets: collector.MarketOverview(r.Context(), s.state.Provider, collector.MarketSymbols, log),
		Sectors: collector.SectorMoves(r.Context(), s.state.Provider, collector.SectorSymbols, log),
	})
}

type screenerRequest struct {
	Universe string           `json:"universe"`
	Filters  screener.Filters `json:"filters"`
	Sort     string           `json:"sort"`
}

func (s *Server) handleScreener(w http.ResponseWriter, r *http.Request) {
	var req screenerRequest
	if !s.decode(w, r, &req) {
		return
	}
	symbols, err := screener.Symbols(req.Universe, s.state.PortfolioTickers(), s.state.WatchSymbols())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	rows, err := s.state.Screener.Run(r.Context(), symbols, req.Filters, req.Universe == screener.UniverseCrypto)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	if req.Sort != "" {
		if err := screener.Sort(rows, req.Sort); err != nil {
			s.writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
			return
		}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account != recorder.AccountPaper && account != recorder.AccountPortfolio {
		s.writeError(w, http.StatusNotFound, "NotFound", "unknown account "+account)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "BadRequest", "limit must be a positive integer")
			return
		}
		limit = n
	}
	vals, err := s.state.Recorder.Valuations(account, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	trades, err := s.state.Recorder.Trades(account, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	if vals == nil {
		vals = []recorder.ValuationEvent{}
	}
	if trades == nil {
		trades = []model.TradeRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"valuations": vals, "trades": trades})
}
