package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlearn/papertrade/internal/ledger"
)

type tradeRequest struct {
	Symbol         string           `json:"symbol"`
	Side           string           `json:"side"`
	Kind           string           `json:"kind"`
	Quantity       int64            `json:"quantity"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	StopPrice      *decimal.Decimal `json:"stop_price,omitempty"`
	IdempotencyKey string           `json:"idempotency_key,omitempty"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "UNHEALTHY", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	portfolio, err := s.ledger.EnsurePortfolio(userID)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	view, err := s.ledger.GetPortfolio(r.Context(), userID)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	positions, err := s.ledger.GetPositions(r.Context(), userID)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleExecuteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Error: "invalid JSON body"})
		return
	}

	order, err := buildOrder(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Error: err.Error()})
		return
	}

	requestID := uuid.NewString()
	s.logger.Info("trade request",
		"request_id", requestID, "user_id", userID,
		"symbol", order.Symbol, "side", order.Side, "kind", order.Kind, "quantity", order.Quantity)

	trade, err := s.ledger.ExecuteTrade(r.Context(), userID, order)
	if err != nil {
		s.logger.Info("trade rejected", "request_id", requestID, "error", err)
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleTradeHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	page := intQuery(r, "page", 1)
	limit := intQuery(r, "limit", 20)

	history, err := s.ledger.GetTradeHistory(userID, page, limit)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	if !s.advisor.Enabled() {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Code: "DISABLED", Error: "advisor is not configured"})
		return
	}

	view, err := s.ledger.GetPortfolio(r.Context(), userID)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	insights, err := s.advisor.Review(r.Context(), view)
	if err != nil {
		s.logger.Error("advisor review failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "ADVISOR_FAILED", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// buildOrder validates the payload into the closed order variant before it
// can reach the ledger.
func buildOrder(req tradeRequest) (ledger.Order, error) {
	if req.Symbol == "" {
		return ledger.Order{}, errors.New("symbol is required")
	}
	side, err := ledger.ParseSide(req.Side)
	if err != nil {
		return ledger.Order{}, err
	}
	kind, err := ledger.ParseKind(req.Kind)
	if err != nil {
		return ledger.Order{}, err
	}

	order := ledger.Order{
		Symbol:         req.Symbol,
		Side:           side,
		Kind:           kind,
		Quantity:       req.Quantity,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Price != nil {
		order.Price = *req.Price
	}
	if req.StopPrice != nil {
		order.StopPrice = *req.StopPrice
	}
	return order, nil
}

// userID reads caller identity established by the auth layer in front of
// this service.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHENTICATED", Error: "missing X-User-ID header"})
		return "", false
	}
	return userID, true
}

func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	code := ledger.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case ledger.CodeNotFound:
		status = http.StatusNotFound
	case ledger.CodeValidationRejected:
		status = http.StatusUnprocessableEntity
	case ledger.CodeInsufficientHoldings:
		status = http.StatusConflict
	case ledger.CodeExternalUnavailable:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
