// Package api exposes the token over HTTP. The calling identity is taken
// from the X-Caller header, which the host's identity provider sets.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"TaxLedger/internal/model"
	"TaxLedger/internal/observability"
	"TaxLedger/internal/token"
)

// CallerHeader carries the identity of the caller.
const CallerHeader = "X-Caller"

type Config struct {
	Token *token.Token
	Log   *zap.Logger
	// OnLaunch, when set, runs after a successful launch.
	OnLaunch func()
}

type Server struct {
	cfg Config
	mux *http.ServeMux
	log *zap.Logger
}

func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, mux: http.NewServeMux(), log: log}

	s.mux.HandleFunc("GET /healthz", s.healthz)
	s.mux.Handle("GET /metrics", observability.Handler())

	s.mux.HandleFunc("GET /token", s.wrap(s.handleToken))
	s.mux.HandleFunc("GET /balance/{addr}", s.wrap(s.handleBalance))
	s.mux.HandleFunc("GET /allowance/{owner}/{spender}", s.wrap(s.handleAllowance))
	s.mux.HandleFunc("GET /fees", s.wrap(s.handleFees))
	s.mux.HandleFunc("GET /limits", s.wrap(s.handleLimits))
	s.mux.HandleFunc("GET /buckets", s.wrap(s.handleBuckets))

	s.mux.HandleFunc("POST /transfer", s.wrap(s.handleTransfer))
	s.mux.HandleFunc("POST /transfer-from", s.wrap(s.handleTransferFrom))
	s.mux.HandleFunc("POST /approve", s.wrap(s.handleApprove))
	s.mux.HandleFunc("POST /swap-back", s.wrap(s.handleSwapBack))

	s.mux.HandleFunc("POST /owner/buy-fees", s.wrap(s.handleBuyFees))
	s.mux.HandleFunc("POST /owner/sell-fees", s.wrap(s.handleSellFees))
	s.mux.HandleFunc("POST /owner/max-balance", s.wrap(s.handleMaxBalance))
	s.mux.HandleFunc("POST /owner/max-tx", s.wrap(s.handleMaxTx))
	s.mux.HandleFunc("POST /owner/launch", s.wrap(s.handleLaunch))
	s.mux.HandleFunc("POST /owner/fee-exempt", s.wrap(s.handleFeeExempt))
	s.mux.HandleFunc("POST /owner/limit-exempt", s.wrap(s.handleLimitExempt))
	s.mux.HandleFunc("POST /owner/liquidity-source", s.wrap(s.handleLiquiditySource))
	s.mux.HandleFunc("POST /owner/ownership", s.wrap(s.handleOwnership))
	return s
}

func (s *Server) Mux() *http.ServeMux { return s.mux }

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		sw.Header().Set("Content-Type", "application/json; charset=utf-8")
		next(sw, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("caller", r.Header.Get(CallerHeader)),
			zap.Int("status", sw.status),
			zap.Duration("took", time.Since(start)))
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

var errBadRequest = errors.New("bad request")

// statusFor maps an operation error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, model.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInsufficientBalance),
		errors.Is(err, model.ErrInsufficientAllowance),
		errors.Is(err, model.ErrFeeTooHigh),
		errors.Is(err, model.ErrLimitTooLow),
		errors.Is(err, model.ErrTransactionLimitExceeded),
		errors.Is(err, model.ErrWalletLimitExceeded),
		errors.Is(err, model.ErrAlreadyLaunched),
		errors.Is(err, model.ErrBelowSwapThreshold):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	reason := model.Reason(err)
	if errors.Is(err, errBadRequest) {
		reason = "bad_request"
	}
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Reason: reason})
}

func badRequest(msg string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errBadRequest, msg, err)
	}
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func caller(r *http.Request) (model.Address, error) {
	c := model.Address(r.Header.Get(CallerHeader))
	if c.IsZero() {
		return "", badRequest(CallerHeader+" header is required", nil)
	}
	return c, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("decode body", err)
	}
	return nil
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := model.ParseAmount(s)
	if err != nil {
		return nil, badRequest("amount", err)
	}
	return v, nil
}
