package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	marketplaceprogram "metamarket/contexts/finance-core/marketplace-program"
	programerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	programhttp "metamarket/contexts/finance-core/marketplace-program/transport/http"
	"metamarket/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "metamarket/internal/platform/httpserver/docs"
)

// maxRequestBody caps instruction and allocation payloads.
const maxRequestBody = 1 << 20

type Options struct {
	Addr          string
	Metrics       *metrics.Metrics
	Limiter       *RateLimiter
	EnableSwagger bool
}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	program marketplaceprogram.Module
	metrics *metrics.Metrics
	limiter *RateLimiter
	swagger bool
}

func New(program marketplaceprogram.Module, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    opts.Addr,
		program: program,
		metrics: opts.Metrics,
		limiter: opts.Limiter,
		swagger: opts.EnableSwagger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	if s.swagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.handle("GET /healthz", s.handleHealth)

	s.handle("POST /v1/instructions", s.rateLimited(s.handleSubmitInstruction))
	s.handle("POST /v1/accounts", s.handleCreateAccount)
	s.handle("GET /v1/marketplaces/{address}", s.handleGetMarketplace)
	s.handle("GET /v1/modules/{address}", s.handleGetModule)
	s.handle("GET /v1/mints/{address}", s.handleGetMint)
	s.handle("GET /v1/revenue-accounts/{address}", s.handleGetRevenueAccount)
	s.handle("GET /v1/ledger/accounts/{address}", s.handleGetBalance)
}

// handle registers a route and counts its responses under the route pattern.
func (s *Server) handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r)
		s.metrics.ObserveHTTP(r.Method, pattern, rec.status)
	})
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := s.limiter.clientKey(r)
		if !s.limiter.Allow(key) {
			s.metrics.RateLimited()
			s.logger.Warn("submit rate limit exceeded",
				"event", "http_rate_limit_exceeded",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"client", key,
				"path", r.URL.Path,
			)
			writeProgramError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmitInstruction(w http.ResponseWriter, r *http.Request) {
	var req programhttp.SubmitInstructionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeProgramError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.program.Handler.SubmitInstructionHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		r.Header.Get("X-Request-Id"),
		req,
	)
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req programhttp.CreateAccountRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeProgramError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.program.Handler.CreateAccountHandler(r.Context(), req)
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetMarketplace(w http.ResponseWriter, r *http.Request) {
	resp, err := s.program.Handler.GetMarketplaceHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	resp, err := s.program.Handler.GetModuleHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMint(w http.ResponseWriter, r *http.Request) {
	resp, err := s.program.Handler.GetMintHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRevenueAccount(w http.ResponseWriter, r *http.Request) {
	resp, err := s.program.Handler.GetRevenueAccountHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.program.Handler.GetBalanceHandler(r.Context(), r.PathValue("address"))
	if err != nil {
		writeProgramDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeProgramDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, programerrors.ErrMalformedInstruction):
		writeProgramError(w, http.StatusBadRequest, "malformed_instruction", err.Error())
	case errors.Is(err, programerrors.ErrInvalidPubkey):
		writeProgramError(w, http.StatusBadRequest, "invalid_pubkey", err.Error())
	case errors.Is(err, programerrors.ErrInvalidFeePercentage):
		writeProgramError(w, http.StatusBadRequest, "invalid_fee_percentage", err.Error())
	case errors.Is(err, programerrors.ErrInvalidPrice):
		writeProgramError(w, http.StatusBadRequest, "invalid_price", err.Error())
	case errors.Is(err, programerrors.ErrInvalidAmount):
		writeProgramError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, programerrors.ErrInvalidAccountData):
		writeProgramError(w, http.StatusBadRequest, "invalid_account_data", err.Error())
	case errors.Is(err, programerrors.ErrMissingSignature):
		writeProgramError(w, http.StatusUnauthorized, "missing_signature", err.Error())
	case errors.Is(err, programerrors.ErrWrongOwner):
		writeProgramError(w, http.StatusForbidden, "wrong_owner", err.Error())
	case errors.Is(err, programerrors.ErrUnauthorized):
		writeProgramError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, programerrors.ErrAccountNotFound):
		writeProgramError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, programerrors.ErrAlreadyInitialized):
		writeProgramError(w, http.StatusConflict, "already_initialized", err.Error())
	case errors.Is(err, programerrors.ErrAccountExists):
		writeProgramError(w, http.StatusConflict, "account_exists", err.Error())
	case errors.Is(err, programerrors.ErrConcurrentModification):
		writeProgramError(w, http.StatusConflict, "concurrent_modification", err.Error())
	case errors.Is(err, programerrors.ErrIdempotencyKeyConflict):
		writeProgramError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, programerrors.ErrUninitialized):
		writeProgramError(w, http.StatusUnprocessableEntity, "uninitialized", err.Error())
	case errors.Is(err, programerrors.ErrInsufficientFunds):
		writeProgramError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, programerrors.ErrArithmeticOverflow):
		writeProgramError(w, http.StatusUnprocessableEntity, "arithmetic_overflow", err.Error())
	case errors.Is(err, programerrors.ErrRentExemptionViolation):
		writeProgramError(w, http.StatusUnprocessableEntity, "rent_exemption_violation", err.Error())
	default:
		writeProgramError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeProgramError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, programhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
