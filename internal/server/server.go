// Package server exposes the loan cost calculator and the fee schedule store
// over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/loan-cost/internal/feestore"
	"github.com/iwvelando/loan-cost/internal/quotecache"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"go.uber.org/zap"
)

// Dependencies are the services the handlers delegate to.
type Dependencies struct {
	Calculator *quotecache.CachedCalculator
	// Fees holds effective-dated fee schedules. When nil, or when no version
	// is in force on a loan's start date, DefaultFees is used.
	Fees        feestore.Store
	DefaultFees loans.FeeConfig
}

type handler struct {
	logger      *zap.Logger
	deps        Dependencies
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler serving the quote and fee APIs.
func NewHandler(logger *zap.Logger, deps Dependencies, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.Calculator == nil {
		deps.Calculator = quotecache.NewCachedCalculator(logger, loans.NewCalculator(logger, loans.Limits{}), nil, "", 0)
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		deps:        deps,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Quote-Cache"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Post("/quote", h.handleQuote)
		r.Route("/fees", func(r chi.Router) {
			r.Get("/", h.handleListFees)
			r.Post("/", h.handleCreateFees)
			r.Get("/effective", h.handleEffectiveFees)
		})
	})

	return r
}

// requestLogger logs one line per request with the chi request ID.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request served",
				zap.String("op", "server.requestLogger"),
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// decodeBody reads a JSON body no larger than the configured limit.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to decode request: %w", err)
	}
	return 0, nil
}

// respondCalcError maps domain errors onto HTTP statuses.
func (h *handler) respondCalcError(w http.ResponseWriter, err error, op string) {
	var validationErr *loans.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.respondErrorWithField(w, http.StatusBadRequest, err.Error(), validationErr.Field, op)
	case errors.Is(err, feestore.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	case errors.Is(err, feestore.ErrDuplicateEffectiveDate):
		h.respondErrorWithOp(w, http.StatusConflict, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.respondErrorWithField(w, status, msg, "", op)
}

func (h *handler) respondErrorWithField(w http.ResponseWriter, status int, msg, field, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
