package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/iwvelando/loan-cost/internal/feestore"
	"github.com/iwvelando/loan-cost/pkg/datetime"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/iwvelando/loan-cost/pkg/output"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// quoteRequest accepts money as JSON strings or numbers; strings avoid any
// float rounding on the client side.
type quoteRequest struct {
	Principal   decimal.Decimal `json:"principal"`
	TermDays    int             `json:"termDays"`
	StartDate   string          `json:"startDate"`
	MonthlyRate decimal.Decimal `json:"monthlyRate"`
	SalaryDay   *int            `json:"salaryDay,omitempty"`
}

type quoteResponse struct {
	output.View
	FeeSchedule *feeScheduleRef `json:"feeSchedule,omitempty"`
}

type feeScheduleRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	EffectiveFrom string `json:"effectiveFrom"`
}

type feeScheduleRequest struct {
	Name          string          `json:"name"`
	EffectiveFrom string          `json:"effectiveFrom"`
	Fees          loans.FeeConfig `json:"fees"`
}

type feeScheduleResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	EffectiveFrom string          `json:"effectiveFrom"`
	Fees          loans.FeeConfig `json:"fees"`
	CreatedAt     string          `json:"createdAt"`
}

func newFeeScheduleResponse(s feestore.Schedule) feeScheduleResponse {
	return feeScheduleResponse{
		ID:            s.ID,
		Name:          s.Name,
		EffectiveFrom: s.EffectiveFrom.String(),
		Fees:          s.Fees,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuote"

	var req quoteRequest
	if status, err := h.decodeBody(w, r, &req); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	start, err := datetime.ParseDate(req.StartDate)
	if err != nil {
		h.respondErrorWithField(w, http.StatusBadRequest, err.Error(), "startDate", op)
		return
	}

	terms := loans.LoanTerms{
		Principal:   req.Principal,
		TermDays:    req.TermDays,
		StartDate:   start,
		MonthlyRate: req.MonthlyRate,
		SalaryDay:   req.SalaryDay,
	}

	fees, sched, err := h.feesFor(r.Context(), start)
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	summary, hit, err := h.deps.Calculator.Calculate(r.Context(), terms, fees)
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	resp := quoteResponse{View: output.NewView(summary)}
	if sched != nil {
		resp.FeeSchedule = &feeScheduleRef{
			ID:            sched.ID,
			Name:          sched.Name,
			EffectiveFrom: sched.EffectiveFrom.String(),
		}
	}

	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set("X-Quote-Cache", cacheStatus)

	h.logger.Debug("quote computed",
		zap.String("op", op),
		zap.String("totalRepayment", resp.TotalRepayment),
		zap.Int("installments", resp.NumberOfRepayments),
		zap.Bool("cached", hit),
	)

	h.writeJSON(w, http.StatusOK, resp)
}

// feesFor picks the fee schedule in force on date, falling back to the
// configured fees when the store has none.
func (h *handler) feesFor(ctx context.Context, date civil.Date) (loans.FeeConfig, *feestore.Schedule, error) {
	if h.deps.Fees == nil {
		return h.deps.DefaultFees, nil, nil
	}

	sched, err := h.deps.Fees.EffectiveAt(ctx, date)
	if errors.Is(err, feestore.ErrNotFound) {
		return h.deps.DefaultFees, nil, nil
	}
	if err != nil {
		return loans.FeeConfig{}, nil, fmt.Errorf("failed to resolve fee schedule: %w", err)
	}
	return sched.Fees, &sched, nil
}

func (h *handler) handleListFees(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListFees"

	if h.deps.Fees == nil {
		h.writeJSON(w, http.StatusOK, []feeScheduleResponse{})
		return
	}

	schedules, err := h.deps.Fees.List(r.Context())
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	out := make([]feeScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, newFeeScheduleResponse(s))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleEffectiveFees(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEffectiveFees"

	date, err := datetime.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.respondErrorWithField(w, http.StatusBadRequest, err.Error(), "date", op)
		return
	}
	if h.deps.Fees == nil {
		h.respondCalcError(w, feestore.ErrNotFound, op)
		return
	}

	sched, err := h.deps.Fees.EffectiveAt(r.Context(), date)
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, newFeeScheduleResponse(sched))
}

func (h *handler) handleCreateFees(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateFees"

	if h.deps.Fees == nil {
		h.respondErrorWithOp(w, http.StatusNotImplemented, "no fee store configured", op)
		return
	}

	var req feeScheduleRequest
	if status, err := h.decodeBody(w, r, &req); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	effective, err := datetime.ParseDate(req.EffectiveFrom)
	if err != nil {
		h.respondErrorWithField(w, http.StatusBadRequest, err.Error(), "effectiveFrom", op)
		return
	}

	saved, err := h.deps.Fees.Put(r.Context(), feestore.Schedule{
		Name:          req.Name,
		EffectiveFrom: effective,
		Fees:          req.Fees,
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	h.logger.Info("fee schedule registered",
		zap.String("op", op),
		zap.String("id", saved.ID),
		zap.String("effectiveFrom", saved.EffectiveFrom.String()),
	)
	h.writeJSON(w, http.StatusCreated, newFeeScheduleResponse(saved))
}
