package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/change-maker/internal/change"
	"github.com/eugenenazirov/change-maker/internal/drawer"
	"github.com/eugenenazirov/change-maker/internal/metrics"
	"github.com/eugenenazirov/change-maker/internal/money"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

var errCountOverflow = errors.New("tendered count is too large")

// Handler wires calculator, drawer, and money dependencies into HTTP handlers.
type Handler struct {
	calculator change.Calculator
	drawer     drawer.Drawer
	converter  money.Converter

	clock func() time.Time

	mu        sync.RWMutex
	updatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithConverter sets how decimal amounts in settle requests map to minor units.
func WithConverter(c money.Converter) HandlerOption {
	return func(h *Handler) {
		h.converter = c
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc change.Calculator, d drawer.Drawer, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		drawer:     d,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.updatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDenominations(w http.ResponseWriter, r *http.Request) {
	_ = r
	slots, err := h.drawer.Slots()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, denominationsResponse{
		Denominations: slots,
		UpdatedAt:     h.currentUpdatedAt(),
	})
}

func (h *Handler) handlePutDenominations(w http.ResponseWriter, r *http.Request) {
	var req denominationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.drawer.SetSlots(req.Denominations); err != nil {
		if errors.Is(err, drawer.ErrInvalidDenominations) {
			writeError(w, http.StatusBadRequest, "Invalid denominations", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markUpdated()

	slots, err := h.drawer.Slots()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, denominationsResponse{
		Denominations: slots,
		UpdatedAt:     h.currentUpdatedAt(),
		Message:       "Denominations updated successfully",
	})
}

func (h *Handler) handleChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	slots := req.Denominations
	if slots == nil {
		var err error
		if slots, err = h.drawer.Slots(); err != nil {
			writeInternalError(w, err)
			return
		}
	}

	result, ok := h.calculate(w, slots, req.Amount)
	if !ok {
		return
	}

	if result.Outcome == change.OutcomeInfeasible {
		writeInfeasible(w, req.Amount)
		return
	}
	writeJSON(w, http.StatusOK, newChangeResponse(req.Amount, result))
}

func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if _, err := h.converter.ToMinor(req.TotalDue); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid totalDue", err.Error())
		return
	}
	if _, err := h.converter.ToMinor(req.Paid); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid", err.Error())
		return
	}
	due, err := h.converter.ChangeDue(req.Paid, req.TotalDue)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	deposit, err := tenderedPieces(req.Tendered)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tendered", err.Error())
		return
	}

	slots, err := h.drawer.Slots()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	stocked := make(map[int64]struct{}, len(slots))
	for i := range slots {
		stocked[slots[i].Value] = struct{}{}
		n := deposit[slots[i].Value]
		if slots[i].Count > math.MaxInt64-n {
			writeError(w, http.StatusBadRequest, "Invalid tendered", fmt.Sprintf("%s: %d", errCountOverflow, slots[i].Value))
			return
		}
		slots[i].Count += n
	}
	for value := range deposit {
		if _, ok := stocked[value]; !ok {
			writeError(w, http.StatusBadRequest, "Invalid tendered", fmt.Sprintf("%s: %d", drawer.ErrUnknownDenomination, value))
			return
		}
	}

	result, ok := h.calculate(w, slots, due)
	if !ok {
		return
	}
	if result.Outcome == change.OutcomeInfeasible {
		writeInfeasible(w, due)
		return
	}

	if err := h.drawer.Apply(deposit, result.Change); err != nil {
		switch {
		case errors.Is(err, drawer.ErrUnknownDenomination), errors.Is(err, drawer.ErrInvalidDenominations):
			writeError(w, http.StatusBadRequest, "Invalid tendered", err.Error())
		case errors.Is(err, drawer.ErrInsufficientCount):
			writeError(w, http.StatusConflict, "Drawer changed", err.Error(), "Retry the settlement")
		default:
			writeInternalError(w, err)
		}
		return
	}
	h.markUpdated()

	writeJSON(w, http.StatusOK, settleResponse{
		TotalDue:       req.TotalDue,
		Paid:           req.Paid,
		ChangeDue:      h.converter.FromMinor(due),
		changeResponse: newChangeResponse(due, result),
	})
}

// calculate runs the calculator and records metrics. It writes the error
// response itself and reports false when the request cannot continue.
func (h *Handler) calculate(w http.ResponseWriter, slots []change.Slot, amount int64) (change.Result, bool) {
	start := time.Now()
	result, err := h.calculator.Calculate(slots, amount)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, change.ErrNoDenominations),
			errors.Is(err, change.ErrInvalidDenomination),
			errors.Is(err, change.ErrNegativeCount),
			errors.Is(err, change.ErrDuplicateDenomination),
			errors.Is(err, change.ErrTooManyDenominations),
			errors.Is(err, change.ErrAmountTooLarge):
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		default:
			writeInternalError(w, err)
		}
		return change.Result{}, false
	}

	metrics.RecordCalculation(string(h.calculator.Strategy()), result.Outcome.String(), result.BacktrackSteps, elapsed)
	return result, true
}

func (h *Handler) currentUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.updatedAt
}

func (h *Handler) markUpdated() {
	h.mu.Lock()
	h.updatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func tenderedPieces(tendered []change.Slot) (map[int64]int64, error) {
	out := make(map[int64]int64, len(tendered))
	for _, slot := range tendered {
		if slot.Value <= 0 {
			return nil, fmt.Errorf("%w: got %d", change.ErrInvalidDenomination, slot.Value)
		}
		if slot.Count < 0 {
			return nil, fmt.Errorf("%w: %d has count %d", change.ErrNegativeCount, slot.Value, slot.Count)
		}
		if out[slot.Value] > math.MaxInt64-slot.Count {
			return nil, fmt.Errorf("%w: %d", errCountOverflow, slot.Value)
		}
		out[slot.Value] += slot.Count
	}
	return out, nil
}

func newChangeResponse(amount int64, result change.Result) changeResponse {
	values := make([]int64, 0, len(result.Change))
	for value := range result.Change {
		values = append(values, value)
	}
	slices.Sort(values)
	slices.Reverse(values)

	pieces := make([]change.Slot, 0, len(values))
	byValue := make(map[string]int64, len(values))
	for _, value := range values {
		pieces = append(pieces, change.Slot{Value: value, Count: result.Change[value]})
		byValue[strconv.FormatInt(value, 10)] = result.Change[value]
	}

	return changeResponse{
		Amount:         amount,
		Outcome:        result.Outcome,
		Change:         byValue,
		Pieces:         pieces,
		TotalPieces:    result.Pieces(),
		BacktrackSteps: result.BacktrackSteps,
	}
}

type denominationsRequest struct {
	Denominations []change.Slot `json:"denominations"`
}

type changeRequest struct {
	Amount        int64         `json:"amount"`
	Denominations []change.Slot `json:"denominations,omitempty"`
}

type settleRequest struct {
	TotalDue decimal.Decimal `json:"totalDue"`
	Paid     decimal.Decimal `json:"paid"`
	Tendered []change.Slot   `json:"tendered,omitempty"`
}

type changeResponse struct {
	Amount         int64            `json:"amount"`
	Outcome        change.Outcome   `json:"outcome"`
	Change         map[string]int64 `json:"change"`
	Pieces         []change.Slot    `json:"pieces"`
	TotalPieces    int64            `json:"totalPieces"`
	BacktrackSteps int              `json:"backtrackSteps"`
}

type settleResponse struct {
	TotalDue  decimal.Decimal `json:"totalDue"`
	Paid      decimal.Decimal `json:"paid"`
	ChangeDue decimal.Decimal `json:"changeDue"`
	changeResponse
}

type denominationsResponse struct {
	Denominations []change.Slot `json:"denominations"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Message       string        `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInfeasible(w http.ResponseWriter, amount int64) {
	suggestion := fmt.Sprintf("Restock smaller denominations or settle %d another way", amount)
	writeError(w, http.StatusUnprocessableEntity, "Cannot make change", "no combination of available denominations matches the amount", suggestion)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
