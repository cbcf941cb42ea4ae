package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nbu-currency/internal/apperrors"
	"nbu-currency/internal/domain/model"
	"nbu-currency/internal/domain/ports"
	"nbu-currency/internal/metrics"
	"nbu-currency/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type rateQuery struct {
	From string `validate:"required,len=3,alpha"`
	To   string `validate:"required,len=3,alpha"`
}

type convertQuery struct {
	From   string `validate:"required,len=3,alpha"`
	To     string `validate:"required,len=3,alpha"`
	Amount string `validate:"required,numeric"`
}

type RateResponse struct {
	From        model.Currency `json:"from"`
	To          model.Currency `json:"to"`
	Rate        string         `json:"rate"`
	LastUpdated *time.Time     `json:"last_updated,omitempty"`
	RatesAsOf   *time.Time     `json:"rates_as_of,omitempty"`
}

type ConversionResponse struct {
	From   model.Currency `json:"from"`
	To     model.Currency `json:"to"`
	Amount int64          `json:"amount"`
	Result int64          `json:"result"`
}

type StatusResponse struct {
	Updated     bool       `json:"updated"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	RatesAsOf   *time.Time `json:"rates_as_of,omitempty"`
}

type Handler struct {
	service  ports.BankService
	log      *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func NewHandler(service ports.BankService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		log:      log,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// GetRatesHandler returns the rate for a pair, or the whole table when no
// pair is given.
func (h *Handler) GetRatesHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RateRequestsTotal.Inc()

	q := rateQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	if q.From == "" && q.To == "" {
		h.sendSuccessResponse(w, h.service.Snapshot())
		return
	}

	if err := h.validate.Struct(q); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid parameters: from and to must be 3-letter currency codes")
		return
	}

	rate, err := h.service.Rate(q.From, q.To)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	lastUpdated, asOf := h.timestamps()
	h.sendSuccessResponse(w, RateResponse{
		From:        model.ParseCurrency(q.From),
		To:          model.ParseCurrency(q.To),
		Rate:        rate.String(),
		LastUpdated: lastUpdated,
		RatesAsOf:   asOf,
	})
}

// ConvertCurrencyHandler converts an amount given in minor units.
func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	q := convertQuery{
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Amount: r.URL.Query().Get("amount"),
	}

	if err := h.validate.Struct(q); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid parameters: from, to and an integer amount are required")
		return
	}

	amount, err := strconv.ParseInt(q.Amount, 10, 64)
	if err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
		return
	}

	result, err := h.service.Convert(amount, q.From, q.To)
	h.metrics.ObserveConversion(err)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, ConversionResponse{
		From:   model.ParseCurrency(q.From),
		To:     model.ParseCurrency(q.To),
		Amount: amount,
		Result: result,
	})
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	lastUpdated, asOf := h.timestamps()
	h.sendSuccessResponse(w, StatusResponse{
		Updated:     lastUpdated != nil,
		LastUpdated: lastUpdated,
		RatesAsOf:   asOf,
	})
}

// RefreshHandler reloads the rate table from the feed.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	err := h.service.RefreshRates(r.Context())
	lastUpdated, asOf := h.timestamps()

	if err != nil {
		h.metrics.ObserveRefresh(err, time.Time{}, time.Time{})
		h.handleServiceError(w, err)
		return
	}
	h.metrics.ObserveRefresh(nil, *lastUpdated, *asOf)

	h.sendSuccessResponse(w, StatusResponse{
		Updated:     true,
		LastUpdated: lastUpdated,
		RatesAsOf:   asOf,
	})
}

// timestamps reads both update times from one snapshot so they always
// belong to the same update. Both are nil before the first update.
func (h *Handler) timestamps() (*time.Time, *time.Time) {
	snap := h.service.Snapshot()
	if snap.LastUpdated.IsZero() {
		return nil, nil
	}
	return &snap.LastUpdated, &snap.RatesAsOf
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, apperrors.ErrUnknownCurrency):
		statusCode = http.StatusBadRequest
		errorMessage = "unknown currency"
	case errors.Is(err, apperrors.ErrRateUnavailable):
		statusCode = http.StatusNotFound
		errorMessage = "exchange rate not available"
	case errors.Is(err, apperrors.ErrValidation):
		statusCode = http.StatusUnprocessableEntity
		errorMessage = "rate feed failed validation"
	case errors.Is(err, apperrors.ErrParse):
		statusCode = http.StatusBadGateway
		errorMessage = "rate feed could not be parsed"
	case errors.Is(err, apperrors.ErrFetch):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "rate feed unavailable"
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, errorMessage)
}
