package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"payout/internal/domain"
	"payout/internal/port"
)

type WithdrawalHandler struct {
	orchestrator port.WebhookOrchestrator
	lifecycle    port.WithdrawalLifecycle
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewWithdrawalHandler(orchestrator port.WebhookOrchestrator, lifecycle port.WithdrawalLifecycle, logger *zap.Logger) *WithdrawalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WithdrawalHandler{
		orchestrator: orchestrator,
		lifecycle:    lifecycle,
		validate:     validator.New(),
		logger:       logger,
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *WithdrawalHandler) HandlePayoutWebhook(w http.ResponseWriter, r *http.Request) {
	var payload domain.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orchestrator.ProcessPayoutWebhook(r.Context(), &payload); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WithdrawalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.lifecycle.GetWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
	}

	withdrawal, err := h.lifecycle.CancelWithdrawal(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.lifecycle.RefundWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) writeDomainError(w http.ResponseWriter, err error) {
	var (
		invalidTransition *domain.InvalidTransitionError
		unknownEvent      *domain.UnknownWebhookEventError
	)

	switch {
	case errors.Is(err, domain.ErrWebhookSecretMissing),
		errors.Is(err, domain.ErrMissingWebhookSignature),
		errors.Is(err, domain.ErrInvalidWebhookSignature):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrWithdrawalNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest), errors.As(err, &unknownEvent):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidTransition):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *WithdrawalHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *WithdrawalHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response failed", zap.Error(err))
	}
}
