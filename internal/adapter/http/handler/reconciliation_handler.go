package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID uuid.UUID) (*usecase.ReconciliationResult, error)
}

// ReconciliationHandler exposes balance-versus-entries checks.
type ReconciliationHandler struct {
	accountUC AccountService
	reconUC   ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(accountUC AccountService, reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{accountUC: accountUC, reconUC: reconUC}
}

// ReconcileAccount checks one of the caller's accounts.
func (h *ReconciliationHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.accountUC.GetAccount(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.reconUC.ReconcileAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
