package handler

import (
	"context"
	"net/http"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create moves money from one of the caller's accounts to another account.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(actor)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.transferUC.Transfer(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferResultFromDomain(result))
}
