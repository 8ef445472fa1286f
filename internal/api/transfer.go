package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/ledger"
)

// Amount is a pointer so an absent field can be told apart from an explicit
// zero: only the latter is accepted.
type transferRequest struct {
	FromAccount string           `json:"from_account"`
	ToAccount   string           `json:"to_account"`
	Amount      *decimal.Decimal `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	fromID, err := uuid.Parse(req.FromAccount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from_account must be a valid UUID")
		return
	}
	toID, err := uuid.Parse(req.ToAccount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to_account must be a valid UUID")
		return
	}

	err = s.ledger.Transfer(r.Context(), fromID, toID, *req.Amount)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Message: "Transfer successful"})
	case errors.Is(err, ledger.ErrSameAccount):
		writeError(w, http.StatusBadRequest, "Cannot transfer money to the same account")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "Insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "Account not found")
	default:
		s.logger.Error("transfer failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
