package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/ledger"
	"github.com/MuhammadMagdy7/money-transfer/internal/models"
)

const maxImportSize = 10 << 20 // 10 MiB

type importResponse struct {
	Message  string           `json:"message"`
	Accounts []models.Account `json:"accounts"`
}

// handleImportCSV bulk-creates accounts from a multipart CSV upload with
// header columns ID, Name, Balance. Rows are inserted one by one; a bad row
// aborts the import but rows created before it stay.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		writeError(w, http.StatusBadRequest, "empty or unreadable CSV file")
		return
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"ID", "Name", "Balance"} {
		if _, ok := cols[required]; !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing required column %q", required))
			return
		}
	}

	var created []models.Account
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id, err := uuid.Parse(row[cols["ID"]])
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid UUID format: %v", err))
			return
		}
		balance, err := decimal.NewFromString(row[cols["Balance"]])
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid balance for account %s: %v", id, err))
			return
		}
		if err := ledger.ValidateAmount(balance); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid balance for account %s: %v", id, err))
			return
		}

		acct, err := s.store.CreateAccount(r.Context(), models.Account{
			ID:      id,
			Name:    row[cols["Name"]],
			Balance: balance,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created = append(created, acct)
	}

	if created == nil {
		created = []models.Account{}
	}
	writeJSON(w, http.StatusCreated, importResponse{
		Message:  fmt.Sprintf("Successfully imported %d accounts", len(created)),
		Accounts: created,
	})
}
