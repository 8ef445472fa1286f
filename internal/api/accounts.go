package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/ledger"
	"github.com/MuhammadMagdy7/money-transfer/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Balance is a pointer so an absent field can be told apart from an explicit
// zero: create and update both require it.
type accountRequest struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance"`
}

type pageLinks struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

type listResponse struct {
	Links       pageLinks        `json:"links"`
	Count       int              `json:"count"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
	Results     []models.Account `json:"results"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page := 1
	if raw := params.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusNotFound, "Invalid page.")
			return
		}
		page = n
	}

	pageSize := defaultPageSize
	if raw := params.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		pageSize = n
	}

	ordering := params.Get("ordering")
	if ordering == "" {
		ordering = "-id"
	}

	q := interfaces.ListQuery{
		Search:   params.Get("search"),
		Ordering: ordering,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}

	var err error
	if q.MinBalance, err = parseBalanceParam(params.Get("min_balance")); err != nil {
		writeError(w, http.StatusBadRequest, "min_balance must be a valid decimal")
		return
	}
	if q.MaxBalance, err = parseBalanceParam(params.Get("max_balance")); err != nil {
		writeError(w, http.StatusBadRequest, "max_balance must be a valid decimal")
		return
	}

	accounts, total, err := s.store.ListAccounts(r.Context(), q)
	if err != nil {
		s.logger.Error("list accounts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		writeError(w, http.StatusNotFound, "Invalid page.")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	resp := listResponse{
		Count:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Results:     accounts,
	}
	if page < totalPages {
		resp.Links.Next = pageLink(r, page+1)
	}
	if page > 1 {
		resp.Links.Previous = pageLink(r, page-1)
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseBalanceParam(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// pageLink rebuilds the request URL as an absolute link pointing at page.
func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	params := u.Query()
	params.Set("page", strconv.Itoa(page))
	u.RawQuery = params.Encode()
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	link := u.String()
	return &link
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := accountFromRequest(req, uuid.Nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateAccount(r.Context(), acct)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// accountFromRequest validates a create/update payload. pathID is non-nil
// for updates, where the path wins over any id in the body.
func accountFromRequest(req accountRequest, pathID uuid.UUID) (models.Account, error) {
	if req.Balance == nil {
		return models.Account{}, errors.New("balance is required")
	}

	acct := models.Account{
		ID:      pathID,
		Name:    req.Name,
		Balance: *req.Balance,
	}

	if pathID == uuid.Nil && req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return models.Account{}, fmt.Errorf("invalid UUID format: %v", err)
		}
		acct.ID = id
	}
	if len(acct.Name) > models.MaxNameLength {
		return models.Account{}, fmt.Errorf("name must be at most %d characters", models.MaxNameLength)
	}
	if err := ledger.ValidateAmount(acct.Balance); err != nil {
		return models.Account{}, fmt.Errorf("balance: %w", err)
	}
	return acct, nil
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	acct, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := accountFromRequest(req, id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateAccount(r.Context(), acct)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAllAccounts(r.Context()); err != nil {
		s.logger.Error("delete all accounts", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "All accounts have been deleted successfully."})
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	s.logger.Error("store failure", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
