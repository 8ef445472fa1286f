// Package api exposes the account ledger over HTTP. Routing mirrors the
// /api/accounts surface: CRUD, list with filter/search/ordering/pagination,
// transfer, CSV bulk import and delete-all.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/ledger"
)

type Server struct {
	store  interfaces.AccountStore
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewServer(store interfaces.AccountStore, l *ledger.Ledger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  store,
		ledger: l,
		logger: logger,
	}
}

// Router builds the HTTP routing table. Fixed collection actions are
// registered before the {id} routes so they are never shadowed.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withLogging, withCORS)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/accounts/transfer/", s.handleTransfer).Methods(http.MethodPost)
	api.HandleFunc("/accounts/import_csv/", s.handleImportCSV).Methods(http.MethodPost)
	api.HandleFunc("/accounts/delete_all/", s.handleDeleteAll).Methods(http.MethodDelete)
	api.HandleFunc("/accounts/", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", s.handleUpdateAccount).Methods(http.MethodPut)
	api.HandleFunc("/accounts/{id}", s.handleDeleteAccount).Methods(http.MethodDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
