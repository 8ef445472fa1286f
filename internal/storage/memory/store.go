// Package memory provides an in-memory AccountStore. It is safe for
// concurrent use and is intended for tests and local development.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/models"
)

// Store keeps accounts in a mutex-guarded map. RunAtomic blocks are
// serialized by the same mutex, which trivially gives full isolation;
// writes made inside a block are staged and merged only on success.
type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]models.Account
}

var _ interfaces.AccountStore = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]models.Account),
	}
}

func (s *Store) CreateAccount(_ context.Context, acct models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	} else if _, exists := s.accounts[acct.ID]; exists {
		return models.Account{}, fmt.Errorf("account %s already exists", acct.ID)
	}

	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.Account{}, interfaces.ErrNotFound
	}
	return acct, nil
}

func (s *Store) UpdateAccount(_ context.Context, acct models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.ID]; !ok {
		return models.Account{}, interfaces.ErrNotFound
	}
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) DeleteAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) ListAccounts(_ context.Context, q interfaces.ListQuery) ([]models.Account, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if matches(acct, q) {
			matched = append(matched, acct)
		}
	}

	sortAccounts(matched, q.Ordering)

	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= total {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]models.Account, len(matched))
	copy(out, matched)
	return out, total, nil
}

func (s *Store) DeleteAllAccounts(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[uuid.UUID]models.Account)
	return nil
}

func matches(acct models.Account, q interfaces.ListQuery) bool {
	if q.MinBalance != nil && acct.Balance.LessThan(*q.MinBalance) {
		return false
	}
	if q.MaxBalance != nil && acct.Balance.GreaterThan(*q.MaxBalance) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(acct.Name), needle) &&
			!strings.Contains(acct.ID.String(), needle) {
			return false
		}
	}
	return true
}

func sortAccounts(accts []models.Account, ordering string) {
	field := ordering
	desc := false
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		desc = true
	}

	sort.SliceStable(accts, func(i, j int) bool {
		var less bool
		switch field {
		case "name":
			less = accts[i].Name < accts[j].Name
		case "balance":
			less = accts[i].Balance.LessThan(accts[j].Balance)
		default:
			less = bytes.Compare(accts[i].ID[:], accts[j].ID[:]) < 0
		}
		if desc {
			return !less
		}
		return less
	})
}

// RunAtomic serializes the callback against all other store operations and
// stages its balance writes, so a failed callback leaves the store
// untouched.
func (s *Store) RunAtomic(_ context.Context, fn func(tx interfaces.AtomicStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &atomicView{
		store:   s,
		pending: make(map[uuid.UUID]models.Account),
	}
	if err := fn(view); err != nil {
		return err
	}

	for id, acct := range view.pending {
		s.accounts[id] = acct
	}
	return nil
}

// atomicView overlays staged writes on the store. It is only ever used
// while the store mutex is held by RunAtomic.
type atomicView struct {
	store   *Store
	pending map[uuid.UUID]models.Account
}

func (v *atomicView) GetAccountForUpdate(_ context.Context, id uuid.UUID) (models.Account, error) {
	if acct, ok := v.pending[id]; ok {
		return acct, nil
	}
	acct, ok := v.store.accounts[id]
	if !ok {
		return models.Account{}, interfaces.ErrNotFound
	}
	return acct, nil
}

func (v *atomicView) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	acct, err := v.GetAccountForUpdate(ctx, id)
	if err != nil {
		return err
	}
	acct.Balance = balance
	v.pending[id] = acct
	return nil
}
