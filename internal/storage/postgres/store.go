// Package postgres implements the AccountStore on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/models"
)

type Store struct {
	db *sql.DB
}

var _ interfaces.AccountStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, balance)
		VALUES ($1, $2, $3)
	`, acct.ID, acct.Name, acct.Balance)
	if err != nil {
		return models.Account{}, err
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, balance
		FROM accounts
		WHERE id = $1
	`, id)

	var acct models.Account
	if err := row.Scan(&acct.ID, &acct.Name, &acct.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, interfaces.ErrNotFound
		}
		return models.Account{}, err
	}
	return acct, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = $2, balance = $3
		WHERE id = $1
	`, acct.ID, acct.Name, acct.Balance)
	if err != nil {
		return models.Account{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.Account{}, interfaces.ErrNotFound
	}
	return acct, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// orderColumns whitelists the sortable columns; anything else falls back to
// the default ordering.
var orderColumns = map[string]string{
	"id":      "id",
	"name":    "name",
	"balance": "balance",
}

func (s *Store) ListAccounts(ctx context.Context, q interfaces.ListQuery) ([]models.Account, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.MinBalance != nil {
		conds = append(conds, "balance >= "+arg(*q.MinBalance))
	}
	if q.MaxBalance != nil {
		conds = append(conds, "balance <= "+arg(*q.MaxBalance))
	}
	if q.Search != "" {
		p := arg("%" + q.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR id::text ILIKE %s)", p, p))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, name, balance FROM accounts" + where + " ORDER BY " + orderClause(q.Ordering)
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + arg(q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		var acct models.Account
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.Balance); err != nil {
			return nil, 0, err
		}
		result = append(result, acct)
	}
	return result, total, rows.Err()
}

func orderClause(ordering string) string {
	field := ordering
	dir := "ASC"
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		dir = "DESC"
	}
	col, ok := orderColumns[field]
	if !ok {
		return "id DESC"
	}
	return col + " " + dir
}

func (s *Store) DeleteAllAccounts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts`)
	return err
}

// RunAtomic runs fn inside a database transaction. Row locks taken via
// GetAccountForUpdate are held until commit or rollback.
func (s *Store) RunAtomic(ctx context.Context, fn func(tx interfaces.AtomicStore) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txView{tx: dbTx}); err != nil {
		if rollbackErr := dbTx.Rollback(); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}
	return dbTx.Commit()
}

type txView struct {
	tx *sql.Tx
}

func (v *txView) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (models.Account, error) {
	row := v.tx.QueryRowContext(ctx, `
		SELECT id, name, balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id)

	var acct models.Account
	if err := row.Scan(&acct.ID, &acct.Name, &acct.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, interfaces.ErrNotFound
		}
		return models.Account{}, err
	}
	return acct, nil
}

func (v *txView) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	result, err := v.tx.ExecContext(ctx, `
		UPDATE accounts SET balance = $2 WHERE id = $1
	`, id, balance)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}
