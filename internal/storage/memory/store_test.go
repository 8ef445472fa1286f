package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/models"
)

func seed(t *testing.T, s *Store, name, balance string) models.Account {
	t.Helper()
	acct, err := s.CreateAccount(context.Background(), models.Account{
		Name:    name,
		Balance: decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return acct
}

func TestCreateAndGetAccount(t *testing.T) {
	s := New()
	acct := seed(t, s, "alice", "10.00")
	require.NotEqual(t, uuid.Nil, acct.ID)

	got, err := s.GetAccount(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("10.00")))
}

func TestCreateAccount_DuplicateID(t *testing.T) {
	s := New()
	acct := seed(t, s, "alice", "10.00")

	_, err := s.CreateAccount(context.Background(), models.Account{ID: acct.ID, Name: "bob"})
	require.Error(t, err)
}

func TestGetAccount_NotFound(t *testing.T) {
	s := New()
	_, err := s.GetAccount(context.Background(), uuid.New())
	require.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestUpdateAndDeleteAccount(t *testing.T) {
	s := New()
	acct := seed(t, s, "alice", "10.00")

	acct.Name = "alice2"
	acct.Balance = decimal.RequireFromString("20.00")
	updated, err := s.UpdateAccount(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Name)

	require.NoError(t, s.DeleteAccount(context.Background(), acct.ID))
	require.ErrorIs(t, s.DeleteAccount(context.Background(), acct.ID), interfaces.ErrNotFound)

	_, err = s.UpdateAccount(context.Background(), acct)
	require.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestListAccounts_FilterSearchOrder(t *testing.T) {
	s := New()
	seed(t, s, "alice", "10.00")
	bob := seed(t, s, "bob", "50.00")
	seed(t, s, "carol", "90.00")

	min := decimal.RequireFromString("20.00")
	max := decimal.RequireFromString("60.00")
	accounts, total, err := s.ListAccounts(context.Background(), interfaces.ListQuery{
		MinBalance: &min,
		MaxBalance: &max,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, bob.ID, accounts[0].ID)

	accounts, total, err = s.ListAccounts(context.Background(), interfaces.ListQuery{Search: "ARO"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "carol", accounts[0].Name)

	// search also matches against the id
	accounts, _, err = s.ListAccounts(context.Background(), interfaces.ListQuery{
		Search: bob.ID.String()[:8],
	})
	require.NoError(t, err)
	require.NotEmpty(t, accounts)
	assert.Equal(t, bob.ID, accounts[0].ID)

	accounts, _, err = s.ListAccounts(context.Background(), interfaces.ListQuery{Ordering: "-balance"})
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "carol", accounts[0].Name)
	assert.Equal(t, "alice", accounts[2].Name)
}

func TestListAccounts_Pagination(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		seed(t, s, "acct", "1.00")
	}

	accounts, total, err := s.ListAccounts(context.Background(), interfaces.ListQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, accounts, 1)

	accounts, total, err = s.ListAccounts(context.Background(), interfaces.ListQuery{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, accounts)
}

func TestDeleteAllAccounts(t *testing.T) {
	s := New()
	seed(t, s, "alice", "10.00")
	seed(t, s, "bob", "20.00")

	require.NoError(t, s.DeleteAllAccounts(context.Background()))

	_, total, err := s.ListAccounts(context.Background(), interfaces.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRunAtomic_CommitsOnSuccess(t *testing.T) {
	s := New()
	acct := seed(t, s, "alice", "10.00")

	err := s.RunAtomic(context.Background(), func(tx interfaces.AtomicStore) error {
		return tx.UpdateBalance(context.Background(), acct.ID, decimal.RequireFromString("99.00"))
	})
	require.NoError(t, err)

	got, err := s.GetAccount(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("99.00")))
}

func TestRunAtomic_RollsBackOnError(t *testing.T) {
	s := New()
	acct := seed(t, s, "alice", "10.00")
	boom := errors.New("boom")

	err := s.RunAtomic(context.Background(), func(tx interfaces.AtomicStore) error {
		if err := tx.UpdateBalance(context.Background(), acct.ID, decimal.RequireFromString("99.00")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetAccount(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("10.00")), "staged write must not leak")
}

func TestRunAtomic_ReadsSeeStagedWrites(t *testing.T) {
	s := New()
	acct := seed(t, s, "alice", "10.00")

	err := s.RunAtomic(context.Background(), func(tx interfaces.AtomicStore) error {
		if err := tx.UpdateBalance(context.Background(), acct.ID, decimal.RequireFromString("40.00")); err != nil {
			return err
		}
		got, err := tx.GetAccountForUpdate(context.Background(), acct.ID)
		if err != nil {
			return err
		}
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("40.00")))
		return nil
	})
	require.NoError(t, err)
}
