package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var accountCols = []string{"id", "username", "passwordHash", "accountType", "isActive", "createdAt", "updatedAt"}

func TestAccountRepository_FindByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAccountRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM Account WHERE username = ?`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(3, "alice", "$2a$10$x", "Customer", true, now, now))

	a, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.ID)
	assert.Equal(t, domain.AccountTypeCustomer, a.Type)
	assert.True(t, a.IsActive)
}

func TestAccountRepository_FindByUsername_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM Account WHERE username = ?`)).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "nobody")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestAccountRepository_Create_DuplicateUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Account").
		WithArgs("alice", "hash", "Customer", true).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), tx, domain.Account{
		Username:     "alice",
		PasswordHash: "hash",
		Type:         domain.AccountTypeCustomer,
		IsActive:     true,
	})
	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, "USERNAME_TAKEN", ce.Reason)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindProfileID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM Carrier WHERE accountId = ?`)).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	id, err := repo.FindProfileID(context.Background(), 12, domain.AccountTypeCarrier)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	_, err = repo.FindProfileID(context.Background(), 12, domain.AccountType("Guest"))
	assert.Error(t, err)
}

func TestAccountRepository_SetActive_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE Account SET isActive = ? WHERE id = ?`)).
		WithArgs(false, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, ok := apperrors.IsNotFoundError(repo.SetActive(context.Background(), 99, false))
	assert.True(t, ok)
}

func TestAdminRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAdminRepository(db)

	mock.ExpectQuery("FROM Admin ad JOIN Account a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "accountId", "username", "fullName", "email", "phone", "isActive"}).
			AddRow(1, 10, "root", "Root Admin", nil, "555-0100", true))

	admins, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "", admins[0].Email)
	assert.Equal(t, "555-0100", admins[0].Phone)
}

func TestAdminRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ad.id = ?`)).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 5)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
