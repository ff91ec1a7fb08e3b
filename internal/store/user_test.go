package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seaportal/apiserver/types"
)

var userRowColumns = []string{
	"id", "email", "name", "sex", "role", "user_type", "current_job_status", "is_email_verified",
	"migrated_from_supabase", "legacy_user_id", "migration_date", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestGetByEmailLoadsAccounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	migrated := now.Add(-time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u-1", "a@x.com", "Ada", "FEMALE", "JOBSEEKER", "SEAFARER", nil, true,
			true, "legacy-1", migrated, now, now,
		))
	mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "password", "status", "created_at", "updated_at"}).
			AddRow("acc-0", "u-1", "a@x.com", nil, "ACTIVE", now, now).
			AddRow("acc-1", "u-1", "a@x.com", "$2a$12$hash", "ACTIVE", now, now))

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, types.SexFemale, user.Sex)
	assert.Equal(t, types.RoleJobSeeker, user.Role)
	require.NotNil(t, user.UserType)
	assert.Equal(t, types.UserTypeSeafarer, *user.UserType)
	assert.Nil(t, user.CurrentJobStatus)
	require.NotNil(t, user.LegacyUserID)
	assert.Equal(t, "legacy-1", *user.LegacyUserID)
	require.NotNil(t, user.MigrationDate)
	assert.True(t, user.MigratedFromSupabase)
	require.Len(t, user.Accounts, 2)

	account, ok := user.PasswordAccount()
	require.True(t, ok)
	assert.Equal(t, "acc-1", account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("missing@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithAccountCommits(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "a@x.com", "$2a$12$hash", types.AccountActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.CreateWithAccount(context.Background(),
		types.User{Email: "a@x.com", Role: types.RoleVisitor, Sex: types.SexMale},
		types.Account{PasswordHash: "$2a$12$hash"},
	)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	require.Len(t, user.Accounts, 1)
	assert.Equal(t, user.ID, user.Accounts[0].UserID)
	assert.Equal(t, "a@x.com", user.Accounts[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithAccountRollsBackOnAccountFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO accounts`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.CreateWithAccount(context.Background(), types.User{Email: "a@x.com"}, types.Account{PasswordHash: "h"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithAccountDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	_, err := repo.CreateWithAccount(context.Background(), types.User{Email: "a@x.com"}, types.Account{PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), types.User{ID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccountWritesPassword(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE accounts`).
		WithArgs("$2a$12$new", types.AccountActive, sqlmock.AnyArg(), "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	account, err := repo.UpdateAccount(context.Background(), types.Account{
		ID:           "acc-1",
		PasswordHash: "$2a$12$new",
		Status:       types.AccountActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$new", account.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMigrated(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE migrated_from_supabase = TRUE`).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-2", "b@x.com", "B", "MALE", "VISITOR", "OTHERS", "NOT_LOOKING", true, true, "l-2", now, now, now).
			AddRow("u-1", "a@x.com", "A", "MALE", "JOBSEEKER", "SEAFARER", "NOT_LOOKING", true, true, "l-1", now.Add(-time.Hour), now, now))

	users, err := repo.ListMigrated(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u-2", users[0].ID)
	assert.Equal(t, types.JobStatusNotLooking, *users[1].CurrentJobStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
