package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seaportal/apiserver/types"
)

const userColumns = `id, email, name, sex, role, user_type, current_job_status, is_email_verified,
		migrated_from_supabase, legacy_user_id, migration_date, created_at, updated_at`

// UserRepository handles persistence for users and their accounts.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns the user with the given email, accounts included.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	accounts, err := r.listAccounts(ctx, user.ID)
	if err != nil {
		return types.User{}, err
	}
	user.Accounts = accounts
	return user, nil
}

// CreateWithAccount inserts a user and its account in one transaction.
// A unique violation on either row yields ErrDuplicate and nothing is kept.
func (r *UserRepository) CreateWithAccount(ctx context.Context, user types.User, account types.Account) (types.User, error) {
	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UserID = user.ID
	if account.Email == "" {
		account.Email = user.Email
	}
	if account.Status == "" {
		account.Status = types.AccountActive
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := tx.ExecContext(ctx, query, userArgs(user)...); err != nil {
		return types.User{}, translateWriteErr(err)
	}

	const accountQuery = `
		INSERT INTO accounts (id, user_id, email, password, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(
		ctx,
		accountQuery,
		account.ID,
		account.UserID,
		account.Email,
		nullString(account.PasswordHash),
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	); err != nil {
		return types.User{}, translateWriteErr(err)
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, translateWriteErr(err)
	}
	committed = true

	user.Accounts = []types.Account{account}
	return user, nil
}

// Update persists profile and migration fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET name = $1,
			sex = $2,
			role = $3,
			user_type = $4,
			current_job_status = $5,
			is_email_verified = $6,
			migrated_from_supabase = $7,
			legacy_user_id = $8,
			migration_date = $9,
			updated_at = $10
		WHERE id = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Sex,
		user.Role,
		nullUserType(user.UserType),
		nullJobStatus(user.CurrentJobStatus),
		user.IsEmailVerified,
		user.MigratedFromSupabase,
		nullStringPtr(user.LegacyUserID),
		nullTime(user.MigrationDate),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// UpdateAccount persists the password and status of an account.
func (r *UserRepository) UpdateAccount(ctx context.Context, account types.Account) (types.Account, error) {
	account.UpdatedAt = time.Now()

	const query = `
		UPDATE accounts
		SET password = $1,
			status = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		nullString(account.PasswordHash),
		account.Status,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return types.Account{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Account{}, err
	}
	if affected == 0 {
		return types.Account{}, ErrNotFound
	}
	return account, nil
}

// ListMigrated returns users copied from the legacy directory, newest first.
func (r *UserRepository) ListMigrated(ctx context.Context) ([]types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE migrated_from_supabase = TRUE
		ORDER BY migration_date DESC NULLS LAST`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) listAccounts(ctx context.Context, userID string) ([]types.Account, error) {
	const query = `
		SELECT id, user_id, email, password, status, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]types.Account, 0, 1)
	for rows.Next() {
		var account types.Account
		var password sql.NullString
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Email,
			&password,
			&account.Status,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		account.PasswordHash = password.String
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var userType, jobStatus, legacyID sql.NullString
	var migrationDate sql.NullTime
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Sex,
		&user.Role,
		&userType,
		&jobStatus,
		&user.IsEmailVerified,
		&user.MigratedFromSupabase,
		&legacyID,
		&migrationDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return types.User{}, err
	}

	if userType.Valid {
		v := types.UserType(userType.String)
		user.UserType = &v
	}
	if jobStatus.Valid {
		v := types.JobStatus(jobStatus.String)
		user.CurrentJobStatus = &v
	}
	if legacyID.Valid {
		v := legacyID.String
		user.LegacyUserID = &v
	}
	if migrationDate.Valid {
		v := migrationDate.Time
		user.MigrationDate = &v
	}
	return user, nil
}

func userArgs(user types.User) []any {
	return []any{
		user.ID,
		user.Email,
		user.Name,
		user.Sex,
		user.Role,
		nullUserType(user.UserType),
		nullJobStatus(user.CurrentJobStatus),
		user.IsEmailVerified,
		user.MigratedFromSupabase,
		nullStringPtr(user.LegacyUserID),
		nullTime(user.MigrationDate),
		user.CreatedAt,
		user.UpdatedAt,
	}
}

func translateWriteErr(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullUserType(t *types.UserType) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

func nullJobStatus(s *types.JobStatus) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
