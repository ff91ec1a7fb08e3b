package legacy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/seaportal/apiserver/types"
)

// Directory is read access to the legacy identity store.
type Directory interface {
	FindIdentityByEmail(ctx context.Context, email string) (types.LegacyIdentity, error)
	FindProfileByID(ctx context.Context, id string) (types.LegacyProfile, error)
	Exists(ctx context.Context, email string) (bool, error)
}

// PostgresDirectory reads the legacy UserAccounts and UserDetails tables.
type PostgresDirectory struct {
	db *sqlx.DB
}

func NewPostgresDirectory(db *sqlx.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

type identityRow struct {
	ID       string         `db:"id"`
	Email    string         `db:"email"`
	Password sql.NullString `db:"password"`
	Consent  sql.NullBool   `db:"consent"`
	Status   sql.NullString `db:"status"`
}

type profileRow struct {
	ID       string         `db:"id"`
	Name     []byte         `db:"name"`
	UserType sql.NullString `db:"userType"`
	UserRole sql.NullString `db:"userRole"`
	Sex      sql.NullString `db:"sex"`
	Phone    sql.NullString `db:"phone"`
	Address  []byte         `db:"address"`
}

func (d *PostgresDirectory) FindIdentityByEmail(ctx context.Context, email string) (types.LegacyIdentity, error) {
	const query = `
		SELECT id, email, password, consent, status
		FROM "UserAccounts"
		WHERE email = $1
		LIMIT 1`
	var row identityRow
	if err := d.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LegacyIdentity{}, ErrNotFound
		}
		return types.LegacyIdentity{}, fmt.Errorf("%w: find identity: %v", ErrUnavailable, err)
	}

	return types.LegacyIdentity{
		ID:       row.ID,
		Email:    row.Email,
		Password: row.Password.String,
		Consent:  row.Consent.Bool,
		Status:   row.Status.String,
	}, nil
}

func (d *PostgresDirectory) FindProfileByID(ctx context.Context, id string) (types.LegacyProfile, error) {
	const query = `
		SELECT id, name, "userType", "userRole", sex, phone, address
		FROM "UserDetails"
		WHERE id = $1
		LIMIT 1`
	var row profileRow
	if err := d.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LegacyProfile{}, ErrNotFound
		}
		return types.LegacyProfile{}, fmt.Errorf("%w: find profile: %v", ErrUnavailable, err)
	}

	profile := types.LegacyProfile{
		ID:       row.ID,
		UserType: row.UserType.String,
		UserRole: row.UserRole.String,
		Sex:      row.Sex.String,
		Phone:    row.Phone.String,
	}
	if len(row.Name) > 0 {
		if err := json.Unmarshal(row.Name, &profile.Name); err != nil {
			return types.LegacyProfile{}, fmt.Errorf("%w: malformed profile name: %v", ErrUnavailable, err)
		}
	}
	if len(row.Address) > 0 {
		if err := json.Unmarshal(row.Address, &profile.Address); err != nil {
			return types.LegacyProfile{}, fmt.Errorf("%w: malformed profile address: %v", ErrUnavailable, err)
		}
	}
	return profile, nil
}

func (d *PostgresDirectory) Exists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM "UserAccounts" WHERE email = $1)`
	var exists bool
	if err := d.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("%w: exists: %v", ErrUnavailable, err)
	}
	return exists, nil
}
