package legacy

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDirectory(t *testing.T) (*PostgresDirectory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresDirectory(sqlx.NewDb(db, "sqlmock")), mock
}

func TestFindIdentityByEmail(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`SELECT id, email, password, consent, status FROM "UserAccounts" WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "consent", "status"}).
			AddRow("l-1", "a@x.com", "plain123", true, nil))

	identity, err := dir.FindIdentityByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "l-1", identity.ID)
	assert.Equal(t, "plain123", identity.Password)
	assert.True(t, identity.Consent)
	assert.Empty(t, identity.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIdentityByEmailNotFound(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`FROM "UserAccounts"`).WillReturnError(sql.ErrNoRows)

	_, err := dir.FindIdentityByEmail(context.Background(), "none@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindIdentityByEmailQueryFailure(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`FROM "UserAccounts"`).WillReturnError(errors.New("timeout"))

	_, err := dir.FindIdentityByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFindProfileByIDDecodesJSON(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`FROM "UserDetails" WHERE id = \$1`).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "userType", "userRole", "sex", "phone", "address"}).
			AddRow("l-1", []byte(`{"first":"Ada","last":"Lovelace"}`), "SEAFARER", "Job Seeker", "FEMALE", "+63", []byte(`{"street":null,"city":"Manila"}`)))

	profile, err := dir.FindProfileByID(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name.First)
	assert.Equal(t, "Lovelace", profile.Name.Last)
	assert.Equal(t, "SEAFARER", profile.UserType)
	assert.Equal(t, "Job Seeker", profile.UserRole)
	assert.Equal(t, "FEMALE", profile.Sex)
	require.NotNil(t, profile.Address.City)
	assert.Equal(t, "Manila", *profile.Address.City)
	assert.Nil(t, profile.Address.Street)
}

func TestFindProfileByIDMalformedName(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`FROM "UserDetails"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "userType", "userRole", "sex", "phone", "address"}).
			AddRow("l-1", []byte(`not json`), "SEAFARER", "Job Seeker", nil, nil, nil))

	_, err := dir.FindProfileByID(context.Background(), "l-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFindProfileByIDMalformedAddress(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`FROM "UserDetails"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "userType", "userRole", "sex", "phone", "address"}).
			AddRow("l-1", []byte(`{"first":"Ada"}`), "SEAFARER", "Job Seeker", nil, nil, []byte(`{"city":`)))

	_, err := dir.FindProfileByID(context.Background(), "l-1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorContains(t, err, "malformed profile address")
}

func TestExistsQuery(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := dir.Exists(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
