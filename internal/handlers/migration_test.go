package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seaportal/apiserver/internal/services"
	"github.com/seaportal/apiserver/types"
)

func TestMigrationRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "crew@x.com", "pw", types.RoleJobSeeker)

	rec := env.do(t, http.MethodGet, "/migration/migrated-users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.loginToken(t, "crew@x.com", "pw")
	rec = env.do(t, http.MethodGet, "/migration/migrated-users", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Admin access required"}`, rec.Body.String())
}

func adminEnv(t *testing.T) (*testEnv, string) {
	t.Helper()
	env := newTestEnv(t)
	env.seedUser(t, "admin@x.com", "adminpw", types.RoleSuperAdmin)
	return env, env.loginToken(t, "admin@x.com", "adminpw")
}

func TestMigrationStatusAndNeeds(t *testing.T) {
	env, token := adminEnv(t)
	env.directory.Add(
		types.LegacyIdentity{ID: "l-1", Email: "a@x.com", Password: "plain123"},
		&types.LegacyProfile{UserType: "SEAFARER", UserRole: "Job Seeker"},
	)

	rec := env.do(t, http.MethodGet, "/migration/needs-migration/a@x.com", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"email":"a@x.com","needsMigration":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/migration/status/admin@x.com", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[StatusResponse](t, rec)
	assert.Equal(t, "admin@x.com", status.Email)
	assert.True(t, status.IsMigrated)
	assert.False(t, status.NeedsMigration)
}

func TestMigrateUserEndpoint(t *testing.T) {
	env, token := adminEnv(t)
	env.directory.Add(
		types.LegacyIdentity{ID: "l-1", Email: "a@x.com", Password: "plain123"},
		&types.LegacyProfile{UserType: "SEAFARER", UserRole: "Job Seeker"},
	)

	rec := env.do(t, http.MethodPost, "/migration/migrate-user", MigrateUserRequest{Email: "a@x.com", Password: "nope"}, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/migration/migrate-user", MigrateUserRequest{Email: "a@x.com", Password: "plain123"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[MigrateUserResponse](t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.MigratedFromSupabase)

	rec = env.do(t, http.MethodPost, "/migration/migrate-user", MigrateUserRequest{Email: "a@x.com", Password: "plain123"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeDuplicateUser, decode[MigrateUserResponse](t, rec).Error)

	rec = env.do(t, http.MethodPost, "/migration/migrate-user", MigrateUserRequest{Email: "a@x.com"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkMigrateEndpoint(t *testing.T) {
	env, token := adminEnv(t)
	env.directory.Add(
		types.LegacyIdentity{ID: "l-1", Email: "a@x.com", Password: "pw"},
		&types.LegacyProfile{UserType: "SEAFARER", UserRole: "Job Seeker"},
	)

	rec := env.do(t, http.MethodPost, "/migration/bulk-migrate", BulkMigrateRequest{Emails: []string{"a@x.com", "missing@x.com"}}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[BulkMigrateResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 1, resp.Failed)

	rec = env.do(t, http.MethodPost, "/migration/bulk-migrate", BulkMigrateRequest{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Emails array is required"}`, rec.Body.String())

	emails := make([]string, services.MaxBulkMigrate+1)
	for i := range emails {
		emails[i] = fmt.Sprintf("u%d@x.com", i)
	}
	rec = env.do(t, http.MethodPost, "/migration/bulk-migrate", BulkMigrateRequest{Emails: emails}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"maximum 100 emails allowed per bulk operation"}`, rec.Body.String())
}

func TestMigratedUsersEndpoint(t *testing.T) {
	env, token := adminEnv(t)

	rec := env.do(t, http.MethodGet, "/migration/migrated-users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[MigratedUsersResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "admin@x.com", resp.Users[0].Email)
}

func TestTestConnectionEndpoint(t *testing.T) {
	env, token := adminEnv(t)

	rec := env.do(t, http.MethodGet, "/migration/test-connection", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "passed", decode[ConnectionResponse](t, rec).ConnectionTest)

	env.pingErr = errors.New("connection refused")
	rec = env.do(t, http.MethodGet, "/migration/test-connection", nil, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, decode[ConnectionResponse](t, rec).Success)
}
