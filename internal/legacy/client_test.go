package legacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seaportal/apiserver/internal/legacy"
	"github.com/seaportal/apiserver/internal/testutil"
	"github.com/seaportal/apiserver/types"
)

func newDirectory() *testutil.MemoryDirectory {
	dir := testutil.NewMemoryDirectory()
	dir.Add(
		types.LegacyIdentity{ID: "l-1", Email: "a@x.com", Password: "plain123"},
		&types.LegacyProfile{UserType: "SEAFARER", UserRole: "Job Seeker", Name: types.LegacyName{First: "Ada"}},
	)
	dir.Add(types.LegacyIdentity{ID: "l-2", Email: "noprofile@x.com", Password: "pw"}, nil)
	return dir
}

func TestAuthenticateSuccess(t *testing.T) {
	client := legacy.NewClient(newDirectory(), nil)

	result, err := client.Authenticate(context.Background(), "a@x.com", "plain123")
	require.NoError(t, err)

	assert.Equal(t, "l-1", result.Identity.ID)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "SEAFARER", result.Profile.UserType)
	assert.Equal(t, "l-1", result.Profile.ID)
}

func TestAuthenticateToleratesMissingProfile(t *testing.T) {
	client := legacy.NewClient(newDirectory(), nil)

	result, err := client.Authenticate(context.Background(), "noprofile@x.com", "pw")
	require.NoError(t, err)
	assert.Nil(t, result.Profile)
}

func TestAuthenticateFailures(t *testing.T) {
	client := legacy.NewClient(newDirectory(), nil)

	_, err := client.Authenticate(context.Background(), "missing@x.com", "plain123")
	assert.ErrorIs(t, err, legacy.ErrNotFound)

	_, err = client.Authenticate(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, legacy.ErrInvalidPassword)
}

func TestAuthenticateTransportFailureIsUnavailable(t *testing.T) {
	dir := newDirectory()
	dir.Err = errors.New("dial tcp: connection refused")
	client := legacy.NewClient(dir, nil)

	_, err := client.Authenticate(context.Background(), "a@x.com", "plain123")
	assert.ErrorIs(t, err, legacy.ErrUnavailable)
	assert.NotErrorIs(t, err, legacy.ErrNotFound)
	assert.NotErrorIs(t, err, legacy.ErrInvalidPassword)

	_, err = client.Exists(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, legacy.ErrUnavailable)
}

func TestLookupSkipsPasswordCheck(t *testing.T) {
	client := legacy.NewClient(newDirectory(), nil)

	result, err := client.Lookup(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "plain123", result.Identity.Password)
	require.NotNil(t, result.Profile)
}

func TestExists(t *testing.T) {
	client := legacy.NewClient(newDirectory(), nil)

	ok, err := client.Exists(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Exists(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
