package legacy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/seaportal/apiserver/internal/auth"
	"github.com/seaportal/apiserver/types"
)

var (
	// ErrNotFound is returned when no legacy identity has the email.
	ErrNotFound = errors.New("legacy identity not found")
	// ErrInvalidPassword is returned when the password does not verify.
	ErrInvalidPassword = errors.New("legacy password invalid")
	// ErrUnavailable wraps transport and decoding failures of the directory.
	ErrUnavailable = errors.New("legacy directory unavailable")
)

// Result is a verified legacy identity. Profile is nil when the identity
// has no detail record.
type Result struct {
	Identity types.LegacyIdentity
	Profile  *types.LegacyProfile
}

// Client authenticates users against the legacy directory.
type Client struct {
	directory Directory
	log       *zap.SugaredLogger
}

func NewClient(directory Directory, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{directory: directory, log: log}
}

// Authenticate looks up email and verifies password against the stored
// legacy value. Errors are ErrNotFound, ErrInvalidPassword or ErrUnavailable.
func (c *Client) Authenticate(ctx context.Context, email, password string) (Result, error) {
	identity, err := c.findIdentity(ctx, email)
	if err != nil {
		return Result{}, err
	}

	ok, format := auth.VerifyLegacyPassword(password, identity.Password)
	c.log.Debugw("legacy password check", "format", format, "valid", ok)
	if !ok {
		return Result{}, ErrInvalidPassword
	}

	profile, err := c.findProfile(ctx, identity.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Identity: identity, Profile: profile}, nil
}

// Lookup fetches the identity and profile for email without verifying a
// password. It is reserved for administrator-initiated migration.
func (c *Client) Lookup(ctx context.Context, email string) (Result, error) {
	identity, err := c.findIdentity(ctx, email)
	if err != nil {
		return Result{}, err
	}
	profile, err := c.findProfile(ctx, identity.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Identity: identity, Profile: profile}, nil
}

// Exists reports whether the legacy directory holds email.
func (c *Client) Exists(ctx context.Context, email string) (bool, error) {
	exists, err := c.directory.Exists(ctx, email)
	if err != nil {
		return false, unavailable(err)
	}
	return exists, nil
}

func (c *Client) findIdentity(ctx context.Context, email string) (types.LegacyIdentity, error) {
	identity, err := c.directory.FindIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.LegacyIdentity{}, ErrNotFound
		}
		return types.LegacyIdentity{}, unavailable(err)
	}
	return identity, nil
}

// findProfile tolerates a missing detail record.
func (c *Client) findProfile(ctx context.Context, id string) (*types.LegacyProfile, error) {
	profile, err := c.directory.FindProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable(err)
	}
	return &profile, nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
