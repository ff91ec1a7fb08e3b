package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seaportal/apiserver/internal/auth"
	"github.com/seaportal/apiserver/internal/legacy"
	"github.com/seaportal/apiserver/internal/mq"
	"github.com/seaportal/apiserver/internal/store"
	"github.com/seaportal/apiserver/types"
)

// LoginResult is returned when a session may be issued.
type LoginResult struct {
	User             types.SessionUser
	IsLocalUser      bool
	Migrated         bool
	MigrationMessage string
}

// LoginService decides whether an email/password pair may log in, migrating
// and repairing local records on the way.
type LoginService struct {
	store     LocalStore
	legacy    LegacyClient
	migration *MigrationService
	events    EventPublisher
	log       *zap.SugaredLogger
	now       func() time.Time
}

func NewLoginService(store LocalStore, legacy LegacyClient, migration *MigrationService, events EventPublisher, log *zap.SugaredLogger) *LoginService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LoginService{
		store:     store,
		legacy:    legacy,
		migration: migration,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// Login runs one login attempt. Denials are reported as errors that
// DenialReason can classify.
func (s *LoginService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	result, err := s.login(ctx, email, password)
	if err != nil {
		s.log.Infow("login denied", "reason", DenialReason(err))
		return LoginResult{}, err
	}
	s.log.Infow("login succeeded", "local", result.IsLocalUser, "migrated", result.Migrated)
	return result, nil
}

func (s *LoginService) login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.loginLocal(ctx, user, password, true, false)
	case errors.Is(err, store.ErrNotFound):
		return s.loginLegacy(ctx, email, password)
	default:
		s.log.Errorw("local user lookup failed", "error", err)
		return LoginResult{}, fmt.Errorf("%w: %v", ErrAuthService, err)
	}
}

// loginLocal checks password against a local user. legacyVerified is set
// when the legacy directory has already accepted password in this attempt.
func (s *LoginService) loginLocal(ctx context.Context, user types.User, password string, isLocalUser, legacyVerified bool) (LoginResult, error) {
	if !user.MigratedFromSupabase {
		revalidated, err := s.revalidate(ctx, user, password)
		if err != nil {
			return LoginResult{}, err
		}
		user = revalidated
		legacyVerified = true
	}

	account, ok := user.PasswordAccount()
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}
	if account.Status == types.AccountInactive {
		return LoginResult{}, ErrAccountInactive
	}
	if auth.CheckPassword(password, account.PasswordHash) {
		return issued(user, isLocalUser, false), nil
	}

	if !legacyVerified {
		if _, err := s.legacy.Authenticate(ctx, user.Email, password); err != nil {
			if errors.Is(err, legacy.ErrUnavailable) {
				s.log.Errorw("legacy fallback failed", "error", err)
				return LoginResult{}, fmt.Errorf("%w: %v", ErrAuthService, err)
			}
			return LoginResult{}, ErrInvalidCredentials
		}
	}

	s.repairCredential(ctx, user, account, password)
	return issued(user, isLocalUser, false), nil
}

// revalidate confirms a local user that was never migrated against the
// legacy directory and marks it migrated.
func (s *LoginService) revalidate(ctx context.Context, user types.User, password string) (types.User, error) {
	found, err := s.legacy.Authenticate(ctx, user.Email, password)
	if err != nil {
		if errors.Is(err, legacy.ErrUnavailable) {
			s.log.Errorw("legacy revalidation failed", "error", err)
			return types.User{}, fmt.Errorf("%w: %v", ErrAuthService, err)
		}
		return types.User{}, ErrNotInLegacyDirectory
	}

	userType, userRole := classification(found.Profile)
	if !auth.IsEligible(userType, userRole) {
		return types.User{}, &IneligibleError{UserType: userType, UserRole: userRole}
	}

	now := s.now().UTC()
	legacyID := found.Identity.ID
	user.MigratedFromSupabase = true
	user.LegacyUserID = &legacyID
	user.MigrationDate = &now

	accounts := user.Accounts
	updated, err := s.store.Update(ctx, user)
	if err != nil {
		s.log.Errorw("mark user migrated failed", "error", err)
		return types.User{}, fmt.Errorf("%w: %v", ErrAuthService, err)
	}
	updated.Accounts = accounts
	return updated, nil
}

func (s *LoginService) loginLegacy(ctx context.Context, email, password string) (LoginResult, error) {
	found, err := s.legacy.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, legacy.ErrUnavailable) {
			s.log.Errorw("legacy authentication failed", "error", err)
			return LoginResult{}, fmt.Errorf("%w: %v", ErrAuthService, err)
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	userType, userRole := classification(found.Profile)
	if !auth.IsEligible(userType, userRole) {
		return LoginResult{}, &IneligibleError{UserType: userType, UserRole: userRole}
	}

	if _, err := s.migration.Migrate(ctx, found.Identity, found.Profile); err != nil {
		if !errors.Is(err, ErrDuplicateUser) {
			s.log.Errorw("migration during login failed", "code", MigrationErrorCode(err))
			return LoginResult{}, err
		}
		// A concurrent login for the same email created the user first.
		existing, lookupErr := s.store.GetByEmail(ctx, email)
		if lookupErr != nil {
			return LoginResult{}, ErrInvalidCredentials
		}
		return s.loginLocal(ctx, existing, password, false, true)
	}

	migrated, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		s.log.Errorw("migrated user not found on reload", "error", err)
		return LoginResult{}, fmt.Errorf("%w: reload migrated user: %v", ErrAuthService, err)
	}
	result := issued(migrated, false, true)
	result.MigrationMessage = migratedMessage
	return result, nil
}

// repairCredential replaces the stored hash with a bcrypt hash of a password
// the legacy directory has accepted. Failure does not deny the login.
func (s *LoginService) repairCredential(ctx context.Context, user types.User, account types.Account, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.log.Warnw("credential repair hash failed", "error", err)
		return
	}
	account.PasswordHash = hash
	if _, err := s.store.UpdateAccount(ctx, account); err != nil {
		s.log.Warnw("credential repair failed", "error", err)
		return
	}
	publishEvent(ctx, s.events, s.log, mq.EventCredentialRepaired, mq.CredentialRepaired{
		UserID: user.ID,
		Email:  user.Email,
	})
}

func issued(user types.User, isLocalUser, migrated bool) LoginResult {
	return LoginResult{
		User:        types.SessionUserFrom(user),
		IsLocalUser: isLocalUser,
		Migrated:    migrated,
	}
}
