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

// MaxBulkMigrate caps the number of emails in one bulk migration.
const MaxBulkMigrate = 100

const migratedMessage = "User successfully migrated from legacy directory"

// LocalStore defines persistence operations for local users.
type LocalStore interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	CreateWithAccount(ctx context.Context, user types.User, account types.Account) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateAccount(ctx context.Context, account types.Account) (types.Account, error)
	ListMigrated(ctx context.Context) ([]types.User, error)
}

// LegacyClient authenticates and looks up users in the legacy directory.
type LegacyClient interface {
	Authenticate(ctx context.Context, email, password string) (legacy.Result, error)
	Lookup(ctx context.Context, email string) (legacy.Result, error)
	Exists(ctx context.Context, email string) (bool, error)
}

// EventPublisher delivers account events. A nil publisher drops them.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// MigrationStatus describes where a user stands in the migration.
type MigrationStatus struct {
	NeedsMigration bool       `json:"needsMigration"`
	IsMigrated     bool       `json:"isMigrated"`
	MigrationDate  *time.Time `json:"migrationDate,omitempty"`
	LegacyUserID   *string    `json:"legacyUserId,omitempty"`
}

// MigrationResult is the outcome of migrating one email.
type MigrationResult struct {
	Email   string      `json:"email"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	User    *types.User `json:"user,omitempty"`
}

type BulkResult struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []MigrationResult `json:"results"`
}

// MigrationService copies legacy identities into the local store.
type MigrationService struct {
	store  LocalStore
	legacy LegacyClient
	events EventPublisher
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewMigrationService(store LocalStore, legacy LegacyClient, events EventPublisher, log *zap.SugaredLogger) *MigrationService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MigrationService{
		store:  store,
		legacy: legacy,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// Migrate creates the local user and account for a legacy identity.
// It fails with ErrIneligibleMigration when the profile does not pass the
// eligibility policy and with ErrDuplicateUser when the email is taken.
func (s *MigrationService) Migrate(ctx context.Context, identity types.LegacyIdentity, profile *types.LegacyProfile) (types.User, error) {
	userType, userRole := classification(profile)
	if !auth.IsEligible(userType, userRole) {
		return types.User{}, fmt.Errorf("%w: %w", ErrIneligibleMigration, &IneligibleError{UserType: userType, UserRole: userRole})
	}

	if _, err := s.store.GetByEmail(ctx, identity.Email); err == nil {
		return types.User{}, ErrDuplicateUser
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("%w: check existing user: %v", ErrMigrationFailed, err)
	}

	passwordHash, err := auth.CredentialFromLegacy(identity.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("%w: hash password: %v", ErrMigrationFailed, err)
	}

	created, err := s.store.CreateWithAccount(ctx, newMigratedUser(identity, profile, s.now().UTC()), types.Account{
		Email:        identity.Email,
		PasswordHash: passwordHash,
		Status:       types.AccountActive,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrDuplicateUser
		}
		return types.User{}, fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	s.publish(ctx, mq.EventUserMigrated, mq.UserMigrated{
		UserID:        created.ID,
		Email:         created.Email,
		LegacyUserID:  identity.ID,
		MigrationDate: *created.MigrationDate,
	})
	return created, nil
}

// MigrateWithPassword verifies the credentials against the legacy directory
// and migrates the identity.
func (s *MigrationService) MigrateWithPassword(ctx context.Context, email, password string) (types.User, error) {
	result, err := s.legacy.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, legacy.ErrUnavailable) {
			return types.User{}, fmt.Errorf("%w: %v", ErrAuthService, err)
		}
		return types.User{}, fmt.Errorf("%w: %v", ErrLegacyAuthFailed, err)
	}
	return s.Migrate(ctx, result.Identity, result.Profile)
}

// NeedsMigration reports whether email is absent locally, present in the
// legacy directory and eligible for migration.
func (s *MigrationService) NeedsMigration(ctx context.Context, email string) (bool, error) {
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	return s.legacyEligible(ctx, email)
}

// Status returns the migration status of email.
func (s *MigrationService) Status(ctx context.Context, email string) (MigrationStatus, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return MigrationStatus{}, err
		}
		needs, err := s.legacyEligible(ctx, email)
		if err != nil {
			return MigrationStatus{}, err
		}
		return MigrationStatus{NeedsMigration: needs}, nil
	}

	return MigrationStatus{
		IsMigrated:    user.MigratedFromSupabase,
		MigrationDate: user.MigrationDate,
		LegacyUserID:  user.LegacyUserID,
	}, nil
}

// BulkMigrate migrates each email in order. One failure does not stop the
// batch.
func (s *MigrationService) BulkMigrate(ctx context.Context, emails []string) (BulkResult, error) {
	if len(emails) > MaxBulkMigrate {
		return BulkResult{}, ErrBulkLimit
	}

	out := BulkResult{Total: len(emails), Results: make([]MigrationResult, 0, len(emails))}
	for _, email := range emails {
		result := s.migrateOne(ctx, email)
		if result.Success {
			out.Successful++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, result)
	}

	s.log.Infow("bulk migration finished", "total", out.Total, "successful", out.Successful, "failed", out.Failed)
	return out, nil
}

// ListMigrated returns migrated users, most recent first.
func (s *MigrationService) ListMigrated(ctx context.Context) ([]types.User, error) {
	return s.store.ListMigrated(ctx)
}

func (s *MigrationService) migrateOne(ctx context.Context, email string) MigrationResult {
	found, err := s.legacy.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, legacy.ErrUnavailable) {
			s.log.Errorw("legacy lookup failed during bulk migration", "error", err)
		}
		return MigrationResult{
			Email:   email,
			Message: "Failed to find user in legacy directory",
			Error:   CodeAuthenticationFailed,
		}
	}

	user, err := s.Migrate(ctx, found.Identity, found.Profile)
	if err != nil {
		return MigrationResult{
			Email:   email,
			Message: migrationFailureMessage(err),
			Error:   MigrationErrorCode(err),
		}
	}
	return MigrationResult{Email: email, Success: true, Message: migratedMessage, User: &user}
}

func (s *MigrationService) legacyEligible(ctx context.Context, email string) (bool, error) {
	exists, err := s.legacy.Exists(ctx, email)
	if err != nil || !exists {
		return false, err
	}

	found, err := s.legacy.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, legacy.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	userType, userRole := classification(found.Profile)
	return auth.IsEligible(userType, userRole), nil
}

func (s *MigrationService) publish(ctx context.Context, event string, payload any) {
	publishEvent(ctx, s.events, s.log, event, payload)
}

func publishEvent(ctx context.Context, events EventPublisher, log *zap.SugaredLogger, event string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event, payload); err != nil {
		log.Warnw("event publish failed", "event", event, "error", err)
	}
}

func newMigratedUser(identity types.LegacyIdentity, profile *types.LegacyProfile, now time.Time) types.User {
	userType, userRole := classification(profile)
	mappedType := auth.UserTypeFromLegacy(userType)
	jobStatus := types.JobStatusNotLooking
	legacyID := identity.ID

	user := types.User{
		Email:                identity.Email,
		Sex:                  types.SexMale,
		Role:                 auth.RoleFromLegacy(userRole),
		UserType:             &mappedType,
		CurrentJobStatus:     &jobStatus,
		IsEmailVerified:      true,
		MigratedFromSupabase: true,
		LegacyUserID:         &legacyID,
		MigrationDate:        &now,
	}
	if profile != nil {
		user.Name = auth.DisplayName(profile.Name)
		user.Sex = auth.SexFromLegacy(profile.Sex)
	}
	return user
}

func classification(profile *types.LegacyProfile) (userType, userRole string) {
	if profile == nil {
		return "", ""
	}
	return profile.UserType, profile.UserRole
}

func migrationFailureMessage(err error) string {
	switch MigrationErrorCode(err) {
	case CodeDuplicateUser:
		return "User already exists in local database"
	case CodeInvalidUserCredentials:
		return "User is not eligible for migration"
	case CodeAuthenticationFailed:
		return "Failed to authenticate with legacy directory"
	default:
		return "Failed to migrate user"
	}
}
