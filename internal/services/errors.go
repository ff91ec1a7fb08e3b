package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("account inactive")
	ErrIneligible           = errors.New("access denied: ineligible")
	ErrNotInLegacyDirectory = errors.New("access denied: not in legacy directory")
	ErrAuthService          = errors.New("authentication service error")

	ErrDuplicateUser       = errors.New("user already exists in local database")
	ErrIneligibleMigration = errors.New("invalid user credentials")
	ErrLegacyAuthFailed    = errors.New("legacy authentication failed")
	ErrMigrationFailed     = errors.New("migration failed")
	ErrBulkLimit           = fmt.Errorf("maximum %d emails allowed per bulk operation", MaxBulkMigrate)

	ErrEmailTaken = errors.New("email already registered")
)

// IneligibleError reports the legacy classification that failed the
// eligibility policy.
type IneligibleError struct {
	UserType string
	UserRole string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("access denied: ineligible (userType=%q, userRole=%q)", e.UserType, e.UserRole)
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible
}

// Reason is a machine-readable login denial reason.
type Reason string

const (
	ReasonInvalidCredentials   Reason = "invalid_credentials"
	ReasonAccountInactive      Reason = "account_inactive"
	ReasonIneligible           Reason = "access_denied_ineligible"
	ReasonNotInLegacyDirectory Reason = "access_denied_not_in_legacy_directory"
	ReasonServiceError         Reason = "authentication_service_error"
)

// DenialReason classifies a Login error.
func DenialReason(err error) Reason {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrDuplicateUser):
		return ReasonInvalidCredentials
	case errors.Is(err, ErrAccountInactive):
		return ReasonAccountInactive
	case errors.Is(err, ErrIneligible):
		return ReasonIneligible
	case errors.Is(err, ErrNotInLegacyDirectory):
		return ReasonNotInLegacyDirectory
	default:
		return ReasonServiceError
	}
}

const (
	CodeDuplicateUser          = "DUPLICATE_USER"
	CodeInvalidUserCredentials = "INVALID_USER_CREDENTIALS"
	CodeAuthenticationFailed   = "AUTHENTICATION_FAILED"
	CodeMigrationFailed        = "MIGRATION_FAILED"
)

// MigrationErrorCode maps a migration error to its result code.
func MigrationErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateUser):
		return CodeDuplicateUser
	case errors.Is(err, ErrIneligibleMigration):
		return CodeInvalidUserCredentials
	case errors.Is(err, ErrLegacyAuthFailed):
		return CodeAuthenticationFailed
	default:
		return CodeMigrationFailed
	}
}
