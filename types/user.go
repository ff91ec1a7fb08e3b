package types

import "time"

// Role is the access role of a local user.
type Role string

const (
	RoleVisitor       Role = "VISITOR"
	RoleJobSeeker     Role = "JOBSEEKER"
	RoleManningAgency Role = "MANNING_AGENCY"
	RoleSuperAdmin    Role = "SUPERADMIN"
	RoleExhibitor     Role = "EXHIBITOR"
	RoleSponsor       Role = "SPONSOR"
)

// UserType is the professional category of a local user.
type UserType string

const (
	UserTypeSeafarer              UserType = "SEAFARER"
	UserTypeCorporateProfessional UserType = "CORPORATE_PROFESSIONAL"
	UserTypeStudents              UserType = "STUDENTS"
	UserTypeOthers                UserType = "OTHERS"
	UserTypeSuperAdmin            UserType = "SUPERADMIN"
)

type JobStatus string

const (
	JobStatusLooking    JobStatus = "LOOKING"
	JobStatusNotLooking JobStatus = "NOT_LOOKING"
	JobStatusEmployed   JobStatus = "EMPLOYED"
)

type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// User represents a local account holder.
// It is created either by direct signup or once by legacy migration.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is unique across all users.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	Sex Sex `json:"sex" db:"sex"`

	// Role indicates the user's access role within the portal.
	Role Role `json:"role" db:"role"`

	// UserType is nil for users who never chose a professional category.
	UserType *UserType `json:"userType" db:"user_type"`

	CurrentJobStatus *JobStatus `json:"currentJobStatus" db:"current_job_status"`

	IsEmailVerified bool `json:"isEmailVerified" db:"is_email_verified"`

	// MigratedFromSupabase is true once the user has been copied from, or
	// re-validated against, the legacy directory.
	MigratedFromSupabase bool `json:"migratedFromSupabase" db:"migrated_from_supabase"`

	// LegacyUserID references the legacy directory identity once migrated.
	LegacyUserID *string `json:"legacyUserId,omitempty" db:"legacy_user_id"`

	MigrationDate *time.Time `json:"migrationDate,omitempty" db:"migration_date"`

	// Accounts holds the user's credentials. It is only populated by
	// lookups that load credentials.
	Accounts []Account `json:"-" db:"-"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Account is a credential owned by a User.
type Account struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"userId" db:"user_id"`

	// Email mirrors the owner's email and is used for direct lookup.
	Email string `json:"email" db:"email"`

	// PasswordHash is empty for accounts without a password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	Status AccountStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PasswordAccount returns the first account carrying a password.
func (u User) PasswordAccount() (Account, bool) {
	for _, account := range u.Accounts {
		if account.PasswordHash != "" {
			return account, true
		}
	}
	return Account{}, false
}

// SessionUser is the projection of a User stored in a session.
type SessionUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             Role       `json:"role"`
	UserType         *UserType  `json:"userType"`
	CurrentJobStatus *JobStatus `json:"currentJobStatus"`
}

// SessionUserFrom builds the session projection for u.
func SessionUserFrom(u User) SessionUser {
	return SessionUser{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		UserType:         u.UserType,
		CurrentJobStatus: u.CurrentJobStatus,
	}
}
