package types

// LegacyIdentity is a user record read from the legacy directory.
type LegacyIdentity struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`

	// Password is stored in an undetermined format: plaintext, a bcrypt
	// hash, or a hex MD5 digest.
	Password string `json:"-" db:"password"`

	Consent bool   `json:"consent" db:"consent"`
	Status  string `json:"status" db:"status"`
}

type LegacyName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type LegacyAddress struct {
	Street *string `json:"street"`
	City   *string `json:"city"`
}

// LegacyProfile is the detail record correlated with a LegacyIdentity by ID.
type LegacyProfile struct {
	ID       string        `json:"id"`
	Name     LegacyName    `json:"name"`
	UserType string        `json:"userType"`
	UserRole string        `json:"userRole"`
	Sex      string        `json:"sex"`
	Phone    string        `json:"phone"`
	Address  LegacyAddress `json:"address"`
}
