package auth

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for credentials written by migration
// and credential repair.
const HashCost = 12

// SignupHashCost is the bcrypt work factor for direct signups.
const SignupHashCost = 10

const md5HexLength = 32

// MaxPasswordBytes is the bcrypt input limit. Longer passwords are truncated
// to it on every hash and compare, matching the legacy directory's hasher.
const MaxPasswordBytes = 72

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// LegacyFormat names the storage shape a legacy password matched.
type LegacyFormat string

const (
	FormatPlaintext LegacyFormat = "plaintext"
	FormatBcrypt    LegacyFormat = "bcrypt"
	FormatMD5       LegacyFormat = "md5"
	FormatUnknown   LegacyFormat = "unknown"
)

// HashPassword hashes password at HashCost.
func HashPassword(password string) (string, error) {
	return hashWithCost(password, HashCost)
}

// HashSignupPassword hashes password at SignupHashCost.
func HashSignupPassword(password string) (string, error) {
	return hashWithCost(password, SignupHashCost)
}

func hashWithCost(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares password with a local bcrypt hash.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		return b[:MaxPasswordBytes]
	}
	return b
}

// IsBcryptHash reports whether stored carries one of the recognized bcrypt
// version markers.
func IsBcryptHash(stored string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}

// VerifyLegacyPassword checks password against a legacy stored value of
// unknown format. Shapes are tried in order and the first match decides:
// exact plaintext, bcrypt marker, 32-character MD5 hex digest.
//
// A 32-character plaintext password is indistinguishable from an MD5 digest
// by shape; the plaintext check runs first so such a password still verifies
// when it is entered verbatim.
func VerifyLegacyPassword(password, stored string) (bool, LegacyFormat) {
	if stored != "" && subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1 {
		return true, FormatPlaintext
	}
	if IsBcryptHash(stored) {
		return CheckPassword(password, stored), FormatBcrypt
	}
	if len(stored) == md5HexLength {
		sum := md5.Sum([]byte(password))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(stored))) == 1, FormatMD5
	}
	return false, FormatUnknown
}

// CredentialFromLegacy returns the password hash to store for a migrated
// user: bcrypt-shaped values are kept verbatim, anything else is hashed.
func CredentialFromLegacy(stored string) (string, error) {
	if IsBcryptHash(stored) {
		return stored, nil
	}
	return HashPassword(stored)
}
