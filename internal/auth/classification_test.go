package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seaportal/apiserver/types"
)

func TestRoleFromLegacy(t *testing.T) {
	assert.Equal(t, types.RoleJobSeeker, RoleFromLegacy("Job Seeker"))
	assert.Equal(t, types.RoleManningAgency, RoleFromLegacy("Manning Agency"))
	assert.Equal(t, types.RoleSuperAdmin, RoleFromLegacy("SUPERADMIN"))
	assert.Equal(t, types.RoleExhibitor, RoleFromLegacy("EXHIBITOR"))
	assert.Equal(t, types.RoleSponsor, RoleFromLegacy("SPONSOR"))
	assert.Equal(t, types.RoleVisitor, RoleFromLegacy("job seeker"))
	assert.Equal(t, types.RoleVisitor, RoleFromLegacy(""))
}

func TestUserTypeFromLegacy(t *testing.T) {
	assert.Equal(t, types.UserTypeSeafarer, UserTypeFromLegacy("SEAFARER"))
	assert.Equal(t, types.UserTypeCorporateProfessional, UserTypeFromLegacy("CORPORATE_PROFESSIONAL"))
	assert.Equal(t, types.UserTypeStudents, UserTypeFromLegacy("STUDENTS"))
	assert.Equal(t, types.UserTypeSuperAdmin, UserTypeFromLegacy("SUPERADMIN"))
	assert.Equal(t, types.UserTypeOthers, UserTypeFromLegacy("OTHERS"))
	assert.Equal(t, types.UserTypeOthers, UserTypeFromLegacy("Cadet"))
	assert.Equal(t, types.UserTypeOthers, UserTypeFromLegacy(""))
}

func TestSexFromLegacy(t *testing.T) {
	assert.Equal(t, types.SexFemale, SexFromLegacy("FEMALE"))
	assert.Equal(t, types.SexFemale, SexFromLegacy("female"))
	assert.Equal(t, types.SexMale, SexFromLegacy("MALE"))
	assert.Equal(t, types.SexMale, SexFromLegacy(""))
	assert.Equal(t, types.SexMale, SexFromLegacy("other"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", DisplayName(types.LegacyName{First: "Ada", Last: "Lovelace"}))
	assert.Equal(t, "Ada", DisplayName(types.LegacyName{First: "Ada"}))
	assert.Equal(t, "Lovelace", DisplayName(types.LegacyName{Last: " Lovelace "}))
	assert.Equal(t, "", DisplayName(types.LegacyName{}))
}
