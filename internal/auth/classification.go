package auth

import (
	"strings"

	"github.com/seaportal/apiserver/types"
)

var legacyRoles = map[string]types.Role{
	LegacyRoleJobSeeker:     types.RoleJobSeeker,
	LegacyRoleManningAgency: types.RoleManningAgency,
	"SUPERADMIN":            types.RoleSuperAdmin,
	"EXHIBITOR":             types.RoleExhibitor,
	"SPONSOR":               types.RoleSponsor,
}

// RoleFromLegacy maps a legacy userRole string to a local role.
// Unknown values map to VISITOR.
func RoleFromLegacy(userRole string) types.Role {
	if role, ok := legacyRoles[userRole]; ok {
		return role
	}
	return types.RoleVisitor
}

// UserTypeFromLegacy maps a legacy userType string to a local user type.
// Unknown values map to OTHERS.
func UserTypeFromLegacy(userType string) types.UserType {
	switch t := types.UserType(userType); t {
	case types.UserTypeSeafarer, types.UserTypeCorporateProfessional, types.UserTypeStudents, types.UserTypeSuperAdmin:
		return t
	default:
		return types.UserTypeOthers
	}
}

// SexFromLegacy maps a legacy sex value, defaulting to MALE.
func SexFromLegacy(sex string) types.Sex {
	if strings.EqualFold(strings.TrimSpace(sex), string(types.SexFemale)) {
		return types.SexFemale
	}
	return types.SexMale
}

// DisplayName joins first and last names, trimming the result.
func DisplayName(name types.LegacyName) string {
	return strings.TrimSpace(strings.TrimSpace(name.First) + " " + strings.TrimSpace(name.Last))
}
