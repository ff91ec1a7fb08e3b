package auth

const (
	LegacyRoleJobSeeker     = "Job Seeker"
	LegacyRoleManningAgency = "Manning Agency"
)

// IsEligible reports whether a legacy (userType, userRole) pair may be
// migrated or keep accessing the portal.
func IsEligible(userType, userRole string) bool {
	switch userType {
	case "CORPORATE_PROFESSIONAL":
		return true
	case "SEAFARER", "STUDENTS":
		return userRole == LegacyRoleJobSeeker
	case "OTHERS":
		return userRole == LegacyRoleManningAgency || userRole == LegacyRoleJobSeeker
	default:
		return false
	}
}
