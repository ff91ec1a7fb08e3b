package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEligibleCrossProduct(t *testing.T) {
	userTypes := []string{"CORPORATE_PROFESSIONAL", "SEAFARER", "STUDENTS", "OTHERS", "SUPERADMIN", "", "seafarer", "CAPTAIN"}
	userRoles := []string{"Job Seeker", "Manning Agency", "SUPERADMIN", "EXHIBITOR", "SPONSOR", "", "job seeker", "Recruiter"}

	expected := func(userType, userRole string) bool {
		switch userType {
		case "CORPORATE_PROFESSIONAL":
			return true
		case "SEAFARER", "STUDENTS":
			return userRole == "Job Seeker"
		case "OTHERS":
			return userRole == "Manning Agency" || userRole == "Job Seeker"
		}
		return false
	}

	for _, userType := range userTypes {
		for _, userRole := range userRoles {
			t.Run(fmt.Sprintf("%q/%q", userType, userRole), func(t *testing.T) {
				assert.Equal(t, expected(userType, userRole), IsEligible(userType, userRole))
			})
		}
	}
}

func TestIsEligibleTable(t *testing.T) {
	assert.True(t, IsEligible("SEAFARER", "Job Seeker"))
	assert.False(t, IsEligible("SEAFARER", "Manning Agency"))
	assert.True(t, IsEligible("STUDENTS", "Job Seeker"))
	assert.False(t, IsEligible("STUDENTS", "Manning Agency"))
	assert.True(t, IsEligible("OTHERS", "Manning Agency"))
	assert.True(t, IsEligible("OTHERS", "Job Seeker"))
	assert.False(t, IsEligible("OTHERS", "SPONSOR"))
	assert.True(t, IsEligible("CORPORATE_PROFESSIONAL", ""))
	assert.False(t, IsEligible("", "Job Seeker"))
	assert.False(t, IsEligible("SUPERADMIN", "SUPERADMIN"))
}
