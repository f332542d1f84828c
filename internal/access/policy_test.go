package access_test

import (
	"errors"
	"ms-hotel/internal/access"
	"ms-hotel/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(t *testing.T) *access.Policy {
	policy, err := access.NewPolicy(access.DefaultGrants())
	require.NoError(t, err)
	return policy
}

func TestAuthorizeNilSession(t *testing.T) {
	policy := newTestPolicy(t)

	err := policy.Authorize(nil, access.SectionBookings)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAccessDenied))
}

func TestAuthorizeAdminWildcard(t *testing.T) {
	policy := newTestPolicy(t)
	session := &models.Session{UserID: "u1", Role: models.RoleAdmin}

	for _, section := range []access.Section{
		access.SectionRooms,
		access.SectionBookings,
		access.SectionBilling,
		access.SectionInventory,
		access.SectionReports,
	} {
		assert.NoError(t, policy.Authorize(session, section))
	}
}

func TestAuthorizeRoleTable(t *testing.T) {
	policy := newTestPolicy(t)

	tests := []struct {
		role    models.Role
		section access.Section
		allowed bool
	}{
		{models.RoleReceptionist, access.SectionBookings, true},
		{models.RoleReceptionist, access.SectionBilling, false},
		{models.RoleAccountant, access.SectionBilling, true},
		{models.RoleAccountant, access.SectionBookings, false},
		{models.RoleStaff, access.SectionServices, true},
		{models.RoleStaff, access.SectionInventory, false},
		{models.RoleManager, access.SectionInventory, true},
		{models.RoleManager, access.SectionBilling, false},
	}

	for _, tc := range tests {
		err := policy.Authorize(&models.Session{UserID: "u", Role: tc.role}, tc.section)
		if tc.allowed {
			assert.NoError(t, err, "%s should access %s", tc.role, tc.section)
		} else {
			assert.True(t, errors.Is(err, models.ErrAccessDenied), "%s should be denied %s", tc.role, tc.section)
		}
	}
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	policy := newTestPolicy(t)

	err := policy.Authorize(&models.Session{UserID: "u", Role: models.Role("intern")}, access.SectionRooms)
	assert.True(t, errors.Is(err, models.ErrAccessDenied))
}

func TestNewPolicyRejectsUnknownSection(t *testing.T) {
	_, err := access.NewPolicy(map[models.Role][]access.Section{
		models.RoleStaff: {access.Section("payroll")},
	})
	assert.Error(t, err)
}

func TestNewPolicyRejectsUnknownRole(t *testing.T) {
	_, err := access.NewPolicy(map[models.Role][]access.Section{
		models.Role("superuser"): {access.SectionAll},
	})
	assert.Error(t, err)
}
