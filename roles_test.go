package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	session "github.com/hcas-dev/go-session"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, session.RolePatient.IsValid())
	assert.True(t, session.RoleStaff.IsValid())
	assert.True(t, session.RoleAdmin.IsValid())

	assert.False(t, session.Role("superuser").IsValid())
	assert.False(t, session.Role("").IsValid())
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role               session.Role
		dashboard          bool
		viewRecords        bool
		managePatients     bool
		manageAppointments bool
		manageStaff        bool
	}{
		{session.RolePatient, true, true, false, false, false},
		{session.RoleStaff, true, true, true, true, false},
		{session.RoleAdmin, true, true, true, true, true},
		{session.Role("unknown"), false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.dashboard, tt.role.CanViewDashboard())
			assert.Equal(t, tt.viewRecords, tt.role.CanViewRecords())
			assert.Equal(t, tt.managePatients, tt.role.CanManagePatients())
			assert.Equal(t, tt.manageAppointments, tt.role.CanManageAppointments())
			assert.Equal(t, tt.manageStaff, tt.role.CanManageStaff())
		})
	}
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, session.RoleAdmin.IsAtLeast(session.RolePatient))
	assert.True(t, session.RoleAdmin.IsAtLeast(session.RoleAdmin))
	assert.True(t, session.RoleStaff.IsAtLeast(session.RolePatient))

	assert.False(t, session.RolePatient.IsAtLeast(session.RoleStaff))
	assert.False(t, session.RoleStaff.IsAtLeast(session.RoleAdmin))
	assert.False(t, session.Role("unknown").IsAtLeast(session.RolePatient))
	assert.False(t, session.RoleAdmin.IsAtLeast(session.Role("unknown")))
}

func TestRoleOneOf(t *testing.T) {
	assert.True(t, session.RoleStaff.OneOf(session.RoleStaff, session.RoleAdmin))
	assert.False(t, session.RolePatient.OneOf(session.RoleStaff, session.RoleAdmin))

	// An empty allow list admits any valid role, and only valid roles.
	assert.True(t, session.RolePatient.OneOf())
	assert.False(t, session.Role("superuser").OneOf())
}

func TestParseRole(t *testing.T) {
	role, ok := session.ParseRole("staff")
	assert.True(t, ok)
	assert.Equal(t, session.RoleStaff, role)

	_, ok = session.ParseRole("root")
	assert.False(t, ok)
}

func TestGetAllRoles(t *testing.T) {
	roles := session.GetAllRoles()
	assert.Equal(t, []session.Role{
		session.RolePatient,
		session.RoleStaff,
		session.RoleAdmin,
	}, roles)
}
