package roles

import (
	"testing"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPermission_Table(t *testing.T) {
	tests := []struct {
		role       Role
		capability Capability
		want       bool
	}{
		{RoleAdmin, CapCreate, true},
		{RoleAdmin, CapDelete, true},
		{RoleAdmin, CapManageUsers, true},
		{RoleAdmin, CapViewAuditLog, true},

		{RoleHR, CapCreate, true},
		{RoleHR, CapEdit, true},
		{RoleHR, CapDelete, false},
		{RoleHR, CapManageUsers, false},
		{RoleHR, CapScheduleInterviews, true},

		{RoleLead, CapCreate, false},
		{RoleLead, CapEdit, true},
		{RoleLead, CapDelete, false},
		{RoleLead, CapExportReports, true},
		{RoleLead, CapUploadDocuments, false},

		{RoleVolunteer, CapUploadDocuments, true},
		{RoleVolunteer, CapCreate, false},
		{RoleVolunteer, CapEdit, false},
		{RoleVolunteer, CapExportReports, false},
	}

	for _, tt := range tests {
		got := CheckPermission(tt.role, tt.capability)
		assert.Equal(t, tt.want, got, "%s / %s", tt.role, tt.capability)
	}
}

func TestCheckPermission_UnknownRoleFailsClosed(t *testing.T) {
	for _, capability := range []Capability{
		CapCreate, CapEdit, CapDelete, CapUploadDocuments,
		CapViewAuditLog, CapManageUsers, CapScheduleInterviews, CapExportReports,
	} {
		assert.False(t, CheckPermission(Role("superuser"), capability))
		assert.False(t, CheckPermission(Role(""), capability))
	}
}

func TestPermissions_UnknownRoleGetsZeroSet(t *testing.T) {
	p, ok := Permissions(Role("intern"))
	assert.False(t, ok)
	assert.Equal(t, PermissionSet{}, p)
}

func TestRequire(t *testing.T) {
	require.NoError(t, Require(RoleAdmin, CapDelete))

	err := Require(RoleVolunteer, CapDelete)
	require.Error(t, err)
	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodePermissionDenied), e.Code)

	err = Require(Role("superuser"), CapDelete)
	require.Error(t, err)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(CodeUnknownRole), e.Code)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("root")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}
