package roles

import (
	"net/http"
	"strings"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
)

// ============================================================================
// Roles
// ============================================================================

// Role is the closed set of portal roles. Anything outside this set fails
// closed: no permissions, empty visibility scope.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHR        Role = "hr"
	RoleLead      Role = "lead"
	RoleVolunteer Role = "volunteer"
)

// AllRoles returns the closed role set
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleLead, RoleVolunteer}
}

// Valid reports whether r is a member of the closed role set
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleLead, RoleVolunteer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes and validates a role string
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole().WithDetail("role", s)
	}
	return r, nil
}

// ============================================================================
// Capabilities & Permission Set
// ============================================================================

// Capability names one gated action. Every mutating operation in the system
// checks its capability before touching data.
type Capability string

const (
	CapCreate             Capability = "create"
	CapEdit               Capability = "edit"
	CapDelete             Capability = "delete"
	CapUploadDocuments    Capability = "upload_documents"
	CapViewAuditLog       Capability = "view_audit_log"
	CapManageUsers        Capability = "manage_users"
	CapScheduleInterviews Capability = "schedule_interviews"
	CapExportReports      Capability = "export_reports"
)

// PermissionSet is the per-role capability table entry
type PermissionSet struct {
	CanCreate             bool `json:"can_create"`
	CanEdit               bool `json:"can_edit"`
	CanDelete             bool `json:"can_delete"`
	CanUploadDocuments    bool `json:"can_upload_documents"`
	CanViewAuditLog       bool `json:"can_view_audit_log"`
	CanManageUsers        bool `json:"can_manage_users"`
	CanScheduleInterviews bool `json:"can_schedule_interviews"`
	CanExportReports      bool `json:"can_export_reports"`
}

// Has resolves one capability flag
func (p PermissionSet) Has(c Capability) bool {
	switch c {
	case CapCreate:
		return p.CanCreate
	case CapEdit:
		return p.CanEdit
	case CapDelete:
		return p.CanDelete
	case CapUploadDocuments:
		return p.CanUploadDocuments
	case CapViewAuditLog:
		return p.CanViewAuditLog
	case CapManageUsers:
		return p.CanManageUsers
	case CapScheduleInterviews:
		return p.CanScheduleInterviews
	case CapExportReports:
		return p.CanExportReports
	}
	return false
}

// permissionTable is the single authoritative capability table. Leads can
// edit records inside their team scope and export team reports; volunteers
// may only upload their own onboarding documents.
var permissionTable = map[Role]PermissionSet{
	RoleAdmin: {
		CanCreate:             true,
		CanEdit:               true,
		CanDelete:             true,
		CanUploadDocuments:    true,
		CanViewAuditLog:       true,
		CanManageUsers:        true,
		CanScheduleInterviews: true,
		CanExportReports:      true,
	},
	RoleHR: {
		CanCreate:             true,
		CanEdit:               true,
		CanDelete:             false,
		CanUploadDocuments:    true,
		CanViewAuditLog:       false,
		CanManageUsers:        false,
		CanScheduleInterviews: true,
		CanExportReports:      true,
	},
	RoleLead: {
		CanCreate:             false,
		CanEdit:               true,
		CanDelete:             false,
		CanUploadDocuments:    false,
		CanViewAuditLog:       false,
		CanManageUsers:        false,
		CanScheduleInterviews: false,
		CanExportReports:      true,
	},
	RoleVolunteer: {
		CanCreate:             false,
		CanEdit:               false,
		CanDelete:             false,
		CanUploadDocuments:    true,
		CanViewAuditLog:       false,
		CanManageUsers:        false,
		CanScheduleInterviews: false,
		CanExportReports:      false,
	},
}

// Permissions returns the permission set for a role. Unknown roles get the
// zero set, never the admin set.
func Permissions(role Role) (PermissionSet, bool) {
	p, ok := permissionTable[role]
	return p, ok
}

// CheckPermission is a pure lookup with no side effects. Unknown roles
// resolve to false for every capability.
func CheckPermission(role Role, capability Capability) bool {
	p, ok := permissionTable[role]
	if !ok {
		return false
	}
	return p.Has(capability)
}

// Require returns an error when the role lacks the capability. Callers must
// propagate it, never downgrade a denial to a silent no-op.
func Require(role Role, capability Capability) error {
	if !role.Valid() {
		return ErrUnknownRole().WithDetail("role", role.String())
	}
	if !CheckPermission(role, capability) {
		return ErrPermissionDenied().
			WithDetail("role", role.String()).
			WithDetail("capability", string(capability))
	}
	return nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("ROLES")

var (
	CodePermissionDenied = ErrRegistry.Register("PERMISSION_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Role lacks the required capability")
	CodeUnknownRole      = ErrRegistry.Register("UNKNOWN_ROLE", errx.TypeAuthorization, http.StatusForbidden, "Role is not recognized")
)

func ErrPermissionDenied() *errx.Error {
	return ErrRegistry.New(CodePermissionDenied)
}

func ErrUnknownRole() *errx.Error {
	return ErrRegistry.New(CodeUnknownRole)
}
