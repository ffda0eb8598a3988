package authorization

import (
	"sort"
	"strings"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleAuthor UserRole = "author"
	RoleUser   UserRole = "user"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

type Permission string

const (
	// PermissionPreviewSections allows listing a page's sections and rendering editor or preview output.
	PermissionPreviewSections Permission = "preview_sections"
	// PermissionManageAllContent allows editing, reordering and migrating sections on any page.
	PermissionManageAllContent Permission = "manage_all_content"
	// PermissionManageSettings allows inspecting and warming the section factory.
	PermissionManageSettings Permission = "manage_settings"
	// PermissionManageSectionTypes allows registering, patching and removing section types at runtime.
	PermissionManageSectionTypes Permission = "manage_section_types"
)

var rolePermissions = map[UserRole]map[Permission]struct{}{
	RoleAdmin: {
		PermissionPreviewSections:    {},
		PermissionManageAllContent:   {},
		PermissionManageSettings:     {},
		PermissionManageSectionTypes: {},
	},
	RoleEditor: {
		PermissionPreviewSections:  {},
		PermissionManageAllContent: {},
	},
	RoleAuthor: {
		PermissionPreviewSections: {},
	},
	RoleUser: {},
}

func RoleHasPermission(role UserRole, permission Permission) bool {
	_, ok := rolePermissions[role][permission]
	return ok
}

// Permissions lists what a role may do, sorted by name.
func Permissions(role UserRole) []Permission {
	perms := make([]Permission, 0, len(rolePermissions[role]))
	for perm := range rolePermissions[role] {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// ParseUserRole accepts a role claim as string, []byte or UserRole.
func ParseUserRole(value interface{}) (UserRole, bool) {
	var raw string
	switch v := value.(type) {
	case UserRole:
		raw = string(v)
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return "", false
	}

	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}
