package policy

import (
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

// Role is the closed set of roles a principal can hold.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
	RoleViewer  Role = "Viewer"
	RoleUnknown Role = ""
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleUser, RoleManager, RoleViewer}

// ParseRole resolves a stored role name, ignoring case and surrounding space.
func ParseRole(name string) Role {
	name = strings.TrimSpace(name)
	for _, role := range Roles {
		if strings.EqualFold(string(role), name) {
			return role
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "none"
	}
	return string(r)
}

type Action int

const (
	ActionView Action = iota
	ActionEdit
	ActionArchive
	ActionAdminister
)

func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionEdit:
		return "edit"
	case ActionArchive:
		return "archive"
	case ActionAdminister:
		return "administer"
	}
	return "unknown"
}

type Capabilities struct {
	CanView       bool
	CanEdit       bool
	CanArchive    bool
	CanAdminister bool
}

func (c Capabilities) Allows(action Action) bool {
	switch action {
	case ActionView:
		return c.CanView
	case ActionEdit:
		return c.CanEdit
	case ActionArchive:
		return c.CanArchive
	case ActionAdminister:
		return c.CanAdminister
	}
	return false
}

var capabilityTable = map[Role]Capabilities{
	RoleAdmin:   {CanView: true, CanEdit: true, CanArchive: true, CanAdminister: true},
	RoleManager: {CanView: true, CanEdit: true, CanArchive: true},
	RoleUser:    {CanView: true},
	RoleViewer:  {CanView: true},
}

// CapabilitiesFor returns the capability set of role. Unknown roles get none.
func CapabilitiesFor(role Role) Capabilities {
	return capabilityTable[role]
}

// RolesAllowed lists the roles permitted to perform action.
func RolesAllowed(action Action) []Role {
	var allowed []Role
	for _, role := range Roles {
		if CapabilitiesFor(role).Allows(action) {
			allowed = append(allowed, role)
		}
	}
	return allowed
}

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID   uint64
	Username string
	Role     Role
}

func (p Principal) Can(action Action) bool {
	return CapabilitiesFor(p.Role).Allows(action)
}

// Require fails with an authorization error naming the permitted roles.
func (p Principal) Require(action Action) error {
	if p.Can(action) {
		return nil
	}

	allowed := RolesAllowed(action)
	names := make([]string, len(allowed))
	for i, role := range allowed {
		names[i] = string(role)
	}
	return apierrors.Authorization(fmt.Sprintf(
		"%s permission requires role %s; current role is %s",
		action, strings.Join(names, " or "), p.Role,
	))
}
