package domain

type Resource string

const (
	ResourceBookings    Resource = "bookings"
	ResourceClients     Resource = "clients"
	ResourceServices    Resource = "services"
	ResourcePackages    Resource = "packages"
	ResourceUsers       Resource = "users"
	ResourceAnalytics   Resource = "analytics"
	ResourceChat        Resource = "chat"
	ResourceBotSettings Resource = "bot_settings"
)

var Resources = []Resource{
	ResourceBookings, ResourceClients, ResourceServices, ResourcePackages,
	ResourceUsers, ResourceAnalytics, ResourceChat, ResourceBotSettings,
}

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

func (r Resource) Valid() bool {
	for _, v := range Resources {
		if v == r {
			return true
		}
	}
	return false
}

func (a Action) Valid() bool {
	for _, v := range Actions {
		if v == a {
			return true
		}
	}
	return false
}

// PermissionSet is the resource -> {view, create, edit, delete} matrix.
type PermissionSet map[Resource]map[Action]bool

func (p PermissionSet) Allows(r Resource, a Action) bool {
	return p[r][a]
}

func (p PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(p))
	for r, acts := range p {
		m := make(map[Action]bool, len(acts))
		for a, v := range acts {
			m[a] = v
		}
		out[r] = m
	}
	return out
}

var (
	crud     = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}
	viewOnly = []Action{ActionView}
	noDelete = []Action{ActionView, ActionCreate, ActionEdit}
)

// roleGrants is the single role -> permissions table. Every route guard
// resolves through it; nothing else switches on role strings.
var roleGrants = map[UserRole]map[Resource][]Action{
	RoleAdmin: {},
	RoleManager: {
		ResourceBookings:    crud,
		ResourceClients:     crud,
		ResourceServices:    noDelete,
		ResourcePackages:    noDelete,
		ResourceUsers:       viewOnly,
		ResourceAnalytics:   viewOnly,
		ResourceChat:        {ActionView, ActionCreate},
		ResourceBotSettings: viewOnly,
	},
	RoleSales: {
		ResourceBookings: noDelete,
		ResourceClients:  noDelete,
		ResourceServices: viewOnly,
		ResourcePackages: viewOnly,
		ResourceChat:     {ActionView, ActionCreate},
	},
	RoleMarketer: {
		ResourceClients:     viewOnly,
		ResourceServices:    viewOnly,
		ResourcePackages:    crud,
		ResourceAnalytics:   viewOnly,
		ResourceChat:        {ActionView, ActionCreate},
		ResourceBotSettings: {ActionView, ActionEdit},
	},
	RoleEmployee: {
		ResourceBookings: viewOnly,
		ResourceClients:  viewOnly,
		ResourceServices: viewOnly,
		ResourceChat:     {ActionView, ActionCreate},
	},
}

var dashboards = map[UserRole]string{
	RoleAdmin:    "/admin",
	RoleManager:  "/manager",
	RoleSales:    "/sales",
	RoleMarketer: "/marketer",
	RoleEmployee: "/employee",
}

// DashboardPath is the frontend home for a role.
func DashboardPath(role UserRole) string {
	if p, ok := dashboards[role]; ok {
		return p
	}
	return "/"
}

// RolePermissions returns the default matrix for a role with every
// resource/action present.
func RolePermissions(role UserRole) PermissionSet {
	out := make(PermissionSet, len(Resources))
	for _, r := range Resources {
		out[r] = make(map[Action]bool, len(Actions))
		for _, a := range Actions {
			out[r][a] = role == RoleAdmin
		}
	}
	if role == RoleAdmin {
		return out
	}
	for r, acts := range roleGrants[role] {
		for _, a := range acts {
			out[r][a] = true
		}
	}
	return out
}

// EffectivePermissions overlays per-user overrides on the role defaults.
// Admins cannot be restricted.
func EffectivePermissions(role UserRole, overrides []UserPermission) PermissionSet {
	out := RolePermissions(role)
	if role == RoleAdmin {
		return out
	}
	for _, o := range overrides {
		r, a := Resource(o.Resource), Action(o.Action)
		if !r.Valid() || !a.Valid() {
			continue
		}
		out[r][a] = o.Granted
	}
	return out
}
