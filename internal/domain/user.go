package domain

import "time"

// Role enumerates the closed set of actor roles.
type Role string

const (
	RoleClient          Role = "client"
	RoleCareerAssociate Role = "career_associate"
	RoleAccountManager  Role = "account_manager"
	RoleSales           Role = "sales"
	RoleCRO             Role = "cro"
	RoleCOO             Role = "coo"
	RoleCEO             Role = "ceo"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Capability describes what a role is allowed to do. Permission checks
// consult this table once per operation instead of comparing role strings
// in each branch.
type Capability struct {
	IsExecutive   bool
	CanResolve    bool
	CanCreate     []TicketType
	CanPickClient bool
}

var capabilities = map[Role]Capability{
	RoleClient: {
		CanCreate: []TicketType{TicketTypeVolumeShortfall, TicketTypeDataMismatch},
	},
	RoleCareerAssociate: {
		CanCreate: []TicketType{TicketTypeVolumeShortfall, TicketTypeDataMismatch},
	},
	RoleAccountManager: {
		CanResolve:    true,
		CanCreate:     []TicketType{TicketTypeVolumeShortfall, TicketTypeDataMismatch},
		CanPickClient: true,
	},
	RoleSales: {
		CanCreate:     []TicketType{TicketTypeDataMismatch},
		CanPickClient: true,
	},
	RoleCRO: {IsExecutive: true, CanResolve: true, CanCreate: allTicketTypes, CanPickClient: true},
	RoleCOO: {IsExecutive: true, CanResolve: true, CanCreate: allTicketTypes, CanPickClient: true},
	RoleCEO: {IsExecutive: true, CanResolve: true, CanCreate: allTicketTypes, CanPickClient: true},
}

var allTicketTypes = []TicketType{TicketTypeVolumeShortfall, TicketTypeDataMismatch}

// Capabilities returns the capability row for a role. Unknown roles get the
// zero capability, which permits nothing.
func Capabilities(r Role) Capability {
	return capabilities[r]
}

// CanCreateType reports whether the role may open tickets of the given type.
func (c Capability) CanCreateType(t TicketType) bool {
	for _, allowed := range c.CanCreate {
		if allowed == t {
			return true
		}
	}
	return false
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is any authenticated actor: staff or client.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsClient reports whether the user authenticates as a client.
func (u *User) IsClient() bool {
	return u != nil && u.Role == RoleClient
}
