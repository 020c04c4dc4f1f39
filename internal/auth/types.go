package auth

import "time"

// Staff is a delegated identity that acts on a single owner's data.
// OwnerID is fixed at creation and scopes everything the staff can reach.
type Staff struct {
	ID                  string
	OwnerID             string
	Email               string
	Name                string
	Phone               string
	PasswordHash        string
	FailedLoginAttempts int
	Active              bool
	SessionToken        string
	SessionExpiry       time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Profile is the staff view safe to return to callers: no password hash,
// no session token.
type Profile struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	Email   string    `json:"email"`
	Name    string    `json:"name,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Active  bool      `json:"active"`
	Created time.Time `json:"created_at"`
	Updated time.Time `json:"updated_at"`
}

// Profile strips credentials and session state from the record.
func (s *Staff) Profile() Profile {
	return Profile{
		ID:      s.ID,
		OwnerID: s.OwnerID,
		Email:   s.Email,
		Name:    s.Name,
		Phone:   s.Phone,
		Active:  s.Active,
		Created: s.CreatedAt,
		Updated: s.UpdatedAt,
	}
}

// PermissionDefinition is one row of the immutable permission catalog.
// Key is the only field other components reference; the tab/action keys
// exist so a UI can group toggles.
type PermissionDefinition struct {
	Key         string    `json:"permission_key"`
	MainTab     string    `json:"main_tab_key"`
	SubTab      string    `json:"sub_tab_key,omitempty"`
	Action      string    `json:"action_key"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Grant enables one permission key for one staff member. A missing row
// reads the same as Enabled=false.
type Grant struct {
	StaffID       string    `json:"staff_id"`
	PermissionKey string    `json:"permission_key"`
	Enabled       bool      `json:"is_enabled"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// IdentityKind tags the two caller variants.
type IdentityKind int

const (
	// IdentityOwner is the tenant itself, resolved by the external oracle.
	IdentityOwner IdentityKind = iota + 1
	// IdentityStaff is a delegated account resolved via a session token.
	IdentityStaff
)

// Identity is the resolved caller: either the owner or one of its staff.
// OwnerID is set for both kinds, so downstream queries scope to a single
// tenant without caring who is acting.
type Identity struct {
	Kind    IdentityKind
	OwnerID string
	Staff   *Staff
}

// OwnerIdentity builds the owner variant.
func OwnerIdentity(ownerID string) Identity {
	return Identity{Kind: IdentityOwner, OwnerID: ownerID}
}

// StaffIdentity builds the staff variant; the owner id comes off the record.
func StaffIdentity(staff *Staff) Identity {
	return Identity{Kind: IdentityStaff, OwnerID: staff.OwnerID, Staff: staff}
}

// IsOwner reports whether the caller is the tenant itself.
func (i Identity) IsOwner() bool { return i.Kind == IdentityOwner }
