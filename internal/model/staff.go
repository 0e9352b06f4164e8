package model

import "time"

// Role is an access level. Customers have RoleCustomer and no staff profile.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleOwner    Role = "owner"
)

// ValidStaffRole reports whether r can be assigned to a staff profile.
func (r Role) ValidStaffRole() bool {
	return r == RoleStaff || r == RoleManager || r == RoleOwner
}

// IsManager reports manager-level access (owner or manager).
func (r Role) IsManager() bool {
	return r == RoleOwner || r == RoleManager
}

// IsOwner reports owner access.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}

// CanManageMenu reports whether r may edit menu content.
func (r Role) CanManageMenu() bool { return r.IsManager() }

// CanViewPayments reports whether r may see payments and refunds.
func (r Role) CanViewPayments() bool { return r.IsManager() }

// CanManageStaff reports whether r may manage staff accounts.
func (r Role) CanManageStaff() bool { return r.IsOwner() }

// Account is a login identity shared by customers and staff.
type Account struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns "First Last", falling back to the username.
func (a *Account) FullName() string {
	name := a.FirstName
	if a.LastName != "" {
		if name != "" {
			name += " "
		}
		name += a.LastName
	}
	if name == "" {
		return a.Username
	}
	return name
}

// StaffProfile grants dashboard access to an account.
type StaffProfile struct {
	ID        int64     `json:"id" db:"id"`
	AccountID int64     `json:"accountId" db:"account_id"`
	Role      Role      `json:"role" db:"role"`
	Phone     string    `json:"phone" db:"phone"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// StaffMember is a staff profile joined with its account.
type StaffMember struct {
	Profile StaffProfile `json:"profile"`
	Account Account      `json:"account"`
}

// StaffListing is the owner's view of staff accounts.
type StaffListing struct {
	Staff       []StaffMember `json:"staff"`
	TotalStaff  int           `json:"totalStaff"`
	ActiveStaff int           `json:"activeStaff"`
}

// StaffRequest creates a staff account.
type StaffRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// StaffUpdate edits a staff member's details and role.
type StaffUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
}

// PasswordReset sets a new password.
type PasswordReset struct {
	NewPassword  string `json:"newPassword"`
	NewPassword2 string `json:"newPassword2"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   Account   `json:"account"`
	Role      Role      `json:"role"`
}

// BlockedCustomer is an email barred from ordering and booking.
type BlockedCustomer struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Reason    string    `json:"reason" db:"reason"`
	BlockedAt time.Time `json:"blockedAt" db:"blocked_at"`
	BlockedBy *int64    `json:"blockedBy,omitempty" db:"blocked_by"`
}
