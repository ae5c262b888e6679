package model

type GlobalRole string

const (
	GlobalRoleAdminMaster GlobalRole = "ADMIN_MASTER"
	GlobalRoleUser        GlobalRole = "USER"
)

// User is a person known to the system. Users are created on first
// authentication from identity-provider claims; the global role is only
// changed by administrative action afterwards.
type User struct {
	Base
	Email           *string    `json:"email" db:"email"`
	Name            string     `json:"name" db:"name"`
	FirstName       *string    `json:"first_name" db:"first_name"`
	LastName        *string    `json:"last_name" db:"last_name"`
	Phone           *string    `json:"phone" db:"phone"`
	ProfileImageURL *string    `json:"profile_image_url" db:"profile_image_url"`
	Timezone        *string    `json:"timezone" db:"timezone"`
	GlobalRole      GlobalRole `json:"global_role" db:"global_role"`
}

// IsAdminMaster reports whether the user holds the system-wide
// super-admin role that escapes per-clinic scoping.
func (u *User) IsAdminMaster() bool {
	return u.GlobalRole == GlobalRoleAdminMaster
}

// UpsertUser carries the identity-provider claims persisted on first
// authentication.
type UpsertUser struct {
	ID              string
	Email           *string
	Name            string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
}

type UpdateUserRequest struct {
	Name       *string     `json:"name"`
	FirstName  *string     `json:"first_name"`
	LastName   *string     `json:"last_name"`
	Phone      *string     `json:"phone"`
	Timezone   *string     `json:"timezone"`
	GlobalRole *GlobalRole `json:"global_role" binding:"omitempty,oneof=ADMIN_MASTER USER"`
}
