package user

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
	RoleRider    Role = "rider"
)

type Status string

const (
	StatusActive Status = "active"
	StatusBanned Status = "banned"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	Status       Status
	CreatedAt    time.Time
}

// CanAct reports whether the account may perform any operation.
// Banned users are rejected at the boundary, before business logic runs.
func (u *User) CanAct() bool {
	return u.Status == StatusActive
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Actor is the authenticated identity attached to every request that
// reaches the order and delivery services.
type Actor struct {
	ID   int64
	Role Role
}
