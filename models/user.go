package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleManager      Role = "MANAGER"
	RoleWaiter       Role = "WAITER"
	RoleCashier      Role = "CASHIER"
	RoleKitchenStaff Role = "KITCHEN_STAFF"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleWaiter, RoleCashier, RoleKitchenStaff:
		return r, true
	}
	return "", false
}

// User is a staff account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'WAITER'" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
