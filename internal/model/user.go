package model

import (
	"time"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserApproved UserStatus = "approved"
	UserRejected UserStatus = "rejected"
)

// swagger:model User
type User struct {
	BaseModel
	Name        string     `gorm:"size:100;not null" json:"name"`
	Email       string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"size:100;not null" json:"-"`
	Role        UserRole   `gorm:"size:20;default:'member';index" json:"role"`
	Status      UserStatus `gorm:"size:20;default:'pending';index" json:"status"`
	CompanyName string     `gorm:"size:255" json:"companyName"`
	LastLogin   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"lastLogin"`
	LastSeen    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}
