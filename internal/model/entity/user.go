package entity

import (
	"time"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleSales  = "sales"
	RoleYard   = "yard"
	RoleViewer = "viewer"
)

// User is a werf employee account.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         string     `json:"role" gorm:"size:16;not null;default:viewer"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
