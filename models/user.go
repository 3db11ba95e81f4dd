package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEditor   UserRole = "editor"
	RoleEmployee UserRole = "employee"
	// RoleViewer is assigned to self-registered accounts.
	RoleViewer UserRole = "viewer"
)

// ExternalAuthPassword is stored for users created through identity sync.
// It is not a bcrypt hash, so password login always fails for those rows.
const ExternalAuthPassword = "external_auth"

type User struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Username   string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email      string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"size:255;not null"`
	ExternalID *string   `json:"external_id,omitempty" gorm:"size:128;uniqueIndex"`
	Role       UserRole  `json:"role" gorm:"size:20;default:'employee'"`
	CreatedAt  time.Time `json:"created_at"`
}
