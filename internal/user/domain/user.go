package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string  // empty for OAuth-only accounts
	Role         Role    `gorm:"index;default:USER"`
	Contact      string
	NID          *string `gorm:"column:nid;uniqueIndex"`
	Division     string
	District     string
	Upazila      string
	Address      string
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
