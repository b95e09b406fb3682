package domain

import "time"

// Service is a catalog item families can book: elderly care, childcare,
// nursing and so on. BaseRate is BDT per duration unit.
type Service struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Slug        string `gorm:"uniqueIndex"`
	Description string
	Category    string `gorm:"index"`
	BaseRate    int64
	Active      bool `gorm:"index;default:true"`
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
