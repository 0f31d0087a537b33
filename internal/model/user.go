package model

import "time"

// User represents an account holder. Every tag and recipe is owned by
// exactly one user.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Name         string    `json:"name" gorm:"size:255;not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	IsStaff      bool      `json:"is_staff" gorm:"default:false"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
