package model

import "time"

// Tag is a short label attached to recipes. Names are unique per owner;
// the composite index backs the conflict-tolerant get-or-create.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:idx_tags_user_name"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_tags_user_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}
