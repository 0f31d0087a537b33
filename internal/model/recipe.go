package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is a user-owned recipe record. The tag set only ever contains
// tags owned by the same user as the recipe.
type Recipe struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	TimeMinutes int             `json:"time_minutes" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(5,2);not null"`
	Link        string          `json:"link" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	User User  `json:"-" gorm:"foreignKey:UserID"`
	Tags []Tag `json:"tags" gorm:"many2many:recipe_tags"`
}
