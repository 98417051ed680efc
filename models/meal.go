package models

import "time"

// Meal is one logged meal, owned by exactly one session.
type Meal struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Seq         int64     `gorm:"->" json:"-"` // insertion order, assigned by the database
	SessionID   string    `gorm:"type:uuid;not null;index" json:"sessionId"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IsUnderDiet bool      `gorm:"not null" json:"isUnderDiet"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
