package models

import "time"

// Session is an anonymous identity. Its ID is the token held in the client cookie.
type Session struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
