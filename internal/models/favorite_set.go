package models

import "time"

// FavoriteSet is the SQL row backing one identity's favorites. Payload holds
// the JSON-encoded ID sequence exactly as written.
type FavoriteSet struct {
	Namespace string    `gorm:"primaryKey;size:50" json:"namespace"`
	Identity  string    `gorm:"primaryKey;size:128" json:"identity"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FavoriteSet) TableName() string {
	return "favorite_sets"
}
