package entities

import "time"

// CatalogMetadata points at the most recently generated PDF catalog and
// the user who generated it.
type CatalogMetadata struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    *string   `json:"userId"`
	Link      *string   `json:"link"`
	User      *User     `json:"user"`
}
