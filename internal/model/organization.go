package model

import "time"

// Organization owns every portfolio resource.
type Organization struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	Description string    `bson:"description" json:"description"`
	Industry    string    `bson:"industry" json:"industry"`
	Size        string    `bson:"size" json:"size"`
	OwnerID     string    `bson:"owner_id" json:"owner_id"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
