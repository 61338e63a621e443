package model

import "time"

// Entity types that comments, files and notifications can point at.
const (
	EntityProject = "project"
	EntityTask    = "task"
)

type Comment struct {
	ID             string    `bson:"_id" json:"id"`
	EntityType     string    `bson:"entity_type" json:"entity_type"`
	EntityID       string    `bson:"entity_id" json:"entity_id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	AuthorID       string    `bson:"author_id" json:"author_id"`
	Content        string    `bson:"content" json:"content"`
	ParentID       string    `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Mentions       []string  `bson:"mentions" json:"mentions"`
	Edited         bool      `bson:"edited" json:"edited"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
