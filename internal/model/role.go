package model

import "time"

// CustomRole is an organization-defined permission set. System roles are
// not stored; they are synthesized with IsSystem set.
type CustomRole struct {
	ID             string    `bson:"_id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	Name           string    `bson:"name" json:"name"`
	Description    string    `bson:"description" json:"description"`
	Permissions    []string  `bson:"permissions" json:"permissions"`
	IsSystem       bool      `bson:"-" json:"is_system"`
	CreatedBy      string    `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
