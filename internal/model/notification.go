package model

import "time"

// Notification types.
const (
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskUpdated   = "task_updated"
	NotificationCommentAdded  = "comment_added"
	NotificationMention       = "mention"
	NotificationProjectUpdate = "project_update"
	NotificationSystem        = "system"
)

type Notification struct {
	ID             string     `bson:"_id" json:"id"`
	UserID         string     `bson:"user_id" json:"user_id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	Type           string     `bson:"type" json:"type"`
	Title          string     `bson:"title" json:"title"`
	Message        string     `bson:"message" json:"message"`
	EntityType     string     `bson:"entity_type,omitempty" json:"entity_type,omitempty"`
	EntityID       string     `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	Priority       string     `bson:"priority" json:"priority"`
	Read           bool       `bson:"read" json:"read"`
	ReadAt         *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
}
