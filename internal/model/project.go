package model

import "time"

// Project statuses.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Priorities shared by projects, tasks and notifications.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Budget tracks planned and spent money for a project.
type Budget struct {
	Total    float64 `bson:"total" json:"total"`
	Spent    float64 `bson:"spent" json:"spent"`
	Currency string  `bson:"currency" json:"currency"`
}

type Project struct {
	ID             string     `bson:"_id" json:"id"`
	Name           string     `bson:"name" json:"name"`
	Description    string     `bson:"description" json:"description"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	OwnerID        string     `bson:"owner_id" json:"owner_id"`
	Status         string     `bson:"status" json:"status"`
	Priority       string     `bson:"priority" json:"priority"`
	StartDate      *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	DueDate        *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Budget         Budget     `bson:"budget" json:"budget"`
	Progress       float64    `bson:"progress" json:"progress"`
	TeamMembers    []string   `bson:"team_members" json:"team_members"`
	Tags           []string   `bson:"tags" json:"tags"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsClosed reports whether no more work is expected on the project.
func (p Project) IsClosed() bool {
	return p.Status == ProjectStatusCompleted || p.Status == ProjectStatusCancelled
}
