package model

import "time"

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusInReview   = "in_review"
	TaskStatusBlocked    = "blocked"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

type Task struct {
	ID             string     `bson:"_id" json:"id"`
	Title          string     `bson:"title" json:"title"`
	Description    string     `bson:"description" json:"description"`
	ProjectID      string     `bson:"project_id" json:"project_id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	AssigneeID     string     `bson:"assignee_id" json:"assignee_id"`
	ReporterID     string     `bson:"reporter_id" json:"reporter_id"`
	Status         string     `bson:"status" json:"status"`
	Priority       string     `bson:"priority" json:"priority"`
	Type           string     `bson:"type" json:"type"`
	EstimatedHours float64    `bson:"estimated_hours" json:"estimated_hours"`
	ActualHours    float64    `bson:"actual_hours" json:"actual_hours"`
	StartDate      *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	DueDate        *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CompletedAt    *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	RequiredSkills []string   `bson:"required_skills" json:"required_skills"`
	Dependencies   []string   `bson:"dependencies" json:"dependencies"`
	Tags           []string   `bson:"tags" json:"tags"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsOpen reports whether the task still represents pending work.
func (t Task) IsOpen() bool {
	return t.Status != TaskStatusCompleted && t.Status != TaskStatusCancelled
}

// RemainingHours is the estimate not yet covered by logged hours.
func (t Task) RemainingHours() float64 {
	if r := t.EstimatedHours - t.ActualHours; r > 0 {
		return r
	}
	return 0
}

// IsOverdue reports whether an open task is past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	return t.IsOpen() && t.DueDate != nil && t.DueDate.Before(now)
}

// IsUrgent reports whether the task carries high or critical priority.
func (t Task) IsUrgent() bool {
	return t.Priority == PriorityHigh || t.Priority == PriorityCritical
}
