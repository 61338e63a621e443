package model

import "time"

// User statuses.
const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// Skill is a self-declared or assessed proficiency. Level ranges from 1 to 5.
type Skill struct {
	Name            string  `bson:"name" json:"name"`
	Level           int     `bson:"level" json:"level"`
	YearsExperience float64 `bson:"years_experience" json:"years_experience"`
}

// User is an account that belongs to at most one organization.
type User struct {
	ID             string     `bson:"_id" json:"id"`
	Email          string     `bson:"email" json:"email"`
	PasswordHash   string     `bson:"password_hash" json:"-"`
	FirstName      string     `bson:"first_name" json:"first_name"`
	LastName       string     `bson:"last_name" json:"last_name"`
	Role           string     `bson:"role" json:"role"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	Status         string     `bson:"status" json:"status"`
	Department     string     `bson:"department" json:"department"`
	Title          string     `bson:"title" json:"title"`
	Skills         []Skill    `bson:"skills" json:"skills"`
	CapacityHours  float64    `bson:"capacity_hours" json:"capacity_hours"`
	HourlyRate     float64    `bson:"hourly_rate" json:"hourly_rate"`
	LastLoginAt    *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`

	// RequestedOrganizationID is set by self-registration until an admin of
	// that organization activates the account.
	RequestedOrganizationID string `bson:"requested_organization_id,omitempty" json:"requested_organization_id,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SkillLevel returns the user's level for the named skill, or 0.
func (u User) SkillLevel(name string) int {
	for _, s := range u.Skills {
		if equalFold(s.Name, name) {
			return s.Level
		}
	}
	return 0
}
