package model

import "time"

type TeamMember struct {
	UserID   string    `bson:"user_id" json:"user_id"`
	Role     string    `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}

type Team struct {
	ID             string       `bson:"_id" json:"id"`
	Name           string       `bson:"name" json:"name"`
	Description    string       `bson:"description" json:"description"`
	OrganizationID string       `bson:"organization_id" json:"organization_id"`
	LeadID         string       `bson:"lead_id" json:"lead_id"`
	Members        []TeamMember `bson:"members" json:"members"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is listed in the team.
func (t Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
