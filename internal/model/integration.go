package model

import "time"

// Integration providers.
const (
	ProviderSlack  = "slack"
	ProviderTeams  = "teams"
	ProviderGitHub = "github"
	ProviderGoogle = "google_workspace"
	ProviderS3     = "s3"
)

// Integration is an organization's connection to an external provider.
type Integration struct {
	ID             string            `bson:"_id" json:"id"`
	OrganizationID string            `bson:"organization_id" json:"organization_id"`
	Provider       string            `bson:"provider" json:"provider"`
	Status         string            `bson:"status" json:"status"`
	Settings       map[string]string `bson:"settings" json:"settings"`
	ConnectedBy    string            `bson:"connected_by" json:"connected_by"`
	ConnectedAt    *time.Time        `bson:"connected_at,omitempty" json:"connected_at,omitempty"`
	LastSyncAt     *time.Time        `bson:"last_sync_at,omitempty" json:"last_sync_at,omitempty"`
	CreatedAt      time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updated_at"`
}
