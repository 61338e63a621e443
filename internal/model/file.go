package model

import "time"

// File is the metadata of an object kept in S3-compatible storage.
type File struct {
	ID             string    `bson:"_id" json:"id"`
	Filename       string    `bson:"filename" json:"filename"`
	StoragePath    string    `bson:"storage_path" json:"storage_path"`
	Size           int64     `bson:"size" json:"size"`
	ContentType    string    `bson:"content_type" json:"content_type"`
	EntityType     string    `bson:"entity_type" json:"entity_type"`
	EntityID       string    `bson:"entity_id" json:"entity_id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	UploadedBy     string    `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
