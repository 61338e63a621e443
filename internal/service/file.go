package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/integration"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
	"portfolioapi/internal/storage"
)

// DownloadURLExpiry bounds presigned download links.
const DownloadURLExpiry = 15 * time.Minute

// UploadInput describes one attachment upload.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	EntityType  string
	EntityID    string
}

// DownloadURL is a presigned link to a stored object.
type DownloadURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileService defines the use cases for attachments.
type FileService interface {
	// Upload stores the content in object storage, then saves metadata, and removes
	// the object again if the metadata cannot be saved. The stored name is a
	// UUID plus the original extension, under the key prefix of the
	// organization's S3 integration when one is connected.
	Upload(ctx context.Context, in UploadInput) (*model.File, error)

	// List returns the files attached to one entity.
	List(ctx context.Context, entityType, entityID string, p Page) (*ListResult[model.File], error)

	Get(ctx context.Context, id string) (*model.File, error)

	// DownloadURL returns a presigned link valid for DownloadURLExpiry.
	DownloadURL(ctx context.Context, id string) (*DownloadURL, error)

	// Open streams the stored content. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.File, error)

	// Delete removes the object, then its metadata.
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	store storage.Storage
	r     Repositories
	audit auditor
}

func NewFileService(store storage.Storage, r Repositories, rec audit.Recorder, log *zap.Logger) FileService {
	return &fileService{store: store, r: r, audit: newAuditor(rec, log)}
}

func fileOrg(f *model.File) string { return f.OrganizationID }

func (s *fileService) Upload(ctx context.Context, in UploadInput) (*model.File, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, invalid("filename is required")
	}
	if _, err := resolveEntity(ctx, s.r, a.OrgID, in.EntityType, in.EntityID); err != nil {
		return nil, err
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	prefix, err := integration.ObjectPrefix(ctx, s.r.Integrations, a.OrgID)
	if err != nil {
		return nil, err
	}

	id := newID()
	key := path.Join(prefix, "files", a.OrgID, id+strings.ToLower(filepath.Ext(in.Filename)))
	obj, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata:    map[string]string{"original-filename": filepath.Base(in.Filename)},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	size := obj.Size
	if size <= 0 {
		size = in.Size
	}
	f := &model.File{
		ID:             id,
		Filename:       filepath.Base(in.Filename),
		StoragePath:    obj.Key,
		Size:           size,
		ContentType:    in.ContentType,
		EntityType:     in.EntityType,
		EntityID:       in.EntityID,
		OrganizationID: a.OrgID,
		UploadedBy:     a.UserID,
		CreatedAt:      now(),
	}
	stored, err := s.r.Files.Create(ctx, f)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	s.audit.record(ctx, a, audit.ActionCreate, "file", stored.ID, map[string]any{"entity_id": stored.EntityID, "size": stored.Size})
	return stored, nil
}

func (s *fileService) List(ctx context.Context, entityType, entityID string, p Page) (*ListResult[model.File], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := resolveEntity(ctx, s.r, a.OrgID, entityType, entityID); err != nil {
		return nil, err
	}
	pq := p.query()
	res, err := s.r.Files.List(ctx, repository.Filter{
		"organization_id": a.OrgID,
		"entity_type":     entityType,
		"entity_id":       entityID,
	}, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *fileService) Get(ctx context.Context, id string) (*model.File, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return inOrg(ctx, s.r.Files, id, a.OrgID, fileOrg)
}

func (s *fileService) DownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expires := now().Add(DownloadURLExpiry)
	url, err := s.store.PresignGet(ctx, f.StoragePath, DownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	return &DownloadURL{URL: url, ExpiresAt: expires}, nil
}

func (s *fileService) Open(ctx context.Context, id string) (io.ReadCloser, *model.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read storage: %w", err)
	}
	return rc, f, nil
}

// Delete is allowed to the uploader and to admins.
func (s *fileService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	f, err := inOrg(ctx, s.r.Files, id, a.OrgID, fileOrg)
	if err != nil {
		return err
	}
	if f.UploadedBy != a.UserID && !auth.IsAdmin(a.Role) {
		return ErrForbidden
	}
	// Storage first; on failure the record stays so the object is not orphaned.
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.r.Files.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "file", id, nil)
	return nil
}
