package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
	"portfolioapi/internal/storage"
)

var (
	ErrUnknownProvider = errors.New("unknown integration provider")
	ErrNotConnected    = errors.New("integration is not connected")
	ErrUnsupported     = errors.New("operation not supported by provider")
	ErrInvalidSettings = errors.New("invalid integration settings")
	ErrDelivery        = errors.New("webhook delivery failed")
)

const (
	statusConnected    = "connected"
	statusDisconnected = "disconnected"
	settingWebhook     = "webhook_url"
	settingToken       = "access_token"
	settingPrefix      = "prefix"
)

// Status is a catalog entry joined with the organization's connection.
type Status struct {
	Provider
	Status      string            `json:"status"`
	Config      map[string]string `json:"config,omitempty"`
	ConnectedAt *time.Time        `json:"connected_at,omitempty"`
	LastSyncAt  *time.Time        `json:"last_sync_at,omitempty"`
}

// TestResult reports a connectivity check.
type TestResult struct {
	Provider  string `json:"provider"`
	OK        bool   `json:"ok"`
	Simulated bool   `json:"simulated"`
	Message   string `json:"message"`
}

// Message is a notification sent through a provider.
type Message struct {
	Text    string `json:"text" validate:"required,max=4000"`
	Channel string `json:"channel"`
}

// Delivery reports a notification attempt.
type Delivery struct {
	Provider   string `json:"provider"`
	Delivered  bool   `json:"delivered"`
	Simulated  bool   `json:"simulated"`
	Channel    string `json:"channel,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// SyncResult reports a (simulated) pull from a provider.
type SyncResult struct {
	Provider  string         `json:"provider"`
	Simulated bool           `json:"simulated"`
	Items     map[string]int `json:"items"`
	SyncedAt  time.Time      `json:"synced_at"`
}

// Manager runs integration operations for one organization at a time.
type Manager struct {
	catalog *Catalog
	repo    repository.IntegrationRepository
	storage storage.Storage
	http    *http.Client
	log     *zap.Logger
	now     func() time.Time
}

func NewManager(catalog *Catalog, repo repository.IntegrationRepository, st storage.Storage, log *zap.Logger) *Manager {
	return &Manager{
		catalog: catalog,
		repo:    repo,
		storage: st,
		http:    &http.Client{Timeout: 10 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:     log.Named("integration"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns every available provider.
func (m *Manager) Catalog() []Provider { return m.catalog.Providers() }

// List joins the catalog with the organization's connections.
func (m *Manager) List(ctx context.Context, orgID string) ([]Status, error) {
	docs, err := m.repo.FindAll(ctx, repository.Filter{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	byProvider := make(map[string]model.Integration, len(docs))
	for _, d := range docs {
		byProvider[d.Provider] = d
	}

	out := make([]Status, 0, len(m.catalog.providers))
	for _, p := range m.catalog.Providers() {
		s := Status{Provider: p, Status: statusDisconnected}
		if d, ok := byProvider[p.ID]; ok {
			s.Status = d.Status
			s.Config = mask(p, d.Settings)
			s.ConnectedAt = d.ConnectedAt
			s.LastSyncAt = d.LastSyncAt
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Manager) provider(id string) (Provider, error) {
	p, ok := m.catalog.Get(id)
	if !ok {
		return Provider{}, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return p, nil
}

func (m *Manager) connection(ctx context.Context, orgID, provider string) (*model.Integration, error) {
	doc, err := m.repo.FindOne(ctx, repository.Filter{"organization_id": orgID, "provider": provider})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotConnected, provider)
		}
		return nil, err
	}
	if doc.Status != statusConnected {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, provider)
	}
	return doc, nil
}

// Setup connects or reconfigures a provider. A simulated access token stands
// in for the OAuth exchange.
func (m *Manager) Setup(ctx context.Context, orgID, actorID, providerID string, settings map[string]string) (*Status, error) {
	p, err := m.provider(providerID)
	if err != nil {
		return nil, err
	}
	clean, err := validateSettings(p, settings)
	if err != nil {
		return nil, err
	}
	clean[settingToken] = "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	now := m.now()

	doc, err := m.repo.FindOne(ctx, repository.Filter{"organization_id": orgID, "provider": p.ID})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		doc, err = m.repo.Create(ctx, &model.Integration{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			Provider:       p.ID,
			Status:         statusConnected,
			Settings:       clean,
			ConnectedBy:    actorID,
			ConnectedAt:    &now,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	case err == nil:
		doc, err = m.repo.Update(ctx, doc.ID, repository.Fields{
			"status":       statusConnected,
			"settings":     clean,
			"connected_by": actorID,
			"connected_at": now,
			"updated_at":   now,
		})
	}
	if err != nil {
		return nil, err
	}

	m.log.Info("integration_connected", zap.String("organization_id", orgID), zap.String("provider", p.ID))
	return &Status{Provider: p, Status: doc.Status, Config: mask(p, doc.Settings), ConnectedAt: doc.ConnectedAt, LastSyncAt: doc.LastSyncAt}, nil
}

func validateSettings(p Provider, in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		if _, ok := p.setting(k); !ok {
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalidSettings, k)
		}
		out[k] = strings.TrimSpace(v)
	}
	for _, s := range p.Settings {
		if s.Required && out[s.Key] == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidSettings, s.Key)
		}
	}
	if hook := out[settingWebhook]; hook != "" {
		u, err := url.Parse(hook)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return nil, fmt.Errorf("%w: webhook_url must be an http(s) URL", ErrInvalidSettings)
		}
	}
	if prefix, ok := out[settingPrefix]; ok {
		prefix = strings.Trim(prefix, "/")
		if prefix != "" && (path.Clean(prefix) != prefix || prefix == "." || strings.HasPrefix(prefix, "..")) {
			return nil, fmt.Errorf("%w: prefix must be a relative key path", ErrInvalidSettings)
		}
		out[settingPrefix] = prefix
	}
	return out, nil
}

// ObjectPrefix returns the key prefix set on the organization's S3
// connection, or "" when S3 is not connected.
func ObjectPrefix(ctx context.Context, repo repository.IntegrationRepository, orgID string) (string, error) {
	doc, err := repo.FindOne(ctx, repository.Filter{"organization_id": orgID, "provider": model.ProviderS3})
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if doc.Status != statusConnected {
		return "", nil
	}
	return doc.Settings[settingPrefix], nil
}

func mask(p Provider, settings map[string]string) map[string]string {
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		s, _ := p.setting(k)
		if (s.Secret || k == settingToken) && v != "" {
			if len(v) > 4 {
				v = "****" + v[len(v)-4:]
			} else {
				v = "****"
			}
		}
		out[k] = v
	}
	return out
}

// Test checks that a connected provider is usable. The S3 provider verifies
// the real bucket; webhook providers validate their configuration.
func (m *Manager) Test(ctx context.Context, orgID, providerID string) (*TestResult, error) {
	p, err := m.provider(providerID)
	if err != nil {
		return nil, err
	}
	doc, err := m.connection(ctx, orgID, p.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Has(CapStorage):
		bucket, err := m.storage.Check(ctx)
		if err != nil {
			return &TestResult{Provider: p.ID, OK: false, Message: err.Error()}, nil
		}
		return &TestResult{Provider: p.ID, OK: true, Message: "bucket " + bucket + " is reachable"}, nil
	case p.Has(CapNotify):
		if doc.Settings[settingWebhook] != "" {
			return &TestResult{Provider: p.ID, OK: true, Message: "webhook configured"}, nil
		}
		return &TestResult{Provider: p.ID, OK: true, Simulated: true, Message: "no webhook configured; deliveries are simulated"}, nil
	default:
		return &TestResult{Provider: p.ID, OK: true, Simulated: true, Message: p.Name + " connection simulated"}, nil
	}
}

// Notify posts msg to the provider's incoming webhook, or simulates the delivery
// when none is configured.
func (m *Manager) Notify(ctx context.Context, orgID, providerID string, msg Message) (*Delivery, error) {
	p, err := m.provider(providerID)
	if err != nil {
		return nil, err
	}
	if !p.Has(CapNotify) {
		return nil, fmt.Errorf("%w: %s cannot send notifications", ErrUnsupported, p.ID)
	}
	doc, err := m.connection(ctx, orgID, p.ID)
	if err != nil {
		return nil, err
	}
	channel := msg.Channel
	if channel == "" {
		channel = doc.Settings["channel"]
	}

	hook := doc.Settings[settingWebhook]
	if hook == "" {
		m.log.Info("integration_notify_simulated", zap.String("provider", p.ID), zap.String("channel", channel))
		return &Delivery{Provider: p.ID, Delivered: true, Simulated: true, Channel: channel}, nil
	}

	code, err := m.post(ctx, hook, webhookBody(p.ID, msg.Text, channel))
	if err != nil {
		return nil, err
	}
	return &Delivery{Provider: p.ID, Delivered: true, Channel: channel, StatusCode: code}, nil
}

func webhookBody(provider, text, channel string) any {
	if provider == model.ProviderTeams {
		return map[string]string{"@type": "MessageCard", "@context": "https://schema.org/extensions", "text": text}
	}
	body := map[string]string{"text": text}
	if channel != "" {
		body["channel"] = channel
	}
	return body
}

func (m *Manager) post(ctx context.Context, hook string, body any) (int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook, bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrDelivery, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Sync simulates pulling items from a sync-capable provider and records the sync time.
func (m *Manager) Sync(ctx context.Context, orgID, providerID string) (*SyncResult, error) {
	p, err := m.provider(providerID)
	if err != nil {
		return nil, err
	}
	if !p.Has(CapSync) {
		return nil, fmt.Errorf("%w: %s cannot sync", ErrUnsupported, p.ID)
	}
	doc, err := m.connection(ctx, orgID, p.ID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if _, err := m.repo.Update(ctx, doc.ID, repository.Fields{"last_sync_at": now, "updated_at": now}); err != nil {
		return nil, err
	}

	var items map[string]int
	switch p.ID {
	case model.ProviderGitHub:
		seed := stableCount(doc.Settings["repository"])
		items = map[string]int{"repositories": 1, "issues": seed % 40, "pull_requests": seed % 15}
	default:
		seed := stableCount(doc.Settings["domain"])
		items = map[string]int{"calendar_events": seed % 30, "drive_files": seed % 60}
	}
	return &SyncResult{Provider: p.ID, Simulated: true, Items: items, SyncedAt: now}, nil
}

func stableCount(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % 1000)
}

// Disconnect removes the organization's connection.
func (m *Manager) Disconnect(ctx context.Context, orgID, providerID string) error {
	p, err := m.provider(providerID)
	if err != nil {
		return err
	}
	n, err := m.repo.DeleteMany(ctx, repository.Filter{"organization_id": orgID, "provider": p.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotConnected, p.ID)
	}
	m.log.Info("integration_disconnected", zap.String("organization_id", orgID), zap.String("provider", p.ID))
	return nil
}
