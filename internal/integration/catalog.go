// Package integration connects organizations to external providers. Only
// webhook delivery and the S3 bucket check touch the network; the rest is simulated.
package integration

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Capabilities.
const (
	CapNotify  = "notify"
	CapSync    = "sync"
	CapStorage = "storage"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Setting describes one provider setting.
type Setting struct {
	Key         string `yaml:"key" json:"key"`
	Description string `yaml:"description" json:"description"`
	Required    bool   `yaml:"required" json:"required"`
	Secret      bool   `yaml:"secret" json:"secret"`
}

// Provider is one catalog entry.
type Provider struct {
	ID           string    `yaml:"id" json:"id"`
	Name         string    `yaml:"name" json:"name"`
	Category     string    `yaml:"category" json:"category"`
	Description  string    `yaml:"description" json:"description"`
	Capabilities []string  `yaml:"capabilities" json:"capabilities"`
	Settings     []Setting `yaml:"settings" json:"settings"`
}

// Has reports whether the provider supports capability c.
func (p Provider) Has(c string) bool {
	for _, v := range p.Capabilities {
		if v == c {
			return true
		}
	}
	return false
}

func (p Provider) setting(key string) (Setting, bool) {
	for _, s := range p.Settings {
		if s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// Catalog is the ordered set of providers.
type Catalog struct {
	providers []Provider
	byID      map[string]Provider
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(b []byte) (*Catalog, error) {
	var doc struct {
		Providers []Provider `yaml:"providers"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{providers: doc.Providers, byID: make(map[string]Provider, len(doc.Providers))}
	for _, p := range doc.Providers {
		if p.ID == "" {
			return nil, fmt.Errorf("parse catalog: provider without id")
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate provider %s", p.ID)
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Providers lists every provider in catalog order.
func (c *Catalog) Providers() []Provider {
	return append([]Provider(nil), c.providers...)
}

// Get returns the provider with the given id.
func (c *Catalog) Get(id string) (Provider, bool) {
	p, ok := c.byID[id]
	return p, ok
}
