// Package delivery knows the third-party delivery providers and the
// dispatch status vocabulary.
package delivery

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

const StatusDispatched = "dispatched"

type ProviderConfig struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WebhookSecret string `json:"webhook_secret"`
}

type ProvidersFile struct {
	Providers []ProviderConfig `json:"providers"`
}

type Registry struct {
	mu        sync.RWMutex
	providers map[string]*ProviderConfig
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*ProviderConfig)}
}

// DefaultRegistry knows the built-in providers with no webhook secrets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ProviderConfig{ID: "uber_eats", Name: "Uber Eats"})
	r.Register(&ProviderConfig{ID: "doordash", Name: "DoorDash"})
	r.Register(&ProviderConfig{ID: "grubhub", Name: "Grubhub"})
	return r
}

// LoadFromFile reads providers from a JSON file. An empty path yields the defaults.
func LoadFromFile(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery providers: %w", err)
	}

	var file ProvidersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse delivery providers: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Providers {
		if file.Providers[i].ID == "" {
			return nil, fmt.Errorf("delivery provider %d has no id", i)
		}
		registry.Register(&file.Providers[i])
	}
	return registry, nil
}

func (r *Registry) Register(cfg *ProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg.ID = strings.ToLower(strings.TrimSpace(cfg.ID))
	r.providers[cfg.ID] = cfg
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[strings.ToLower(id)]
	return ok
}

// WebhookSecret returns "" when the provider has none configured.
func (r *Registry) WebhookSecret(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cfg, ok := r.providers[strings.ToLower(id)]; ok {
		return cfg.WebhookSecret
	}
	return ""
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var statusPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)

// NormalizeStatus lowercases a provider-reported status and maps spaces and
// dashes to underscores. It returns false for anything that is not a short
// identifier.
func NormalizeStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if !statusPattern.MatchString(s) {
		return "", false
	}
	return s, true
}
