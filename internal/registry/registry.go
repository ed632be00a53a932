package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storeadmin/internal/kvstore"
	"storeadmin/internal/logger"
	"storeadmin/internal/woocommerce"

	"github.com/google/uuid"
)

const (
	// StorageKey holds the full profile collection as one JSON array.
	StorageKey = "woocommerce_servers"

	// legacyActiveServerKey predates the per-profile isActive flag. It is
	// still present in old stores; it is never read or written here.
	legacyActiveServerKey = "woocommerce_active_server"

	probeTimeout = 5 * time.Second
)

// ErrNoActiveServer is returned when an operation needs the active profile
// and none is configured.
var ErrNoActiveServer = errors.New("no active WooCommerce server configured")

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

// ServerProfile is one configured WooCommerce store connection. JSON field
// names match the persisted layout.
type ServerProfile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
	IsActive       bool   `json:"isActive"`
	LastChecked    string `json:"lastChecked,omitempty"`
	Status         Status `json:"status,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

// ProfileUpdate carries the fields Update may change. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name           *string `json:"name"`
	URL            *string `json:"url"`
	ConsumerKey    *string `json:"consumerKey"`
	ConsumerSecret *string `json:"consumerSecret"`
	Status         *Status `json:"status"`
	ErrorMessage   *string `json:"errorMessage"`
	LastChecked    *string `json:"lastChecked"`
}

// StatusSink receives a notification whenever a probe changes a profile's
// status. A nil sink is ignored.
type StatusSink interface {
	ServerStatusChanged(ctx context.Context, profile ServerProfile, previous Status) error
}

// Registry manages WooCommerce server profiles. Every operation re-reads the
// whole collection from the store and writes it back whole; there is no
// in-memory cache and no cross-operation atomicity.
type Registry struct {
	store  kvstore.Store
	logger *logger.Logger
	sink   StatusSink
}

func New(store kvstore.Store, logger *logger.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// SetStatusSink wires an optional status-change listener.
func (r *Registry) SetStatusSink(sink StatusSink) {
	r.sink = sink
}

// List returns all profiles in storage order.
func (r *Registry) List() ([]ServerProfile, error) {
	return r.load()
}

// GetActive returns the first active profile, or ErrNoActiveServer.
func (r *Registry) GetActive() (*ServerProfile, error) {
	servers, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range servers {
		if servers[i].IsActive {
			return &servers[i], nil
		}
	}
	return nil, ErrNoActiveServer
}

// Add creates a profile with a fresh id. The first profile ever added becomes
// active by default; its initial status is offline until probed.
func (r *Registry) Add(name, url, consumerKey, consumerSecret string) (*ServerProfile, error) {
	servers, err := r.load()
	if err != nil {
		return nil, err
	}

	profile := ServerProfile{
		ID:             uuid.New().String(),
		Name:           name,
		URL:            url,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		IsActive:       len(servers) == 0,
		Status:         StatusOffline,
	}

	servers = append(servers, profile)
	if err := r.save(servers); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update merges the given fields into the matching profile. An unknown id is
// a silent no-op.
func (r *Registry) Update(id string, updates ProfileUpdate) error {
	servers, err := r.load()
	if err != nil {
		return err
	}

	for i := range servers {
		if servers[i].ID != id {
			continue
		}
		applyUpdate(&servers[i], updates)
		return r.save(servers)
	}
	return nil
}

// Delete removes the matching profile. If the deleted profile was active and
// any profiles remain, the first remaining one is promoted.
func (r *Registry) Delete(id string) error {
	servers, err := r.load()
	if err != nil {
		return err
	}

	remaining := servers[:0]
	for _, s := range servers {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}

	hasActive := false
	for _, s := range remaining {
		if s.IsActive {
			hasActive = true
			break
		}
	}
	if !hasActive && len(remaining) > 0 {
		remaining[0].IsActive = true
	}

	return r.save(remaining)
}

// SetActive marks the matching profile active and deactivates all others. An
// id that matches nothing leaves the registry with zero active profiles;
// callers get that exact behavior, not an error.
func (r *Registry) SetActive(id string) error {
	servers, err := r.load()
	if err != nil {
		return err
	}
	for i := range servers {
		servers[i].IsActive = servers[i].ID == id
	}
	return r.save(servers)
}

// CheckStatus probes one profile's system status endpoint with a bounded
// timeout. It never returns an error; failures come back as status error
// with a message.
func (r *Registry) CheckStatus(ctx context.Context, profile ServerProfile) (Status, string) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client := woocommerce.NewClient(profile.URL, profile.ConsumerKey, profile.ConsumerSecret)
	if err := client.SystemStatus(ctx); err != nil {
		return StatusError, err.Error()
	}
	return StatusOnline, ""
}

// CheckAllStatuses probes every profile sequentially and persists each result
// with a refreshed lastChecked timestamp. Sequential probing keeps the
// read-modify-write cycles from overlapping.
func (r *Registry) CheckAllStatuses(ctx context.Context) error {
	servers, err := r.load()
	if err != nil {
		return err
	}

	for _, server := range servers {
		status, errorMessage := r.CheckStatus(ctx, server)
		lastChecked := time.Now().Format(time.RFC3339)

		if err := r.Update(server.ID, ProfileUpdate{
			Status:       &status,
			ErrorMessage: &errorMessage,
			LastChecked:  &lastChecked,
		}); err != nil {
			return err
		}

		if status != server.Status && r.sink != nil {
			updated := server
			updated.Status = status
			updated.ErrorMessage = errorMessage
			updated.LastChecked = lastChecked
			if err := r.sink.ServerStatusChanged(ctx, updated, server.Status); err != nil {
				r.logger.Error("Failed to publish status change for server %s: %v", server.ID, err)
			}
		}
	}
	return nil
}

func (r *Registry) load() ([]ServerProfile, error) {
	raw, ok, err := r.store.Get(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []ServerProfile{}, nil
	}

	var servers []ServerProfile
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, fmt.Errorf("failed to parse stored servers: %w", err)
	}
	return servers, nil
}

func (r *Registry) save(servers []ServerProfile) error {
	raw, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("failed to encode servers: %w", err)
	}
	return r.store.Set(StorageKey, string(raw))
}

func applyUpdate(profile *ServerProfile, updates ProfileUpdate) {
	if updates.Name != nil {
		profile.Name = *updates.Name
	}
	if updates.URL != nil {
		profile.URL = *updates.URL
	}
	if updates.ConsumerKey != nil {
		profile.ConsumerKey = *updates.ConsumerKey
	}
	if updates.ConsumerSecret != nil {
		profile.ConsumerSecret = *updates.ConsumerSecret
	}
	if updates.Status != nil {
		profile.Status = *updates.Status
	}
	if updates.ErrorMessage != nil {
		profile.ErrorMessage = *updates.ErrorMessage
	}
	if updates.LastChecked != nil {
		profile.LastChecked = *updates.LastChecked
	}
}
