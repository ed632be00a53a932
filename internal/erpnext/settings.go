package erpnext

import (
	"errors"

	"storeadmin/internal/kvstore"
)

const (
	urlKey       = "erpnext_url"
	apiKeyKey    = "erpnext_api_key"
	apiSecretKey = "erpnext_api_secret"
)

// ErrNotConfigured is returned when ERPNext credentials are missing from the
// store.
var ErrNotConfigured = errors.New("ERPNext settings are not configured")

// Settings is the stored ERPNext connection configuration.
type Settings struct {
	URL       string `json:"url"`
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

func (s Settings) Configured() bool {
	return s.URL != "" && s.APIKey != "" && s.APISecret != ""
}

// LoadSettings reads the connection settings from the store. Missing keys
// come back as empty strings, not errors.
func LoadSettings(store kvstore.Store) (Settings, error) {
	var settings Settings
	var err error
	if settings.URL, _, err = store.Get(urlKey); err != nil {
		return Settings{}, err
	}
	if settings.APIKey, _, err = store.Get(apiKeyKey); err != nil {
		return Settings{}, err
	}
	if settings.APISecret, _, err = store.Get(apiSecretKey); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// SaveSettings writes the connection settings to the store.
func SaveSettings(store kvstore.Store, settings Settings) error {
	if err := store.Set(urlKey, settings.URL); err != nil {
		return err
	}
	if err := store.Set(apiKeyKey, settings.APIKey); err != nil {
		return err
	}
	return store.Set(apiSecretKey, settings.APISecret)
}
