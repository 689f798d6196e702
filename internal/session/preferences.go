package session

import (
	"encoding/json"
	"fmt"
)

// Preferences are client-only notification switches.
type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	RequestApprovals   bool `json:"requestApprovals"`
	SystemUpdates      bool `json:"systemUpdates"`
}

// DefaultPreferences is used until the user saves their own.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, RequestApprovals: true}
}

// Preferences returns the stored preferences or the defaults.
func (m *Manager) Preferences() (Preferences, error) {
	raw, ok, err := m.storage.Get(keyPreferences)
	if err != nil {
		return DefaultPreferences(), err
	}
	if !ok || raw == "" {
		return DefaultPreferences(), nil
	}
	prefs := DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences persists p. Preferences survive logout.
func (m *Manager) SavePreferences(p Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return m.storage.Set(keyPreferences, string(raw))
}
