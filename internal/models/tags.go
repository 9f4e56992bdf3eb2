package models

import "strings"

// Tags is the free-form key/value mapping attached to a raw map feature.
type Tags map[string]string

// Get returns the trimmed value for key, or "" when the key is absent. Safe on a nil map.
func (t Tags) Get(key string) string {
	return strings.TrimSpace(t[key])
}

// GetOr returns the value for key, or def when the key is absent or blank.
func (t Tags) GetOr(key, def string) string {
	if v := t.Get(key); v != "" {
		return v
	}
	return def
}
