package model

import "time"

// API key scopes.
const (
	// ScopeMachines lets a key act on behalf of the users it names.
	ScopeMachines = "machines"
	// ScopeAdmin grants the administrator operations and bypasses the
	// access gate.
	ScopeAdmin = "admin"
)

type APIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	Scopes    []string   `json:"scopes"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// HasScope reports whether the key carries scope. Admin keys carry every scope.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == ScopeAdmin {
			return true
		}
	}
	return false
}
