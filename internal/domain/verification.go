package domain

import "time"

// PendingCode is the single outstanding one-time code for an email address.
// Identifier is the trimmed email and acts as the key; a newer code for the
// same identifier replaces the older one.
type PendingCode struct {
	Identifier string    `json:"identifier"`
	Code       string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the code is no longer valid at now.
func (p PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
