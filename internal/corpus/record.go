package corpus

import (
	"strings"
	"time"
)

// Record is one entry of the fingerprint corpus. Records are created by
// collaborators and immutable from the engine's perspective.
type Record struct {
	ID          string
	Fingerprint string
	PHash       string
	OwnerID     string
	AssetRef    string
	CreatedAt   time.Time
}

// Valid reports whether the record carries enough data to match against.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Fingerprint) != ""
}
