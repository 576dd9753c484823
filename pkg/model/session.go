package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SessionInfo identifies one finished session. All fields come from
// provider metadata; none is derived from wall-clock time.
type SessionInfo struct {
	Year        int    `json:"year"`
	EventName   string `json:"eventName"`
	SessionType string `json:"sessionType"` // "R" race, "S" sprint
	DataVersion string `json:"dataVersion"` // provider data version tag
}

// Fingerprint returns the deterministic cache key for this session.
// Identical sessions always map to the same key.
func (s SessionInfo) Fingerprint() string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%d|%s|%s|%s", s.Year, s.EventName, s.SessionType, s.DataVersion)
	return hex.EncodeToString(hasher.Sum(nil))
}

func (s SessionInfo) String() string {
	return fmt.Sprintf("%d %s (%s)", s.Year, s.EventName, s.SessionType)
}
