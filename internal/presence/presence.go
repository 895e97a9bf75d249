// Package presence tracks who has a document open.
package presence

import "time"

// Entry is one user's presence record on a document.
type Entry struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	LastSeen    time.Time `json:"lastSeen"`
}

// Online reports whether an entry counts as active at the given instant.
// Entries older than the staleness bound are treated as gone even when the
// owning client never deleted them.
func Online(e Entry, now time.Time, stale time.Duration) bool {
	return now.Sub(e.LastSeen) < stale
}

// Filter returns only the entries still online at now.
func Filter(entries []Entry, now time.Time, stale time.Duration) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if Online(e, now, stale) {
			out = append(out, e)
		}
	}
	return out
}
