// Package realtime fans mutation events out to attached subscribers. It
// stands in for the store's change feed: repositories and services publish,
// SSE handlers and the content sync engine subscribe.
package realtime

import "time"

type EventType string

const (
	EventDocumentUpdated     EventType = "document.updated"
	EventDocumentDeleted     EventType = "document.deleted"
	EventNotificationCreated EventType = "notification.created"
	EventPresenceChanged     EventType = "presence.changed"
)

// Event describes one observed mutation. OriginUID identifies the identity
// whose write produced the event, which lets a session recognize the echo of
// its own save.
type Event struct {
	Type      EventType `json:"type"`
	DocID     string    `json:"docId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	OriginUID string    `json:"originUid,omitempty"`
	At        time.Time `json:"at"`
}

// DocTopic is the subscription topic for one document's feed.
func DocTopic(docID string) string { return "doc:" + docID }

// UserTopic is the subscription topic for one identity's notification feed.
func UserTopic(uid string) string { return "user:" + uid }

// Publisher is the write side of the feed.
type Publisher interface {
	Publish(topic string, ev Event)
}
