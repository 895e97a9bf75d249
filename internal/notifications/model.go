package notifications

import "time"

const (
	TypeShare          = "share"
	TypeRoleChange     = "role_change"
	TypeDocumentUpdate = "document_update"
)

// Notification is one entry in a user's feed. Entries are only ever created
// and marked read; nothing deletes them. The `read` and `createdAt` bson
// names are part of the wire contract.
type Notification struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	UserID        string    `json:"-" bson:"userId"`
	Type          string    `json:"type" bson:"type"`
	Title         string    `json:"title" bson:"title"`
	Message       string    `json:"message" bson:"message"`
	DocumentID    string    `json:"documentId,omitempty" bson:"documentId,omitempty"`
	DocumentTitle string    `json:"documentTitle,omitempty" bson:"documentTitle,omitempty"`
	FromUserID    string    `json:"fromUserId,omitempty" bson:"fromUserId,omitempty"`
	FromUserName  string    `json:"fromUserName,omitempty" bson:"fromUserName,omitempty"`
	Read          bool      `json:"read" bson:"read"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// UnreadCount derives the unread total from a loaded feed; it is never stored.
func UnreadCount(list []*Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}
