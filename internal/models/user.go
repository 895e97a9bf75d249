package models

import (
	"strings"
	"time"
)

// User is the persisted profile record for an authenticated identity. The
// bson field names are the wire contract shared with indexes and access
// rules; do not rename them.
type User struct {
	UID          string    `bson:"_id" json:"uid"`
	DisplayName  string    `bson:"displayName" json:"displayName"`
	Email        string    `bson:"email" json:"email"`
	PhotoURL     string    `bson:"photoURL" json:"photoURL"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	LastLogin    time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

// Identity is the authenticated caller as seen by services and handlers:
// the subset of the profile carried in access-token claims.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Name returns the best human-readable name for the identity: display name,
// then the email local part, then "User".
func (i Identity) Name() string {
	return FallbackName(i.DisplayName, i.Email)
}

// Identity converts a profile into its claim form.
func (u *User) Identity() Identity {
	return Identity{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

// FallbackName resolves a display name with the email local part and a final
// generic label as fallbacks.
func FallbackName(displayName, email string) string {
	if displayName != "" {
		return displayName
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "User"
}
