package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// SessionToken identifies one upload session. Tokens are opaque to callers;
// the "session_" prefix plus hex body matches the wire format clients already
// depend on.
type SessionToken string

// NewSessionToken creates a fresh random session token
func NewSessionToken() SessionToken {
	return SessionToken("session_" + strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// String returns the string representation
func (t SessionToken) String() string {
	return string(t)
}

// IsEmpty checks if the token is empty
func (t SessionToken) IsEmpty() bool {
	return t == ""
}

// ModelName is the caller-chosen name under which a fitted model is stored
type ModelName string

// String returns the string representation
func (n ModelName) String() string {
	return string(n)
}
