package events

import "time"

// Operation tags a lifecycle event.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationDelete Operation = "DELETE"
)

// UserEvent announces that a user was created or deleted. It is transient:
// it lives only on the message channel and is never persisted. The timestamp
// is producer-side only; consumers do not depend on it.
type UserEvent struct {
	Operation Operation `json:"operation"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserEvent builds an event stamped with the current time.
func NewUserEvent(op Operation, email string) UserEvent {
	return UserEvent{Operation: op, Email: email, Timestamp: time.Now()}
}
