package domain

import "time"

// User is the domain model for a registered user. ID and CreatedAt are
// assigned by the store on creation and never change afterwards.
type User struct {
	ID        int64
	Name      string
	Email     string
	Age       int
	CreatedAt time.Time
}
