package model

import "time"

// User is a system account. Authentication is external; this service only
// needs identities and roles for driver validation and the presence
// roster.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // admin, driver, reporter
	CreatedAt time.Time `json:"created_at"`
}
