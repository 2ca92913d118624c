package models

import "time"

// DefaultRole is assigned when registration omits a role.
const DefaultRole = "user"

// User is an account able to obtain session tokens.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
