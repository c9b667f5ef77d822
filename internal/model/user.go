package model

import (
	"errors"
	"time"
)

// ErrIdentityNotFound is returned when a username does not resolve to a
// stored identity.
var ErrIdentityNotFound = errors.New("identity not found")

// Identity represents a registered user as stored in the `users` table.
// The role is fixed at registration and never changes afterwards.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  PasswordHash – argon2id encoded hash.
//  Role         – access level within the site hierarchy.
//  CreatedAt    – timestamp of registration.
type Identity struct {
	ID           uint64    `json:"id"`         // users.id
	Username     string    `json:"username"`   // users.username
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         Role      `json:"role"`       // users.role
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}
