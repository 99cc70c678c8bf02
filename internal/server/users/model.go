// Package users implements the user directory and the authentication/session
// service built on top of it: login, token refresh and rotation, identity
// resolution, email confirmation and password reset.
package users

import (
	"time"

	"github.com/dmitrijs2005/contacthub/internal/server/identity"
)

// User is a persisted account record. Username and Email are globally unique.
// RefreshToken holds the single currently valid refresh token for the user;
// issuing a new one overwrites it and permanently invalidates the prior.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	RefreshToken   string
	Confirmed      bool
	Avatar         string
	Role           identity.Role
	CreatedAt      time.Time
}

// Snapshot returns the denormalized identity view of the user.
func (u *User) Snapshot() *identity.Snapshot {
	return &identity.Snapshot{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Role:     u.Role,
	}
}
