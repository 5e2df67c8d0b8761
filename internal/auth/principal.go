// Package auth holds the request-scoped identity passed into services.
package auth

import "github.com/pageza/recipe-app/backend/internal/models"

// Principal is the authenticated identity of one request. Handlers receive
// it from the auth middleware and hand it to every service call explicitly;
// services never look it up on their own.
type Principal struct {
	UserID      uint
	Email       string
	IsStaff     bool
	IsSuperuser bool
}

// FromUser builds the principal for an active user.
func FromUser(u *models.User) Principal {
	return Principal{
		UserID:      u.ID,
		Email:       u.Email,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// Valid reports whether the principal identifies a user.
func (p Principal) Valid() bool {
	return p.UserID != 0
}
