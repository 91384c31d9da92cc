// Package user holds resource-owner identities and credential verification.
package user

import "time"

// User is a resource owner. PasswordHash is a bcrypt hash; TOTPSecret is a
// base32 secret, empty when the user has no second factor enrolled.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	TOTPSecret   string
	CreatedAt    time.Time
}

// TOTPEnrolled reports whether the user has a second factor to verify.
func (u *User) TOTPEnrolled() bool {
	return u.TOTPSecret != ""
}
