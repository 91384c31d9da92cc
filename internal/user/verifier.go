package user

import (
	"context"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a user's identity claim against stored credentials. It
// never reports which factor failed; callers shape user-visible messaging.
type Verifier struct {
	store Store
}

// NewVerifier constructs a Verifier over the given store.
func NewVerifier(store Store) *Verifier {
	return &Verifier{store: store}
}

// FindByUsername resolves the claimed identity. Missing users surface as a
// store sentinel; callers must treat that the same as a wrong password.
func (v *Verifier) FindByUsername(ctx context.Context, username string) (*User, error) {
	return v.store.FindByUsername(ctx, username)
}

// VerifyPassword checks the submitted password against the stored bcrypt hash.
func (v *Verifier) VerifyPassword(u *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// VerifyTOTP checks the submitted code against the user's TOTP secret.
// Users without an enrolled second factor pass vacuously.
func (v *Verifier) VerifyTOTP(u *User, code string) bool {
	if !u.TOTPEnrolled() {
		return true
	}
	return totp.Validate(code, u.TOTPSecret)
}

// HashPassword produces the bcrypt hash stored on a User. Exposed for
// seeding and tests.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
