// Package auth handles user identity, credential hashing, token issuance
// and verification, session references, and the authorization gate placed
// in front of every protected route.
//
// Trust model: a signed bearer token is the primary credential. The Redis
// session reference is a cache of an already-verified identity and is never
// sufficient on its own for sensitive mutations (password change, account
// deletion) -- those re-require a verified token.
package auth

import (
	"regexp"
	"strings"
	"time"
)

// User represents a registered account. This is the domain model used
// throughout the application; database scanning and JSON marshaling use
// this struct directly.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash []byte     `json:"-"` // Never expose in JSON responses.
	FirstName    *string    `json:"first_name,omitempty"`
	LastName     *string    `json:"last_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"date_joined"`
	LastLoginAt  *time.Time `json:"last_login,omitempty"`
}

// Resolution is the outcome of resolving a request's credentials to an
// identity. ViaToken records whether a signed token was verified on this
// request; a resolution built from the session cache alone carries
// ViaToken=false and is refused by the token-required gate.
type Resolution struct {
	User     *User
	ViaToken bool
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted to POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest holds the data submitted to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ResetPasswordRequest holds the data submitted to POST /auth/reset-password.
type ResetPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// ChangePasswordRequest holds the data submitted to PUT /auth/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// --- Service input/output DTOs ---

// Credentials is the validated input for registration and login.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is returned by Register and Login: the identity, a freshly
// signed token, and the id of the session reference created for it.
type LoginResult struct {
	User      *User
	Token     string
	SessionID string
}

// --- Email normalization & validation ---

// emailRe is the accepted address shape. Deliberately conservative: this is
// the format registration has always enforced, and the uniqueness invariant
// is defined over it.
var emailRe = regexp.MustCompile(`^[_a-z0-9-]+(\.[_a-z0-9-]+)*@[a-z0-9-]+(\.[a-z0-9-]+)*(\.[a-z]{2,4})$`)

// NormalizeEmail lowercases and trims an address. Uniqueness is enforced
// over the normalized form: exactly one identity per normalized email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the normalized address has an acceptable shape.
func ValidEmail(email string) bool {
	return len(email) > 7 && emailRe.MatchString(email)
}
