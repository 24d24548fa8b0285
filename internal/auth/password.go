package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the given plaintext at the given
// adaptive cost. bcrypt embeds a random per-call salt in the output, so two
// hashes of the same plaintext never compare byte-equal. Rejecting empty
// plaintexts is the caller's job (registration and password change validate
// input before hashing).
func HashPassword(plain string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

// CheckPassword verifies a plaintext against a stored bcrypt hash. The
// comparison runs in time independent of where the first mismatched byte
// occurs. Returns false for any malformed hash rather than erroring: a
// credential check fails closed.
func CheckPassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
