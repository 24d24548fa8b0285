package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure causes. These are observably distinct for server-side
// logging only; every one of them surfaces to the client as the same
// unauthorized outcome. A valid signature with an elapsed expiry is treated
// exactly like a forged token by all callers.
var (
	// ErrTokenMalformed covers tokens that do not parse or carry the wrong
	// claim shape.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenSignature covers signature mismatches, including tokens signed
	// with a different secret or a disallowed algorithm.
	ErrTokenSignature = errors.New("token signature invalid")

	// ErrTokenExpired covers tokens whose expiry has elapsed. The boundary is
	// exclusive: a token verified at exactly its expiry instant is expired.
	ErrTokenExpired = errors.New("token expired")
)

// accessClaims is the claim set carried by issued tokens: the subject
// identity id plus the registered time claims.
type accessClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies time-limited signed tokens binding a
// bearer to an identity. The signing secret and TTL are fixed at startup.
// Tokens are transport-agnostic: the service neither knows nor cares whether
// the boundary carried them in a header or a body field.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	// now is the verification clock. Injected so expiry boundaries are
	// testable; defaults to time.Now.
	now func() time.Time
}

// NewTokenService creates a token service signing with the given secret and
// issuing tokens valid for the given TTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a new token asserting "this bearer represents userID as of
// now, for the configured window". Tokens are never mutated or revoked;
// expiry is the only termination mechanism.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "bucketlist",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and verifies a token, returning the subject identity id.
// It fails closed: any malformed, forged, or expired token yields an error
// and a zero id. The returned error wraps one of the package-level causes
// so callers can log the sub-cause, but callers must collapse all of them
// to a single unauthorized outcome.
func (s *TokenService) Verify(tokenStr string) (int64, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		// Restrict to the issuing algorithm. Without this, a token with a
		// swapped "alg" header could be verified under attacker-controlled
		// rules.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, classifyTokenError(err)
	}

	if !token.Valid || claims.UserID <= 0 {
		return 0, ErrTokenMalformed
	}
	return claims.UserID, nil
}

// classifyTokenError maps jwt parse errors onto the package's failure
// causes. Expiry is checked first: jwt reports expired-and-otherwise-valid
// tokens as validation errors, and the expired cause is the more useful log
// line.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
