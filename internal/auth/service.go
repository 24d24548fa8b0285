package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andela/bucketlist/internal/apperror"
	"github.com/andela/bucketlist/internal/mail"
)

// resetPasswordBytes is the entropy of a generated replacement password.
// 9 bytes hex-encode to 18 characters.
const resetPasswordBytes = 9

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, creds Credentials) (*LoginResult, error)
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)

	// Resolve turns a request's credentials into an identity. Token takes
	// precedence and is mandatory when present; the session reference is
	// consulted only when no token was supplied. See resolve() for the
	// exact ordering.
	Resolve(ctx context.Context, token, sessionID string) (*Resolution, error)

	Logout(ctx context.Context, sessionID string) error
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context, userID int64, sessionID string) error
}

// authService implements AuthService with bcrypt hashing, signed tokens,
// and a Redis-backed session reference cache.
type authService struct {
	repo       UserRepository
	tokens     *TokenService
	sessions   *SessionStore
	mailer     mail.Sender
	bcryptCost int
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, tokens *TokenService, sessions *SessionStore, mailer mail.Sender, bcryptCost int) AuthService {
	return &authService{
		repo:       repo,
		tokens:     tokens,
		sessions:   sessions,
		mailer:     mailer,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account. It validates the email shape, enforces
// one identity per normalized email, hashes the password at write time
// (the plaintext is discarded immediately), and signs in the new user.
func (s *authService) Register(ctx context.Context, creds Credentials) (*LoginResult, error) {
	email := NormalizeEmail(creds.Email)
	if !ValidEmail(email) {
		return nil, apperror.NewValidation("Please enter a valid email address")
	}
	if creds.Password == "" {
		return nil, apperror.NewValidation("Please enter your password")
	}

	// Check uniqueness before doing expensive hashing. The unique index on
	// users.email backstops this check under concurrent registration.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("A user exists with that email")
	}

	hash, err := HashPassword(creds.Password, s.bcryptCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}
	user.ID = id

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return s.signIn(ctx, user)
}

// Login authenticates a user by email and password. An unknown email is a
// validation failure (registration is the fix); a wrong password for a
// known account is forbidden.
func (s *authService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	email := NormalizeEmail(creds.Email)
	if email == "" {
		return nil, apperror.NewValidation("Please enter your email address")
	}
	if creds.Password == "" {
		return nil, apperror.NewValidation("Please enter your password")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return nil, apperror.NewValidation("Email not found! Please register to continue")
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !CheckPassword(user.PasswordHash, creds.Password) {
		return nil, apperror.NewForbidden("Incorrect password!")
	}

	result, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}

	// Update the user's last login timestamp (fire-and-forget, non-critical).
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return result, nil
}

// signIn issues a token and creates a session reference for the user.
func (s *authService) signIn(ctx context.Context, user *User) (*LoginResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	sessionID, err := s.sessions.Create(ctx, user.Email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	return &LoginResult{User: user, Token: token, SessionID: sessionID}, nil
}

// Resolve implements the resolution ordering. First match wins:
//
//  1. A bearer token is present: verify it. Valid -> resolved identity is
//     the token's subject; the session cache is refreshed as a side effect.
//     Invalid -> resolution fails immediately. A present-but-bad token is
//     always fatal and never silently ignored in favor of a stale cached
//     session.
//  2. No token, but a session reference is present: look the identity up by
//     the cached email. No fresh cryptographic check happens on this path.
//  3. Neither: anonymous, resolution fails.
//
// Every failure surfaces as the same unauthorized outcome; the sub-cause is
// logged server-side only.
func (s *authService) Resolve(ctx context.Context, token, sessionID string) (*Resolution, error) {
	if token != "" {
		userID, err := s.tokens.Verify(token)
		if err != nil {
			slog.Warn("token rejected", slog.Any("cause", err))
			return nil, apperror.NewUnauthorized("Invalid session. Please login").WithInternal(err)
		}

		user, err := s.repo.FindByID(ctx, userID)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == 404 {
				// Token subject no longer exists.
				slog.Warn("token subject unresolvable", slog.Int64("user_id", userID))
				return nil, apperror.NewUnauthorized("Invalid session. Please login").WithInternal(err)
			}
			// A lookup failure is not a verdict on the credential.
			return nil, apperror.NewInternal(fmt.Errorf("finding token subject: %w", err))
		}
		if !user.IsActive {
			slog.Warn("token subject deactivated", slog.Int64("user_id", userID))
			return nil, apperror.NewUnauthorized("Invalid session. Please login")
		}

		// Refresh the session reference so clients that switch to cookie-only
		// access keep working. Best effort: a cache write failure must not
		// fail an otherwise-valid request.
		if sessionID != "" {
			if err := s.sessions.Refresh(ctx, sessionID, user.Email); err != nil {
				slog.Warn("session refresh failed", slog.Any("error", err))
			}
		}

		return &Resolution{User: user, ViaToken: true}, nil
	}

	if sessionID != "" {
		email, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				return nil, apperror.NewInternal(err)
			}
			return nil, apperror.NewUnauthorized("Unauthorised. Please login").WithInternal(err)
		}

		user, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == 404 {
				// Cached identity no longer exists.
				return nil, apperror.NewUnauthorized("Unauthorised. Please login").WithInternal(err)
			}
			return nil, apperror.NewInternal(fmt.Errorf("finding session user: %w", err))
		}
		if !user.IsActive {
			return nil, apperror.NewUnauthorized("Unauthorised. Please login")
		}
		return &Resolution{User: user, ViaToken: false}, nil
	}

	return nil, apperror.NewUnauthorized("Unauthorised. Please login")
}

// Logout destroys the session reference. Issued tokens are not revocable;
// they die at their expiry instant regardless of logout.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

// ChangePassword replaces the credential hash after re-verifying the old
// password. Callers reach this only through the token-required gate.
func (s *authService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperror.NewValidation("Please enter your new password")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !CheckPassword(user.PasswordHash, oldPassword) {
		return apperror.NewForbidden("Incorrect password!")
	}

	hash, err := HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return apperror.NewInternal(fmt.Errorf("updating password: %w", err))
	}

	slog.Info("password changed", slog.Int64("user_id", userID))
	return nil
}

// ResetPassword generates a replacement password, emails it to the account
// holder, and only then stores the new hash. If mail delivery fails, the
// stored credential is untouched and the caller sees a dependency failure;
// the operation is not retried here.
func (s *authService) ResetPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return apperror.NewValidation("Please enter your email address")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return apperror.NewNotFound("Email not found! Please register to continue")
		}
		return apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	newPassword, err := generatePassword()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("generating password: %w", err))
	}

	body := fmt.Sprintf("Your new password is %s", newPassword)
	if err := s.mailer.Send(ctx, []string{user.Email}, "Your bucketlist password was reset", body); err != nil {
		return apperror.NewDependency("Could not deliver the new password. Please try again", err)
	}

	hash, err := HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperror.NewInternal(fmt.Errorf("updating password: %w", err))
	}

	slog.Info("password reset", slog.Int64("user_id", user.ID))
	return nil
}

// DeleteAccount removes the identity and, via the schema's cascading
// foreign keys, every bucket and activity it owns. The session reference
// is destroyed; any outstanding token dies at its expiry but its subject
// no longer resolves.
func (s *authService) DeleteAccount(ctx context.Context, userID int64, sessionID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal(fmt.Errorf("deleting user: %w", err))
	}

	if sessionID != "" {
		if err := s.sessions.Destroy(ctx, sessionID); err != nil {
			slog.Warn("session destroy failed", slog.Any("error", err))
		}
	}

	slog.Info("account deleted", slog.Int64("user_id", userID))
	return nil
}

// generatePassword creates a random hex replacement password.
func generatePassword() (string, error) {
	b := make([]byte, resetPasswordBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
