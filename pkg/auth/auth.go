// Package auth registers users, checks passwords and issues session tokens.
//
// Passwords are hashed with bcrypt. A successful login creates a
// [session.Session] whose ID is the opaque bearer token handed to the client;
// [Service.VerifyToken] resolves it back to a user ID for protected routes.
package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/matzehuels/gradebuilder/pkg/errors"
	"github.com/matzehuels/gradebuilder/pkg/session"
	"github.com/matzehuels/gradebuilder/pkg/storage"
)

// Login is the result of a successful login.
type Login struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *storage.User `json:"user"`
}

// Service implements registration, login and token verification.
type Service struct {
	Users    storage.UserStore
	Sessions session.Store
	TTL      time.Duration // session lifetime; <= 0 means session.DefaultTTL
	Cost     int           // bcrypt cost; 0 means bcrypt.DefaultCost
}

// NewService creates a service with default TTL and bcrypt cost.
func NewService(users storage.UserStore, sessions session.Store) *Service {
	return &Service{Users: users, Sessions: sessions}
}

// Register creates an account. A taken email fails with CONFLICT.
func (s *Service) Register(ctx context.Context, email, name, password string) (*storage.User, error) {
	email = storage.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid email address")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "name cannot be empty")
	}
	if err := errors.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash password")
	}

	u := &storage.User{Email: email, Name: name, PasswordHash: string(hash)}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if stderrors.Is(err, storage.ErrDuplicate) {
			return nil, errors.New(errors.ErrCodeConflict, "email %s is already registered", email)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create user")
	}
	return u, nil
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords fail alike with UNAUTHORIZED.
func (s *Service) Login(ctx context.Context, email, password string) (*Login, error) {
	u, err := s.Users.UserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials()
	}

	sess, err := session.New(u.ID, u.Email, s.ttl())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create session")
	}
	if err := s.Sessions.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	return &Login{Token: sess.ID, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

// VerifyToken returns the user ID behind a bearer token.
func (s *Service) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "missing bearer token")
	}
	sess, err := s.Sessions.Get(ctx, token)
	if stderrors.Is(err, session.ErrExpired) {
		return "", errors.Wrap(errors.ErrCodeSessionExpired, err, "session expired, log in again")
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "read session")
	}
	if sess == nil {
		return "", errors.New(errors.ErrCodeUnauthorized, "invalid token")
	}
	return sess.UserID, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.Sessions.Delete(ctx, token); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete session")
	}
	return nil
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return session.DefaultTTL
	}
	return s.TTL
}

func (s *Service) cost() int {
	if s.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return s.Cost
}

func errInvalidCredentials() error {
	return errors.New(errors.ErrCodeUnauthorized, "invalid email or password")
}
