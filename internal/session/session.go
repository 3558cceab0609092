// Package session holds the authentication state of the CLI: the bearer token,
// the profile it belongs to, and the operations that change them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

// ErrSessionExpired is returned when a cached token could not be confirmed and
// the session was reset.
var ErrSessionExpired = errors.New("session expired (run: todo login)")

// AuthService is the slice of service.Service the session needs.
type AuthService interface {
	Signup(ctx context.Context, req service.SignupRequest) (service.SignupResult, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	Me(ctx context.Context) (service.User, error)
}

// Storage persists credentials across process restarts. *config.Config implements it.
type Storage interface {
	LoadCredentials() (config.Credentials, error)
	SaveCredentials(config.Credentials) error
	ClearCredentials() error
}

// State is a snapshot of the session.
type State struct {
	Token  string
	Expiry time.Time // zero when the token carries no exp claim
	User   *service.User
}

// IsAuthenticated reports whether a token is present.
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

// Store owns the session state. Mutation only happens through its methods.
type Store struct {
	auth    AuthService
	storage Storage

	loadErr error

	mu     sync.RWMutex
	state  State
	nextID int
	subs   map[int]func(State)
}

// New creates a store seeded from storage. Unreadable credentials leave the
// store unauthenticated; LoadErr reports why, and Logout still clears them.
func New(auth AuthService, storage Storage) *Store {
	s := &Store{
		auth:    auth,
		storage: storage,
		subs:    make(map[int]func(State)),
	}

	creds, err := storage.LoadCredentials()
	if err != nil {
		s.loadErr = err
		return s
	}
	if creds.Token != nil && creds.Token.AccessToken != "" {
		s.state = State{
			Token:  creds.Token.AccessToken,
			Expiry: creds.Token.Expiry,
			User:   copyUser(creds.User),
		}
	}
	return s
}

// LoadErr returns the error hit while reading persisted credentials, if any.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.User = copyUser(st.User)
	return st
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

// User returns the cached profile. It is only meaningful while authenticated.
func (s *Store) User() (service.User, bool) {
	st := s.State()
	if !st.IsAuthenticated() || st.User == nil {
		return service.User{}, false
	}
	return *st.User, true
}

// Subscribe registers fn to be called after every authentication state change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Login authenticates with the server and persists the result.
// On any failure the previous state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := validateLogin(email, password); err != nil {
		return err
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	token := &oauth2.Token{
		AccessToken: res.Token,
		TokenType:   "Bearer",
		Expiry:      tokenExpiry(res.Token),
	}
	user := res.User
	if err := s.storage.SaveCredentials(config.Credentials{Token: token, User: &user}); err != nil {
		return err
	}

	log := logging.From(ctx, "session")
	log.Debug().Str("user", user.Email).Msg("logged in")

	s.commit(State{Token: token.AccessToken, Expiry: token.Expiry, User: &user})
	return nil
}

// Signup registers an account. The session is not authenticated by it; the
// caller should ask the user to verify their email.
func (s *Store) Signup(ctx context.Context, fullName, email, password string) (service.SignupResult, error) {
	if err := validateSignup(fullName, email, password); err != nil {
		return service.SignupResult{}, err
	}
	return s.auth.Signup(ctx, service.SignupRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
}

// VerifyEmail confirms an account. tokenOrLink may be the bare token or the
// verification link containing it. Session state is not changed.
func (s *Store) VerifyEmail(ctx context.Context, tokenOrLink string) error {
	token, err := ExtractVerificationToken(tokenOrLink)
	if err != nil {
		return err
	}
	return s.auth.VerifyEmail(ctx, token)
}

// Logout clears persisted and in-memory credentials without contacting the server.
// Memory is cleared even when the files could not be removed.
func (s *Store) Logout() error {
	err := s.storage.ClearCredentials()
	s.commit(State{})
	return err
}

// Reconcile fetches the profile when a token is cached without a user.
// Any failure resets the session (fail-closed) and returns an error wrapping
// ErrSessionExpired. It is a no-op when unauthenticated or the user is known.
func (s *Store) Reconcile(ctx context.Context) error {
	st := s.State()
	if !st.IsAuthenticated() || st.User != nil {
		return nil
	}

	log := logging.From(ctx, "session")

	user, err := s.auth.Me(ctx)
	if err != nil {
		if s.State().Token != st.Token {
			// A logout or new login happened while the request was in flight.
			return nil
		}
		log.Debug().Err(err).Msg("profile fetch failed, resetting session")
		if clearErr := s.Logout(); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to clear credentials")
		}
		return fmt.Errorf("%w: %s", ErrSessionExpired, service.Message(err))
	}

	token := &oauth2.Token{AccessToken: st.Token, TokenType: "Bearer", Expiry: st.Expiry}

	s.mu.Lock()
	if s.state.Token != st.Token {
		s.mu.Unlock()
		return nil
	}
	s.state.User = &user
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if err := s.storage.SaveCredentials(config.Credentials{Token: token, User: &user}); err != nil {
		log.Warn().Err(err).Msg("failed to cache user profile")
	}
	s.notify(subs)
	return nil
}

// commit replaces the state and notifies subscribers outside the lock.
func (s *Store) commit(st State) {
	s.mu.Lock()
	s.state = st
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.notify(subs)
}

func (s *Store) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) notify(subs []func(State)) {
	snapshot := s.State()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the server
// is the only party that can verify it. Non-JWT tokens have no expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func copyUser(u *service.User) *service.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
