// Package session holds the authenticated user of one browser and the login, registration and
// logout operations that change it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/model"
)

var ErrInvalidServerResponse = errors.New("Resposta inválida do servidor")

const (
	loginFallback    = "Erro ao fazer login. Tente novamente."
	registerFallback = "Erro ao registrar. Tente novamente."
)

// AuthAPI is the part of the backend the session talks to.
type AuthAPI interface {
	Login(ctx context.Context, email, senha string) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
}

// TokenStorage is where the bearer token is persisted.
type TokenStorage interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Store is the session of one browser. The in-memory user and the persisted token always change
// together: a token is only stored alongside a user, and clearing the user removes the token.
type Store struct {
	api    AuthAPI
	tokens TokenStorage
	logger *zap.Logger

	// auth serializes login and registration, network call included.
	auth sync.Mutex
	// op serializes the operations that change user and token together. It is never held across
	// a backend call, since a 401 on that call ends up in Expire.
	op sync.Mutex

	mu        sync.RWMutex
	user      *model.User
	isLoading bool
	onLogout  []func(ctx context.Context)
}

// NewStore creates an empty session.
func NewStore(api AuthAPI, tokens TokenStorage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, tokens: tokens, logger: logger}
}

// OnLogout registers a hook run whenever the session ends (logout or expiry).
func (s *Store) OnLogout(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsLoading reports whether a login or registration is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.isLoading = v
	s.mu.Unlock()
}

// Login authenticates against the backend. It never returns an error: failures come back as a
// Result with a message for the user.
func (s *Store) Login(ctx context.Context, email, senha string) model.Result {
	s.auth.Lock()
	defer s.auth.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Login(ctx, email, senha)
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return model.Fail(apiclient.Message(err, loginFallback))
	}
	if err := s.begin(ctx, resp); err != nil {
		s.logger.Warn("login response rejected", zap.String("email", email), zap.Error(err))
		return model.Fail(failureMessage(err, loginFallback))
	}
	return model.Ok()
}

// Register creates an account and logs it in. Form validation happens before any network call.
func (s *Store) Register(ctx context.Context, form model.RegisterForm) model.Result {
	req, err := form.Validate()
	if err != nil {
		return model.Fail(err.Error())
	}

	s.auth.Lock()
	defer s.auth.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.logger.Info("registration failed", zap.String("email", req.Email), zap.Error(err))
		return model.Fail(apiclient.Message(err, registerFallback))
	}
	if err := s.begin(ctx, resp); err != nil {
		s.logger.Warn("registration response rejected", zap.String("email", req.Email), zap.Error(err))
		return model.Fail(failureMessage(err, registerFallback))
	}
	return model.Ok()
}

// begin validates an auth response, persists the token and sets the user. A different user
// already signed in on this browser is logged out first so none of their state carries over.
func (s *Store) begin(ctx context.Context, resp *model.AuthResponse) error {
	if resp == nil || resp.User == nil || resp.Token == "" {
		return ErrInvalidServerResponse
	}
	role, err := model.ParseRole(resp.User.Role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
	user := &model.User{
		ID:       resp.User.ID.String(),
		Nome:     resp.User.Nome,
		Email:    resp.User.Email,
		Telefone: resp.User.Telefone,
		Role:     role,
	}

	s.op.Lock()
	defer s.op.Unlock()
	if prev := s.User(); prev != nil && (prev.ID != user.ID || prev.Role != user.Role) {
		if err := s.tokens.ClearToken(ctx); err != nil {
			s.logger.Error("failed to remove previous token", zap.Error(err))
		}
		s.logger.Info("session replaced", zap.String("previous_user_id", prev.ID))
		s.end(ctx)
	}

	if err := s.tokens.SetToken(ctx, resp.Token); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.logger.Info("session started", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// Logout ends the session locally. No backend call is made.
func (s *Store) Logout(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.logger.Error("failed to remove token on logout", zap.Error(err))
	}
	s.end(ctx)
}

// Expire ends the session after the backend rejected the token. The token has already been
// removed by the transport; it is removed again in case it was replaced meanwhile.
func (s *Store) Expire(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.logger.Error("failed to remove token on expiry", zap.Error(err))
	}
	s.logger.Info("session expired")
	s.end(ctx)
}

func (s *Store) end(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	hooks := append([]func(context.Context){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// Reconcile restores the token/user invariant for a fresh session: a token left in durable
// storage without a user in memory is removed. Reports whether a token was dropped.
func (s *Store) Reconcile(ctx context.Context) (bool, error) {
	s.op.Lock()
	defer s.op.Unlock()
	if s.User() != nil {
		return false, nil
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	if err := s.tokens.ClearToken(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func failureMessage(err error, fallback string) string {
	if errors.Is(err, ErrInvalidServerResponse) {
		return ErrInvalidServerResponse.Error()
	}
	return fallback
}
