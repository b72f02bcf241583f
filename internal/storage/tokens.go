package storage

import (
	"context"
	"fmt"
)

// TokenKey is the fixed storage key holding the bearer token.
const TokenKey = "accessToken"

// TokenStore reads and writes the bearer token of one browser.
type TokenStore struct {
	store     Store
	namespace string
}

// NewTokenStore binds a TokenStore to the namespace of one browser.
func NewTokenStore(store Store, namespace string) *TokenStore {
	return &TokenStore{store: store, namespace: namespace}
}

// Token returns the stored token, or "" when there is none.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	v, ok, err := t.store.Get(ctx, t.namespace, TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

// SetToken persists the token.
func (t *TokenStore) SetToken(ctx context.Context, token string) error {
	if err := t.store.Set(ctx, t.namespace, TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// ClearToken removes the token. Removing an absent token is not an error.
func (t *TokenStore) ClearToken(ctx context.Context) error {
	if err := t.store.Delete(ctx, t.namespace, TokenKey); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
