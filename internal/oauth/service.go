package oauth

import (
	"context"
	"errors"
	"fmt"

	"oneauth.org/internal/audit"
	"oneauth.org/internal/pg"
)

// ErrWrongClient reports a token that exists but belongs to another client.
var ErrWrongClient = errors.New("oauth: token not issued to this client")

// Service layers ownership checks and audit logging over the store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RegisterClient stores a new application and audits the registration.
func (s *Service) RegisterClient(ctx context.Context, c *Client) error {
	if err := s.store.Clients(ctx).Register(ctx, c); err != nil {
		return fmt.Errorf("register client: %w", err)
	}
	_ = audit.LogEvent(ctx, "client.registered", map[string]any{
		"client_id": c.ID,
		"user_id":   c.UserID,
	})
	return nil
}

// ValidForClient checks that a token exists and was issued to the given
// client. A missing token is reported as not-found, not as an error.
func (s *Service) ValidForClient(ctx context.Context, token string, clientID int64) (*AuthToken, bool, error) {
	tok, err := s.store.AuthTokens(ctx).Find(ctx, token)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if tok.ClientID != clientID {
		return nil, false, fmt.Errorf("%w: token held by client %d", ErrWrongClient, tok.ClientID)
	}
	return tok, true, nil
}

// RevokeToken physically deletes the token row.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	if err := s.store.AuthTokens(ctx).Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	_ = audit.LogEvent(ctx, "token.revoked", nil)
	return nil
}

// ExchangeGrantCode consumes a grant code: the row is resolved, verified
// against the exchanging client and deleted in place of any state machine.
func (s *Service) ExchangeGrantCode(ctx context.Context, code string, clientID int64) (*GrantCode, error) {
	codes := s.store.GrantCodes(ctx)
	gc, err := codes.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if gc.ClientID != clientID {
		return nil, fmt.Errorf("%w: code held by client %d", ErrWrongClient, gc.ClientID)
	}
	if err := codes.Delete(ctx, code); err != nil {
		return nil, err
	}
	return gc, nil
}
