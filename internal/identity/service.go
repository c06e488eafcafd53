package identity

import (
	"context"
	"errors"
	"fmt"

	"oneauth.org/internal/audit"
	"oneauth.org/internal/pg"
)

// Service wraps the store with lifecycle orchestration and audit logging.
// It never pre-checks uniqueness; all races resolve at the constraint.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateAccount registers a new user. A username collision, including with a
// soft-deleted account, surfaces pg.ErrUniqueViolation.
func (s *Service) CreateAccount(ctx context.Context, u *User) error {
	if err := s.store.Users(ctx).Create(ctx, u); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	_ = audit.LogEvent(ctx, "user.created", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
	})
	return nil
}

// DeleteAccount soft-deletes the user and then each of its provider
// identities. Provider rows do not cascade from the user row; they share the
// soft-delete mechanism and are removed here explicitly.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.store.Users(ctx).SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("delete account %d: %w", userID, err)
	}
	providers := s.store.Providers(ctx)
	for _, p := range Providers {
		if err := providers.SoftDelete(ctx, p, userID); err != nil {
			if errors.Is(err, pg.ErrNotFound) {
				continue
			}
			return fmt.Errorf("delete %s identity of %d: %w", p, userID, err)
		}
	}
	_ = audit.LogEvent(ctx, "user.deleted", map[string]any{"user_id": userID})
	return nil
}

// AttachLocal adds a username/password credential to an existing account.
func (s *Service) AttachLocal(ctx context.Context, ident *LocalIdentity) error {
	if err := s.store.Providers(ctx).AttachLocal(ctx, ident); err != nil {
		return fmt.Errorf("attach local identity: %w", err)
	}
	_ = audit.LogEvent(ctx, "provider.attached", map[string]any{
		"user_id":  ident.UserID,
		"provider": string(ProviderLocal),
	})
	return nil
}

// AttachProvider links a social provider account. A second link for the same
// (provider, user) pair fails with pg.ErrUniqueViolation from the unique
// index, regardless of concurrency.
func (s *Service) AttachProvider(ctx context.Context, provider Provider, ident *SocialIdentity) error {
	if err := s.store.Providers(ctx).Attach(ctx, provider, ident); err != nil {
		return fmt.Errorf("attach %s identity: %w", provider, err)
	}
	_ = audit.LogEvent(ctx, "provider.attached", map[string]any{
		"user_id":  ident.UserID,
		"provider": string(provider),
	})
	return nil
}

// DetachProvider soft-deletes one provider identity without touching the
// account or any other provider link.
func (s *Service) DetachProvider(ctx context.Context, provider Provider, userID int64) error {
	if err := s.store.Providers(ctx).SoftDelete(ctx, provider, userID); err != nil {
		return fmt.Errorf("detach %s identity of %d: %w", provider, userID, err)
	}
	_ = audit.LogEvent(ctx, "provider.detached", map[string]any{
		"user_id":  userID,
		"provider": string(provider),
	})
	return nil
}
