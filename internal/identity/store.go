package identity

import "context"

// Store describes persistence operations for users and provider identities.
type Store interface {
	Users(ctx context.Context) UserStore
	Providers(ctx context.Context) ProviderStore
}

// UserStore manages the users table.
//
// Find resolves soft-deleted rows so foreign-key references stay readable;
// FindByUsername and List see only active rows. Username uniqueness spans
// active and soft-deleted rows alike.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByVerifiedEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*User, error)
	SoftDelete(ctx context.Context, id int64) error
}

// ProviderStore manages the per-provider identity tables. Attachment is
// guarded by the unique index on user_id, never by a pre-check; concurrent
// attach attempts are serialized by the store.
type ProviderStore interface {
	AttachLocal(ctx context.Context, ident *LocalIdentity) error
	Attach(ctx context.Context, provider Provider, ident *SocialIdentity) error
	FindLocal(ctx context.Context, userID int64) (*LocalIdentity, error)
	Find(ctx context.Context, provider Provider, userID int64) (*SocialIdentity, error)
	FindByAccount(ctx context.Context, provider Provider, accountID string) (*SocialIdentity, error)
	SoftDelete(ctx context.Context, provider Provider, userID int64) error
}
