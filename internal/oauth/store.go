package oauth

import "context"

// Store describes persistence for clients, grant codes and tokens.
type Store interface {
	Clients(ctx context.Context) ClientStore
	GrantCodes(ctx context.Context) GrantCodeStore
	AuthTokens(ctx context.Context) AuthTokenStore
}

// ClientStore manages registered applications.
type ClientStore interface {
	Register(ctx context.Context, c *Client) error
	Find(ctx context.Context, id int64) (*Client, error)
	ListByUser(ctx context.Context, userID int64) ([]*Client, error)
	Update(ctx context.Context, id int64, upd ClientUpdate) (*Client, error)
	Delete(ctx context.Context, id int64) error
}

// GrantCodeStore manages single-use authorization codes. Issue fails with
// pg.ErrUniqueViolation on a code collision; callers retry with a new code.
type GrantCodeStore interface {
	Issue(ctx context.Context, gc *GrantCode) error
	Find(ctx context.Context, code string) (*GrantCode, error)
	Delete(ctx context.Context, code string) error
}

// AuthTokenStore manages access tokens. Revocation is physical deletion;
// invalid tokens carry no historical value.
type AuthTokenStore interface {
	Issue(ctx context.Context, tok *AuthToken) error
	Find(ctx context.Context, token string) (*AuthToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserClient(ctx context.Context, userID, clientID int64) error
}
