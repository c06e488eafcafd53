// Package oauth persists the client registry and its authorization
// artifacts. Token and code values are caller-generated opaque strings; this
// layer only guarantees they cannot be duplicated.
package oauth

import "time"

// DefaultURL is the landing page used when a client registers without one.
const DefaultURL = "https://oneauth.org/"

// Client is a registered application. The id is assigned by the registrar,
// never generated here. Domain and CallbackURL are ordered; the first
// callback may serve as the default redirect.
type Client struct {
	ID          int64
	Name        string
	Secret      string
	Domain      []string
	CallbackURL []string
	WebhookURL  string
	Trusted     bool
	DefaultURL  string
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientUpdate applies partial updates; nil fields are left untouched.
type ClientUpdate struct {
	Name        *string
	Secret      *string
	Domain      *[]string
	CallbackURL *[]string
	WebhookURL  *string
	Trusted     *bool
	DefaultURL  *string
}

// GrantCode is a single-use authorization code scoped to a (user, client)
// pair. The code string is the primary key; the issuing flow deletes it
// after exchange.
type GrantCode struct {
	Code      string
	UserID    int64
	ClientID  int64
	CreatedAt time.Time
}

// AuthToken is an access token scoped to a (user, client) pair. Explicit
// marks tokens issued through explicit user consent.
type AuthToken struct {
	Token     string
	Scope     []string
	Explicit  bool
	UserID    int64
	ClientID  int64
	CreatedAt time.Time
}
