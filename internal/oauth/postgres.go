package oauth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"oneauth.org/internal/obs"
	"oneauth.org/internal/pg"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Clients(ctx context.Context) ClientStore       { return &clientStore{db: s.db} }
func (s *PGStore) GrantCodes(ctx context.Context) GrantCodeStore { return &grantCodeStore{db: s.db} }
func (s *PGStore) AuthTokens(ctx context.Context) AuthTokenStore { return &authTokenStore{db: s.db} }

// Client store --------------------------------------------------------------
type clientStore struct{ db *sql.DB }

const clientColumns = `id, name, secret, domain, callback_url, webhook_url, trusted, default_url, user_id, created_at, updated_at`

func (s *clientStore) Register(ctx context.Context, c *Client) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("client", "register", start, err) }()

	if c.ID == 0 {
		return fmt.Errorf("%w: client id must be assigned by the registrar", pg.ErrNotNullViolation)
	}
	if c.DefaultURL == "" {
		c.DefaultURL = DefaultURL
	}
	err = s.db.QueryRowContext(ctx, `
		insert into clients (id, name, secret, domain, callback_url, webhook_url, trusted, default_url, user_id)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning created_at, updated_at
	`, c.ID, c.Name, c.Secret, pq.Array(c.Domain), pq.Array(c.CallbackURL),
		pg.NullIfEmpty(c.WebhookURL), c.Trusted, c.DefaultURL, c.UserID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return pg.Map(err)
}

func (s *clientStore) Find(ctx context.Context, id int64) (*Client, error) {
	row := s.db.QueryRowContext(ctx, `select `+clientColumns+` from clients where id = $1`, id)
	return scanClient(row)
}

func (s *clientStore) ListByUser(ctx context.Context, userID int64) ([]*Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+clientColumns+` from clients where user_id = $1 order by id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *clientStore) Update(ctx context.Context, id int64, upd ClientUpdate) (*Client, error) {
	var (
		sets []string
		args []any
		idx  = 1
	)
	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Secret != nil {
		set("secret", *upd.Secret)
	}
	if upd.Domain != nil {
		set("domain", pq.Array(*upd.Domain))
	}
	if upd.CallbackURL != nil {
		set("callback_url", pq.Array(*upd.CallbackURL))
	}
	if upd.WebhookURL != nil {
		set("webhook_url", pg.NullIfEmpty(*upd.WebhookURL))
	}
	if upd.Trusted != nil {
		set("trusted", *upd.Trusted)
	}
	if upd.DefaultURL != nil {
		if *upd.DefaultURL == "" {
			return nil, fmt.Errorf("%w: default_url", pg.ErrNotNullViolation)
		}
		set("default_url", *upd.DefaultURL)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		query := fmt.Sprintf(`update clients set %s where id = $%d`, strings.Join(sets, ", "), idx)
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, pg.Map(err)
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if aff == 0 {
			return nil, pg.ErrNotFound
		}
	}
	return s.Find(ctx, id)
}

// Delete hard-deletes a client. Outstanding codes, tokens or subscriptions
// keep the row referenced and surface pg.ErrDeleteConflict.
func (s *clientStore) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("client", "delete", start, err) }()

	res, err := s.db.ExecContext(ctx, `delete from clients where id = $1`, id)
	if err != nil {
		return pg.MapDelete(err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return pg.ErrNotFound
	}
	return nil
}

func scanClient(row interface{ Scan(...any) error }) (*Client, error) {
	var (
		c          Client
		webhookURL sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Secret, pq.Array(&c.Domain), pq.Array(&c.CallbackURL),
		&webhookURL, &c.Trusted, &c.DefaultURL, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	c.WebhookURL = webhookURL.String
	return &c, nil
}

// Grant code store -----------------------------------------------------------
type grantCodeStore struct{ db *sql.DB }

func (s *grantCodeStore) Issue(ctx context.Context, gc *GrantCode) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("grantcode", "issue", start, err) }()

	if gc.Code == "" {
		return fmt.Errorf("%w: code", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into grantcodes (code, user_id, client_id)
		values ($1, $2, $3)
		returning created_at
	`, gc.Code, gc.UserID, gc.ClientID).Scan(&gc.CreatedAt)
	return pg.Map(err)
}

func (s *grantCodeStore) Find(ctx context.Context, code string) (*GrantCode, error) {
	var gc GrantCode
	err := s.db.QueryRowContext(ctx, `
		select code, user_id, client_id, created_at from grantcodes where code = $1
	`, code).Scan(&gc.Code, &gc.UserID, &gc.ClientID, &gc.CreatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	return &gc, nil
}

func (s *grantCodeStore) Delete(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `delete from grantcodes where code = $1`, code)
	if err != nil {
		return pg.MapDelete(err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return pg.ErrNotFound
	}
	return nil
}

// Auth token store -----------------------------------------------------------
type authTokenStore struct{ db *sql.DB }

func (s *authTokenStore) Issue(ctx context.Context, tok *AuthToken) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("authtoken", "issue", start, err) }()

	if tok.Token == "" {
		return fmt.Errorf("%w: token", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into authtokens (token, scope, explicit, user_id, client_id)
		values ($1, $2, $3, $4, $5)
		returning created_at
	`, tok.Token, pq.Array(tok.Scope), tok.Explicit, tok.UserID, tok.ClientID).Scan(&tok.CreatedAt)
	return pg.Map(err)
}

func (s *authTokenStore) Find(ctx context.Context, token string) (*AuthToken, error) {
	var tok AuthToken
	err := s.db.QueryRowContext(ctx, `
		select token, scope, explicit, user_id, client_id, created_at
		from authtokens where token = $1
	`, token).Scan(&tok.Token, pq.Array(&tok.Scope), &tok.Explicit, &tok.UserID, &tok.ClientID, &tok.CreatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	return &tok, nil
}

func (s *authTokenStore) Delete(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `delete from authtokens where token = $1`, token)
	if err != nil {
		return pg.MapDelete(err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return pg.ErrNotFound
	}
	return nil
}

// DeleteByUserClient revokes every token one client holds for one user.
func (s *authTokenStore) DeleteByUserClient(ctx context.Context, userID, clientID int64) error {
	_, err := s.db.ExecContext(ctx,
		`delete from authtokens where user_id = $1 and client_id = $2`, userID, clientID)
	return pg.MapDelete(err)
}
