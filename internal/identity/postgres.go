package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

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

func (s *PGStore) Users(ctx context.Context) UserStore         { return &userStore{db: s.db} }
func (s *PGStore) Providers(ctx context.Context) ProviderStore { return &providerStore{db: s.db} }

// User store ---------------------------------------------------------------
type userStore struct{ db *sql.DB }

const userColumns = `id, username, firstname, lastname, gender, photo, email, mobile_number, role, verifiedemail, verifiedmobile, created_at, updated_at, deleted_at`

func (s *userStore) Create(ctx context.Context, u *User) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("user", "create", start, err) }()

	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: username", pg.ErrNotNullViolation)
	}
	if u.Gender == "" {
		u.Gender = GenderUndisclosed
	}
	if !u.Gender.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidGender, u.Gender)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}

	err = s.db.QueryRowContext(ctx, `
		insert into users (username, firstname, lastname, gender, photo, email, mobile_number, role, verifiedemail, verifiedmobile)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		returning id, created_at, updated_at
	`, u.Username, pg.NullIfEmpty(u.FirstName), pg.NullIfEmpty(u.LastName), string(u.Gender),
		pg.NullIfEmpty(u.Photo), pg.NullIfEmpty(u.Email), pg.NullIfEmpty(u.MobileNumber),
		pg.NullIfEmpty(string(u.Role)), pg.NullIfEmpty(u.VerifiedEmail), pg.NullIfEmpty(u.VerifiedMobile),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return pg.Map(err)
}

// Find resolves a user by id, soft-deleted rows included.
func (s *userStore) Find(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

// FindByUsername sees only active rows.
func (s *userStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where username = $1 and deleted_at is null`, username)
	return scanUser(row)
}

func (s *userStore) FindByVerifiedEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where verifiedemail = $1 and deleted_at is null`, email)
	return scanUser(row)
}

func (s *userStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users where deleted_at is null order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *userStore) Update(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
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
	if upd.FirstName != nil {
		set("firstname", pg.NullIfEmpty(*upd.FirstName))
	}
	if upd.LastName != nil {
		set("lastname", pg.NullIfEmpty(*upd.LastName))
	}
	if upd.Gender != nil {
		if !upd.Gender.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidGender, *upd.Gender)
		}
		set("gender", string(*upd.Gender))
	}
	if upd.Photo != nil {
		set("photo", pg.NullIfEmpty(*upd.Photo))
	}
	if upd.Email != nil {
		set("email", pg.NullIfEmpty(*upd.Email))
	}
	if upd.MobileNumber != nil {
		set("mobile_number", pg.NullIfEmpty(*upd.MobileNumber))
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *upd.Role)
		}
		set("role", pg.NullIfEmpty(string(*upd.Role)))
	}
	if upd.VerifiedEmail != nil {
		set("verifiedemail", pg.NullIfEmpty(*upd.VerifiedEmail))
	}
	if upd.VerifiedMobile != nil {
		set("verifiedmobile", pg.NullIfEmpty(*upd.VerifiedMobile))
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		query := fmt.Sprintf(`update users set %s where id = $%d and deleted_at is null`,
			strings.Join(sets, ", "), idx)
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

// SoftDelete marks the row; it stays resolvable by id so dependent rows do
// not dangle. Provider identities are not touched here, the caller deletes
// them explicitly.
func (s *userStore) SoftDelete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("user", "soft_delete", start, err) }()

	res, err := s.db.ExecContext(ctx,
		`update users set deleted_at = now(), updated_at = now() where id = $1 and deleted_at is null`, id)
	if err != nil {
		return pg.Map(err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u                              User
		firstname, lastname, photo     sql.NullString
		email, mobile, role            sql.NullString
		verifiedEmail, verifiedMobile  sql.NullString
		deletedAt                      sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &firstname, &lastname, &u.Gender, &photo,
		&email, &mobile, &role, &verifiedEmail, &verifiedMobile,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	u.FirstName = firstname.String
	u.LastName = lastname.String
	u.Photo = photo.String
	u.Email = email.String
	u.MobileNumber = mobile.String
	u.Role = Role(role.String)
	u.VerifiedEmail = verifiedEmail.String
	u.VerifiedMobile = verifiedMobile.String
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return &u, nil
}

// Provider store -----------------------------------------------------------
type providerStore struct{ db *sql.DB }

// socialTable resolves the table for a social provider. Table names come
// from a closed map, never from input.
func socialTable(p Provider) (string, error) {
	if p == ProviderLocal {
		return "", fmt.Errorf("%w: local identities use AttachLocal", ErrInvalidProvider)
	}
	table, ok := providerTables[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, p)
	}
	return table, nil
}

func (s *providerStore) AttachLocal(ctx context.Context, ident *LocalIdentity) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("provider_identity", "attach", start, err) }()

	if ident.Password == "" {
		return fmt.Errorf("%w: password", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into userlocals (user_id, password)
		values ($1, $2)
		returning id, created_at, updated_at
	`, ident.UserID, ident.Password).Scan(&ident.ID, &ident.CreatedAt, &ident.UpdatedAt)
	return pg.Map(err)
}

func (s *providerStore) Attach(ctx context.Context, provider Provider, ident *SocialIdentity) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("provider_identity", "attach", start, err) }()

	table, err := socialTable(provider)
	if err != nil {
		return err
	}
	if ident.AccountID == "" {
		return fmt.Errorf("%w: account_id", pg.ErrNotNullViolation)
	}
	query := fmt.Sprintf(`
		insert into %s (user_id, account_id, access_token, refresh_token)
		values ($1, $2, $3, $4)
		returning id, created_at, updated_at
	`, table)
	err = s.db.QueryRowContext(ctx, query,
		ident.UserID, ident.AccountID, pg.NullIfEmpty(ident.AccessToken), pg.NullIfEmpty(ident.RefreshToken),
	).Scan(&ident.ID, &ident.CreatedAt, &ident.UpdatedAt)
	return pg.Map(err)
}

func (s *providerStore) FindLocal(ctx context.Context, userID int64) (*LocalIdentity, error) {
	var (
		ident     LocalIdentity
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, password, created_at, updated_at, deleted_at
		from userlocals where user_id = $1 and deleted_at is null
	`, userID).Scan(&ident.ID, &ident.UserID, &ident.Password, &ident.CreatedAt, &ident.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		ident.DeletedAt = &t
	}
	return &ident, nil
}

func (s *providerStore) Find(ctx context.Context, provider Provider, userID int64) (*SocialIdentity, error) {
	table, err := socialTable(provider)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		select id, user_id, account_id, access_token, refresh_token, created_at, updated_at, deleted_at
		from %s where user_id = $1 and deleted_at is null
	`, table)
	return scanSocial(s.db.QueryRowContext(ctx, query, userID))
}

func (s *providerStore) FindByAccount(ctx context.Context, provider Provider, accountID string) (*SocialIdentity, error) {
	table, err := socialTable(provider)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		select id, user_id, account_id, access_token, refresh_token, created_at, updated_at, deleted_at
		from %s where account_id = $1 and deleted_at is null
	`, table)
	return scanSocial(s.db.QueryRowContext(ctx, query, accountID))
}

func (s *providerStore) SoftDelete(ctx context.Context, provider Provider, userID int64) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("provider_identity", "soft_delete", start, err) }()

	table, ok := providerTables[provider]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	query := fmt.Sprintf(
		`update %s set deleted_at = now(), updated_at = now() where user_id = $1 and deleted_at is null`, table)
	res, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return pg.Map(err)
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

func scanSocial(row rowScanner) (*SocialIdentity, error) {
	var (
		ident                     SocialIdentity
		accessToken, refreshToken sql.NullString
		deletedAt                 sql.NullTime
	)
	err := row.Scan(&ident.ID, &ident.UserID, &ident.AccountID, &accessToken, &refreshToken,
		&ident.CreatedAt, &ident.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	ident.AccessToken = accessToken.String
	ident.RefreshToken = refreshToken.String
	if deletedAt.Valid {
		t := deletedAt.Time
		ident.DeletedAt = &t
	}
	return &ident, nil
}
