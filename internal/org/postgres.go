package org

import (
	"context"
	"database/sql"
	"fmt"
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

func (s *PGStore) Create(ctx context.Context, o *Organisation) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("organisation", "create", start, err) }()

	if o.ID == 0 {
		return fmt.Errorf("%w: organisation id must be assigned externally", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into organisations (id, name, full_name, domain, website)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, o.ID, o.Name, o.FullName, pq.Array(o.Domain), pg.NullIfEmpty(o.Website),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return pg.Map(err)
}

func (s *PGStore) Find(ctx context.Context, id int64) (*Organisation, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, name, full_name, domain, website, created_at, updated_at
		from organisations where id = $1
	`, id)
	return scanOrganisation(row)
}

func (s *PGStore) List(ctx context.Context) ([]*Organisation, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, full_name, domain, website, created_at, updated_at
		from organisations order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*Organisation
	for rows.Next() {
		o, err := scanOrganisation(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// Delete hard-deletes the organisation; both relation tables cascade.
func (s *PGStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from organisations where id = $1`, id)
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

func (s *PGStore) AddAdmin(ctx context.Context, organisationID, userID int64) (*Admin, error) {
	a := &Admin{OrganisationID: organisationID, UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		insert into orgadmins (organisation_id, user_id)
		values ($1, $2)
		returning id, created_at
	`, organisationID, userID).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	return a, nil
}

func (s *PGStore) RemoveAdmin(ctx context.Context, organisationID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		delete from orgadmins where organisation_id = $1 and user_id = $2
	`, organisationID, userID)
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

func (s *PGStore) ListAdmins(ctx context.Context, organisationID int64) ([]*Admin, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, organisation_id, user_id, created_at
		from orgadmins where organisation_id = $1 order by id
	`, organisationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.ID, &a.OrganisationID, &a.UserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, &a)
	}
	return admins, rows.Err()
}

func (s *PGStore) AddMember(ctx context.Context, organisationID, userID int64, email string) (*Member, error) {
	m := &Member{OrganisationID: organisationID, UserID: userID, Email: email}
	err := s.db.QueryRowContext(ctx, `
		insert into orgmembers (organisation_id, user_id, email)
		values ($1, $2, $3)
		returning id, created_at
	`, organisationID, userID, pg.NullIfEmpty(email)).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	return m, nil
}

func (s *PGStore) RemoveMember(ctx context.Context, organisationID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		delete from orgmembers where organisation_id = $1 and user_id = $2
	`, organisationID, userID)
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

func (s *PGStore) ListMembers(ctx context.Context, organisationID int64) ([]*Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, organisation_id, user_id, email, created_at
		from orgmembers where organisation_id = $1 order by id
	`, organisationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var (
			m     Member
			email sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.OrganisationID, &m.UserID, &email, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Email = email.String
		members = append(members, &m)
	}
	return members, rows.Err()
}

func scanOrganisation(row interface{ Scan(...any) error }) (*Organisation, error) {
	var (
		o       Organisation
		website sql.NullString
	)
	err := row.Scan(&o.ID, &o.Name, &o.FullName, pq.Array(&o.Domain), &website,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	o.Website = website.String
	return &o, nil
}
