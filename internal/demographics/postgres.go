package demographics

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

func (s *PGStore) CreateDemographic(ctx context.Context, d *Demographic) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("demographic", "create", start, err) }()

	if d.UserID == 0 {
		return fmt.Errorf("%w: demographic requires a user", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into demographics (user_id, college_id, company_id, branch_id)
		values ($1, $2, $3, $4)
		returning id, created_at, updated_at
	`, d.UserID, d.CollegeID, d.CompanyID, d.BranchID,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return pg.Map(err)
}

const demographicColumns = `id, user_id, college_id, company_id, branch_id, created_at, updated_at`

func (s *PGStore) FindDemographic(ctx context.Context, id int64) (*Demographic, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+demographicColumns+` from demographics where id = $1`, id)
	return scanDemographic(row)
}

func (s *PGStore) FindDemographicByUser(ctx context.Context, userID int64) (*Demographic, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+demographicColumns+` from demographics where user_id = $1`, userID)
	return scanDemographic(row)
}

func (s *PGStore) UpdateDemographic(ctx context.Context, id int64, upd DemographicUpdate) (*Demographic, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.CollegeID != nil {
		set("college_id", *upd.CollegeID)
	}
	if upd.CompanyID != nil {
		set("company_id", *upd.CompanyID)
	}
	if upd.BranchID != nil {
		set("branch_id", *upd.BranchID)
	}
	if len(sets) == 0 {
		return s.FindDemographic(ctx, id)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`update demographics set %s where id = $%d returning `+demographicColumns,
		strings.Join(sets, ", "), len(args)), args...)
	return scanDemographic(row)
}

func (s *PGStore) CreateAddress(ctx context.Context, a *Address) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("address", "create", start, err) }()

	err = s.db.QueryRowContext(ctx, `
		insert into addresses (demographic_id, line1, line2, city, pincode, state_id, country_id, "primary")
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id, created_at, updated_at
	`, a.DemographicID, a.Line1, pg.NullIfEmpty(a.Line2), a.City, a.Pincode,
		a.StateID, a.CountryID, a.Primary,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return pg.Map(err)
}

func (s *PGStore) ListAddresses(ctx context.Context, demographicID int64) ([]*Address, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, demographic_id, line1, line2, city, pincode, state_id, country_id, "primary", created_at, updated_at
		from addresses where demographic_id = $1 order by id
	`, demographicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []*Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

// MakePrimary demotes the current primary address, if any, and promotes the
// given one in the same transaction so the partial unique index never sees
// two primaries.
func (s *PGStore) MakePrimary(ctx context.Context, demographicID, addressID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		update addresses set "primary" = false, updated_at = now()
		where demographic_id = $1 and "primary"
	`, demographicID); err != nil {
		return pg.Map(err)
	}
	res, err := tx.ExecContext(ctx, `
		update addresses set "primary" = true, updated_at = now()
		where id = $1 and demographic_id = $2
	`, addressID, demographicID)
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
	return tx.Commit()
}

func (s *PGStore) DeleteAddress(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from addresses where id = $1`, id)
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

// Lookup tables share a (id, name) shape. The closed map keeps table names
// out of caller control.
var lookupTables = map[string]string{
	"country": "countries",
	"college": "colleges",
	"company": "companies",
	"branch":  "branches",
}

func (s *PGStore) createLookup(ctx context.Context, kind, name string) (int64, error) {
	table := lookupTables[kind]
	var id int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`insert into %s (name) values ($1) returning id`, table), name).Scan(&id)
	if err != nil {
		return 0, pg.Map(err)
	}
	return id, nil
}

func (s *PGStore) listLookup(ctx context.Context, kind string) ([]int64, []string, error) {
	table := lookupTables[kind]
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`select id, name from %s order by name`, table))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		ids   []int64
		names []string
	)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		names = append(names, name)
	}
	return ids, names, rows.Err()
}

func (s *PGStore) CreateCountry(ctx context.Context, name string) (*Country, error) {
	id, err := s.createLookup(ctx, "country", name)
	if err != nil {
		return nil, err
	}
	return &Country{ID: id, Name: name}, nil
}

func (s *PGStore) ListCountries(ctx context.Context) ([]*Country, error) {
	ids, names, err := s.listLookup(ctx, "country")
	if err != nil {
		return nil, err
	}
	out := make([]*Country, len(ids))
	for i := range ids {
		out[i] = &Country{ID: ids[i], Name: names[i]}
	}
	return out, nil
}

func (s *PGStore) CreateState(ctx context.Context, name string, countryID int64) (*State, error) {
	st := &State{Name: name, CountryID: countryID}
	err := s.db.QueryRowContext(ctx, `
		insert into states (name, country_id) values ($1, $2) returning id
	`, name, countryID).Scan(&st.ID)
	if err != nil {
		return nil, pg.Map(err)
	}
	return st, nil
}

func (s *PGStore) ListStates(ctx context.Context, countryID int64) ([]*State, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, country_id from states where country_id = $1 order by name
	`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*State
	for rows.Next() {
		var st State
		if err := rows.Scan(&st.ID, &st.Name, &st.CountryID); err != nil {
			return nil, err
		}
		states = append(states, &st)
	}
	return states, rows.Err()
}

func (s *PGStore) CreateCollege(ctx context.Context, name string) (*College, error) {
	id, err := s.createLookup(ctx, "college", name)
	if err != nil {
		return nil, err
	}
	return &College{ID: id, Name: name}, nil
}

func (s *PGStore) ListColleges(ctx context.Context) ([]*College, error) {
	ids, names, err := s.listLookup(ctx, "college")
	if err != nil {
		return nil, err
	}
	out := make([]*College, len(ids))
	for i := range ids {
		out[i] = &College{ID: ids[i], Name: names[i]}
	}
	return out, nil
}

func (s *PGStore) CreateCompany(ctx context.Context, name string) (*Company, error) {
	id, err := s.createLookup(ctx, "company", name)
	if err != nil {
		return nil, err
	}
	return &Company{ID: id, Name: name}, nil
}

func (s *PGStore) ListCompanies(ctx context.Context) ([]*Company, error) {
	ids, names, err := s.listLookup(ctx, "company")
	if err != nil {
		return nil, err
	}
	out := make([]*Company, len(ids))
	for i := range ids {
		out[i] = &Company{ID: ids[i], Name: names[i]}
	}
	return out, nil
}

func (s *PGStore) CreateBranch(ctx context.Context, name string) (*Branch, error) {
	id, err := s.createLookup(ctx, "branch", name)
	if err != nil {
		return nil, err
	}
	return &Branch{ID: id, Name: name}, nil
}

func (s *PGStore) ListBranches(ctx context.Context) ([]*Branch, error) {
	ids, names, err := s.listLookup(ctx, "branch")
	if err != nil {
		return nil, err
	}
	out := make([]*Branch, len(ids))
	for i := range ids {
		out[i] = &Branch{ID: ids[i], Name: names[i]}
	}
	return out, nil
}

func scanDemographic(row interface{ Scan(...any) error }) (*Demographic, error) {
	var (
		d       Demographic
		college sql.NullInt64
		company sql.NullInt64
		branch  sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.UserID, &college, &company, &branch,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	if college.Valid {
		d.CollegeID = &college.Int64
	}
	if company.Valid {
		d.CompanyID = &company.Int64
	}
	if branch.Valid {
		d.BranchID = &branch.Int64
	}
	return &d, nil
}

func scanAddress(row interface{ Scan(...any) error }) (*Address, error) {
	var (
		a       Address
		line2   sql.NullString
		state   sql.NullInt64
		country sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.DemographicID, &a.Line1, &line2, &a.City, &a.Pincode,
		&state, &country, &a.Primary, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	a.Line2 = line2.String
	if state.Valid {
		a.StateID = &state.Int64
	}
	if country.Valid {
		a.CountryID = &country.Int64
	}
	return &a, nil
}
