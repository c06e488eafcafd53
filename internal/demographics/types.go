// Package demographics persists per-user profile hubs, their addresses, and
// the reference tables they point at. A user has at most one demographic row;
// a demographic has at most one primary address.
package demographics

import "time"

// Demographic is the profile hub for one user. Every reference is optional
// until profile completion.
type Demographic struct {
	ID        int64
	UserID    int64
	CollegeID *int64
	CompanyID *int64
	BranchID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address belongs to one demographic. At most one address per demographic
// carries Primary, enforced by a partial unique index.
type Address struct {
	ID            int64
	DemographicID int64
	Line1         string
	Line2         string
	City          string
	Pincode       string
	StateID       *int64
	CountryID     *int64
	Primary       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Country is a lookup row.
type Country struct {
	ID   int64
	Name string
}

// State belongs to one country.
type State struct {
	ID        int64
	Name      string
	CountryID int64
}

// College is a lookup row.
type College struct {
	ID   int64
	Name string
}

// Company is a lookup row.
type Company struct {
	ID   int64
	Name string
}

// Branch is a field-of-study lookup row.
type Branch struct {
	ID   int64
	Name string
}
