package demographics

import "context"

// Store manages demographics, addresses, and the reference tables.
type Store interface {
	CreateDemographic(ctx context.Context, d *Demographic) error
	FindDemographic(ctx context.Context, id int64) (*Demographic, error)
	FindDemographicByUser(ctx context.Context, userID int64) (*Demographic, error)
	UpdateDemographic(ctx context.Context, id int64, upd DemographicUpdate) (*Demographic, error)

	CreateAddress(ctx context.Context, a *Address) error
	ListAddresses(ctx context.Context, demographicID int64) ([]*Address, error)
	MakePrimary(ctx context.Context, demographicID, addressID int64) error
	DeleteAddress(ctx context.Context, id int64) error

	CreateCountry(ctx context.Context, name string) (*Country, error)
	ListCountries(ctx context.Context) ([]*Country, error)
	CreateState(ctx context.Context, name string, countryID int64) (*State, error)
	ListStates(ctx context.Context, countryID int64) ([]*State, error)
	CreateCollege(ctx context.Context, name string) (*College, error)
	ListColleges(ctx context.Context) ([]*College, error)
	CreateCompany(ctx context.Context, name string) (*Company, error)
	ListCompanies(ctx context.Context) ([]*Company, error)
	CreateBranch(ctx context.Context, name string) (*Branch, error)
	ListBranches(ctx context.Context) ([]*Branch, error)
}

// DemographicUpdate carries optional reference changes. Nil leaves a column
// untouched.
type DemographicUpdate struct {
	CollegeID *int64
	CompanyID *int64
	BranchID  *int64
}
