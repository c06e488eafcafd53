package identity

import "time"

// Gender is a closed enum; unknown values are rejected at the boundary.
type Gender string

const (
	GenderMale        Gender = "MALE"
	GenderFemale      Gender = "FEMALE"
	GenderUndisclosed Gender = "UNDISCLOSED"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUndisclosed:
		return true
	}
	return false
}

// Role is optional; the empty value means no role is assigned.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleIntern   Role = "intern"
)

func (r Role) Valid() bool {
	switch r {
	case "", RoleAdmin, RoleEmployee, RoleIntern:
		return true
	}
	return false
}

// User is the identity anchor every other entity hangs off.
// VerifiedEmail and VerifiedMobile are unique only among non-empty values;
// the store maps empty strings to SQL NULL.
type User struct {
	ID             int64
	Username       string
	FirstName      string
	LastName       string
	Gender         Gender
	Photo          string
	Email          string
	MobileNumber   string
	Role           Role
	VerifiedEmail  string
	VerifiedMobile string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// UserUpdate applies partial updates; nil fields are left untouched.
type UserUpdate struct {
	FirstName      *string
	LastName       *string
	Gender         *Gender
	Photo          *string
	Email          *string
	MobileNumber   *string
	Role           *Role
	VerifiedEmail  *string
	VerifiedMobile *string
}

// Provider names one authentication method. Each provider has its own table
// with a unique user_id foreign key, so a user holds at most one identity per
// provider.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderFacebook Provider = "facebook"
	ProviderTwitter  Provider = "twitter"
	ProviderGithub   Provider = "github"
	ProviderGoogle   Provider = "google"
	ProviderLinkedin Provider = "linkedin"
	ProviderLms      Provider = "lms"
)

// Providers lists every supported provider, local first.
var Providers = []Provider{
	ProviderLocal,
	ProviderFacebook,
	ProviderTwitter,
	ProviderGithub,
	ProviderGoogle,
	ProviderLinkedin,
	ProviderLms,
}

var providerTables = map[Provider]string{
	ProviderLocal:    "userlocals",
	ProviderFacebook: "userfacebooks",
	ProviderTwitter:  "usertwitters",
	ProviderGithub:   "usergithubs",
	ProviderGoogle:   "usergoogles",
	ProviderLinkedin: "userlinkedins",
	ProviderLms:      "userlms",
}

func (p Provider) Valid() bool {
	_, ok := providerTables[p]
	return ok
}

// LocalIdentity stores the password credential for username/password login.
// Hashing is the caller's concern; this layer never sees plaintext policy.
type LocalIdentity struct {
	ID        int64
	UserID    int64
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// SocialIdentity links a user to an external provider account. All social
// provider tables share this shape; the provider picks the table.
type SocialIdentity struct {
	ID           int64
	UserID       int64
	AccountID    string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
