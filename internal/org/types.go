// Package org persists organisations and their two independent membership
// relations. Administrators and members are separate sets; nothing couples
// them and nothing prevents a user from being in both.
package org

import "time"

// Organisation is an institutional account. The id is assigned externally,
// never generated here.
type Organisation struct {
	ID        int64
	Name      string
	FullName  string
	Domain    []string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Admin is one administrator relation row.
type Admin struct {
	ID             int64
	OrganisationID int64
	UserID         int64
	CreatedAt      time.Time
}

// Member is one membership relation row. Email records the address the
// membership was established with, which may differ from the user's account
// email and is not unique.
type Member struct {
	ID             int64
	OrganisationID int64
	UserID         int64
	Email          string
	CreatedAt      time.Time
}
