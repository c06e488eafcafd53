package org

import "context"

// Store manages organisations and both membership relations. Removing an
// admin row never touches the member relation and vice versa. Neither
// relation is unique on (organisation, user); Remove* clears every row for
// the pair.
type Store interface {
	Create(ctx context.Context, o *Organisation) error
	Find(ctx context.Context, id int64) (*Organisation, error)
	List(ctx context.Context) ([]*Organisation, error)
	Delete(ctx context.Context, id int64) error

	AddAdmin(ctx context.Context, organisationID, userID int64) (*Admin, error)
	RemoveAdmin(ctx context.Context, organisationID, userID int64) error
	ListAdmins(ctx context.Context, organisationID int64) ([]*Admin, error)

	AddMember(ctx context.Context, organisationID, userID int64, email string) (*Member, error)
	RemoveMember(ctx context.Context, organisationID, userID int64) error
	ListMembers(ctx context.Context, organisationID int64) ([]*Member, error)
}
