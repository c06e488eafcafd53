// Package events persists per-client webhook subscriptions. A subscription
// names the entity type to watch and the change kind to be notified about.
package events

import "time"

// Model is the entity type a subscription watches.
type Model string

const (
	ModelUser        Model = "user"
	ModelClient      Model = "client"
	ModelAddress     Model = "address"
	ModelDemographic Model = "demographic"
)

func (m Model) Valid() bool {
	switch m {
	case ModelUser, ModelClient, ModelAddress, ModelDemographic:
		return true
	}
	return false
}

// ChangeType is the kind of change a subscription fires on.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

func (c ChangeType) Valid() bool {
	switch c {
	case ChangeCreate, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// Subscription is one webhook registration. Nothing prevents a client from
// registering the same (model, type) pair twice; consumers de-duplicate on
// read when they care.
type Subscription struct {
	ID        int64
	ClientID  int64
	Model     Model
	Type      ChangeType
	CreatedAt time.Time
}
