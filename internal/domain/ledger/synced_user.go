package ledger

import (
	"time"
)

// SyncedUser is a local replica of a user owned by the identity service.
// The ID is the identity service's primary key, never generated here.
// Replicas arrive through USER_REGISTERED events or just-in-time
// provisioning and are only ever soft-deleted.
type SyncedUser struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Nickname  string
	Role      string
	IsActive  bool
	IsDeleted bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSyncedUser creates a replica from enrichment data
func NewSyncedUser(id int64, username, email, firstName, lastName, nickname, role string, isActive bool) *SyncedUser {
	now := time.Now()
	return &SyncedUser{
		ID:        id,
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Nickname:  nickname,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLive reports whether the replica is usable for ownership checks
func (u *SyncedUser) IsLive() bool {
	return !u.IsDeleted
}

// SoftDelete marks the replica as deleted
func (u *SyncedUser) SoftDelete() {
	now := time.Now()
	u.IsDeleted = true
	u.DeletedAt = &now
	u.UpdatedAt = now
}
