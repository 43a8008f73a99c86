package ledger

import (
	"time"
)

// DefaultCurrency is applied when a ledger event arrives without one
const DefaultCurrency = "KRW"

// SyncedLedger is a local replica of a ledger owned by the ledgering
// service. It carries just enough state to answer ownership questions
// without a network call.
type SyncedLedger struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Currency    string
	IsDefault   bool
	IsDeleted   bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSyncedLedger creates a replica from an inbound ledger event
func NewSyncedLedger(id, ownerID int64, name, description, currency string, isDefault bool) *SyncedLedger {
	if currency == "" {
		currency = DefaultCurrency
	}
	now := time.Now()
	return &SyncedLedger{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Currency:    currency,
		IsDefault:   isDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsLive reports whether the replica is usable for ownership checks
func (l *SyncedLedger) IsLive() bool {
	return !l.IsDeleted
}

// IsOwnedBy reports whether the given user owns this ledger
func (l *SyncedLedger) IsOwnedBy(userID int64) bool {
	return l.OwnerID == userID
}

// ApplyUpdate overwrites replica state from a newer ledger event.
// A previously soft-deleted replica is revived; the owning service is
// authoritative.
func (l *SyncedLedger) ApplyUpdate(ownerID int64, name, description, currency string, isDefault bool) {
	if currency == "" {
		currency = DefaultCurrency
	}
	l.OwnerID = ownerID
	l.Name = name
	l.Description = description
	l.Currency = currency
	l.IsDefault = isDefault
	l.IsDeleted = false
	l.DeletedAt = nil
	l.UpdatedAt = time.Now()
}

// SoftDelete marks the replica as deleted
func (l *SyncedLedger) SoftDelete() {
	now := time.Now()
	l.IsDeleted = true
	l.DeletedAt = &now
	l.UpdatedAt = now
}
