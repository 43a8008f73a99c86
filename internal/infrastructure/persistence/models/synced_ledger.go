package models

import (
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

// SyncedLedgerModel is the persistence model for ledger replicas.
// The primary key is the ledgering service's ledger ID.
type SyncedLedgerModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	OwnerID     int64  `gorm:"not null;index:idx_synced_ledgers_owner"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:varchar(500);not null;default:''"`
	Currency    string `gorm:"type:varchar(10);not null"`
	IsDefault   bool   `gorm:"not null;default:false"`
	IsDeleted   bool   `gorm:"not null;default:false"`
	DeletedAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncedLedgerModel) TableName() string {
	return "synced_ledgers"
}

// ToDomain converts the persistence model to a domain SyncedLedger
func (m *SyncedLedgerModel) ToDomain() *ledger.SyncedLedger {
	return &ledger.SyncedLedger{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Currency:    m.Currency,
		IsDefault:   m.IsDefault,
		IsDeleted:   m.IsDeleted,
		DeletedAt:   m.DeletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// SyncedLedgerModelFromDomain creates a new persistence model from a domain SyncedLedger
func SyncedLedgerModelFromDomain(l *ledger.SyncedLedger) *SyncedLedgerModel {
	return &SyncedLedgerModel{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Name:        l.Name,
		Description: l.Description,
		Currency:    l.Currency,
		IsDefault:   l.IsDefault,
		IsDeleted:   l.IsDeleted,
		DeletedAt:   l.DeletedAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
