package models

import (
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for ledger transactions.
// Deleted rows stay in place with is_deleted set; every read path and
// aggregate query filters them out.
type TransactionModel struct {
	BaseModel
	LedgerID        int64                  `gorm:"not null;index:idx_transactions_ledger"`
	UserID          int64                  `gorm:"not null;index:idx_transactions_user"`
	Type            ledger.TransactionType `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal        `gorm:"type:decimal(19,4);not null"`
	Description     string                 `gorm:"type:varchar(500);not null"`
	Category        string                 `gorm:"type:varchar(100)"`
	TransactionDate time.Time              `gorm:"type:date;not null;index:idx_transactions_date"`
	Memo            string                 `gorm:"type:varchar(1000)"`
	IsDeleted       bool                   `gorm:"not null;default:false"`
	DeletedAt       *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
		},
		LedgerID:        m.LedgerID,
		UserID:          m.UserID,
		Type:            m.Type,
		Amount:          m.Amount,
		Description:     m.Description,
		Category:        m.Category,
		TransactionDate: m.TransactionDate,
		Memo:            m.Memo,
		IsDeleted:       m.IsDeleted,
		DeletedAt:       m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.LedgerID = t.LedgerID
	m.UserID = t.UserID
	m.Type = t.Type
	m.Amount = t.Amount
	m.Description = t.Description
	m.Category = t.Category
	m.TransactionDate = t.TransactionDate
	m.Memo = t.Memo
	m.IsDeleted = t.IsDeleted
	m.DeletedAt = t.DeletedAt
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
