package ledger

import (
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as money in or money out
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Field length limits
const (
	MaxDescriptionLength = 500
	MaxCategoryLength    = 100
	MaxMemoLength        = 1000
)

// Transaction is a single income or expense entry on a ledger.
// It is the only aggregate this service owns; users and ledgers are
// replicas of entities owned by other services.
type Transaction struct {
	shared.BaseAggregateRoot
	LedgerID        int64           `json:"ledger_id"`
	UserID          int64           `json:"user_id"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	TransactionDate time.Time       `json:"transaction_date"`
	Memo            string          `json:"memo"`
	IsDeleted       bool            `json:"is_deleted"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
}

// NewTransaction creates a new transaction and raises its creation event
func NewTransaction(
	ledgerID int64,
	userID int64,
	txType TransactionType,
	amount decimal.Decimal,
	description string,
	category string,
	transactionDate time.Time,
	memo string,
) (*Transaction, error) {
	if err := validateTransactionFields(txType, amount, description, category, transactionDate, memo); err != nil {
		return nil, err
	}

	tx := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LedgerID:          ledgerID,
		UserID:            userID,
		Type:              txType,
		Amount:            amount,
		Description:       description,
		Category:          category,
		TransactionDate:   transactionDate,
		Memo:              memo,
	}

	return tx, nil
}

// RaiseCreated records the creation event. It is called after the row ID
// has been assigned so the event carries the final transaction ID.
func (t *Transaction) RaiseCreated() {
	t.AddDomainEvent(NewTransactionCreatedEvent(t))
}

// Update replaces all mutable fields and raises an update event
func (t *Transaction) Update(
	txType TransactionType,
	amount decimal.Decimal,
	description string,
	category string,
	transactionDate time.Time,
	memo string,
) error {
	if t.IsDeleted {
		return shared.ErrInvalidState
	}
	if err := validateTransactionFields(txType, amount, description, category, transactionDate, memo); err != nil {
		return err
	}

	t.Type = txType
	t.Amount = amount
	t.Description = description
	t.Category = category
	t.TransactionDate = transactionDate
	t.Memo = memo
	t.UpdatedAt = time.Now()

	t.AddDomainEvent(NewTransactionUpdatedEvent(t))
	return nil
}

// Delete marks the transaction as deleted and raises a deletion event.
// The row stays in place; deleted transactions are excluded from queries
// and aggregates.
func (t *Transaction) Delete() error {
	if t.IsDeleted {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.IsDeleted = true
	t.DeletedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(NewTransactionDeletedEvent(t))
	return nil
}

func validateTransactionFields(
	txType TransactionType,
	amount decimal.Decimal,
	description string,
	category string,
	transactionDate time.Time,
	memo string,
) error {
	if !txType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Transaction type must be INCOME or EXPENSE")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > MaxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if len(category) > MaxCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	if transactionDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if len(memo) > MaxMemoLength {
		return shared.NewDomainError("INVALID_MEMO", "Memo cannot exceed 1000 characters")
	}
	return nil
}
