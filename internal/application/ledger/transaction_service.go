package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
)

// TransactionService provides application-level transaction operations
type TransactionService struct {
	transactions ledger.TransactionRepository
	access       *AccessResolver
	logger       *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactions ledger.TransactionRepository,
	access *AccessResolver,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		access:       access,
		logger:       logger,
	}
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int64           `json:"id"`
	LedgerID        int64           `json:"ledger_id"`
	UserID          int64           `json:"user_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Memo            string          `json:"memo,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateTransactionRequest represents a request to create a transaction
type CreateTransactionRequest struct {
	LedgerID        int64           `json:"ledger_id" binding:"required"`
	Type            string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required,max=500"`
	Category        string          `json:"category" binding:"max=100"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Memo            string          `json:"memo" binding:"max=1000"`
}

// UpdateTransactionRequest represents a request to update a transaction.
// All mutable fields are replaced.
type UpdateTransactionRequest struct {
	Type            string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required,max=500"`
	Category        string          `json:"category" binding:"max=100"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Memo            string          `json:"memo" binding:"max=1000"`
}

// TransactionListFilter defines filtering options for transaction list queries
type TransactionListFilter struct {
	Category  string `form:"category"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// Create records a new transaction on a ledger the user owns.
// The row and its TRANSACTION_CREATED outbox entry are written in one
// database transaction.
func (s *TransactionService) Create(ctx context.Context, userID int64, req CreateTransactionRequest) (*TransactionResponse, error) {
	if err := s.access.AssertOwnership(ctx, req.LedgerID, userID); err != nil {
		return nil, err
	}

	tx, err := ledger.NewTransaction(
		req.LedgerID,
		userID,
		ledger.TransactionType(req.Type),
		req.Amount,
		req.Description,
		req.Category,
		req.TransactionDate,
		req.Memo,
	)
	if err != nil {
		return nil, err
	}

	if err := s.transactions.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("ledger_id", tx.LedgerID),
		zap.Int64("user_id", userID))

	return toTransactionResponse(tx), nil
}

// Get returns a single transaction owned by the user
func (s *TransactionService) Get(ctx context.Context, userID, id int64) (*TransactionResponse, error) {
	tx, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(tx), nil
}

// Update replaces all mutable fields of a transaction and enqueues a
// TRANSACTION_UPDATED event
func (s *TransactionService) Update(ctx context.Context, userID, id int64, req UpdateTransactionRequest) (*TransactionResponse, error) {
	tx, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Update(
		ledger.TransactionType(req.Type),
		req.Amount,
		req.Description,
		req.Category,
		req.TransactionDate,
		req.Memo,
	); err != nil {
		return nil, err
	}

	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, err
	}

	return toTransactionResponse(tx), nil
}

// Delete soft-deletes a transaction and enqueues a TRANSACTION_DELETED
// event. The row stays for audit; queries and aggregates skip it.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	tx, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := tx.Delete(); err != nil {
		return err
	}

	if err := s.transactions.Update(ctx, tx); err != nil {
		return err
	}

	s.logger.Info("transaction deleted",
		zap.Int64("transaction_id", id),
		zap.Int64("user_id", userID))
	return nil
}

// List returns a page of a ledger's transactions, newest first
func (s *TransactionService) List(ctx context.Context, userID, ledgerID int64, filter TransactionListFilter) (shared.Paginated[TransactionResponse], error) {
	var empty shared.Paginated[TransactionResponse]

	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return empty, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.SortBy != "" {
		domainFilter.OrderBy = filter.SortBy
	}
	if filter.SortOrder != "" {
		domainFilter.OrderDir = filter.SortOrder
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	page, err := s.transactions.FindByLedger(ctx, ledgerID, domainFilter)
	if err != nil {
		return empty, err
	}

	items := make([]TransactionResponse, len(page.Items))
	for i := range page.Items {
		items[i] = *toTransactionResponse(&page.Items[i])
	}

	return shared.Paginated[TransactionResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ListAll returns every transaction on a ledger, newest first
func (s *TransactionService) ListAll(ctx context.Context, userID, ledgerID int64) ([]TransactionResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	txs, err := s.transactions.FindAllByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(txs), nil
}

// ListByPeriod returns a ledger's transactions dated within [from, to]
func (s *TransactionService) ListByPeriod(ctx context.Context, userID, ledgerID int64, from, to time.Time) ([]TransactionResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	txs, err := s.transactions.FindByLedgerAndPeriod(ctx, ledgerID, from, to)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(txs), nil
}

// findOwned loads a live transaction and verifies the caller owns it.
// A transaction owned by someone else reads as not found so existence
// is never leaked across users.
func (s *TransactionService) findOwned(ctx context.Context, userID, id int64) (*ledger.Transaction, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ledger.ErrTransactionNotFound
	}
	return tx, nil
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		LedgerID:        t.LedgerID,
		UserID:          t.UserID,
		Type:            t.Type.String(),
		Amount:          t.Amount,
		Description:     t.Description,
		Category:        t.Category,
		TransactionDate: t.TransactionDate,
		Memo:            t.Memo,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toTransactionResponses(txs []ledger.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = *toTransactionResponse(&txs[i])
	}
	return responses
}
