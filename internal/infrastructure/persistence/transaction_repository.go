package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// totalsSelect computes income, expense and row count in a single pass.
// COALESCE keeps sums at zero instead of NULL on empty sets.
const totalsSelect = "COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount ELSE 0 END), 0) AS income, " +
	"COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount ELSE 0 END), 0) AS expense, " +
	"COUNT(*) AS count"

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// SetOutboxEventSaver injects the outbox saver so domain events are stored
// in the same database transaction as the aggregate
func (r *GormTransactionRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// Save inserts a new transaction. The database assigns the row ID, which is
// written back to the aggregate before its creation event is raised, so the
// event payload carries the final ID. Events go to the outbox in the same
// database transaction.
func (r *GormTransactionRepository) Save(ctx context.Context, t *ledger.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.TransactionModelFromDomain(t)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		t.ID = model.ID
		t.RaiseCreated()
		return r.saveEvents(ctx, tx, t)
	})
	if err != nil {
		t.ClearDomainEvents()
		return err
	}
	t.ClearDomainEvents()
	return nil
}

// Update persists changes to an existing transaction and stores its pending
// events in the outbox within the same database transaction
func (r *GormTransactionRepository) Update(ctx context.Context, t *ledger.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.TransactionModelFromDomain(t)
		result := tx.Model(&models.TransactionModel{}).
			Where("id = ?", t.ID).
			Select("*").Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return r.saveEvents(ctx, tx, t)
	})
	if err != nil {
		return err
	}
	t.ClearDomainEvents()
	return nil
}

// saveEvents stores the aggregate's pending domain events through the
// injected outbox saver
func (r *GormTransactionRepository) saveEvents(ctx context.Context, tx *gorm.DB, t *ledger.Transaction) error {
	events := t.GetDomainEvents()
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// FindByID finds a live transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id int64) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = false", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLedger returns a page of live transactions on a ledger
func (r *GormTransactionRepository) FindByLedger(ctx context.Context, ledgerID int64, filter shared.Filter) (shared.Paginated[ledger.Transaction], error) {
	base := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("ledger_id = ? AND is_deleted = false", ledgerID)
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		base = base.Where("category = ?", category)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[ledger.Transaction]{}, err
	}

	sortField := ValidateSortField(filter.OrderBy, TransactionSortFields, "transaction_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query := base.Order(fmt.Sprintf("%s %s, id %s", sortField, sortOrder, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	var txModels []models.TransactionModel
	if err := query.Find(&txModels).Error; err != nil {
		return shared.Paginated[ledger.Transaction]{}, err
	}
	items := make([]ledger.Transaction, len(txModels))
	for i, model := range txModels {
		items[i] = *model.ToDomain()
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// FindAllByLedger returns every live transaction on a ledger, newest first
func (r *GormTransactionRepository) FindAllByLedger(ctx context.Context, ledgerID int64) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("ledger_id = ? AND is_deleted = false", ledgerID).
		Order("transaction_date DESC, id DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	items := make([]ledger.Transaction, len(txModels))
	for i, model := range txModels {
		items[i] = *model.ToDomain()
	}
	return items, nil
}

// FindByLedgerAndPeriod returns live transactions dated in [from, to], newest first
func (r *GormTransactionRepository) FindByLedgerAndPeriod(ctx context.Context, ledgerID int64, from, to time.Time) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("ledger_id = ? AND is_deleted = false AND transaction_date >= ? AND transaction_date <= ?", ledgerID, from, to).
		Order("transaction_date DESC, id DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	items := make([]ledger.Transaction, len(txModels))
	for i, model := range txModels {
		items[i] = *model.ToDomain()
	}
	return items, nil
}

// ExistsByLedgerAndUser checks whether the user has any live transaction on the ledger
func (r *GormTransactionRepository) ExistsByLedgerAndUser(ctx context.Context, ledgerID, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("ledger_id = ? AND user_id = ? AND is_deleted = false", ledgerID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByLedger checks whether the ledger has any live transaction
func (r *GormTransactionRepository) ExistsByLedger(ctx context.Context, ledgerID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("ledger_id = ? AND is_deleted = false", ledgerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// totalsRow receives a single aggregate row scan
type totalsRow struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Count   int64
}

func (row totalsRow) toDomain() *ledger.Totals {
	return &ledger.Totals{
		Income:  row.Income,
		Expense: row.Expense,
		Count:   row.Count,
	}
}

// Totals returns lifetime totals for a ledger
func (r *GormTransactionRepository) Totals(ctx context.Context, ledgerID int64) (*ledger.Totals, error) {
	var row totalsRow
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select(totalsSelect).
		Where("ledger_id = ? AND is_deleted = false", ledgerID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// TotalsBetween returns totals for transactions dated in [from, to]
func (r *GormTransactionRepository) TotalsBetween(ctx context.Context, ledgerID int64, from, to time.Time) (*ledger.Totals, error) {
	var row totalsRow
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select(totalsSelect).
		Where("ledger_id = ? AND is_deleted = false AND transaction_date >= ? AND transaction_date <= ?", ledgerID, from, to).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// DailyTotals returns per-day totals for dates in [from, to].
// Days without transactions produce no row.
func (r *GormTransactionRepository) DailyTotals(ctx context.Context, ledgerID int64, from, to time.Time) ([]ledger.DayTotals, error) {
	var rows []struct {
		Day time.Time
		totalsRow
	}
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("transaction_date AS day, " + totalsSelect).
		Where("ledger_id = ? AND is_deleted = false AND transaction_date >= ? AND transaction_date <= ?", ledgerID, from, to).
		Group("transaction_date").
		Order("transaction_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]ledger.DayTotals, len(rows))
	for i, row := range rows {
		result[i] = ledger.DayTotals{
			Day:    row.Day,
			Totals: *row.totalsRow.toDomain(),
		}
	}
	return result, nil
}

// MonthlyTotals returns per-month totals for a year.
// Months without transactions produce no row.
func (r *GormTransactionRepository) MonthlyTotals(ctx context.Context, ledgerID int64, year int) ([]ledger.MonthTotals, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	var rows []struct {
		Month int
		totalsRow
	}
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("EXTRACT(MONTH FROM transaction_date)::int AS month, " + totalsSelect).
		Where("ledger_id = ? AND is_deleted = false AND transaction_date >= ? AND transaction_date <= ?", ledgerID, start, end).
		Group("EXTRACT(MONTH FROM transaction_date)").
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]ledger.MonthTotals, len(rows))
	for i, row := range rows {
		result[i] = ledger.MonthTotals{
			Year:   year,
			Month:  time.Month(row.Month),
			Totals: *row.totalsRow.toDomain(),
		}
	}
	return result, nil
}
