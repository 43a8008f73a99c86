package persistence

import (
	"context"
	"errors"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSyncedLedgerRepository implements ledger.SyncedLedgerRepository using GORM
type GormSyncedLedgerRepository struct {
	db *gorm.DB
}

// NewGormSyncedLedgerRepository creates a new GormSyncedLedgerRepository
func NewGormSyncedLedgerRepository(db *gorm.DB) *GormSyncedLedgerRepository {
	return &GormSyncedLedgerRepository{db: db}
}

// Save upserts a ledger replica keyed by the ledgering service's primary key
func (r *GormSyncedLedgerRepository) Save(ctx context.Context, l *ledger.SyncedLedger) error {
	model := models.SyncedLedgerModelFromDomain(l)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID returns a replica regardless of deletion state, or nil when no row exists
func (r *GormSyncedLedgerRepository) FindByID(ctx context.Context, id int64) (*ledger.SyncedLedger, error) {
	var model models.SyncedLedgerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
