package persistence

import (
	"context"
	"errors"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSyncedUserRepository implements ledger.SyncedUserRepository using GORM
type GormSyncedUserRepository struct {
	db *gorm.DB
}

// NewGormSyncedUserRepository creates a new GormSyncedUserRepository
func NewGormSyncedUserRepository(db *gorm.DB) *GormSyncedUserRepository {
	return &GormSyncedUserRepository{db: db}
}

// Save upserts a user replica keyed by the identity service's primary key
func (r *GormSyncedUserRepository) Save(ctx context.Context, user *ledger.SyncedUser) error {
	model := models.SyncedUserModelFromDomain(user)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID returns a replica regardless of deletion state, or nil when no row exists
func (r *GormSyncedUserRepository) FindByID(ctx context.Context, id int64) (*ledger.SyncedUser, error) {
	var model models.SyncedUserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsLive checks whether a live replica exists
func (r *GormSyncedUserRepository) ExistsLive(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SyncedUserModel{}).
		Where("id = ? AND is_deleted = false", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
