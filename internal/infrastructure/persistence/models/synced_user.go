package models

import (
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

// SyncedUserModel is the persistence model for user replicas.
// The primary key is the identity service's user ID, never generated here.
type SyncedUserModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Username  string `gorm:"type:varchar(100);not null"`
	Email     string `gorm:"type:varchar(255)"`
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	Nickname  string `gorm:"type:varchar(100)"`
	Role      string `gorm:"type:varchar(50)"`
	IsActive  bool   `gorm:"not null;default:true"`
	IsDeleted bool   `gorm:"not null;default:false"`
	DeletedAt *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncedUserModel) TableName() string {
	return "synced_users"
}

// ToDomain converts the persistence model to a domain SyncedUser
func (m *SyncedUserModel) ToDomain() *ledger.SyncedUser {
	return &ledger.SyncedUser{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Nickname:  m.Nickname,
		Role:      m.Role,
		IsActive:  m.IsActive,
		IsDeleted: m.IsDeleted,
		DeletedAt: m.DeletedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SyncedUserModelFromDomain creates a new persistence model from a domain SyncedUser
func SyncedUserModelFromDomain(u *ledger.SyncedUser) *SyncedUserModel {
	return &SyncedUserModel{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Role:      u.Role,
		IsActive:  u.IsActive,
		IsDeleted: u.IsDeleted,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
