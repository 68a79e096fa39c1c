package repository

import (
	"context"

	"collegease.app/server/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RosterRepository interface {
	// FindStudents returns every student profile with its files preloaded,
	// ordered deterministically by full_name then id.
	FindStudents(ctx context.Context) ([]entity.Profile, error)
	FindStudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Profile, error)
}

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) FindStudents(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("role = ?", entity.RoleStudent).
		Order("full_name ASC, user_id ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *rosterRepository) FindStudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Profile, error) {
	if len(ids) == 0 {
		return []entity.Profile{}, nil
	}

	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("role = ? AND user_id IN ?", entity.RoleStudent, ids).
		Order("full_name ASC, user_id ASC").
		Find(&profiles).Error
	return profiles, err
}
