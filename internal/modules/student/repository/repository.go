package repository

import (
	"context"

	"collegease.app/server/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	Create(ctx context.Context, file *entity.FileRecord) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.FileRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.FileRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *entity.FileRecord) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.FileRecord, error) {
	var files []entity.FileRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.FileRecord, error) {
	var file entity.FileRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.FileRecord{}, "id = ?", id).Error
}
