package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"

	"collegease.app/server/internal/entity"
	"collegease.app/server/internal/modules/student/repository"
	"collegease.app/server/pkg/apperror"
	"collegease.app/server/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentFileService interface {
	ListOwnFiles(ctx context.Context, userID uuid.UUID) ([]entity.FileRecord, error)
	Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*entity.FileRecord, error)
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}

type studentFileService struct {
	fileRepo    repository.FileRepository
	fileStorage storage.DocumentStorage
}

func NewStudentFileService(fileRepo repository.FileRepository, fileStorage storage.DocumentStorage) StudentFileService {
	return &studentFileService{
		fileRepo:    fileRepo,
		fileStorage: fileStorage,
	}
}

func (s *studentFileService) ListOwnFiles(ctx context.Context, userID uuid.UUID) ([]entity.FileRecord, error) {
	files, err := s.fileRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}
	return files, nil
}

// Upload stores the blob under a collision-resistant key scoped to the owner,
// resolves its public URL and commits the metadata row. No row is committed
// on any failure; a blob left behind by a late metadata failure is removed on
// a best-effort basis only.
func (s *studentFileService) Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*entity.FileRecord, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrUploadFailed, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), filepath.Ext(file.Filename))

	url, err := s.fileStorage.UploadDocument(ctx, f, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrUploadFailed, err)
	}

	record := &entity.FileRecord{
		UserID: userID,
		Name:   file.Filename,
		URL:    url,
		Size:   file.Size,
		Type:   file.Header.Get("Content-Type"),
	}

	if err := s.fileRepo.Create(ctx, record); err != nil {
		// The blob already landed; try to take it back down so it does not
		// linger unreferenced.
		if delErr := s.fileStorage.DeleteDocument(ctx, url); delErr != nil {
			log.Printf("orphaned blob %s after metadata insert failure: %v", key, delErr)
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrUploadFailed, err)
	}

	return record, nil
}

// Delete removes the metadata row, which is the authoritative effect, then
// attempts to destroy the blob. The storage path is only recoverable from
// the URL, so blob removal is not guaranteed.
func (s *studentFileService) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	record, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	if record.UserID != userID {
		return apperror.ErrForbidden
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	if err := s.fileStorage.DeleteDocument(ctx, record.URL); err != nil {
		log.Printf("could not delete blob for file %s: %v", fileID, err)
	}

	return nil
}
