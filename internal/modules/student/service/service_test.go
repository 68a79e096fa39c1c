package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"collegease.app/server/internal/entity"
	"collegease.app/server/internal/modules/student/repository"
	"collegease.app/server/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "files_test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Profile{}, &entity.FileRecord{}))
	return db
}

// fakeStorage records every upload and delete so tests can assert on blob
// side effects without a real backend.
type fakeStorage struct {
	mu         sync.Mutex
	uploads    []string
	deletes    []string
	failUpload bool
}

func (s *fakeStorage) UploadDocument(ctx context.Context, r io.Reader, key string) (string, error) {
	if s.failUpload {
		return "", errors.New("storage unavailable")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, key)
	return "https://blobs.example/" + key, nil
}

func (s *fakeStorage) DeleteDocument(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, fileURL)
	return nil
}

func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}

func TestUpload_CommitsBlobAndMetadata(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStorage{}
	svc := NewStudentFileService(repository.NewFileRepository(db), store)
	userID := uuid.New()

	content := []byte("dummy transcript bytes")
	record, err := svc.Upload(context.Background(), userID, fileHeader(t, "transcript.pdf", "application/pdf", content))
	require.NoError(t, err)

	assert.Equal(t, "transcript.pdf", record.Name)
	assert.Equal(t, int64(len(content)), record.Size)
	assert.Equal(t, "application/pdf", record.Type)
	assert.Equal(t, userID, record.UserID)
	assert.NotEmpty(t, record.URL)

	// The storage key is scoped to the owner and keeps the extension.
	require.Len(t, store.uploads, 1)
	assert.True(t, strings.HasPrefix(store.uploads[0], userID.String()+"/"))
	assert.True(t, strings.HasSuffix(store.uploads[0], ".pdf"))

	files, err := svc.ListOwnFiles(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, record.ID, files[0].ID)
}

func TestUpload_StorageFailureCommitsNothing(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStorage{failUpload: true}
	svc := NewStudentFileService(repository.NewFileRepository(db), store)
	userID := uuid.New()

	_, err := svc.Upload(context.Background(), userID, fileHeader(t, "notes.txt", "text/plain", []byte("x")))
	assert.ErrorIs(t, err, apperror.ErrUploadFailed)

	files, err := svc.ListOwnFiles(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

// failingCreateRepo lets the blob land but rejects the metadata row.
type failingCreateRepo struct {
	repository.FileRepository
}

func (r *failingCreateRepo) Create(ctx context.Context, file *entity.FileRecord) error {
	return errors.New("files table unavailable")
}

func TestUpload_MetadataFailureRemovesBlob(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStorage{}
	repo := &failingCreateRepo{FileRepository: repository.NewFileRepository(db)}
	svc := NewStudentFileService(repo, store)
	userID := uuid.New()

	_, err := svc.Upload(context.Background(), userID, fileHeader(t, "id-card.png", "image/png", []byte("png")))
	assert.ErrorIs(t, err, apperror.ErrUploadFailed)

	// The orphaned blob was taken back down.
	require.Len(t, store.uploads, 1)
	require.Len(t, store.deletes, 1)
	assert.Equal(t, "https://blobs.example/"+store.uploads[0], store.deletes[0])

	files, err := NewStudentFileService(repository.NewFileRepository(db), store).ListOwnFiles(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListOwnFiles_NewestFirstAndScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStudentFileService(repository.NewFileRepository(db), &fakeStorage{})
	owner := uuid.New()
	other := uuid.New()

	base := time.Now().Add(-time.Hour)
	rows := []entity.FileRecord{
		{ID: uuid.New(), UserID: owner, Name: "old.pdf", URL: "u1", CreatedAt: base},
		{ID: uuid.New(), UserID: owner, Name: "new.pdf", URL: "u2", CreatedAt: base.Add(10 * time.Minute)},
		{ID: uuid.New(), UserID: other, Name: "theirs.pdf", URL: "u3", CreatedAt: base.Add(20 * time.Minute)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	files, err := svc.ListOwnFiles(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "new.pdf", files[0].Name)
	assert.Equal(t, "old.pdf", files[1].Name)
}

func TestDelete_RemovesRowThenBlob(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStorage{}
	svc := NewStudentFileService(repository.NewFileRepository(db), store)
	owner := uuid.New()

	row := entity.FileRecord{ID: uuid.New(), UserID: owner, Name: "drop.pdf", URL: "https://blobs.example/drop"}
	require.NoError(t, db.Create(&row).Error)

	require.NoError(t, svc.Delete(context.Background(), owner, row.ID))

	files, err := svc.ListOwnFiles(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, []string{"https://blobs.example/drop"}, store.deletes)
}

func TestDelete_RejectsForeignFile(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStorage{}
	svc := NewStudentFileService(repository.NewFileRepository(db), store)
	owner := uuid.New()

	row := entity.FileRecord{ID: uuid.New(), UserID: owner, Name: "keep.pdf", URL: "https://blobs.example/keep"}
	require.NoError(t, db.Create(&row).Error)

	err := svc.Delete(context.Background(), uuid.New(), row.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// Nothing was removed.
	files, err := svc.ListOwnFiles(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Empty(t, store.deletes)
}

func TestDelete_MissingFile(t *testing.T) {
	svc := NewStudentFileService(repository.NewFileRepository(setupTestDB(t)), &fakeStorage{})

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
