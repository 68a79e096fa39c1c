package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"collegease.app/server/internal/entity"
	"collegease.app/server/internal/modules/staff/repository"
	"collegease.app/server/pkg/roster"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "roster_test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Profile{}, &entity.FileRecord{}))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, fullName string, role entity.Role, rollNumber, batch string) uuid.UUID {
	user := entity.User{ID: uuid.New(), Email: fullName + "@college.edu", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	profile := entity.Profile{UserID: user.ID, FullName: fullName, Role: role}
	if role == entity.RoleStudent {
		profile.RollNumber = &rollNumber
		profile.Batch = &batch
	}
	require.NoError(t, db.Create(&profile).Error)
	return user.ID
}

func seedFile(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, createdAt time.Time) {
	row := entity.FileRecord{ID: uuid.New(), UserID: userID, Name: name, URL: "https://blobs.example/" + name, CreatedAt: createdAt}
	require.NoError(t, db.Create(&row).Error)
}

func TestListStudents_ExcludesStaffAndOrdersByName(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "meera", entity.RoleStudent, "2023CS102", "2023-2027")
	seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")
	seedProfile(t, db, "principal", entity.RoleStaff, "", "")

	svc := NewStaffRosterService(repository.NewRosterRepository(db), nil)
	students, err := svc.ListStudents(context.Background(), "", roster.AllBatches)
	require.NoError(t, err)

	require.Len(t, students, 2)
	assert.Equal(t, "asha", students[0].FullName)
	assert.Equal(t, "meera", students[1].FullName)
}

func TestListStudents_PreloadsFilesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	id := seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")
	base := time.Now().Add(-time.Hour)
	seedFile(t, db, id, "old.pdf", base)
	seedFile(t, db, id, "new.pdf", base.Add(30*time.Minute))

	svc := NewStaffRosterService(repository.NewRosterRepository(db), nil)
	students, err := svc.ListStudents(context.Background(), "", roster.AllBatches)
	require.NoError(t, err)

	require.Len(t, students, 1)
	require.Len(t, students[0].Files, 2)
	assert.Equal(t, "new.pdf", students[0].Files[0].Name)
	assert.Equal(t, "old.pdf", students[0].Files[1].Name)
}

func TestListStudents_AppliesSearchAndBatch(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")
	seedProfile(t, db, "ravi", entity.RoleStudent, "2022EE042", "2022-2026")

	svc := NewStaffRosterService(repository.NewRosterRepository(db), nil)

	students, err := svc.ListStudents(context.Background(), "ASHA", roster.AllBatches)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "asha", students[0].FullName)

	students, err = svc.ListStudents(context.Background(), "", "2022-2026")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "ravi", students[0].FullName)

	// Both predicates must hold.
	students, err = svc.ListStudents(context.Background(), "asha", "2022-2026")
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestBatchOptions(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")
	seedProfile(t, db, "ravi", entity.RoleStudent, "2022EE042", "2022-2026")
	seedProfile(t, db, "meera", entity.RoleStudent, "2023CS102", "2023-2027")

	svc := NewStaffRosterService(repository.NewRosterRepository(db), nil)
	options, err := svc.BatchOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{roster.AllBatches, "2022-2026", "2023-2027"}, options)
}

// stubSearch stands in for the index so the fallback path is testable.
type stubSearch struct {
	ids []uuid.UUID
	err error
}

func (s *stubSearch) IndexStudent(profile *entity.Profile) error { return nil }
func (s *stubSearch) RemoveStudent(userID uuid.UUID) error { return nil }
func (s *stubSearch) SearchStudents(query string) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func TestSearchStudents_UsesIndexHits(t *testing.T) {
	db := setupTestDB(t)
	ashaID := seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")
	seedProfile(t, db, "ravi", entity.RoleStudent, "2022EE042", "2022-2026")

	svc := NewStaffRosterService(repository.NewRosterRepository(db), &stubSearch{ids: []uuid.UUID{ashaID}})
	students, err := svc.SearchStudents(context.Background(), "asha")
	require.NoError(t, err)

	require.Len(t, students, 1)
	assert.Equal(t, ashaID.String(), students[0].ID)
}

func TestSearchStudents_FallsBackWhenIndexDown(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")
	seedProfile(t, db, "ravi", entity.RoleStudent, "2022EE042", "2022-2026")

	svc := NewStaffRosterService(repository.NewRosterRepository(db), &stubSearch{err: errors.New("index offline")})
	students, err := svc.SearchStudents(context.Background(), "ravi")
	require.NoError(t, err)

	require.Len(t, students, 1)
	assert.Equal(t, "ravi", students[0].FullName)
}

func TestSearchStudents_NoIndexConfigured(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "asha", entity.RoleStudent, "2023CS101", "2023-2027")

	svc := NewStaffRosterService(repository.NewRosterRepository(db), nil)
	students, err := svc.SearchStudents(context.Background(), "asha")
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
