package service

import (
	"context"
	"fmt"
	"log"

	"collegease.app/server/internal/entity"
	"collegease.app/server/internal/modules/staff/repository"
	search "collegease.app/server/internal/modules/search/service"
	"collegease.app/server/pkg/apperror"
	"collegease.app/server/pkg/roster"
)

type StaffRosterService interface {
	// ListStudents returns the roster, optionally narrowed by the same pure
	// filter the client applies locally.
	ListStudents(ctx context.Context, searchTerm, batch string) ([]roster.Student, error)
	BatchOptions(ctx context.Context) ([]string, error)
	// SearchStudents uses the search index when one is configured and falls
	// back to the relational path otherwise.
	SearchStudents(ctx context.Context, query string) ([]roster.Student, error)
}

type staffRosterService struct {
	repo   repository.RosterRepository
	search search.StudentSearchService
}

func NewStaffRosterService(repo repository.RosterRepository, searchSvc search.StudentSearchService) StaffRosterService {
	return &staffRosterService{
		repo:   repo,
		search: searchSvc,
	}
}

func (s *staffRosterService) ListStudents(ctx context.Context, searchTerm, batch string) ([]roster.Student, error) {
	profiles, err := s.repo.FindStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	students := toRoster(profiles)
	if searchTerm == "" && (batch == "" || batch == roster.AllBatches) {
		return students, nil
	}

	return roster.Filter(students, searchTerm, batch), nil
}

func (s *staffRosterService) BatchOptions(ctx context.Context) ([]string, error) {
	profiles, err := s.repo.FindStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	return roster.DeriveBatchOptions(toRoster(profiles)), nil
}

func (s *staffRosterService) SearchStudents(ctx context.Context, query string) ([]roster.Student, error) {
	if s.search == nil {
		return s.ListStudents(ctx, query, "")
	}

	ids, err := s.search.SearchStudents(query)
	if err != nil {
		log.Printf("search index unavailable, falling back to relational search: %v", err)
		return s.ListStudents(ctx, query, "")
	}

	profiles, err := s.repo.FindStudentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	return toRoster(profiles), nil
}

func toRoster(profiles []entity.Profile) []roster.Student {
	students := make([]roster.Student, 0, len(profiles))
	for _, p := range profiles {
		s := roster.Student{
			ID:         p.UserID.String(),
			FullName:   p.FullName,
			RollNumber: deref(p.RollNumber),
			Batch:      deref(p.Batch),
			Files:      make([]roster.File, 0, len(p.Files)),
		}

		for _, f := range p.Files {
			s.Files = append(s.Files, roster.File{
				ID:        f.ID.String(),
				Name:      f.Name,
				URL:       f.URL,
				Size:      f.Size,
				Type:      f.Type,
				CreatedAt: f.CreatedAt,
			})
		}

		students = append(students, s)
	}

	return students
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
