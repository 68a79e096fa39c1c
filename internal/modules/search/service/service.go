package service

import (
	"encoding/json"
	"log"

	"collegease.app/server/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const studentIndex = "students"

// StudentSearchService maintains a secondary search index over student
// profiles for the staff roster. Implementations must tolerate being nil:
// search is an optional accelerator, never a source of truth.
type StudentSearchService interface {
	IndexStudent(profile *entity.Profile) error
	RemoveStudent(id uuid.UUID) error
	SearchStudents(query string) ([]uuid.UUID, error)
}

type studentSearchService struct {
	client meilisearch.ServiceManager
}

func NewStudentSearchService(client meilisearch.ServiceManager) StudentSearchService {
	s := &studentSearchService{client: client}
	s.initIndex()
	return s
}

func (s *studentSearchService) initIndex() {
	filterableAttrs := []string{"batch"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(studentIndex).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update students filterable attributes: %v", err)
	}

	sortableAttrs := []string{"full_name"}
	_, err = s.client.Index(studentIndex).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update students sortable attributes: %v", err)
	}
}

type meiliStudentDoc struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	RollNumber string `json:"roll_number"`
	Batch      string `json:"batch"`
}

func (s *studentSearchService) IndexStudent(profile *entity.Profile) error {
	if profile == nil || profile.Role != entity.RoleStudent {
		return nil
	}

	doc := meiliStudentDoc{
		ID:         profile.UserID.String(),
		FullName:   profile.FullName,
		RollNumber: getStringOrEmpty(profile.RollNumber),
		Batch:      getStringOrEmpty(profile.Batch),
	}

	task, err := s.client.Index(studentIndex).AddDocuments([]meiliStudentDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed student %s, task id: %d", doc.ID, task.TaskUID)

	return nil
}

func (s *studentSearchService) RemoveStudent(id uuid.UUID) error {
	_, err := s.client.Index(studentIndex).DeleteDocument(id.String())
	return err
}

func (s *studentSearchService) SearchStudents(query string) ([]uuid.UUID, error) {
	raw, err := s.client.Index(studentIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit: 200,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Hits []meiliStudentDoc `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
