// Package roster holds the staff-facing view of the student body and the
// pure filtering helpers applied to it. Both the staff API and the client
// SDK filter through these functions so server- and client-side results
// cannot drift apart.
package roster

import (
	"sort"
	"strings"
	"time"
)

// AllBatches is the sentinel batch option matching every student.
const AllBatches = "All"

type File struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Student is one roster entry: a student profile joined with its files.
type Student struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	RollNumber string `json:"roll_number"`
	Batch      string `json:"batch"`
	Files      []File `json:"files"`
}

// Filter keeps students whose name or roll number contains searchTerm
// (case-insensitive) and whose batch matches the batch filter. Missing
// name/roll values never match the search term; they do not error.
func Filter(students []Student, searchTerm, batch string) []Student {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]Student, 0, len(students))
	for _, s := range students {
		if term != "" {
			nameMatch := s.FullName != "" && strings.Contains(strings.ToLower(s.FullName), term)
			rollMatch := s.RollNumber != "" && strings.Contains(strings.ToLower(s.RollNumber), term)
			if !nameMatch && !rollMatch {
				continue
			}
		}

		if batch != "" && batch != AllBatches && s.Batch != batch {
			continue
		}

		out = append(out, s)
	}

	return out
}

// DeriveBatchOptions returns the sorted set of distinct non-empty batch
// values observed, prefixed with the "All" sentinel.
func DeriveBatchOptions(students []Student) []string {
	seen := make(map[string]struct{})
	for _, s := range students {
		if s.Batch == "" {
			continue
		}
		seen[s.Batch] = struct{}{}
	}

	batches := make([]string, 0, len(seen))
	for b := range seen {
		batches = append(batches, b)
	}
	sort.Strings(batches)

	return append([]string{AllBatches}, batches...)
}
