package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleStudents() []Student {
	return []Student{
		{ID: "1", FullName: "Asha Rao", RollNumber: "2023CS101", Batch: "2023-2027"},
		{ID: "2", FullName: "Ravi", RollNumber: "2022EE042", Batch: "2022-2026"},
		{ID: "3", FullName: "Meera Iyer", RollNumber: "2023CS102", Batch: "2023-2027"},
		{ID: "4", FullName: "", RollNumber: "", Batch: ""},
	}
}

func TestFilter_SearchByName(t *testing.T) {
	got := Filter(sampleStudents(), "asha", AllBatches)

	assert.Len(t, got, 1)
	assert.Equal(t, "Asha Rao", got[0].FullName)
}

func TestFilter_SearchByRollNumber(t *testing.T) {
	got := Filter(sampleStudents(), "2023cs", AllBatches)

	assert.Len(t, got, 2)
	for _, s := range got {
		assert.Contains(t, s.RollNumber, "2023CS")
	}
}

func TestFilter_SearchExcludesNonMatching(t *testing.T) {
	got := Filter(sampleStudents(), "asha", AllBatches)

	for _, s := range got {
		assert.NotEqual(t, "Ravi", s.FullName)
	}
}

func TestFilter_BatchNarrowsResults(t *testing.T) {
	got := Filter(sampleStudents(), "", "2022-2026")

	assert.Len(t, got, 1)
	assert.Equal(t, "Ravi", got[0].FullName)
}

func TestFilter_BothPredicatesMustHold(t *testing.T) {
	// Name matches but batch does not.
	got := Filter(sampleStudents(), "asha", "2022-2026")
	assert.Empty(t, got)
}

func TestFilter_ResultIsSubsetSatisfyingBothPredicates(t *testing.T) {
	students := sampleStudents()
	terms := []string{"", "a", "2023", "rao", "zzz"}
	batches := []string{AllBatches, "2023-2027", "2022-2026", "1999-2003"}

	for _, term := range terms {
		for _, batch := range batches {
			got := Filter(students, term, batch)
			assert.LessOrEqual(t, len(got), len(students))
			for _, s := range got {
				if batch != AllBatches {
					assert.Equal(t, batch, s.Batch)
				}
			}
		}
	}
}

func TestFilter_MissingFieldsDoNotMatch(t *testing.T) {
	got := Filter(sampleStudents(), "anything", AllBatches)

	for _, s := range got {
		assert.NotEqual(t, "4", s.ID)
	}
}

func TestFilter_EmptySearchKeepsEveryone(t *testing.T) {
	got := Filter(sampleStudents(), "", AllBatches)
	assert.Len(t, got, len(sampleStudents()))
}

func TestDeriveBatchOptions_AllFirstDistinctSorted(t *testing.T) {
	students := []Student{
		{Batch: "2023-2027"},
		{Batch: "2022-2026"},
		{Batch: "2023-2027"},
		{Batch: ""},
	}

	got := DeriveBatchOptions(students)

	assert.Equal(t, []string{AllBatches, "2022-2026", "2023-2027"}, got)
}

func TestDeriveBatchOptions_EmptyInput(t *testing.T) {
	got := DeriveBatchOptions(nil)
	assert.Equal(t, []string{AllBatches}, got)
}
