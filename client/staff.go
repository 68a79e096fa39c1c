package client

import (
	"context"
	"sync"

	"collegease.app/server/pkg/roster"
)

// StaffView owns the fetched roster. Search and batch filtering are pure
// and local; expanding a record never refetches.
type StaffView struct {
	session *Session

	mu       sync.Mutex
	students []roster.Student
	seq      uint64
}

func NewStaffView(session *Session) *StaffView {
	return &StaffView{session: session}
}

func (v *StaffView) Students() []roster.Student {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]roster.Student, len(v.students))
	copy(out, v.students)
	return out
}

// Refresh fetches the full roster with the same stale-discard guard as the
// student view: only the latest fetch for this view applies, and never
// across a session change.
func (v *StaffView) Refresh(ctx context.Context) error {
	token, epoch := v.session.snapshot()

	v.mu.Lock()
	v.seq++
	mySeq := v.seq
	v.mu.Unlock()

	students, err := v.session.client.listStudents(ctx, token)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if mySeq != v.seq || epoch != v.session.currentEpoch() {
		return nil
	}
	v.students = students
	return nil
}

// Filter applies the shared pure roster predicate to the local list.
func (v *StaffView) Filter(searchTerm, batch string) []roster.Student {
	return roster.Filter(v.Students(), searchTerm, batch)
}

// BatchOptions derives the distinct batch values from the local list,
// "All" first.
func (v *StaffView) BatchOptions() []string {
	return roster.DeriveBatchOptions(v.Students())
}
