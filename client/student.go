package client

import (
	"context"
	"io"
	"sync"
)

// StudentView owns the signed-in student's file list. Fetches are tagged
// with a per-view sequence number; only the latest issued fetch may apply
// its result, and nothing applies once the session epoch has moved on
// (sign-out or re-sign-in while the request was in flight).
type StudentView struct {
	session *Session

	mu    sync.Mutex
	files []File
	seq   uint64
}

func NewStudentView(session *Session) *StudentView {
	return &StudentView{session: session}
}

// Files returns the current local list, newest first.
func (v *StudentView) Files() []File {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]File, len(v.files))
	copy(out, v.files)
	return out
}

// Refresh fetches the caller's files. A response that is not the latest
// issued for this view, or that completes after a session change, is
// discarded rather than applied.
func (v *StudentView) Refresh(ctx context.Context) error {
	token, epoch := v.session.snapshot()

	v.mu.Lock()
	v.seq++
	mySeq := v.seq
	v.mu.Unlock()

	files, err := v.session.client.listOwnFiles(ctx, token)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if mySeq != v.seq || epoch != v.session.currentEpoch() {
		// A newer fetch was issued, or the session changed underneath us.
		return nil
	}
	v.files = files
	return nil
}

// Upload stores the blob and its metadata. The new record is prepended to
// the local list only after the backend confirms it, and only if the
// session is still the one the upload started under.
func (v *StudentView) Upload(ctx context.Context, name, mimeType string, r io.Reader) (*File, error) {
	token, epoch := v.session.snapshot()

	record, err := v.session.client.uploadFile(ctx, token, name, mimeType, r)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if epoch != v.session.currentEpoch() {
		// Signed out mid-upload; the backend kept the file but no local
		// state may reflect it.
		return record, nil
	}
	v.files = append([]File{*record}, v.files...)
	return record, nil
}

// Delete requires interactive confirmation, then removes the record. Local
// removal is optimistic only in the sense that it follows the backend's
// confirmed delete without a refetch.
func (v *StudentView) Delete(ctx context.Context, fileID string, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	token, epoch := v.session.snapshot()

	if err := v.session.client.deleteFile(ctx, token, fileID); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if epoch != v.session.currentEpoch() {
		return nil
	}
	kept := v.files[:0]
	for _, f := range v.files {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	v.files = kept
	return nil
}
