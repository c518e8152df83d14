package engine

import "github.com/emberdate/spark/internal/types"

// Store holds the two message collections behind the merged conversation
// view: the server-confirmed list (replaced wholesale on every refresh) and
// the locally-created pending list. It is not safe for concurrent use; the
// engine serializes access.
//
// Kept deliberately as two ordered sequences with a merge-on-read view.
// Folding them into one mutable list reintroduces ordering and identity bugs
// during reconciliation.
type Store struct {
	confirmed []types.Message
	pending   []types.Message
}

// ApplyConfirmed replaces the confirmed collection wholesale.
func (s *Store) ApplyConfirmed(msgs []types.Message) {
	s.confirmed = append(s.confirmed[:0:0], msgs...)
}

// AddPending appends a locally-created message awaiting confirmation.
func (s *Store) AddPending(m types.Message) {
	m.IsPending = true
	s.pending = append(s.pending, m)
}

// ReconcileFirst removes the oldest pending message matching pred and
// reports whether one matched. Used when a confirmation echo arrives:
// first-match only, so duplicate pending texts are never both deleted.
func (s *Store) ReconcileFirst(pred func(types.Message) bool) bool {
	for i, m := range s.pending {
		if pred(m) {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// ReconcilePending removes every pending message matching pred and returns
// how many were removed.
func (s *Store) ReconcilePending(pred func(types.Message) bool) int {
	kept := s.pending[:0]
	removed := 0
	for _, m := range s.pending {
		if pred(m) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.pending = kept
	return removed
}

// MarkRead flips IsRead on any message whose id is listed, in either
// collection. IsRead only ever goes false to true. Returns the number of
// messages that actually changed, so re-applying the same ids is a no-op.
func (s *Store) MarkRead(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	changed := 0
	for _, list := range [][]types.Message{s.confirmed, s.pending} {
		for i := range list {
			if _, ok := want[list[i].ID]; ok && !list[i].IsRead {
				list[i].IsRead = true
				changed++
			}
		}
	}
	return changed
}

// View returns the merged conversation: confirmed first, then pending, each
// in its own stable order. Recomputed on every call; never cached.
func (s *Store) View() []types.Message {
	out := make([]types.Message, 0, len(s.confirmed)+len(s.pending))
	out = append(out, s.confirmed...)
	out = append(out, s.pending...)
	return out
}

// UnreadFrom returns ids of confirmed messages authored by someone other
// than viewerID that have not been read yet, in list order.
func (s *Store) UnreadFrom(viewerID string) []string {
	var ids []string
	for _, m := range s.confirmed {
		if m.SenderID != viewerID && !m.IsRead {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Len reports the merged view length without materializing it.
func (s *Store) Len() int {
	return len(s.confirmed) + len(s.pending)
}
