package state

import "github.com/shelfhand/shelfhand/internal/shelfd"

// Dependent records (notes, highlights, reviews) are edited without
// page-epoch coupling: a single-record mutation is keyed by record id, not by
// the navigation that loaded it. These writers therefore take no Token, but
// they still only touch the open detail.

// NoteByID finds a note in the open detail.
func (s *Store) NoteByID(id string) (shelfd.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.detail.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return shelfd.Note{}, false
}

// UpsertNote replaces the stored note or appends it when new.
func (s *Store) UpsertNote(note shelfd.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.detail.Notes {
		if n.ID == note.ID {
			s.detail.Notes[i] = note
			return
		}
	}
	if s.detail.ItemID == note.ItemID {
		s.detail.Notes = append(s.detail.Notes, note)
	}
}

// RemoveNote drops a note from the open detail.
func (s *Store) RemoveNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.detail.Notes[:0]
	for _, n := range s.detail.Notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.detail.Notes = kept
}

// HighlightByID finds a highlight in the open detail.
func (s *Store) HighlightByID(id string) (shelfd.Highlight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.detail.Highlights {
		if h.ID == id {
			return h, true
		}
	}
	return shelfd.Highlight{}, false
}

// UpsertHighlight replaces the stored highlight or appends it when new.
func (s *Store) UpsertHighlight(h shelfd.Highlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.detail.Highlights {
		if existing.ID == h.ID {
			s.detail.Highlights[i] = h
			return
		}
	}
	s.detail.Highlights = append(s.detail.Highlights, h)
}

// RemoveHighlight drops a highlight from the open detail.
func (s *Store) RemoveHighlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.detail.Highlights[:0]
	for _, h := range s.detail.Highlights {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	s.detail.Highlights = kept
}

// ReviewByID finds a review in the open detail.
func (s *Store) ReviewByID(id string) (shelfd.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.detail.Reviews {
		if r.ID == id {
			return r, true
		}
	}
	return shelfd.Review{}, false
}

// UpsertReview replaces the stored review or appends it when new.
func (s *Store) UpsertReview(r shelfd.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.detail.Reviews {
		if existing.ID == r.ID {
			s.detail.Reviews[i] = r
			return
		}
	}
	s.detail.Reviews = append(s.detail.Reviews, r)
}

// RemoveReview drops a review from the open detail.
func (s *Store) RemoveReview(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.detail.Reviews[:0]
	for _, r := range s.detail.Reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.detail.Reviews = kept
}

// AppendCycle adds a freshly created read cycle to the open detail.
func (s *Store) AppendCycle(c shelfd.ReadCycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail.ItemID != c.ItemID {
		return
	}
	s.detail.Cycles = append(s.detail.Cycles, c)
}

// AppendProgressLog attaches a log to its cycle in the open detail.
func (s *Store) AppendProgressLog(log shelfd.ProgressLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.detail.Cycles {
		if s.detail.Cycles[i].ID == log.CycleID {
			s.detail.Cycles[i].Logs = append(s.detail.Cycles[i].Logs, log)
			return
		}
	}
}

// MergeEdition updates the edition totals on every stored copy of the item
// owning the edition.
func (s *Store) MergeEdition(edition shelfd.Edition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update := func(item *shelfd.LibraryItem) {
		if item.Edition != nil && item.Edition.ID == edition.ID {
			ed := edition
			item.Edition = &ed
		}
	}
	for i := range s.items {
		update(&s.items[i])
	}
	if s.detail.Item != nil {
		update(s.detail.Item)
	}
}
