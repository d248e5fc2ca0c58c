package settlement

import (
	"github.com/google/uuid"
)

// SelectionMode is the tri-state selection model: nothing selected, an
// explicit id set, or every record matching the active filter.
type SelectionMode string

const (
	SelectionNone        SelectionMode = "NONE"
	SelectionExplicit    SelectionMode = "EXPLICIT"
	SelectionAllFiltered SelectionMode = "ALL_FILTERED"
)

// IsValid checks if the mode is a known selection mode
func (m SelectionMode) IsValid() bool {
	switch m {
	case SelectionNone, SelectionExplicit, SelectionAllFiltered:
		return true
	}
	return false
}

// SelectionState tracks which waybills the user intends to settle.
// In AllFiltered mode the id set stays empty: the scope is a filter
// reference resolved server-side at commit time, never a materialized
// client-side id list.
type SelectionState struct {
	mode SelectionMode
	ids  map[uuid.UUID]struct{}
}

// NewSelectionState creates an empty selection
func NewSelectionState() *SelectionState {
	return &SelectionState{
		mode: SelectionNone,
		ids:  make(map[uuid.UUID]struct{}),
	}
}

// Mode returns the current selection mode
func (s *SelectionState) Mode() SelectionMode {
	return s.mode
}

// IDs returns the explicitly selected ids (empty unless mode is Explicit)
func (s *SelectionState) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether an id is explicitly selected
func (s *SelectionState) Contains(id uuid.UUID) bool {
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of explicitly selected ids
func (s *SelectionState) Count() int {
	return len(s.ids)
}

// Toggle flips membership of one id. The first toggle moves None to Explicit.
// Removing the last id returns the state to None.
//
// A toggle issued in AllFiltered mode downgrades to Explicit seeded with the
// caller's current page minus the toggled id: select-all becomes a baseline
// the user is carving exceptions from.
func (s *SelectionState) Toggle(id uuid.UUID, currentPage []uuid.UUID) {
	if s.mode == SelectionAllFiltered {
		s.ids = make(map[uuid.UUID]struct{}, len(currentPage))
		for _, pageID := range currentPage {
			if pageID != id {
				s.ids[pageID] = struct{}{}
			}
		}
		s.mode = SelectionExplicit
		if len(s.ids) == 0 {
			s.mode = SelectionNone
		}
		return
	}

	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}

	if len(s.ids) == 0 {
		s.mode = SelectionNone
	} else {
		s.mode = SelectionExplicit
	}
}

// SelectPage implements toggle-all-on-page: if every given id is already
// selected the selection clears, otherwise the selection becomes exactly the
// given ids.
func (s *SelectionState) SelectPage(ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}

	allSelected := s.mode == SelectionExplicit && len(s.ids) == len(ids)
	if allSelected {
		for _, id := range ids {
			if _, ok := s.ids[id]; !ok {
				allSelected = false
				break
			}
		}
	}

	if allSelected {
		s.Clear()
		return
	}

	s.ids = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.mode = SelectionExplicit
}

// SelectAllFiltered switches the selection to every record matching the
// active filter, dropping any explicit ids
func (s *SelectionState) SelectAllFiltered() {
	s.mode = SelectionAllFiltered
	s.ids = make(map[uuid.UUID]struct{})
}

// Clear resets the selection to nothing
func (s *SelectionState) Clear() {
	s.mode = SelectionNone
	s.ids = make(map[uuid.UUID]struct{})
}

// Scope converts the selection into the scope a preview or commit consumes
func (s *SelectionState) Scope() Scope {
	return Scope{
		AllFiltered: s.mode == SelectionAllFiltered,
		IDs:         s.IDs(),
	}
}

// Scope is the selection a preview or commit operates on: either an explicit
// id list, or "everything the active filter matches", resolved server-side.
type Scope struct {
	AllFiltered bool
	IDs         []uuid.UUID
}

// IsEmpty reports whether the scope selects nothing before resolution
func (sc Scope) IsEmpty() bool {
	return !sc.AllFiltered && len(sc.IDs) == 0
}
