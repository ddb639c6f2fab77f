package state

import "github.com/atomicstack/bimview/internal/menu"

// ElementStore holds the element rows of the current model.
type ElementStore interface {
	Entries() []menu.ElementEntry
	SetEntries(modelID int, entries []menu.ElementEntry)
	ModelID() int
}

type elementStore struct {
	entries []menu.ElementEntry
	modelID int
}

func NewElementStore() ElementStore {
	return &elementStore{modelID: -1}
}

func (s *elementStore) Entries() []menu.ElementEntry {
	return cloneElementEntries(s.entries)
}

func (s *elementStore) SetEntries(modelID int, entries []menu.ElementEntry) {
	s.modelID = modelID
	s.entries = cloneElementEntries(entries)
}

func (s *elementStore) ModelID() int {
	return s.modelID
}

func cloneElementEntries(entries []menu.ElementEntry) []menu.ElementEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]menu.ElementEntry, len(entries))
	copy(dup, entries)
	return dup
}
