package state

import "github.com/atomicstack/bimview/internal/menu"

// RecentStore holds the recently opened projects.
type RecentStore interface {
	Entries() []menu.RecentEntry
	SetEntries([]menu.RecentEntry)
}

type recentStore struct {
	entries []menu.RecentEntry
}

func NewRecentStore() RecentStore {
	return &recentStore{}
}

func (s *recentStore) Entries() []menu.RecentEntry {
	return cloneRecentEntries(s.entries)
}

func (s *recentStore) SetEntries(entries []menu.RecentEntry) {
	s.entries = cloneRecentEntries(entries)
}

func cloneRecentEntries(entries []menu.RecentEntry) []menu.RecentEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]menu.RecentEntry, len(entries))
	copy(dup, entries)
	return dup
}
