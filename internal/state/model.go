package state

import "github.com/atomicstack/bimview/internal/session"

// ModelStore holds the latest session snapshot for the UI.
type ModelStore interface {
	Snapshot() session.Snapshot
	SetSnapshot(session.Snapshot)
	Seq() int
}

type modelStore struct {
	snap session.Snapshot
	seq  int
}

func NewModelStore() ModelStore {
	return &modelStore{}
}

func (s *modelStore) Snapshot() session.Snapshot {
	return cloneSnapshot(s.snap)
}

func (s *modelStore) SetSnapshot(snap session.Snapshot) {
	s.snap = cloneSnapshot(snap)
	s.seq++
}

// Seq counts snapshots stored so far.
func (s *modelStore) Seq() int {
	return s.seq
}

func cloneSnapshot(snap session.Snapshot) session.Snapshot {
	dup := snap
	if snap.Model != nil {
		info := *snap.Model
		dup.Model = &info
	}
	if snap.Selection != nil {
		ref := *snap.Selection
		dup.Selection = &ref
	}
	dup.Plans = cloneStrings(snap.Plans)
	dup.PlanNames = cloneStrings(snap.PlanNames)
	return dup
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	dup := make([]string, len(in))
	copy(dup, in)
	return dup
}
