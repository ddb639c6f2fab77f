package dispatcher

import (
	"github.com/atomicstack/bimview/internal/backend"
	"github.com/atomicstack/bimview/internal/menu"
	"github.com/atomicstack/bimview/internal/session"
	"github.com/atomicstack/bimview/internal/state"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
)

type Result struct {
	SessionUpdated  bool
	ElementsUpdated bool
	RecentUpdated   bool
	// Changed is the path of a model file modified on disk.
	Changed string
}

type Dispatcher struct {
	model    state.ModelStore
	elements state.ElementStore
	recent   state.RecentStore
}

func New(m state.ModelStore, e state.ElementStore, r state.RecentStore) *Dispatcher {
	return &Dispatcher{model: m, elements: e, recent: r}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		return res
	}
	switch evt.Kind {
	case backend.KindSnapshot:
		if snap, ok := evt.Data.(session.Snapshot); ok {
			d.model.SetSnapshot(snap)
			res.SessionUpdated = true
		}
	case backend.KindElements:
		if update, ok := evt.Data.(backend.ElementsUpdate); ok {
			d.elements.SetEntries(update.ModelID, menu.ElementEntriesFromViewer(update.Elements))
			res.ElementsUpdated = true
		}
	case backend.KindRecent:
		if projects, ok := evt.Data.([]sqlite.Project); ok {
			d.recent.SetEntries(menu.RecentEntriesFromStore(projects))
			res.RecentUpdated = true
		}
	case backend.KindFileChanged:
		if change, ok := evt.Data.(backend.FileChange); ok {
			res.Changed = change.Path
		}
	}
	return res
}
