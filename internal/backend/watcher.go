package backend

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/session"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
	"github.com/atomicstack/bimview/internal/viewer"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindSnapshot Kind = iota
	KindElements
	KindRecent
	KindFileChanged
)

// Event conveys updated data or an error from a backend source.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// ElementsUpdate carries the element list of a newly loaded model.
type ElementsUpdate struct {
	ModelID  int
	Elements []viewer.Element
}

// FileChange reports a write to the current model file.
type FileChange struct {
	Path string
	Op   string
}

// Source is the session surface the watcher observes.
type Source interface {
	Subscribe(fn func(session.Snapshot)) (cancel func())
	Snapshot() session.Snapshot
	Elements(types ...string) []viewer.Element
}

// RecentLister lists recently opened projects.
type RecentLister interface {
	Recent(ctx context.Context, limit int) ([]sqlite.Project, error)
}

// Options tunes the watcher.
type Options struct {
	// Interval is the recent-projects poll period.
	Interval time.Duration
	// Recent enables the recent-projects poller when set.
	Recent RecentLister
	// WatchFiles reloads the model when its file changes on disk.
	WatchFiles bool
	// Debounce collapses bursts of file events.
	Debounce time.Duration
}

const defaultDebounce = 200 * time.Millisecond

// Watcher forwards session changes, recent projects and file changes as
// events on one channel.
type Watcher struct {
	source Source
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	notify   chan struct{}
	retarget chan string
	events   chan Event
	wg       sync.WaitGroup
}

// NewWatcher starts the pollers for src.
func NewWatcher(src Source, opts Options) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	w := &Watcher{
		source:   src,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		notify:   make(chan struct{}, 1),
		retarget: make(chan string, 1),
		events:   make(chan Event, 16),
	}

	if src != nil {
		w.startSessionPump()
	}
	if opts.Recent != nil {
		w.startRecentPoller()
	}
	if opts.WatchFiles && src != nil {
		w.startFileWatcher()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Goroutines exit after their current step; use
// Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all goroutines have exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) startSessionPump() {
	cancel := w.source.Subscribe(func(session.Snapshot) { w.signal() })
	throttle := newThrottle(50 * time.Millisecond)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()
		lastModel, first := -1, true
		for {
			snap := w.source.Snapshot()
			if !w.emit(Event{Kind: KindSnapshot, Data: snap}) {
				return
			}
			modelID := -1
			path := ""
			if snap.Model != nil {
				modelID = snap.Model.ID
				path = snap.Model.Path
			}
			if first || modelID != lastModel {
				first = false
				lastModel = modelID
				update := ElementsUpdate{ModelID: modelID}
				if modelID >= 0 {
					update.Elements = w.source.Elements()
				}
				if !w.emit(Event{Kind: KindElements, Data: update}) {
					return
				}
				w.watch(path)
			}
			select {
			case <-w.ctx.Done():
				return
			case <-w.notify:
				throttle.wait()
			}
		}
	}()
}

func (w *Watcher) signal() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// watch hands the latest model path to the file watcher; stale targets are
// dropped.
func (w *Watcher) watch(path string) {
	if !w.opts.WatchFiles {
		return
	}
	select {
	case <-w.retarget:
	default:
	}
	w.retarget <- path
}

func (w *Watcher) startRecentPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(KindRecent, func(ctx context.Context) (interface{}, error) {
		throttle.wait()
		return w.opts.Recent.Recent(ctx, sqlite.DefaultLimit)
	})
}

func (w *Watcher) startFileWatcher() {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		events.Watch.Error(err)
		w.emit(Event{Kind: KindFileChanged, Err: err})
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fw.Close()
		var (
			target string
			dir    string
			timer  *time.Timer
			fire   <-chan time.Time
			lastOp string
		)
		for {
			select {
			case <-w.ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case path := <-w.retarget:
				if dir != "" {
					_ = fw.Remove(dir)
				}
				target, dir = "", ""
				if path == "" || strings.Contains(path, "://") {
					continue
				}
				target = filepath.Clean(path)
				dir = filepath.Dir(target)
				if err := fw.Add(dir); err != nil {
					events.Watch.Error(err)
					target, dir = "", ""
					continue
				}
				events.Watch.Add(target)
			case evt, ok := <-fw.Events:
				if !ok {
					return
				}
				if target == "" || filepath.Clean(evt.Name) != target {
					continue
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
					continue
				}
				lastOp = evt.Op.String()
				if timer == nil {
					timer = time.NewTimer(w.opts.Debounce)
				} else {
					timer.Reset(w.opts.Debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				events.Watch.Change(target, lastOp)
				if !w.emit(Event{Kind: KindFileChanged, Data: FileChange{Path: target, Op: lastOp}}) {
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				events.Watch.Error(err)
			}
		}
	}()
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}

func (w *Watcher) poll(kind Kind, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch(w.ctx)
		return w.emit(Event{Kind: kind, Data: data, Err: err})
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
