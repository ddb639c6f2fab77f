package events

import "github.com/atomicstack/bimview/internal/logging"

type OpenTracer struct{}

type openReason string

const (
	OpenReasonEscape openReason = "escape"
	OpenReasonEmpty  openReason = "empty"
)

var Open = OpenTracer{}

func (OpenTracer) Prompt(initial string) {
	logging.Trace("open.prompt", map[string]interface{}{"initial": initial})
}

func (OpenTracer) Submit(path string) {
	logging.Trace("open.submit", map[string]interface{}{"path": path})
}

func (OpenTracer) Cancel(reason openReason) {
	logging.Trace("open.cancel", map[string]interface{}{"reason": string(reason)})
}

func (OpenTracer) Recent(path string) {
	logging.Trace("open.recent", map[string]interface{}{"path": path})
}
