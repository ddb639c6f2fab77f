package events

import "github.com/atomicstack/bimview/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Stop(sessionID string) {
	logging.Trace("app.stop", map[string]interface{}{"session": sessionID})
}
