package events

import "github.com/atomicstack/bimview/internal/logging"

type CheckTracer struct{}

var Check = CheckTracer{}

func (CheckTracer) Run(name string, elementID int, plan string) {
	logging.Trace("check.run", map[string]interface{}{"check": name, "element": elementID, "plan": plan})
}

func (CheckTracer) Spaces(count int) {
	logging.Trace("check.spaces", map[string]interface{}{"count": count})
}
