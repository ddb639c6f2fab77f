package events

import "github.com/atomicstack/bimview/internal/logging"

type PlanTracer struct{}

var Plan = PlanTracer{}

func (PlanTracer) Recompute(modelID int, plans []string) {
	logging.Trace("plan.recompute", map[string]interface{}{"model": modelID, "plans": plans})
}

func (PlanTracer) GoTo(modelID int, name string) {
	logging.Trace("plan.goto", map[string]interface{}{"model": modelID, "plan": name})
}
