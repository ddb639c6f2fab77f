package events

import "github.com/atomicstack/bimview/internal/logging"

type SubsetTracer struct{}

var Subset = SubsetTracer{}

func (SubsetTracer) Create(label string, ids int) {
	logging.Trace("subset.create", map[string]interface{}{"label": label, "ids": ids})
}

func (SubsetTracer) Show(label string) {
	logging.Trace("subset.show", map[string]interface{}{"label": label})
}

func (SubsetTracer) Hide(label string) {
	logging.Trace("subset.hide", map[string]interface{}{"label": label})
}

func (SubsetTracer) Switch(from, to string) {
	logging.Trace("subset.switch", map[string]interface{}{"from": from, "to": to})
}
