package events

import "github.com/atomicstack/bimview/internal/logging"

type SelectionTracer struct{}

var Selection = SelectionTracer{}

func (SelectionTracer) Select(modelID, elementID int, highlight bool) {
	logging.Trace("selection.select", map[string]interface{}{"model": modelID, "element": elementID, "highlight": highlight})
}

func (SelectionTracer) Miss() {
	logging.Trace("selection.pick.miss", nil)
}

func (SelectionTracer) Clear() {
	logging.Trace("selection.clear", nil)
}

func (SelectionTracer) Hover(elementID int) {
	logging.Trace("selection.hover", map[string]interface{}{"element": elementID})
}
