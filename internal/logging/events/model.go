package events

import "github.com/atomicstack/bimview/internal/logging"

type ModelTracer struct{}

type modelReason string

const (
	ModelReasonNoFiles modelReason = "no-files"
	ModelReasonChanged modelReason = "file-changed"
)

var Model = ModelTracer{}

func (ModelTracer) Load(paths []string) {
	logging.Trace("model.load", map[string]interface{}{"paths": paths})
}

func (ModelTracer) Loaded(modelID int, name string, elements int) {
	logging.Trace("model.loaded", map[string]interface{}{"model": modelID, "name": name, "elements": elements})
}

func (ModelTracer) Skip(reason modelReason) {
	logging.Trace("model.load.skip", map[string]interface{}{"reason": string(reason)})
}

func (ModelTracer) Reload(path string, reason modelReason) {
	logging.Trace("model.reload", map[string]interface{}{"path": path, "reason": string(reason)})
}

func (ModelTracer) Properties(modelID, elementID int) {
	logging.Trace("model.properties", map[string]interface{}{"model": modelID, "element": elementID})
}
