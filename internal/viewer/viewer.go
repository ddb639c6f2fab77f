// Package viewer describes the 3D model viewer the session drives, and ships
// an in-process Engine implementing it on top of the IFC entity index.
//
// The session only depends on the small interfaces below; everything that
// would be geometry, rendering or raycasting work in a graphical viewer is
// reduced to bookkeeping over element ids here.
package viewer

import (
	"context"
	"errors"

	"github.com/atomicstack/bimview/internal/scene"
)

var (
	// ErrUnknownModel reports a model id the viewer has not loaded.
	ErrUnknownModel = errors.New("viewer: unknown model")
	// ErrUnknownElement reports an element id absent from its model.
	ErrUnknownElement = errors.New("viewer: unknown element")
)

// Material aliases the scene material so callers need one import.
type Material = scene.Material

// Model is a loaded building model. The viewer owns it; callers keep a
// reference to the current one only.
type Model struct {
	ID         int
	Name       string
	Path       string
	Schema     string
	ElementIDs []int
	// Mesh is the original full-model mesh the loader attached to the scene.
	Mesh *scene.Mesh
}

// Element is a display row for one element.
type Element struct {
	ID   int
	Type string
	Name string
}

// Plan is one computed floor plan.
type Plan struct {
	ID        string
	Name      string
	Elevation float64
}

// PickResult identifies a hit element.
type PickResult struct {
	ModelID   int
	ElementID int
}

// SubsetOptions mirrors the subset builder knobs.
type SubsetOptions struct {
	Label           string
	Material        *Material
	ReplacePrevious bool
}

// Properties is the property set of one element.
type Properties struct {
	ModelID    int          `json:"modelID"`
	ExpressID  int          `json:"expressID"`
	Type       string       `json:"type"`
	GlobalID   string       `json:"globalId,omitempty"`
	Name       string       `json:"name,omitempty"`
	Attributes []string     `json:"attributes"`
	Related    []Properties `json:"related,omitempty"`
	Inverse    []Properties `json:"inverse,omitempty"`
}

// Loader loads models from files or URLs.
type Loader interface {
	LoadFile(ctx context.Context, path string) (*Model, error)
	LoadURL(ctx context.Context, url string) (*Model, error)
}

// SubsetBuilder builds renderable groupings of element ids.
type SubsetBuilder interface {
	Build(model *Model, ids []int, opts SubsetOptions) (*scene.Mesh, error)
}

// Picker resolves and highlights elements.
type Picker interface {
	PickAtPointer(ctx context.Context, highlight bool) (*PickResult, error)
	PickByIDs(ctx context.Context, modelID int, ids []int) error
	ClearPicks()
}

// PlanEngine computes and navigates floor plans.
type PlanEngine interface {
	ComputeAllPlans(ctx context.Context, modelID int) error
	CreateEdges(ctx context.Context, name string, modelID int, line, base Material) error
	ListPlans(modelID int) []string
	Plans(modelID int) []Plan
	GoToPlan(modelID int, name string)
	ToggleOverlay(name string, visible bool)
}

// PropertyReader reads element properties.
type PropertyReader interface {
	GetProperties(ctx context.Context, modelID, elementID int, recurse, includeInverse bool) (*Properties, error)
}

// TypeQuery lists elements of one IFC type.
type TypeQuery interface {
	ItemsOfType(ctx context.Context, modelID int, typ string) ([]int, error)
	Elements(modelID int) []Element
}

// Scene is the render scene plus its pickable collection.
type Scene interface {
	Add(mesh *scene.Mesh)
	Remove(mesh *scene.Mesh)
	Pickable() *scene.PickSet
}

// Unloader releases a model that is no longer shown.
type Unloader interface {
	Unload(modelID int)
}

// Pointer moves the hit-test target, the terminal stand-in for the mouse.
type Pointer interface {
	Hover(modelID, elementID int)
}

// Viewer is the full collaborator surface the session depends on.
type Viewer interface {
	Loader
	SubsetBuilder
	Picker
	PlanEngine
	PropertyReader
	TypeQuery
	Pointer
	Unloader
	Scene() Scene
}
