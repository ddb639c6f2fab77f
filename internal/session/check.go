package session

import (
	"context"
	"fmt"

	"github.com/atomicstack/bimview/internal/checks"
	"github.com/atomicstack/bimview/internal/ifc"
	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/selection"
)

// CheckRoomSizes runs the room size check.
func (s *Session) CheckRoomSizes(ctx context.Context) (selection.ElementRef, error) {
	return s.RunCheck(ctx, checks.RoomSizes)
}

// CheckExits runs the exit check.
func (s *Session) CheckExits(ctx context.Context) (selection.ElementRef, error) {
	return s.RunCheck(ctx, checks.Exits)
}

// RunCheck selects and highlights the element a check names, then moves the
// view to the check's plan. No analysis of the model takes place.
func (s *Session) RunCheck(ctx context.Context, name string) (selection.ElementRef, error) {
	s.op.Lock()
	defer s.op.Unlock()
	check, ok := s.checks.Lookup(name)
	if !ok {
		return selection.ElementRef{}, fmt.Errorf("%w: %s", ErrUnknownCheck, name)
	}
	model, err := s.requireModel()
	if err != nil {
		return selection.ElementRef{}, err
	}
	if name == checks.RoomSizes {
		spaces, err := s.viewer.ItemsOfType(ctx, model.ID, ifc.TypeSpace)
		if err != nil {
			return selection.ElementRef{}, external("check "+name, err)
		}
		events.Check.Spaces(len(spaces))
	}
	events.Check.Run(check.Name, check.Element, check.Plan)
	if check.ClearPicks {
		s.viewer.ClearPicks()
	}
	ref := selection.ElementRef{ModelID: model.ID, ElementID: check.Element}
	if err := s.Selection.SelectByID(ctx, model.ID, check.Element, true); err != nil {
		return ref, external("check "+name, err)
	}
	if err := s.goToLocked(ctx, check.Plan); err != nil {
		return ref, err
	}
	return ref, nil
}
