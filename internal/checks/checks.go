// Package checks defines the model checks the viewer can run. A check selects
// one element and moves the view to the plan it sits on.
package checks

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	RoomSizes = "room-sizes"
	Exits     = "exits"
)

// Check is one configured check.
type Check struct {
	// Name identifies the check in menus and on the command line.
	Name string `yaml:"name"`
	// Label is shown in the checks menu.
	Label string `yaml:"label,omitempty"`
	// Element is the express id selected and highlighted by the check.
	Element int `yaml:"element"`
	// Plan is the floor plan id the view moves to.
	Plan string `yaml:"plan"`
	// ClearPicks drops existing highlights before selecting.
	ClearPicks bool `yaml:"clear_picks,omitempty"`
}

// Config is the checks file layout.
type Config struct {
	Checks []Check `yaml:"checks"`
}

// Set is an ordered, name-indexed collection of checks.
type Set struct {
	order  []string
	byName map[string]Check
}

// Defaults returns the built-in room size and exit checks.
func Defaults() *Set {
	s := &Set{byName: make(map[string]Check)}
	s.put(Check{Name: RoomSizes, Label: "Check room sizes", Element: 246, Plan: "102"})
	s.put(Check{Name: Exits, Label: "Check exits", Element: 3729, Plan: "102", ClearPicks: true})
	return s
}

// Load reads a YAML checks file and merges it over the defaults. Entries with
// a built-in name replace the built-in; others are appended. An empty path
// yields the defaults.
func Load(path string) (*Set, error) {
	set := Defaults()
	if strings.TrimSpace(path) == "" {
		return set, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checks file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse checks file: %w", err)
	}
	for i, c := range cfg.Checks {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("checks[%d]: %w", i, err)
		}
		set.put(c)
	}
	return set, nil
}

func (c Check) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if c.Element <= 0 {
		return fmt.Errorf("check %q: element must be a positive express id", c.Name)
	}
	if strings.TrimSpace(c.Plan) == "" {
		return fmt.Errorf("check %q: plan is required", c.Name)
	}
	return nil
}

func (s *Set) put(c Check) {
	if c.Label == "" {
		c.Label = c.Name
	}
	if _, ok := s.byName[c.Name]; !ok {
		s.order = append(s.order, c.Name)
	}
	s.byName[c.Name] = c
}

// Lookup finds a check by name.
func (s *Set) Lookup(name string) (Check, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// All returns the checks in definition order.
func (s *Set) All() []Check {
	out := make([]Check, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}
