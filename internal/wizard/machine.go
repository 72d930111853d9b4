package wizard

import "fmt"

// Machine is the compiled step sequence: an adjacency table built once from
// the ordered step list, replacing repeated find-index-of-current-path
// lookups. Out-of-range transitions are no-ops reported by the ok flag.
type Machine struct {
	steps  []Step
	byID   map[StepID]int
	byPath map[string]int
}

// NewMachine compiles and validates a step list: paths must be unique and
// exactly one step carries the empty signature-capture title.
func NewMachine(steps []Step) (*Machine, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard: empty step list")
	}

	m := &Machine{
		steps:  steps,
		byID:   make(map[StepID]int, len(steps)),
		byPath: make(map[string]int, len(steps)),
	}

	untitled := 0
	for i, step := range steps {
		if step.ID == "" || step.Path == "" {
			return nil, fmt.Errorf("wizard: step %d missing id or path", i)
		}
		if _, dup := m.byID[step.ID]; dup {
			return nil, fmt.Errorf("wizard: duplicate step id %q", step.ID)
		}
		if _, dup := m.byPath[step.Path]; dup {
			return nil, fmt.Errorf("wizard: duplicate step path %q", step.Path)
		}
		if step.Title == "" {
			untitled++
		}
		m.byID[step.ID] = i
		m.byPath[step.Path] = i
	}
	if untitled != 1 {
		return nil, fmt.Errorf("wizard: expected exactly one signature step, found %d", untitled)
	}

	return m, nil
}

// MustMachine compiles the step list or panics; for static sequences.
func MustMachine(steps []Step) *Machine {
	m, err := NewMachine(steps)
	if err != nil {
		panic(err)
	}
	return m
}

// First returns the entry step.
func (m *Machine) First() Step {
	return m.steps[0]
}

// Steps returns the full sequence in order.
func (m *Machine) Steps() []Step {
	out := make([]Step, len(m.steps))
	copy(out, m.steps)
	return out
}

// Step resolves a step by ID.
func (m *Machine) Step(id StepID) (Step, bool) {
	i, ok := m.byID[id]
	if !ok {
		return Step{}, false
	}
	return m.steps[i], true
}

// ByPath resolves a step by its route.
func (m *Machine) ByPath(path string) (Step, bool) {
	i, ok := m.byPath[path]
	if !ok {
		return Step{}, false
	}
	return m.steps[i], true
}

// Index returns a step's position, or -1 for an unknown ID.
func (m *Machine) Index(id StepID) int {
	i, ok := m.byID[id]
	if !ok {
		return -1
	}
	return i
}

// Next returns the step after id. ok is false on the terminal step, which
// protects itself from over-advancing.
func (m *Machine) Next(id StepID) (Step, bool) {
	i, ok := m.byID[id]
	if !ok || i+1 >= len(m.steps) {
		return Step{}, false
	}
	return m.steps[i+1], true
}

// Prev returns the step before id. ok is false on the first step.
func (m *Machine) Prev(id StepID) (Step, bool) {
	i, ok := m.byID[id]
	if !ok || i == 0 {
		return Step{}, false
	}
	return m.steps[i-1], true
}
