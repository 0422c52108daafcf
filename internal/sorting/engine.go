package sorting

import "fmt"

// Engine holds the sort state of one table view.
type Engine struct {
	state    State
	collator *collator
}

// NewEngine returns an unsorted engine.
func NewEngine() *Engine {
	return &Engine{collator: newCollator()}
}

// NewEngineWithState returns an engine starting at state.
func NewEngineWithState(state State) *Engine {
	return &Engine{state: state, collator: newCollator()}
}

func (e *Engine) State() State {
	return e.state
}

// Toggle selects key, flipping the direction when it is already selected.
func (e *Engine) Toggle(key string) State {
	e.state = e.state.Toggle(key)
	return e.state
}

// Reset returns the engine to insertion order.
func (e *Engine) Reset() {
	e.state = State{}
}

// Sort returns a sorted copy of records. The input slice is not modified.
func (e *Engine) Sort(records []Record) []Record {
	return sortWith(e.collator, records, e.state)
}

// StatusText describes the current sort for a table footer, using labels to
// name the column when one is given.
func (e *Engine) StatusText(labels map[string]string) string {
	if !e.state.Sorted() {
		return ""
	}
	label := e.state.Key
	if named, ok := labels[e.state.Key]; ok && named != "" {
		label = named
	}
	direction := "오름차순"
	if e.state.Direction == Descending {
		direction = "내림차순"
	}
	return fmt.Sprintf(" | 정렬: %s %s", label, direction)
}
