package internal

import (
	"slices"

	"github.com/flastex/go-bpmn/engine"
)

type EventRepository interface {
	// Insert stores the events of a process instance, emitted by a single command.
	Insert([]engine.Event) error

	Query(engine.EventCriteria, engine.QueryOptions) ([]engine.Event, error)
}

// MatchEvent determines if an event matches the criteria of an event query.
func MatchEvent(c engine.EventCriteria, e engine.Event) bool {
	if c.ProcessInstanceId != 0 && c.ProcessInstanceId != e.ProcessInstanceId {
		return false
	}
	if c.TokenId != "" && c.TokenId != e.TokenId {
		return false
	}
	if len(c.Types) != 0 && !slices.Contains(c.Types, e.Type) {
		return false
	}
	return true
}

// MatchToken determines if a token matches the criteria of a token query.
func MatchToken(c engine.TokenCriteria, t engine.Token) bool {
	if c.ProcessInstanceId != 0 && c.ProcessInstanceId != t.ProcessInstanceId {
		return false
	}
	if c.BpmnElementId != "" && c.BpmnElementId != t.BpmnElementId {
		return false
	}
	if len(c.States) != 0 && !slices.Contains(c.States, t.State) {
		return false
	}
	return true
}
