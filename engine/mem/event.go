package mem

import (
	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/internal"
)

type eventRepository struct {
	entities []engine.Event
}

func (r *eventRepository) Insert(events []engine.Event) error {
	r.entities = append(r.entities, events...)
	return nil
}

func (r *eventRepository) Query(c engine.EventCriteria, o engine.QueryOptions) ([]engine.Event, error) {
	var (
		offset int
		limit  int
	)

	results := make([]engine.Event, 0)
	for _, e := range r.entities {
		if !internal.MatchEvent(c, e) {
			continue
		}

		if offset < o.Offset {
			offset++
			continue
		}

		results = append(results, e)
		limit++

		if o.Limit > 0 && limit == o.Limit {
			break
		}
	}

	return results, nil
}
