package mem

import (
	"slices"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/internal"
	"github.com/jackc/pgx/v5"
)

// processInstanceRepository keeps process instance entities, which are mutated in place by the executing command.
type processInstanceRepository struct {
	entities []*internal.ProcessInstanceEntity
}

func (r *processInstanceRepository) Insert(entity *internal.ProcessInstanceEntity) error {
	entity.Id = int32(len(r.entities) + 1)
	r.entities = append(r.entities, entity)
	return nil
}

func (r *processInstanceRepository) Select(id int32) (*internal.ProcessInstanceEntity, error) {
	if id < 1 || int(id) > len(r.entities) {
		return nil, pgx.ErrNoRows
	}
	return r.entities[id-1], nil
}

func (r *processInstanceRepository) Query(c engine.ProcessInstanceCriteria, o engine.QueryOptions) ([]engine.ProcessInstance, error) {
	var (
		offset int
		limit  int
	)

	results := make([]engine.ProcessInstance, 0)
	for _, e := range r.entities {
		if c.Id != 0 && c.Id != e.Id {
			continue
		}
		if c.ProcessId != 0 && c.ProcessId != e.ProcessId {
			continue
		}
		if len(c.States) != 0 && !slices.Contains(c.States, e.State) {
			continue
		}

		if offset < o.Offset {
			offset++
			continue
		}

		results = append(results, e.ProcessInstance())
		limit++

		if o.Limit > 0 && limit == o.Limit {
			break
		}
	}

	return results, nil
}

func (r *processInstanceRepository) QueryTokens(c engine.TokenCriteria, o engine.QueryOptions) ([]engine.Token, error) {
	var (
		offset int
		limit  int
	)

	results := make([]engine.Token, 0)
	for _, e := range r.entities {
		if c.ProcessInstanceId != 0 && c.ProcessInstanceId != e.Id {
			continue
		}

		for _, token := range e.Tokens() {
			if !internal.MatchToken(c, token) {
				continue
			}

			if offset < o.Offset {
				offset++
				continue
			}

			results = append(results, token)
			limit++

			if o.Limit > 0 && limit == o.Limit {
				return results, nil
			}
		}
	}

	return results, nil
}
