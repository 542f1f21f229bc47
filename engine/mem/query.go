package mem

import (
	"context"

	"github.com/flastex/go-bpmn/engine"
)

type query struct {
	e *memEngine

	defaultQueryLimit int
	options           engine.QueryOptions
}

func (q *query) QueryEvents(ctx context.Context, criteria engine.EventCriteria) ([]engine.Event, error) {
	defer q.e.runlock()
	memCtx := q.e.rlock(ctx)
	return memCtx.Events().Query(criteria, q.options)
}

func (q *query) QueryProcesses(ctx context.Context, criteria engine.ProcessCriteria) ([]engine.Process, error) {
	defer q.e.runlock()
	memCtx := q.e.rlock(ctx)
	return memCtx.Processes().Query(criteria, q.options)
}

func (q *query) QueryProcessInstances(ctx context.Context, criteria engine.ProcessInstanceCriteria) ([]engine.ProcessInstance, error) {
	defer q.e.runlock()
	memCtx := q.e.rlock(ctx)
	return memCtx.ProcessInstances().Query(criteria, q.options)
}

func (q *query) QueryTokens(ctx context.Context, criteria engine.TokenCriteria) ([]engine.Token, error) {
	defer q.e.runlock()
	memCtx := q.e.rlock(ctx)
	return memCtx.ProcessInstances().QueryTokens(criteria, q.options)
}

func (q *query) SetOptions(options engine.QueryOptions) {
	if options.Limit <= 0 {
		options.Limit = q.defaultQueryLimit
	}

	q.options = options
}
