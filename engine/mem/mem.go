package mem

import (
	"context"
	"sync"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/internal"
	"go.uber.org/zap"
)

func New(customizers ...func(*Options)) (engine.Engine, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	ctx := newMemContext(options)

	memEngine := memEngine{ctx: ctx, defaultQueryLimit: options.Common.DefaultQueryLimit}

	options.Common.Logger.Debug("mem engine created",
		zap.String("engineId", options.Common.EngineId),
		zap.Stringer("scheduling", options.Common.Scheduling),
	)

	return &memEngine, nil
}

func NewOptions() Options {
	return Options{
		Common: engine.Options{
			DefaultQueryLimit: 1000,
			EngineId:          engine.DefaultEngineId,
			Logger:            zap.NewNop(),
			Scheduling:        engine.SchedulingLifo,
		},
	}
}

type Options struct {
	Common engine.Options // Common options
}

func (o Options) Validate() error {
	return o.Common.Validate()
}

type memEngine struct {
	ctxMutex sync.RWMutex
	ctx      *memContext

	defaultQueryLimit int
}

func (e *memEngine) CreateProcess(ctx context.Context, cmd engine.CreateProcessCmd) (engine.Process, error) {
	defer e.unlock()
	return internal.CreateProcess(e.wlock(ctx), cmd)
}

func (e *memEngine) CreateProcessInstance(ctx context.Context, cmd engine.CreateProcessInstanceCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	return internal.CreateProcessInstance(e.wlock(ctx), cmd)
}

func (e *memEngine) CreateQuery() engine.Query {
	return &query{
		e: e,

		defaultQueryLimit: e.defaultQueryLimit,
		options:           engine.QueryOptions{Limit: e.defaultQueryLimit},
	}
}

func (e *memEngine) GetBpmnXml(ctx context.Context, cmd engine.GetBpmnXmlCmd) (string, error) {
	defer e.runlock()
	return internal.GetBpmnXml(e.rlock(ctx), cmd)
}

func (e *memEngine) GetProcessInstance(ctx context.Context, cmd engine.GetProcessInstanceCmd) (engine.ProcessInstance, error) {
	defer e.runlock()
	return internal.GetProcessInstance(e.rlock(ctx), cmd)
}

func (e *memEngine) ResumeToken(ctx context.Context, cmd engine.ResumeTokenCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	return internal.ResumeToken(e.wlock(ctx), cmd)
}

func (e *memEngine) RunProcessInstance(ctx context.Context, cmd engine.RunProcessInstanceCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	return internal.RunProcessInstance(e.wlock(ctx), cmd)
}

func (e *memEngine) StepProcessInstance(ctx context.Context, cmd engine.StepProcessInstanceCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	return internal.StepProcessInstance(e.wlock(ctx), cmd)
}

func (e *memEngine) TerminateProcessInstance(ctx context.Context, cmd engine.TerminateProcessInstanceCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	return internal.TerminateProcessInstance(e.wlock(ctx), cmd)
}

func (e *memEngine) TerminateToken(ctx context.Context, cmd engine.TerminateTokenCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	return internal.TerminateToken(e.wlock(ctx), cmd)
}

func (e *memEngine) Shutdown() {
	defer e.unlock()
	e.wlock(context.Background()).clear()
}

// rlock acquires a read lock and returns a copy of the context, since concurrent readers must not share the command
// scoped fields.
func (e *memEngine) rlock(ctx context.Context) *memContext {
	now := time.Now()

	e.ctxMutex.RLock()

	memCtx := *e.ctx
	memCtx.ctx = ctx
	memCtx.time = now.UTC().Truncate(time.Millisecond)

	return &memCtx
}

func (e *memEngine) runlock() {
	e.ctxMutex.RUnlock()
}

func (e *memEngine) wlock(ctx context.Context) *memContext {
	now := time.Now()

	e.ctxMutex.Lock()

	e.ctx.ctx = ctx
	e.ctx.time = now.UTC().Truncate(time.Millisecond)

	return e.ctx
}

func (e *memEngine) unlock() {
	e.ctxMutex.Unlock()
}
