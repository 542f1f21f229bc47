package mem

import (
	"context"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/internal"
	"go.uber.org/zap"
)

func newMemContext(options Options) *memContext {
	return &memContext{
		options:      options,
		processCache: internal.NewProcessCache(),
	}
}

type memContext struct {
	ctx     context.Context
	options Options

	time time.Time

	events           eventRepository
	processes        processRepository
	processCache     *internal.ProcessCache
	processInstances processInstanceRepository
}

func (c *memContext) Context() context.Context {
	return c.ctx
}

func (c *memContext) Options() engine.Options {
	return c.options.Common
}

func (c *memContext) Logger() *zap.Logger {
	return c.options.Common.Logger
}

func (c *memContext) Time() time.Time {
	return c.time
}

func (c *memContext) Events() internal.EventRepository {
	return &c.events
}

func (c *memContext) Processes() internal.ProcessRepository {
	return &c.processes
}

func (c *memContext) ProcessCache() *internal.ProcessCache {
	return c.processCache
}

func (c *memContext) ProcessInstances() internal.ProcessInstanceRepository {
	return &c.processInstances
}

func (c *memContext) clear() {
	c.processCache.Clear()

	c.events.entities = nil
	c.processes.entities = nil
	c.processInstances.entities = nil
}
