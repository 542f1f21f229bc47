package internal

import (
	"context"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"go.uber.org/zap"
)

type Context interface {
	// Context returns the context of the current command, which is observed between two processed tokens.
	Context() context.Context

	Options() engine.Options
	Logger() *zap.Logger

	Time() time.Time

	Events() EventRepository
	Processes() ProcessRepository
	ProcessCache() *ProcessCache
	ProcessInstances() ProcessInstanceRepository
}
