package engine

import (
	"context"

	"github.com/flastex/go-bpmn/model"
)

// Condition is a guard of a conditional sequence flow or an activation condition of a complex gateway.
type Condition struct {
	ElementId string            // ID of the sequence flow or complex gateway, owning the condition.
	Script    model.Script      // Script to evaluate.
	Variables map[string]string // Variables of the token, which is routed.
}

// Evaluator evaluates conditions.
//
// An error is treated as an evaluation failure: the related flow is not taken.
type Evaluator interface {
	Evaluate(context.Context, Condition) (bool, error)
}

// EvaluatorFunc adapts a function to the [Evaluator] interface.
type EvaluatorFunc func(context.Context, Condition) (bool, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, condition Condition) (bool, error) {
	return f(ctx, condition)
}

// ForcedEvaluator returns an evaluator, which evaluates conditions of the given elements to true and all others to false.
func ForcedEvaluator(elementIds ...string) Evaluator {
	forced := make(map[string]bool, len(elementIds))
	for _, elementId := range elementIds {
		forced[elementId] = true
	}
	return EvaluatorFunc(func(_ context.Context, condition Condition) (bool, error) {
		return forced[condition.ElementId], nil
	})
}

// Task is a service or script task, reached by a token.
type Task struct {
	ProcessInstanceId int32             // ID of the process instance.
	TokenId           string            // ID of the token.
	BpmnElementId     string            // ID of the task element.
	Kind              model.TaskKind    // Task kind - service or script.
	Name              string            // Name of the task element.
	Script            *model.Script     // Script of a script task, if any.
	Variables         map[string]string // Copy of the token's variables.
}

// TaskHandler executes service and script tasks synchronously.
//
// Returned variables are merged into the variables of the token. An error fails the token.
type TaskHandler interface {
	ExecuteTask(context.Context, Task) (map[string]string, error)
}

// TaskHandlerFunc adapts a function to the [TaskHandler] interface.
type TaskHandlerFunc func(context.Context, Task) (map[string]string, error)

func (f TaskHandlerFunc) ExecuteTask(ctx context.Context, task Task) (map[string]string, error) {
	return f(ctx, task)
}

// IntermediateEvent is an intermediate catch or throw event, reached by a token.
type IntermediateEvent struct {
	ProcessInstanceId int32             // ID of the process instance.
	TokenId           string            // ID of the token.
	BpmnElementId     string            // ID of the event element.
	Name              string            // Name of the event element.
	Variables         map[string]string // Copy of the token's variables.
}

// EventHandler decides if an intermediate event has been triggered.
//
// If an event is not triggered, the token is paused at the event, until it is resumed. An exclusive event-based
// gateway asks for each of its target events and routes the token to the first one triggered. If none is triggered,
// the token is paused at the gateway.
type EventHandler interface {
	HandleEvent(context.Context, IntermediateEvent) (bool, error)
}

// EventHandlerFunc adapts a function to the [EventHandler] interface.
type EventHandlerFunc func(context.Context, IntermediateEvent) (bool, error)

func (f EventHandlerFunc) HandleEvent(ctx context.Context, event IntermediateEvent) (bool, error) {
	return f(ctx, event)
}

// Recorder receives the execution history of process instances, after each command.
type Recorder interface {
	Record(context.Context, []Event) error
}
