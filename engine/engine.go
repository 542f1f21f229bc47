package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultEngineId = "default-engine" // Default ID of an engine, used when no specific ID is provided via [Options].
)

// An Engine creates and executes process instances by advancing tokens through a BPMN 2.0 process graph.
type Engine interface {
	// CreateProcess creates a process, using a BPMN definition that is provided as XML.
	//
	// If a process with the same BPMN process ID exists, the BPMN XML is compared.
	// When the BPMN XML equals, the existing process is returned.
	// When the BPMN XML differs, an error of type [ErrorConflict] is returned.
	CreateProcess(context.Context, CreateProcessCmd) (Process, error)

	// CreateProcessInstance creates and initializes an instance of an existing process.
	// The instance has a single active token, located at its start event. No token is processed.
	//
	// If the process has no start event, an error of type [ErrorProcessModel] is returned.
	CreateProcessInstance(context.Context, CreateProcessInstanceCmd) (ProcessInstance, error)

	// CreateQuery creates a query with default options.
	CreateQuery() Query

	// GetBpmnXml gets the BPMN XML of an existing process.
	GetBpmnXml(context.Context, GetBpmnXmlCmd) (string, error)

	// GetProcessInstance gets a snapshot of a process instance, including all tokens and flow object states.
	GetProcessInstance(context.Context, GetProcessInstanceCmd) (ProcessInstance, error)

	// ResumeToken resumes a paused token and runs the process instance, until no active token remains.
	//
	// If the token is not paused, an error of type [ErrorConflict] is returned.
	ResumeToken(context.Context, ResumeTokenCmd) (ProcessInstance, error)

	// RunProcessInstance processes active tokens, until no active token remains.
	//
	// Tokens, that fail to advance, are terminated and recorded as failures of the process instance.
	// They do not stop the processing of other tokens.
	RunProcessInstance(context.Context, RunProcessInstanceCmd) (ProcessInstance, error)

	// StepProcessInstance processes a single active token, if any.
	StepProcessInstance(context.Context, StepProcessInstanceCmd) (ProcessInstance, error)

	// TerminateProcessInstance terminates all active and paused tokens of a process instance.
	TerminateProcessInstance(context.Context, TerminateProcessInstanceCmd) (ProcessInstance, error)

	// TerminateToken terminates an active or paused token and, recursively, all of its active or paused child tokens.
	TerminateToken(context.Context, TerminateTokenCmd) (ProcessInstance, error)

	// Shutdown shuts the engine down.
	Shutdown()
}

// A Query allows to query entities, using query options.
type Query interface {
	QueryEvents(context.Context, EventCriteria) ([]Event, error)
	QueryProcesses(context.Context, ProcessCriteria) ([]Process, error)
	QueryProcessInstances(context.Context, ProcessInstanceCriteria) ([]ProcessInstance, error)
	QueryTokens(context.Context, TokenCriteria) ([]Token, error)

	// SetOptions sets options that are used when performing a query.
	SetOptions(QueryOptions)
}

// Options are common configuration options that are shared between engine implementations.
type Options struct {
	DefaultQueryLimit     int        // Default limit for queries, executed without an explicit limit.
	EngineId              string     // ID of the engine.
	FailOnEvaluationError bool       // Terminates a token, when a condition cannot be evaluated. Otherwise the flow is not taken.
	Scheduling            Scheduling // Order, in which active tokens are processed.

	Evaluator    Evaluator    // Evaluates conditions. If nil, conditional sequence flows are not taken.
	EventHandler EventHandler // Decides if intermediate events are triggered. If nil, intermediate events pass through.
	Logger       *zap.Logger  // Logger, used by the engine.
	Recorder     Recorder     // Receives the execution history after each command. Optional.
	TaskHandler  TaskHandler  // Executes service and script tasks. If nil, these tasks are only logged.

	OnRecordFailure func([]Event, error) // Called when the recorder failed to record events.
}

func (o Options) Validate() error {
	if o.DefaultQueryLimit < 1 {
		return errors.New("default query limit must be greater than or equal to 1")
	}
	if strings.TrimSpace(o.EngineId) == "" {
		return errors.New("engine ID must not be empty or blank")
	}
	if o.Logger == nil {
		return errors.New("logger is nil")
	}
	if o.Scheduling.String() == "" {
		return fmt.Errorf("invalid scheduling %d", o.Scheduling)
	}

	return nil
}

// QueryOptions are used to limit or offset query results.
// The zero value does not affect a query.
type QueryOptions struct {
	// Limit specifies the maximum number of results to return.
	// If Limit <= 0, the option's DefaultQueryLimit is applied.
	Limit int
	// Offset specifies the number of results to skip, before returning any result.
	// If Offset <= 0, no results are skipped.
	Offset int
}

// Scheduling determines the order, in which the active tokens of a process instance are processed.
//
// BPMN does not mandate an order between tokens on independent paths.
type Scheduling int

const (
	SchedulingFifo Scheduling = iota + 1 // First in, first out - tokens are processed in the order they became active.
	SchedulingLifo                       // Last in, first out - the most recently activated token is processed first.
)

func MapScheduling(s string) Scheduling {
	switch s {
	case "FIFO":
		return SchedulingFifo
	case "LIFO":
		return SchedulingLifo
	default:
		return 0
	}
}

func (v Scheduling) String() string {
	switch v {
	case SchedulingFifo:
		return "FIFO"
	case SchedulingLifo:
		return "LIFO"
	default:
		return ""
	}
}

type Error struct {
	Type   ErrorType
	Title  string
	Detail string
	Causes []ErrorCause
}

func (e Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s: %s", e.Type, e.Title, e.Detail))

	for _, cause := range e.Causes {
		sb.WriteRune('\n')
		sb.WriteString(cause.String())
	}

	return sb.String()
}

type ErrorType int

const (
	ErrorBug ErrorType = iota + 1
	ErrorConflict
	ErrorNotFound
	ErrorProcessModel
	ErrorValidation
)

func MapErrorType(s string) ErrorType {
	switch s {
	case "BUG":
		return ErrorBug
	case "CONFLICT":
		return ErrorConflict
	case "NOT_FOUND":
		return ErrorNotFound
	case "PROCESS_MODEL":
		return ErrorProcessModel
	case "VALIDATION":
		return ErrorValidation
	default:
		return 0
	}
}

func (v ErrorType) String() string {
	switch v {
	case ErrorBug:
		return "BUG"
	case ErrorConflict:
		return "CONFLICT"
	case ErrorNotFound:
		return "NOT_FOUND"
	case ErrorProcessModel:
		return "PROCESS_MODEL"
	case ErrorValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// A cause of a process model or validation [Error] like an unsupported BPMN element or an invalid command field.
type ErrorCause struct {
	Pointer string // A pointer, locating the invalid BPMN element, sequence flow or command field.
	Type    string // Type indicator.
	Detail  string // Human-readable, detailed information about the cause.
}

func (e ErrorCause) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Pointer, e.Detail)
}
