package internal

import (
	"fmt"
	"maps"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func newProcessInstanceEntity(process *ProcessEntity, createdAt time.Time, debugLabel string) *ProcessInstanceEntity {
	flowObjects := process.graph.process.FlowObjects()

	flowObjectStates := make(map[string]engine.FlowObjectState, len(flowObjects))
	for _, flowObject := range flowObjects {
		flowObjectStates[flowObject.Id] = engine.FlowObjectCreated
	}

	return &ProcessInstanceEntity{
		ProcessId: process.Id,

		BpmnProcessId: process.BpmnProcessId,
		CreatedAt:     createdAt,
		DebugLabel:    debugLabel,
		State:         engine.InstanceCreated,

		flowObjectStates: flowObjectStates,
		joins:            make(map[string][]joinArrival),
		tokens:           make(map[string]*TokenEntity),
		visits:           make(map[string]int),
	}
}

// ProcessInstanceEntity is the runtime state of a process instance: an arena of tokens, linked by ID, and the state
// of each flow object.
type ProcessInstanceEntity struct {
	Id int32

	ProcessId int32

	BpmnProcessId string
	CreatedAt     time.Time
	DebugLabel    string
	EndedAt       *time.Time
	State         engine.InstanceState

	active           []string // IDs of active tokens, in activation order
	failures         []engine.TokenFailure
	flowObjectStates map[string]engine.FlowObjectState
	joins            map[string][]joinArrival // mapping between parallel joins and the tokens, waiting there
	tokenIds         []string                 // IDs of all tokens, in creation order
	tokens           map[string]*TokenEntity
	visits           map[string]int // mapping between gateway IDs and the number of routed tokens

	eventSequence int
	events        []engine.Event // events, not yet stored
}

// joinArrival is a token, consumed by a parallel join, while waiting for tokens on the other incoming sequence flows.
type joinArrival struct {
	sequenceFlowId string
	tokenId        string
}

func (e *ProcessInstanceEntity) ProcessInstance() engine.ProcessInstance {
	var endedAt *time.Time
	if e.EndedAt != nil {
		t := *e.EndedAt
		endedAt = &t
	}

	var pendingJoins map[string][]string
	for gatewayId, arrivals := range e.joins {
		if len(arrivals) == 0 {
			continue
		}
		if pendingJoins == nil {
			pendingJoins = make(map[string][]string)
		}
		for _, arrival := range arrivals {
			pendingJoins[gatewayId] = append(pendingJoins[gatewayId], arrival.sequenceFlowId)
		}
	}

	var failures []engine.TokenFailure
	if len(e.failures) != 0 {
		failures = make([]engine.TokenFailure, len(e.failures))
		copy(failures, e.failures)
	}

	return engine.ProcessInstance{
		Id: e.Id,

		ProcessId: e.ProcessId,

		BpmnProcessId:    e.BpmnProcessId,
		CreatedAt:        e.CreatedAt,
		EndedAt:          endedAt,
		Failures:         failures,
		FlowObjectStates: maps.Clone(e.flowObjectStates),
		PendingJoins:     pendingJoins,
		State:            e.State,
		Tokens:           e.Tokens(),
	}
}

// Tokens returns snapshots of all tokens, in creation order.
func (e *ProcessInstanceEntity) Tokens() []engine.Token {
	tokens := make([]engine.Token, len(e.tokenIds))
	for i, tokenId := range e.tokenIds {
		tokens[i] = e.tokens[tokenId].Token(e.Id)
	}
	return tokens
}

func (e *ProcessInstanceEntity) isEnded() bool {
	return e.EndedAt != nil
}

// pop removes the next active token, according to the scheduling.
func (e *ProcessInstanceEntity) pop(scheduling engine.Scheduling) (*TokenEntity, bool) {
	if len(e.active) == 0 {
		return nil, false
	}

	var tokenId string
	if scheduling == engine.SchedulingFifo {
		tokenId = e.active[0]
		e.active = e.active[1:]
	} else {
		tokenId = e.active[len(e.active)-1]
		e.active = e.active[:len(e.active)-1]
	}
	return e.tokens[tokenId], true
}

func (e *ProcessInstanceEntity) push(token *TokenEntity) {
	e.active = append(e.active, token.Id)
}

func (e *ProcessInstanceEntity) remove(token *TokenEntity) {
	for i, tokenId := range e.active {
		if tokenId == token.Id {
			e.active = append(e.active[:i], e.active[i+1:]...)
			return
		}
	}
}

// updateState derives the instance state from the token states.
func (e *ProcessInstanceEntity) updateState(now time.Time) {
	if e.State == engine.InstanceTerminated {
		return
	}

	var active, paused, completed bool
	for _, token := range e.tokens {
		switch token.State {
		case engine.TokenActive:
			active = true
		case engine.TokenPaused:
			paused = true
		case engine.TokenCompleted:
			completed = true
		}
	}

	switch {
	case active:
		e.State = engine.InstanceStarted
	case paused:
		e.State = engine.InstanceSuspended
	case completed:
		e.State = engine.InstanceCompleted
	default:
		e.State = engine.InstanceFailed
	}

	if e.EndedAt == nil && (e.State == engine.InstanceCompleted || e.State == engine.InstanceFailed) {
		e.EndedAt = &now
	}
}

type ProcessInstanceRepository interface {
	Insert(*ProcessInstanceEntity) error

	// Select selects a process instance by ID. If no process instance is found, [pgx.ErrNoRows] is returned.
	Select(id int32) (*ProcessInstanceEntity, error)

	Query(engine.ProcessInstanceCriteria, engine.QueryOptions) ([]engine.ProcessInstance, error)
	QueryTokens(engine.TokenCriteria, engine.QueryOptions) ([]engine.Token, error)
}

func CreateProcessInstance(ctx Context, cmd engine.CreateProcessInstanceCmd) (engine.ProcessInstance, error) {
	if err := validateCmd("failed to create process instance", cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	process, err := ctx.ProcessCache().GetOrCache(ctx, cmd.BpmnProcessId)
	if err == pgx.ErrNoRows {
		return engine.ProcessInstance{}, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  "failed to create process instance",
			Detail: fmt.Sprintf("process %s could not be found", cmd.BpmnProcessId),
		}
	}
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	startEvent, ok := process.graph.startEvent(cmd.BpmnStartElementId)
	if !ok && cmd.BpmnStartElementId != "" {
		return engine.ProcessInstance{}, engine.Error{
			Type:   engine.ErrorValidation,
			Title:  "failed to create process instance",
			Detail: "command is invalid",
			Causes: []engine.ErrorCause{{
				Pointer: "#/bpmnStartElementId",
				Type:    "start_event",
				Detail:  fmt.Sprintf("BPMN element %s is not a start event of process %s", cmd.BpmnStartElementId, cmd.BpmnProcessId),
			}},
		}
	}
	if !ok {
		return engine.ProcessInstance{}, engine.Error{
			Type:   engine.ErrorProcessModel,
			Title:  "failed to create process instance",
			Detail: fmt.Sprintf("BPMN process %s has no start event", cmd.BpmnProcessId),
		}
	}

	processInstance := newProcessInstanceEntity(process, ctx.Time(), cmd.DebugLabel)
	if err := ctx.ProcessInstances().Insert(processInstance); err != nil {
		return engine.ProcessInstance{}, err
	}

	ec := newExecutionContext(ctx, process, processInstance)

	pathId := engine.NewPathIdentifier(startEvent.Id)
	token := ec.createToken(pathId, startEvent.Id, "", cloneVariables(cmd.Variables))
	ec.setFlowObjectState(startEvent.Id, engine.FlowObjectReady)

	if err := ec.record(); err != nil {
		return engine.ProcessInstance{}, err
	}

	ctx.Logger().Debug("process instance created",
		zap.Int32("id", processInstance.Id),
		zap.String("bpmnProcessId", process.BpmnProcessId),
		zap.String("token", token.Id),
	)

	return processInstance.ProcessInstance(), nil
}

func GetProcessInstance(ctx Context, cmd engine.GetProcessInstanceCmd) (engine.ProcessInstance, error) {
	if err := validateCmd("failed to get process instance", cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	processInstance, err := selectProcessInstance(ctx, cmd.Id, "failed to get process instance")
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	return processInstance.ProcessInstance(), nil
}

func ResumeToken(ctx Context, cmd engine.ResumeTokenCmd) (engine.ProcessInstance, error) {
	const title = "failed to resume token"

	if err := validateCmd(title, cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	ec, token, err := selectToken(ctx, cmd.ProcessInstanceId, cmd.TokenId, title)
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	if token.State != engine.TokenPaused {
		return engine.ProcessInstance{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("token %s is %s, but must be %s", token.Id, token.State, engine.TokenPaused),
		}
	}

	ec.resume(token, cmd.Variables)

	return ec.runAndRecord()
}

func RunProcessInstance(ctx Context, cmd engine.RunProcessInstanceCmd) (engine.ProcessInstance, error) {
	if err := validateCmd("failed to run process instance", cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	ec, err := selectExecutionContext(ctx, cmd.Id, "failed to run process instance")
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	return ec.runAndRecord()
}

func StepProcessInstance(ctx Context, cmd engine.StepProcessInstanceCmd) (engine.ProcessInstance, error) {
	if err := validateCmd("failed to step process instance", cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	ec, err := selectExecutionContext(ctx, cmd.Id, "failed to step process instance")
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	ec.step()
	ec.processInstance.updateState(ctx.Time())

	if err := ec.record(); err != nil {
		return engine.ProcessInstance{}, err
	}

	return ec.processInstance.ProcessInstance(), nil
}

func TerminateProcessInstance(ctx Context, cmd engine.TerminateProcessInstanceCmd) (engine.ProcessInstance, error) {
	const title = "failed to terminate process instance"

	if err := validateCmd(title, cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	ec, err := selectExecutionContext(ctx, cmd.Id, title)
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	processInstance := ec.processInstance
	if processInstance.isEnded() {
		return engine.ProcessInstance{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process instance %d is ended", processInstance.Id),
		}
	}

	for _, tokenId := range processInstance.tokenIds {
		if token := processInstance.tokens[tokenId]; token.isLive() {
			ec.terminate(token, cmd.Reason)
		}
	}

	now := ctx.Time()
	processInstance.State = engine.InstanceTerminated
	processInstance.EndedAt = &now

	if err := ec.record(); err != nil {
		return engine.ProcessInstance{}, err
	}

	ctx.Logger().Info("process instance terminated", zap.Int32("id", processInstance.Id), zap.String("reason", cmd.Reason))

	return processInstance.ProcessInstance(), nil
}

func TerminateToken(ctx Context, cmd engine.TerminateTokenCmd) (engine.ProcessInstance, error) {
	const title = "failed to terminate token"

	if err := validateCmd(title, cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	ec, token, err := selectToken(ctx, cmd.ProcessInstanceId, cmd.TokenId, title)
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	if !token.isLive() {
		return engine.ProcessInstance{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("token %s is %s, but must be %s or %s", token.Id, token.State, engine.TokenActive, engine.TokenPaused),
		}
	}

	ec.terminate(token, cmd.Reason)
	ec.processInstance.updateState(ctx.Time())

	if err := ec.record(); err != nil {
		return engine.ProcessInstance{}, err
	}

	return ec.processInstance.ProcessInstance(), nil
}

func cloneVariables(variables map[string]string) map[string]string {
	if variables == nil {
		return make(map[string]string)
	}
	return maps.Clone(variables)
}

func selectExecutionContext(ctx Context, processInstanceId int32, title string) (*executionContext, error) {
	processInstance, err := selectProcessInstance(ctx, processInstanceId, title)
	if err != nil {
		return nil, err
	}

	process, err := ctx.ProcessCache().GetOrCacheById(ctx, processInstance.ProcessId)
	if err != nil {
		return nil, err
	}

	return newExecutionContext(ctx, process, processInstance), nil
}

func selectProcessInstance(ctx Context, id int32, title string) (*ProcessInstanceEntity, error) {
	processInstance, err := ctx.ProcessInstances().Select(id)
	if err == pgx.ErrNoRows {
		return nil, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("process instance %d could not be found", id),
		}
	}
	if err != nil {
		return nil, err
	}
	return processInstance, nil
}

func selectToken(ctx Context, processInstanceId int32, tokenId string, title string) (*executionContext, *TokenEntity, error) {
	ec, err := selectExecutionContext(ctx, processInstanceId, title)
	if err != nil {
		return nil, nil, err
	}

	token, ok := ec.processInstance.tokens[tokenId]
	if !ok {
		return nil, nil, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("process instance %d has no token %s", processInstanceId, tokenId),
		}
	}

	return ec, token, nil
}
