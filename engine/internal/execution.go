package internal

import (
	"context"
	"fmt"
	"maps"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/model"
	"go.uber.org/zap"
)

func newExecutionContext(ctx Context, process *ProcessEntity, processInstance *ProcessInstanceEntity) *executionContext {
	return &executionContext{
		ctx:     ctx,
		options: ctx.Options(),
		logger:  ctx.Logger().With(zap.Int32("processInstance", processInstance.Id)),

		graph:           process.graph,
		processInstance: processInstance,
	}
}

// executionContext advances the tokens of a single process instance.
type executionContext struct {
	ctx     Context
	options engine.Options
	logger  *zap.Logger

	graph           *graph
	processInstance *ProcessInstanceEntity
}

// run processes active tokens, until no active token remains or the context is done.
func (ec *executionContext) run() error {
	for {
		if err := ec.ctx.Context().Err(); err != nil {
			return err
		}
		if !ec.step() {
			return nil
		}
	}
}

func (ec *executionContext) runAndRecord() (engine.ProcessInstance, error) {
	processInstance := ec.processInstance

	runErr := ec.run()
	processInstance.updateState(ec.ctx.Time())

	if err := ec.record(); err != nil {
		return engine.ProcessInstance{}, err
	}

	if processInstance.isEnded() {
		ec.logger.Info("process instance ended",
			zap.Stringer("state", processInstance.State),
			zap.Int("failures", len(processInstance.failures)),
		)
	}

	return processInstance.ProcessInstance(), runErr
}

// step processes the next active token. If no token is active, false is returned.
func (ec *executionContext) step() bool {
	token, ok := ec.processInstance.pop(ec.options.Scheduling)
	if !ok {
		return false
	}

	flowObject := ec.graph.flowObject(token.BpmnElementId)
	if flowObject == nil {
		ec.fail(token, token.BpmnElementId, engine.FailureDanglingReference, fmt.Sprintf("flow object %s does not exist", token.BpmnElementId), true)
		return true
	}

	ec.setFlowObjectState(flowObject.Id, engine.FlowObjectActive)

	ec.logger.Debug("processing token",
		zap.String("token", token.Id),
		zap.Stringer("element", flowObject),
		zap.Stringer("state", token.State),
	)

	switch behavior := flowObject.Behavior.(type) {
	case model.Event:
		ec.processEvent(token, flowObject, behavior)
	case model.Gateway:
		ec.processGateway(token, flowObject, behavior)
	case model.Task:
		ec.processTask(token, flowObject, behavior)
	default:
		ec.advance(token, flowObject)
	}

	return true
}

func (ec *executionContext) processEvent(token *TokenEntity, flowObject *model.FlowObject, event model.Event) {
	switch event.Kind {
	case model.EventEnd:
		ec.setFlowObjectState(flowObject.Id, engine.FlowObjectCompleted)
		ec.setTokenState(token, engine.TokenCompleted, "")
	case model.EventIntermediate:
		if token.firedEventId == flowObject.Id {
			token.firedEventId = ""
			ec.advance(token, flowObject)
			return
		}

		fired, err := ec.fire(token, flowObject)
		if err != nil {
			ec.fail(token, flowObject.Id, engine.FailureEvent, err.Error(), true)
			return
		}
		if !fired {
			ec.pause(token, flowObject)
			return
		}
		ec.advance(token, flowObject)
	default:
		ec.advance(token, flowObject)
	}
}

// fire asks the event handler, if an intermediate event has been triggered for a token.
// Without an event handler, every event fires immediately.
func (ec *executionContext) fire(token *TokenEntity, flowObject *model.FlowObject) (bool, error) {
	handler := ec.options.EventHandler
	if handler == nil {
		return true, nil
	}

	return handler.HandleEvent(ec.ctx.Context(), engine.IntermediateEvent{
		ProcessInstanceId: ec.processInstance.Id,
		TokenId:           token.Id,
		BpmnElementId:     flowObject.Id,
		Name:              flowObject.Name,
		Variables:         maps.Clone(token.Variables),
	})
}

func (ec *executionContext) processTask(token *TokenEntity, flowObject *model.FlowObject, task model.Task) {
	if !task.IsAutomatic() {
		ec.pause(token, flowObject)
		return
	}

	handler := ec.options.TaskHandler
	if handler == nil {
		ec.logger.Info("executing task", zap.String("token", token.Id), zap.Stringer("element", flowObject))
		ec.advance(token, flowObject)
		return
	}

	variables, err := handler.ExecuteTask(ec.ctx.Context(), engine.Task{
		ProcessInstanceId: ec.processInstance.Id,
		TokenId:           token.Id,
		BpmnElementId:     flowObject.Id,
		Kind:              task.Kind,
		Name:              flowObject.Name,
		Script:            task.Script,
		Variables:         maps.Clone(token.Variables),
	})
	if err != nil {
		ec.fail(token, flowObject.Id, engine.FailureTask, err.Error(), true)
		return
	}

	token.mergeVariables(variables)
	ec.advance(token, flowObject)
}

// advance moves a token, located at a task or an event, along the first qualifying outgoing sequence flow.
func (ec *executionContext) advance(token *TokenEntity, flowObject *model.FlowObject) {
	outgoing := ec.graph.outgoing[flowObject.Id]
	if len(outgoing) == 0 {
		ec.fail(token, flowObject.Id, engine.FailureNoOutgoingFlow, fmt.Sprintf("%s has no outgoing sequence flow", flowObject), true)
		return
	}

	for _, sequenceFlow := range outgoing {
		qualifies, abort := ec.qualifies(token, sequenceFlow)
		if abort {
			return
		}
		if qualifies {
			ec.move(token, flowObject, []*model.SequenceFlow{sequenceFlow})
			return
		}
	}

	ec.fail(token, flowObject.Id, engine.FailureNoQualifyingFlow, fmt.Sprintf("%s has no qualifying sequence flow", flowObject), true)
}

// evaluate evaluates a condition, owned by the given element, for a token.
// If the evaluation failed and the token has been terminated, abort is true.
func (ec *executionContext) evaluate(token *TokenEntity, elementId string, script model.Script) (result bool, abort bool) {
	evaluator := ec.options.Evaluator
	if evaluator == nil {
		return false, false
	}

	result, err := evaluator.Evaluate(ec.ctx.Context(), engine.Condition{
		ElementId: elementId,
		Script:    script,
		Variables: maps.Clone(token.Variables),
	})
	if err != nil {
		detail := fmt.Sprintf("failed to evaluate condition of %s: %v", elementId, err)
		ec.fail(token, token.BpmnElementId, engine.FailureEvaluation, detail, ec.options.FailOnEvaluationError)
		return false, ec.options.FailOnEvaluationError
	}

	return result, false
}

// qualifies determines if a token can take a sequence flow.
func (ec *executionContext) qualifies(token *TokenEntity, sequenceFlow *model.SequenceFlow) (bool, bool) {
	if !sequenceFlow.IsConditional() {
		return true, false
	}
	if sequenceFlow.Condition == nil {
		return false, false
	}
	return ec.evaluate(token, sequenceFlow.Id, *sequenceFlow.Condition)
}

// move moves a token along the first sequence flow and spawns a child token for each further sequence flow.
func (ec *executionContext) move(token *TokenEntity, source *model.FlowObject, sequenceFlows []*model.SequenceFlow) {
	for _, sequenceFlow := range sequenceFlows {
		if ec.graph.flowObject(sequenceFlow.TargetRef) == nil {
			detail := fmt.Sprintf("sequence flow %s targets non-existing flow object %s", sequenceFlow.Id, sequenceFlow.TargetRef)
			ec.fail(token, source.Id, engine.FailureDanglingReference, detail, true)
			return
		}
	}

	processInstance := ec.processInstance

	var visit int
	if source.Type() == model.FlowObjectGateway {
		visit = processInstance.visits[source.Id]
		processInstance.visits[source.Id] = visit + 1
	}

	ec.setFlowObjectState(source.Id, engine.FlowObjectCompleted)

	first := sequenceFlows[0]

	token.BpmnElementId = first.TargetRef
	token.PrevFlowId = first.Id
	processInstance.push(token)

	ec.emit(engine.Event{
		Type:           engine.EventTokenMoved,
		TokenId:        token.Id,
		BpmnElementId:  first.TargetRef,
		SequenceFlowId: first.Id,
	})
	ec.setFlowObjectState(first.TargetRef, engine.FlowObjectReady)

	for _, sequenceFlow := range sequenceFlows[1:] {
		pathId := engine.PathIdentifier{FlowElementId: sequenceFlow.Id, ParentTokenId: token.Id}
		if visit > 0 {
			loopIndex := visit
			pathId.LoopIndex = &loopIndex
		}

		child := ec.createToken(pathId, sequenceFlow.TargetRef, token.Id, maps.Clone(token.Variables))
		child.PrevFlowId = sequenceFlow.Id

		token.ChildIds = append(token.ChildIds, child.Id)

		ec.setFlowObjectState(sequenceFlow.TargetRef, engine.FlowObjectReady)
	}
}

func (ec *executionContext) pause(token *TokenEntity, flowObject *model.FlowObject) {
	ec.setFlowObjectState(flowObject.Id, engine.FlowObjectSuspended)
	ec.setTokenState(token, engine.TokenPaused, "")
}

// resume activates a paused token and advances it from the flow object, it has been paused at.
// A token, paused at an event-based gateway, is routed again.
func (ec *executionContext) resume(token *TokenEntity, variables map[string]string) {
	token.mergeVariables(variables)
	ec.setTokenState(token, engine.TokenActive, "")

	flowObject := ec.graph.flowObject(token.BpmnElementId)
	if flowObject == nil {
		ec.fail(token, token.BpmnElementId, engine.FailureDanglingReference, fmt.Sprintf("flow object %s does not exist", token.BpmnElementId), true)
		return
	}

	if gateway, ok := flowObject.Behavior.(model.Gateway); ok {
		ec.processGateway(token, flowObject, gateway)
		return
	}

	ec.advance(token, flowObject)
}

// fail records a failure of a token. If terminate is true, the token is terminated and its live child tokens are detached.
func (ec *executionContext) fail(token *TokenEntity, elementId string, failureType engine.FailureType, detail string, terminate bool) {
	processInstance := ec.processInstance

	processInstance.failures = append(processInstance.failures, engine.TokenFailure{
		TokenId:       token.Id,
		BpmnElementId: elementId,
		Type:          failureType,
		Detail:        detail,
		Time:          ec.ctx.Time(),
		Terminated:    terminate,
	})

	ec.emit(engine.Event{
		Type:          engine.EventTokenFailed,
		TokenId:       token.Id,
		BpmnElementId: elementId,
		Detail:        fmt.Sprintf("%s: %s", failureType, detail),
	})

	ec.logger.Warn("token failed",
		zap.String("token", token.Id),
		zap.String("element", elementId),
		zap.Stringer("type", failureType),
		zap.String("detail", detail),
		zap.Bool("terminated", terminate),
	)

	if !terminate {
		return
	}

	ec.setFlowObjectState(elementId, engine.FlowObjectFailed)
	ec.setTokenState(token, engine.TokenTerminated, detail)
	processInstance.remove(token)

	for _, childId := range token.ChildIds {
		child := processInstance.tokens[childId]
		if child.isLive() && child.ParentId == token.Id {
			child.ParentId = ""
			child.DetachedFromId = token.Id
		}
	}
}

// terminate terminates a live token and, recursively, its live child tokens.
func (ec *executionContext) terminate(token *TokenEntity, reason string) {
	processInstance := ec.processInstance

	for _, childId := range token.ChildIds {
		child := processInstance.tokens[childId]
		if child.isLive() && child.ParentId == token.Id {
			ec.terminate(child, reason)
		}
	}

	ec.setFlowObjectState(token.BpmnElementId, engine.FlowObjectCanceled)
	ec.setTokenState(token, engine.TokenTerminated, reason)
	processInstance.remove(token)

	ec.logger.Debug("token terminated", zap.String("token", token.Id), zap.String("reason", reason))
}

func (ec *executionContext) createToken(pathId engine.PathIdentifier, bpmnElementId string, parentId string, variables map[string]string) *TokenEntity {
	processInstance := ec.processInstance

	token := TokenEntity{
		Id: engine.NewTokenId(pathId, processInstance.DebugLabel),

		PathId: pathId,

		BpmnElementId: bpmnElementId,
		CreatedAt:     ec.ctx.Time(),
		ParentId:      parentId,
		State:         engine.TokenActive,
		Variables:     variables,
	}

	processInstance.tokens[token.Id] = &token
	processInstance.tokenIds = append(processInstance.tokenIds, token.Id)
	processInstance.push(&token)

	ec.emit(engine.Event{
		Type:          engine.EventTokenCreated,
		TokenId:       token.Id,
		BpmnElementId: bpmnElementId,
		TokenState:    token.State,
		Detail:        pathId.String(),
	})

	return &token
}

func (ec *executionContext) setFlowObjectState(bpmnElementId string, state engine.FlowObjectState) {
	states := ec.processInstance.flowObjectStates
	if states[bpmnElementId] == state {
		return
	}
	if _, ok := states[bpmnElementId]; !ok {
		return // unknown flow object
	}

	states[bpmnElementId] = state

	ec.emit(engine.Event{
		Type:            engine.EventFlowObjectStateChanged,
		BpmnElementId:   bpmnElementId,
		FlowObjectState: state,
	})
}

func (ec *executionContext) setTokenState(token *TokenEntity, state engine.TokenState, detail string) {
	if token.State == state {
		return
	}

	token.State = state
	if state.IsTerminal() {
		now := ec.ctx.Time()
		token.EndedAt = &now
	}

	ec.emit(engine.Event{
		Type:          engine.EventTokenStateChanged,
		TokenId:       token.Id,
		BpmnElementId: token.BpmnElementId,
		TokenState:    state,
		Detail:        detail,
	})
}

func (ec *executionContext) emit(event engine.Event) {
	processInstance := ec.processInstance

	processInstance.eventSequence++

	event.ProcessInstanceId = processInstance.Id
	event.Sequence = processInstance.eventSequence
	event.Time = ec.ctx.Time()

	processInstance.events = append(processInstance.events, event)
}

// record stores the events, emitted by the current command, and passes them to the recorder, if configured.
func (ec *executionContext) record() error {
	events := ec.processInstance.events
	if len(events) == 0 {
		return nil
	}

	ec.processInstance.events = nil

	if err := ec.ctx.Events().Insert(events); err != nil {
		return err
	}

	recorder := ec.options.Recorder
	if recorder == nil {
		return nil
	}

	if err := recorder.Record(context.WithoutCancel(ec.ctx.Context()), events); err != nil {
		ec.logger.Warn("failed to record events", zap.Int("count", len(events)), zap.Error(err))
		if onRecordFailure := ec.options.OnRecordFailure; onRecordFailure != nil {
			onRecordFailure(events, err)
		}
	}

	return nil
}
