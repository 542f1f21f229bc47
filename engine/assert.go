package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"testing"
)

// Assert creates an assert for a process instance, which has been created by the given engine.
func Assert(t *testing.T, e Engine, processInstance ProcessInstance) *ProcessInstanceAssert {
	return &ProcessInstanceAssert{
		t: t,
		e: e,

		processInstanceId: processInstance.Id,
	}
}

// AssertStart creates a process instance of an existing process and asserts it.
func AssertStart(t *testing.T, e Engine, bpmnProcessId string, variables ...map[string]string) *ProcessInstanceAssert {
	cmd := CreateProcessInstanceCmd{BpmnProcessId: bpmnProcessId, Variables: make(map[string]string)}
	for _, v := range variables {
		for name, value := range v {
			cmd.Variables[name] = value
		}
	}

	processInstance, err := e.CreateProcessInstance(context.Background(), cmd)
	if err != nil {
		t.Fatalf("failed to create process instance: %v", err)
	}

	return Assert(t, e, processInstance)
}

type ProcessInstanceAssert struct {
	t *testing.T
	e Engine

	processInstanceId int32
	tokenId           string
	bpmnElementId     string
}

func (a *ProcessInstanceAssert) Fatalf(format string, args ...any) {
	data := map[string]string{
		"Error Trace": string(debug.Stack()),
		"Error":       fmt.Sprintf(format, args...),
		"Test":        a.t.Name(),
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("\n%s: %s", k, data[k]))
	}

	a.t.Fatal(sb.String())
}

// HasFailed asserts that a token failed at the given element with the given failure type.
func (a *ProcessInstanceAssert) HasFailed(bpmnElementId string, failureType FailureType) TokenFailure {
	processInstance := a.ProcessInstance()
	for _, failure := range processInstance.Failures {
		if failure.BpmnElementId == bpmnElementId && failure.Type == failureType {
			return failure
		}
	}

	failures := make([]string, len(processInstance.Failures))
	for i, failure := range processInstance.Failures {
		failures[i] = failure.String()
	}

	a.Fatalf("expected a %s failure at %s, but got none\nfailures: %s", failureType, bpmnElementId, strings.Join(failures, ", "))
	return TokenFailure{}
}

// HasNotPassed asserts that no token left the given element.
func (a *ProcessInstanceAssert) HasNotPassed(bpmnElementId string) {
	for _, passed := range a.passed() {
		if passed == bpmnElementId {
			a.Fatalf("expected process instance not to have passed %s, but has", bpmnElementId)
		}
	}
}

// HasPassed asserts that a token left the given element.
func (a *ProcessInstanceAssert) HasPassed(bpmnElementId string) {
	passed := a.passed()
	for _, p := range passed {
		if p == bpmnElementId {
			return
		}
	}

	a.Fatalf("expected process instance to have passed %s, but has not\npassed elements: %s", bpmnElementId, strings.Join(passed, ", "))
}

// HasTokens asserts the number of tokens in the given state.
func (a *ProcessInstanceAssert) HasTokens(state TokenState, expected int) []Token {
	tokens := a.ProcessInstance().TokensByState(state)
	if len(tokens) != expected {
		a.Fatalf("expected process instance to have %d %s tokens, but got %d", expected, state, len(tokens))
	}
	return tokens
}

// HasVariable asserts the value of a variable of the current token.
func (a *ProcessInstanceAssert) HasVariable(name string, expected string) {
	token := a.Token()

	value, ok := token.Variables[name]
	if !ok {
		a.Fatalf("expected token %s to have variable %s, but has not", token, name)
	}
	if value != expected {
		a.Fatalf("expected token %s to have variable %s=%q, but got %q", token, name, expected, value)
	}
}

func (a *ProcessInstanceAssert) IsCompleted() {
	if state := a.ProcessInstance().State; state != InstanceCompleted {
		a.Fatalf("expected process instance to be completed, but is %s", state)
	}
}

// IsCompletedAt asserts that a token completed at the given end event and selects it.
func (a *ProcessInstanceAssert) IsCompletedAt(bpmnElementId string) {
	a.selectToken(bpmnElementId, TokenCompleted, "completed")
}

func (a *ProcessInstanceAssert) IsFailed() {
	if state := a.ProcessInstance().State; state != InstanceFailed {
		a.Fatalf("expected process instance to be failed, but is %s", state)
	}
}

func (a *ProcessInstanceAssert) IsNotCompleted() {
	if state := a.ProcessInstance().State; state == InstanceCompleted {
		a.Fatalf("expected process instance not to be completed, but is")
	}
}

// IsNotCompletedAt asserts that no token completed at the given end event.
func (a *ProcessInstanceAssert) IsNotCompletedAt(bpmnElementId string) {
	for _, token := range a.ProcessInstance().TokensByState(TokenCompleted) {
		if token.BpmnElementId == bpmnElementId {
			a.Fatalf("expected process instance not to be completed at %s, but is", bpmnElementId)
		}
	}
}

func (a *ProcessInstanceAssert) IsNotWaitingAt(bpmnElementId string) {
	for _, token := range a.ProcessInstance().TokensByState(TokenPaused) {
		if token.BpmnElementId == bpmnElementId {
			a.Fatalf("expected process instance not to be waiting at %s: paused token %s found", bpmnElementId, token)
		}
	}
}

// IsWaitingAt asserts that a token is paused at the given element and selects it for a subsequent [ProcessInstanceAssert.Resume].
func (a *ProcessInstanceAssert) IsWaitingAt(bpmnElementId string) {
	a.selectToken(bpmnElementId, TokenPaused, "waiting")
}

func (a *ProcessInstanceAssert) ProcessInstance() ProcessInstance {
	processInstance, err := a.e.GetProcessInstance(context.Background(), GetProcessInstanceCmd{Id: a.processInstanceId})
	if err != nil {
		a.Fatalf("failed to get process instance: %v", err)
	}
	return processInstance
}

// Resume resumes the token, selected by [ProcessInstanceAssert.IsWaitingAt].
func (a *ProcessInstanceAssert) Resume(variables ...map[string]string) {
	if a.tokenId == "" {
		a.Fatalf("call IsWaitingAt first")
	}

	cmd := ResumeTokenCmd{ProcessInstanceId: a.processInstanceId, TokenId: a.tokenId, Variables: make(map[string]string)}
	for _, v := range variables {
		for name, value := range v {
			cmd.Variables[name] = value
		}
	}

	if _, err := a.e.ResumeToken(context.Background(), cmd); err != nil {
		a.Fatalf("failed to resume token %s: %v", a.tokenId, err)
	}

	a.tokenId = ""
	a.bpmnElementId = ""
}

// Run runs the process instance, until no active token remains.
func (a *ProcessInstanceAssert) Run() {
	if _, err := a.e.RunProcessInstance(context.Background(), RunProcessInstanceCmd{Id: a.processInstanceId}); err != nil {
		a.Fatalf("failed to run process instance: %v", err)
	}
}

// Step processes a single active token.
func (a *ProcessInstanceAssert) Step() {
	if _, err := a.e.StepProcessInstance(context.Background(), StepProcessInstanceCmd{Id: a.processInstanceId}); err != nil {
		a.Fatalf("failed to step process instance: %v", err)
	}
}

// Token returns the token, selected by [ProcessInstanceAssert.IsWaitingAt] or [ProcessInstanceAssert.IsCompletedAt].
func (a *ProcessInstanceAssert) Token() Token {
	if a.tokenId == "" {
		a.Fatalf("call IsWaitingAt or IsCompletedAt first")
	}

	token, ok := a.ProcessInstance().Token(a.tokenId)
	if !ok {
		a.Fatalf("expected process instance to have token %s at %s", a.tokenId, a.bpmnElementId)
	}
	return token
}

func (a *ProcessInstanceAssert) passed() []string {
	q := a.e.CreateQuery()
	q.SetOptions(QueryOptions{Limit: 10000})

	events, err := q.QueryEvents(context.Background(), EventCriteria{
		ProcessInstanceId: a.processInstanceId,
		Types:             []EventType{EventFlowObjectStateChanged},
	})
	if err != nil {
		a.Fatalf("failed to query events: %v", err)
	}

	var passed []string
	for _, event := range events {
		if event.FlowObjectState == FlowObjectCompleted {
			passed = append(passed, event.BpmnElementId)
		}
	}
	return passed
}

func (a *ProcessInstanceAssert) selectToken(bpmnElementId string, state TokenState, description string) {
	processInstance := a.ProcessInstance()
	if _, ok := processInstance.FlowObjectStates[bpmnElementId]; !ok {
		a.Fatalf("expected process instance to be %s at %s: process has no such BPMN element", description, bpmnElementId)
	}

	for _, token := range processInstance.TokensByState(state) {
		if token.BpmnElementId == bpmnElementId {
			a.tokenId = token.Id
			a.bpmnElementId = bpmnElementId
			return
		}
	}

	a.Fatalf("expected process instance to be %s at %s: no %s token found", description, bpmnElementId, state)
}
