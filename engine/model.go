package engine

import (
	"fmt"
	"time"
)

// InstanceState describes possible process instance states.
type InstanceState int

const (
	InstanceCompleted  InstanceState = iota + 1 // No live token remains, at least one token completed at an end event.
	InstanceCreated                             // Initialized, no token processed yet.
	InstanceFailed                              // No live token remains, no token completed.
	InstanceStarted                             // At least one token is active.
	InstanceSuspended                           // Only paused tokens remain.
	InstanceTerminated                          // Terminated explicitly.
)

func MapInstanceState(s string) InstanceState {
	switch s {
	case "COMPLETED":
		return InstanceCompleted
	case "CREATED":
		return InstanceCreated
	case "FAILED":
		return InstanceFailed
	case "STARTED":
		return InstanceStarted
	case "SUSPENDED":
		return InstanceSuspended
	case "TERMINATED":
		return InstanceTerminated
	default:
		return 0
	}
}

func (v InstanceState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v InstanceState) String() string {
	switch v {
	case InstanceCompleted:
		return "COMPLETED"
	case InstanceCreated:
		return "CREATED"
	case InstanceFailed:
		return "FAILED"
	case InstanceStarted:
		return "STARTED"
	case InstanceSuspended:
		return "SUSPENDED"
	case InstanceTerminated:
		return "TERMINATED"
	default:
		return ""
	}
}

func (v *InstanceState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "instance state", func(s string) bool {
		*v = MapInstanceState(s)
		return *v != 0
	})
}

// TokenState describes the lifecycle of a token.
//
// Active is the only state, in which a token is processed. Paused tokens wait for an external resume.
// Completed, consumed and terminated are terminal states.
type TokenState int

const (
	TokenActive TokenState = iota + 1
	TokenCompleted
	TokenConsumed
	TokenPaused
	TokenTerminated
)

func MapTokenState(s string) TokenState {
	switch s {
	case "ACTIVE":
		return TokenActive
	case "COMPLETED":
		return TokenCompleted
	case "CONSUMED":
		return TokenConsumed
	case "PAUSED":
		return TokenPaused
	case "TERMINATED":
		return TokenTerminated
	default:
		return 0
	}
}

// IsTerminal determines if a token in this state is ended.
func (v TokenState) IsTerminal() bool {
	return v == TokenCompleted || v == TokenConsumed || v == TokenTerminated
}

func (v TokenState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v TokenState) String() string {
	switch v {
	case TokenActive:
		return "ACTIVE"
	case TokenCompleted:
		return "COMPLETED"
	case TokenConsumed:
		return "CONSUMED"
	case TokenPaused:
		return "PAUSED"
	case TokenTerminated:
		return "TERMINATED"
	default:
		return ""
	}
}

func (v *TokenState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "token state", func(s string) bool {
		*v = MapTokenState(s)
		return *v != 0
	})
}

// FlowObjectState describes the runtime state of a flow object within a process instance, independent of a single token.
type FlowObjectState int

const (
	FlowObjectActive FlowObjectState = iota + 1
	FlowObjectCanceled
	FlowObjectCompleted
	FlowObjectCreated
	FlowObjectFailed
	FlowObjectReady
	FlowObjectSuspended
)

func MapFlowObjectState(s string) FlowObjectState {
	switch s {
	case "ACTIVE":
		return FlowObjectActive
	case "CANCELED":
		return FlowObjectCanceled
	case "COMPLETED":
		return FlowObjectCompleted
	case "CREATED":
		return FlowObjectCreated
	case "FAILED":
		return FlowObjectFailed
	case "READY":
		return FlowObjectReady
	case "SUSPENDED":
		return FlowObjectSuspended
	default:
		return 0
	}
}

func (v FlowObjectState) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v FlowObjectState) String() string {
	switch v {
	case FlowObjectActive:
		return "ACTIVE"
	case FlowObjectCanceled:
		return "CANCELED"
	case FlowObjectCompleted:
		return "COMPLETED"
	case FlowObjectCreated:
		return "CREATED"
	case FlowObjectFailed:
		return "FAILED"
	case FlowObjectReady:
		return "READY"
	case FlowObjectSuspended:
		return "SUSPENDED"
	default:
		return ""
	}
}

func (v *FlowObjectState) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "flow object state", func(s string) bool {
		*v = MapFlowObjectState(s)
		return *v != 0
	})
}

// FailureType describes why a token could not advance.
type FailureType int

const (
	FailureDanglingReference FailureType = iota + 1 // A sequence flow or default flow references a non-existing element.
	FailureEvaluation                               // A condition could not be evaluated.
	FailureEvent                                    // The event handler failed.
	FailureNoOutgoingFlow                           // A flow object, other than an end event, has no outgoing sequence flow.
	FailureNoQualifyingFlow                         // No condition is true and no default flow is declared.
	FailureTask                                     // The task handler failed.
)

func MapFailureType(s string) FailureType {
	switch s {
	case "DANGLING_REFERENCE":
		return FailureDanglingReference
	case "EVALUATION":
		return FailureEvaluation
	case "EVENT":
		return FailureEvent
	case "NO_OUTGOING_FLOW":
		return FailureNoOutgoingFlow
	case "NO_QUALIFYING_FLOW":
		return FailureNoQualifyingFlow
	case "TASK":
		return FailureTask
	default:
		return 0
	}
}

func (v FailureType) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v FailureType) String() string {
	switch v {
	case FailureDanglingReference:
		return "DANGLING_REFERENCE"
	case FailureEvaluation:
		return "EVALUATION"
	case FailureEvent:
		return "EVENT"
	case FailureNoOutgoingFlow:
		return "NO_OUTGOING_FLOW"
	case FailureNoQualifyingFlow:
		return "NO_QUALIFYING_FLOW"
	case FailureTask:
		return "TASK"
	default:
		return ""
	}
}

func (v *FailureType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "failure type", func(s string) bool {
		*v = MapFailureType(s)
		return *v != 0
	})
}

// EventType describes the entries of the execution history.
type EventType int

const (
	EventFlowObjectStateChanged EventType = iota + 1
	EventTokenCreated
	EventTokenFailed
	EventTokenMoved
	EventTokenStateChanged
)

func MapEventType(s string) EventType {
	switch s {
	case "FLOW_OBJECT_STATE_CHANGED":
		return EventFlowObjectStateChanged
	case "TOKEN_CREATED":
		return EventTokenCreated
	case "TOKEN_FAILED":
		return EventTokenFailed
	case "TOKEN_MOVED":
		return EventTokenMoved
	case "TOKEN_STATE_CHANGED":
		return EventTokenStateChanged
	default:
		return 0
	}
}

func (v EventType) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v EventType) String() string {
	switch v {
	case EventFlowObjectStateChanged:
		return "FLOW_OBJECT_STATE_CHANGED"
	case EventTokenCreated:
		return "TOKEN_CREATED"
	case EventTokenFailed:
		return "TOKEN_FAILED"
	case EventTokenMoved:
		return "TOKEN_MOVED"
	case EventTokenStateChanged:
		return "TOKEN_STATE_CHANGED"
	default:
		return ""
	}
}

func (v *EventType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "event type", func(s string) bool {
		*v = MapEventType(s)
		return *v != 0
	})
}

// Event is an entry of the execution history of a process instance.
type Event struct {
	ProcessInstanceId int32           `json:"processInstanceId"`         // ID of the related process instance.
	Sequence          int             `json:"sequence"`                  // Position within the history of the process instance, starting at 1.
	Type              EventType       `json:"type"`                      // Event type.
	Time              time.Time       `json:"time"`                      // Occurrence time.
	TokenId           string          `json:"tokenId,omitempty"`         // ID of the related token, if any.
	BpmnElementId     string          `json:"bpmnElementId,omitempty"`   // ID of the related flow object.
	SequenceFlowId    string          `json:"sequenceFlowId,omitempty"`  // ID of the sequence flow, a moved token has taken.
	TokenState        TokenState      `json:"tokenState,omitempty"`      // New token state.
	FlowObjectState   FlowObjectState `json:"flowObjectState,omitempty"` // New flow object state.
	Detail            string          `json:"detail,omitempty"`          // Failure detail.
}

func (v Event) String() string {
	return fmt.Sprintf("%d/%d", v.ProcessInstanceId, v.Sequence)
}

// EventCriteria specifies the results, returned by an event query.
type EventCriteria struct {
	ProcessInstanceId int32       `json:"processInstanceId,omitempty"` // Process instance filter.
	TokenId           string      `json:"tokenId,omitempty"`           // Token filter.
	Types             []EventType `json:"types,omitempty"`             // Type filter - an event must have one of the types, to be included.
}

// Process is a BPMN process, which has been created from BPMN XML.
type Process struct {
	Id int32 `json:"id"` // Process ID.

	BpmnProcessId string    `json:"bpmnProcessId"` // ID of the process element within the BPMN XML.
	CreatedAt     time.Time `json:"createdAt"`     // Creation time.
	IsExecutable  bool      `json:"isExecutable"`  // Value of the isExecutable attribute.
	Name          string    `json:"name,omitempty"`
}

func (v Process) String() string {
	return fmt.Sprintf("%d/%s", v.Id, v.BpmnProcessId)
}

// ProcessCriteria specifies the results, returned by a process query.
type ProcessCriteria struct {
	Id int32 `json:"id,omitempty"` // Process filter.

	BpmnProcessId string `json:"bpmnProcessId,omitempty"` // BPMN process ID filter.
}

// ProcessInstance is a snapshot of an executed process.
type ProcessInstance struct {
	Id int32 `json:"id"` // Process instance ID.

	ProcessId int32 `json:"processId"` // ID of the related process.

	BpmnProcessId    string                     `json:"bpmnProcessId"`          // ID of the process element within the BPMN XML.
	CreatedAt        time.Time                  `json:"createdAt"`              // Creation time.
	EndedAt          *time.Time                 `json:"endedAt,omitempty"`      // End time.
	Failures         []TokenFailure             `json:"failures,omitempty"`     // Token failures, in occurrence order.
	FlowObjectStates map[string]FlowObjectState `json:"flowObjectStates"`       // Mapping between flow object IDs and their current state.
	PendingJoins     map[string][]string        `json:"pendingJoins,omitempty"` // Mapping between parallel joins and the incoming sequence flows, tokens have already arrived on.
	State            InstanceState              `json:"state"`                  // Current state.
	Tokens           []Token                    `json:"tokens"`                 // All tokens, including ended ones, in creation order.
}

// ActiveTokens returns all tokens in state [TokenActive].
func (v ProcessInstance) ActiveTokens() []Token {
	return v.TokensByState(TokenActive)
}

func (v ProcessInstance) IsEnded() bool {
	return v.EndedAt != nil
}

// Token returns the token with the given ID and true, or false, if no such token exists.
func (v ProcessInstance) Token(id string) (Token, bool) {
	for _, token := range v.Tokens {
		if token.Id == id {
			return token, true
		}
	}
	return Token{}, false
}

func (v ProcessInstance) TokensByState(state TokenState) []Token {
	var tokens []Token
	for _, token := range v.Tokens {
		if token.State == state {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func (v ProcessInstance) String() string {
	return fmt.Sprintf("%d", v.Id)
}

// ProcessInstanceCriteria specifies the results, returned by a process instance query.
type ProcessInstanceCriteria struct {
	Id int32 `json:"id,omitempty"` // Process instance filter.

	ProcessId int32           `json:"processId,omitempty"` // Process filter.
	States    []InstanceState `json:"states,omitempty"`    // State filter - a process instance must have one of the states, to be included.
}

// Token is a snapshot of a thread of control, moving through the process graph.
type Token struct {
	Id string `json:"id"` // Token ID, see [NewTokenId].

	ProcessInstanceId int32 `json:"processInstanceId"` // ID of the related process instance.

	BpmnElementId  string            `json:"bpmnElementId"`            // ID of the flow object, the token is located at.
	ChildIds       []string          `json:"childIds,omitempty"`       // IDs of tokens, spawned by this token, in creation order.
	CreatedAt      time.Time         `json:"createdAt"`                // Creation time.
	DetachedFromId string            `json:"detachedFromId,omitempty"` // ID of the former parent, which failed while this token was live.
	EndedAt        *time.Time        `json:"endedAt,omitempty"`        // End time.
	ParentId       string            `json:"parentId,omitempty"`       // ID of the parent token.
	PathId         PathIdentifier    `json:"pathId"`                   // Path, the token has been created for.
	State          TokenState        `json:"state"`                    // Current state.
	Variables      map[string]string `json:"variables,omitempty"`      // Variable bindings.
}

func (v Token) HasParent() bool {
	return v.ParentId != ""
}

func (v Token) IsEnded() bool {
	return v.State.IsTerminal()
}

func (v Token) String() string {
	return v.Id
}

// TokenCriteria specifies the results, returned by a token query.
type TokenCriteria struct {
	ProcessInstanceId int32 `json:"processInstanceId,omitempty"` // Process instance filter.

	BpmnElementId string       `json:"bpmnElementId,omitempty"` // Flow object filter.
	States        []TokenState `json:"states,omitempty"`        // State filter - a token must have one of the states, to be included.
}

// TokenFailure records why a token could not advance.
type TokenFailure struct {
	TokenId       string      `json:"tokenId"`       // ID of the failed token.
	BpmnElementId string      `json:"bpmnElementId"` // ID of the flow object, the token failed at.
	Type          FailureType `json:"type"`          // Failure type.
	Detail        string      `json:"detail"`        // Human-readable, detailed information about the failure.
	Time          time.Time   `json:"time"`          // Occurrence time.
	Terminated    bool        `json:"terminated"`    // Determines if the token has been terminated due to the failure.
}

func (v TokenFailure) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", v.Type, v.BpmnElementId, v.TokenId, v.Detail)
}

func marshalEnum(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func unmarshalEnum(data []byte, name string, set func(string) bool) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 && set(s[1:len(s)-1]) {
		return nil
	}
	return fmt.Errorf("invalid %s data %s", name, s)
}
