package engine

// CreateProcessCmd provides data for the creation of a process.
type CreateProcessCmd struct {
	// ID of the process element within the BPMN XML.
	BpmnProcessId string `json:"bpmnProcessId" validate:"required"`
	// Model of the BPMN process as XML.
	BpmnXml string `json:"bpmnXml" validate:"required"`
}

// CreateProcessInstanceCmd provides data for the creation of a process instance.
type CreateProcessInstanceCmd struct {
	// BPMN ID of an existing process.
	BpmnProcessId string `json:"bpmnProcessId" validate:"required"`
	// Optional BPMN ID of the start event to start at.
	// If empty, the start event with the lexicographically smallest ID is used.
	BpmnStartElementId string `json:"bpmnStartElementId,omitempty"`
	// Optional label, prefixed to the IDs of all tokens of the process instance.
	DebugLabel string `json:"debugLabel,omitempty" validate:"omitempty,max=32,excludes=/"`
	// Variables of the first token.
	Variables map[string]string `json:"variables,omitempty" validate:"max=100,dive,keys,required,max=128,endkeys,max=4096"`
}

// GetBpmnXmlCmd is a command for fetching the BPMN XML of an existing process.
type GetBpmnXmlCmd struct {
	// Process ID.
	ProcessId int32 `json:"-" validate:"required"`
}

// GetProcessInstanceCmd is a command for fetching a snapshot of a process instance.
type GetProcessInstanceCmd struct {
	// Process instance ID.
	Id int32 `json:"-" validate:"required"`
}

// ResumeTokenCmd provides data for resuming a paused token.
type ResumeTokenCmd struct {
	// Process instance ID.
	ProcessInstanceId int32 `json:"-" validate:"required"`
	// ID of a paused token.
	TokenId string `json:"tokenId" validate:"required"`

	// Variables to merge into the variables of the token.
	Variables map[string]string `json:"variables,omitempty" validate:"max=100,dive,keys,required,max=128,endkeys,max=4096"`
}

// RunProcessInstanceCmd is a command for processing active tokens, until no active token remains.
type RunProcessInstanceCmd struct {
	// Process instance ID.
	Id int32 `json:"-" validate:"required"`
}

// StepProcessInstanceCmd is a command for processing a single active token.
type StepProcessInstanceCmd struct {
	// Process instance ID.
	Id int32 `json:"-" validate:"required"`
}

// TerminateProcessInstanceCmd is a command for terminating all live tokens of a process instance.
type TerminateProcessInstanceCmd struct {
	// Process instance ID.
	Id int32 `json:"-" validate:"required"`

	// Optional reason, recorded in the execution history.
	Reason string `json:"reason,omitempty" validate:"max=256"`
}

// TerminateTokenCmd is a command for terminating a live token and its live descendants.
type TerminateTokenCmd struct {
	// Process instance ID.
	ProcessInstanceId int32 `json:"-" validate:"required"`
	// ID of an active or paused token.
	TokenId string `json:"tokenId" validate:"required"`

	// Optional reason, recorded in the execution history.
	Reason string `json:"reason,omitempty" validate:"max=256"`
}
