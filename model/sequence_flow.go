package model

// SequenceFlowType distinguishes unconditional from guarded sequence flows.
type SequenceFlowType int

const (
	SequenceFlowNormal SequenceFlowType = iota
	SequenceFlowConditional
)

func (v SequenceFlowType) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v SequenceFlowType) String() string {
	switch v {
	case SequenceFlowNormal:
		return "NORMAL"
	case SequenceFlowConditional:
		return "CONDITIONAL"
	default:
		return ""
	}
}

// A SequenceFlow is a directed edge between two flow objects.
//
// Source and target are references by ID. They are resolved at routing time, not when the flow is added.
type SequenceFlow struct {
	Id          string
	Name        string
	SourceRef   string
	TargetRef   string
	IsImmediate bool

	Type SequenceFlowType
	// Condition is the optional guard of a conditional sequence flow.
	Condition *Script
}

func (f *SequenceFlow) IsConditional() bool {
	return f.Type == SequenceFlowConditional
}

// NewConditionalSequenceFlow creates a guarded sequence flow. The condition may be nil.
func NewConditionalSequenceFlow(id string, sourceRef string, targetRef string, condition *Script) *SequenceFlow {
	return &SequenceFlow{
		Id:        id,
		SourceRef: sourceRef,
		TargetRef: targetRef,
		Type:      SequenceFlowConditional,
		Condition: condition,
	}
}

// NewSequenceFlow creates a normal sequence flow.
func NewSequenceFlow(id string, sourceRef string, targetRef string) *SequenceFlow {
	return &SequenceFlow{
		Id:        id,
		SourceRef: sourceRef,
		TargetRef: targetRef,
	}
}
