package model

import (
	"slices"
	"sort"
)

// ProcessType is the BPMN process type. The zero value is [ProcessPrivate].
type ProcessType int

const (
	ProcessPrivate ProcessType = iota
	ProcessPublic
)

// MapProcessType maps the value of a BPMN processType attribute. "None" is treated as private.
func MapProcessType(s string) (ProcessType, bool) {
	switch s {
	case "", "None", "Private":
		return ProcessPrivate, true
	case "Public":
		return ProcessPublic, true
	default:
		return 0, false
	}
}

func (v ProcessType) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v ProcessType) String() string {
	switch v {
	case ProcessPrivate:
		return "PRIVATE"
	case ProcessPublic:
		return "PUBLIC"
	default:
		return ""
	}
}

// MetadataList identifies one of the free-form string lists of a process.
type MetadataList int

const (
	MetadataArtifacts MetadataList = iota + 1
	MetadataCorrelationSubscriptions
	MetadataLanes
	MetadataProperties
	MetadataResourceRoles
	MetadataRoles
	MetadataSupports
)

func (v MetadataList) String() string {
	switch v {
	case MetadataArtifacts:
		return "ARTIFACTS"
	case MetadataCorrelationSubscriptions:
		return "CORRELATION_SUBSCRIPTIONS"
	case MetadataLanes:
		return "LANES"
	case MetadataProperties:
		return "PROPERTIES"
	case MetadataResourceRoles:
		return "RESOURCE_ROLES"
	case MetadataRoles:
		return "ROLES"
	case MetadataSupports:
		return "SUPPORTS"
	default:
		return ""
	}
}

func NewProcess(id string, name string) *Process {
	return &Process{
		Id:   id,
		Name: name,

		flowObjects: make(map[string]*FlowObject),
		metadata:    make(map[MetadataList][]string),
	}
}

// A Process is a named container of flow objects and sequence flows, plus descriptive metadata.
//
// A process is built once, by the parser or programmatically, and must not be mutated while it is executed.
type Process struct {
	Id   string
	Name string

	Type             ProcessType
	IsExecutable     bool
	IsClosed         bool
	CollaborationRef string // ID of the collaboration, the process participates in. Empty, if undefined.
	Auditing         bool   // Determines if an auditing element is present.
	Monitoring       bool   // Determines if a monitoring element is present.

	flowObjects   map[string]*FlowObject
	sequenceFlows []*SequenceFlow
	metadata      map[MetadataList][]string
}

// AddFlowObject adds a flow object. If a flow object with the same ID exists, it is left untouched and
// an error of type [ErrorFlowObjectAlreadyExists] is returned.
func (p *Process) AddFlowObject(flowObject *FlowObject) error {
	if _, ok := p.flowObjects[flowObject.Id]; ok {
		return &Error{Type: ErrorFlowObjectAlreadyExists, Id: flowObject.Id}
	}
	p.flowObjects[flowObject.Id] = flowObject
	return nil
}

// FlowObject returns the flow object with the given ID, or nil, if no such flow object exists.
func (p *Process) FlowObject(id string) *FlowObject {
	return p.flowObjects[id]
}

// FlowObjects returns all flow objects, sorted by ID.
func (p *Process) FlowObjects() []*FlowObject {
	flowObjects := make([]*FlowObject, 0, len(p.flowObjects))
	for _, flowObject := range p.flowObjects {
		flowObjects = append(flowObjects, flowObject)
	}
	sort.Slice(flowObjects, func(i, j int) bool {
		return flowObjects[i].Id < flowObjects[j].Id
	})
	return flowObjects
}

// FlowObjectsByType returns all flow objects of the given category, sorted by ID.
func (p *Process) FlowObjectsByType(flowObjectType FlowObjectType) []*FlowObject {
	var flowObjects []*FlowObject
	for _, flowObject := range p.FlowObjects() {
		if flowObject.Type() == flowObjectType {
			flowObjects = append(flowObjects, flowObject)
		}
	}
	return flowObjects
}

func (p *Process) RemoveFlowObject(id string) error {
	if _, ok := p.flowObjects[id]; !ok {
		return &Error{Type: ErrorFlowObjectNotFound, Id: id}
	}
	delete(p.flowObjects, id)
	return nil
}

// StartEvents returns all start events, sorted by ID.
func (p *Process) StartEvents() []*FlowObject {
	var startEvents []*FlowObject
	for _, flowObject := range p.FlowObjects() {
		if flowObject.IsEvent(EventStart) {
			startEvents = append(startEvents, flowObject)
		}
	}
	return startEvents
}

// AddSequenceFlow appends a sequence flow. Source and target are not checked.
func (p *Process) AddSequenceFlow(sequenceFlow *SequenceFlow) error {
	if p.SequenceFlow(sequenceFlow.Id) != nil {
		return &Error{Type: ErrorSequenceFlowAlreadyExists, Id: sequenceFlow.Id}
	}
	p.sequenceFlows = append(p.sequenceFlows, sequenceFlow)
	return nil
}

// Incoming returns the sequence flows targeting the given flow object, in stored order.
func (p *Process) Incoming(targetRef string) []*SequenceFlow {
	var sequenceFlows []*SequenceFlow
	for _, sequenceFlow := range p.sequenceFlows {
		if sequenceFlow.TargetRef == targetRef {
			sequenceFlows = append(sequenceFlows, sequenceFlow)
		}
	}
	return sequenceFlows
}

// Outgoing returns the sequence flows leaving the given flow object, in stored order.
func (p *Process) Outgoing(sourceRef string) []*SequenceFlow {
	var sequenceFlows []*SequenceFlow
	for _, sequenceFlow := range p.sequenceFlows {
		if sequenceFlow.SourceRef == sourceRef {
			sequenceFlows = append(sequenceFlows, sequenceFlow)
		}
	}
	return sequenceFlows
}

func (p *Process) RemoveSequenceFlow(id string) error {
	for i, sequenceFlow := range p.sequenceFlows {
		if sequenceFlow.Id == id {
			p.sequenceFlows = slices.Delete(p.sequenceFlows, i, i+1)
			return nil
		}
	}
	return &Error{Type: ErrorSequenceFlowNotFound, Id: id}
}

// SequenceFlow returns the sequence flow with the given ID, or nil, if no such sequence flow exists.
func (p *Process) SequenceFlow(id string) *SequenceFlow {
	for _, sequenceFlow := range p.sequenceFlows {
		if sequenceFlow.Id == id {
			return sequenceFlow
		}
	}
	return nil
}

// SequenceFlows returns all sequence flows in stored order.
func (p *Process) SequenceFlows() []*SequenceFlow {
	return slices.Clone(p.sequenceFlows)
}

func (p *Process) AddMetadata(list MetadataList, value string) {
	p.metadata[list] = append(p.metadata[list], value)
}

func (p *Process) Metadata(list MetadataList) []string {
	return slices.Clone(p.metadata[list])
}

// RemoveMetadata removes the first occurrence of a value. If the value is absent, an error of type
// [ErrorValueNotFound] is returned.
func (p *Process) RemoveMetadata(list MetadataList, value string) error {
	values := p.metadata[list]

	i := slices.Index(values, value)
	if i == -1 {
		return &Error{Type: ErrorValueNotFound, Id: value}
	}

	p.metadata[list] = slices.Delete(values, i, i+1)
	return nil
}
