package internal

import (
	"github.com/flastex/go-bpmn/model"
)

func newGraph(process *model.Process) graph {
	sequenceFlows := process.SequenceFlows()

	g := graph{
		process:       process,
		incoming:      make(map[string][]*model.SequenceFlow),
		outgoing:      make(map[string][]*model.SequenceFlow),
		sequenceFlows: make(map[string]*model.SequenceFlow, len(sequenceFlows)),
	}

	for _, sequenceFlow := range sequenceFlows {
		g.incoming[sequenceFlow.TargetRef] = append(g.incoming[sequenceFlow.TargetRef], sequenceFlow)
		g.outgoing[sequenceFlow.SourceRef] = append(g.outgoing[sequenceFlow.SourceRef], sequenceFlow)
		g.sequenceFlows[sequenceFlow.Id] = sequenceFlow
	}

	return g
}

// graph indexes the sequence flows of a process, which is not mutated after creation.
type graph struct {
	process       *model.Process
	incoming      map[string][]*model.SequenceFlow // mapping between target IDs and sequence flows, in stored order
	outgoing      map[string][]*model.SequenceFlow // mapping between source IDs and sequence flows, in stored order
	sequenceFlows map[string]*model.SequenceFlow
}

func (g graph) flowObject(id string) *model.FlowObject {
	return g.process.FlowObject(id)
}

// isJoin determines if the flow object synchronizes incoming tokens.
func (g graph) isJoin(flowObject *model.FlowObject) bool {
	return flowObject.IsGateway(model.GatewayParallel) && len(g.incoming[flowObject.Id]) > 1
}

// startEvent returns the start event to start at. If bpmnStartElementId is empty, the start event with the
// lexicographically smallest ID is returned.
func (g graph) startEvent(bpmnStartElementId string) (*model.FlowObject, bool) {
	if bpmnStartElementId != "" {
		flowObject := g.flowObject(bpmnStartElementId)
		return flowObject, flowObject != nil && flowObject.IsEvent(model.EventStart)
	}

	startEvents := g.process.StartEvents()
	if len(startEvents) == 0 {
		return nil, false
	}
	return startEvents[0], true
}
