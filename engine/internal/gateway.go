package internal

import (
	"fmt"
	"maps"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/model"
	"go.uber.org/zap"
)

func (ec *executionContext) processGateway(token *TokenEntity, flowObject *model.FlowObject, gateway model.Gateway) {
	if ec.graph.isJoin(flowObject) && !ec.join(token, flowObject) {
		return
	}

	outgoing := ec.graph.outgoing[flowObject.Id]
	if len(outgoing) == 0 {
		ec.fail(token, flowObject.Id, engine.FailureNoOutgoingFlow, fmt.Sprintf("%s has no outgoing sequence flow", flowObject), true)
		return
	}

	sequenceFlows, ok := ec.route(token, flowObject, gateway, outgoing)
	if !ok {
		return
	}

	ec.move(token, flowObject, sequenceFlows)
}

// join synchronizes the tokens, arriving at a parallel gateway with multiple incoming sequence flows.
//
// Until a token has arrived on each incoming sequence flow, arriving tokens are consumed. The token, which completes
// the join, receives the merged variables of the consumed tokens - earlier arrivals first, its own variables last - and
// continues. If the join is completed, true is returned.
func (ec *executionContext) join(token *TokenEntity, flowObject *model.FlowObject) bool {
	processInstance := ec.processInstance

	incoming := ec.graph.incoming[flowObject.Id]

	isIncoming := false
	for _, sequenceFlow := range incoming {
		if sequenceFlow.Id == token.PrevFlowId {
			isIncoming = true
			break
		}
	}
	if !isIncoming {
		return true // e.g. a token, created at the gateway
	}

	arrivals := processInstance.joins[flowObject.Id]

	// first arrival per other incoming sequence flow
	selected := make(map[string]int, len(incoming))
	for i, arrival := range arrivals {
		if arrival.sequenceFlowId == token.PrevFlowId {
			continue
		}
		if _, ok := selected[arrival.sequenceFlowId]; !ok {
			selected[arrival.sequenceFlowId] = i
		}
	}

	if len(selected) != len(incoming)-1 {
		processInstance.joins[flowObject.Id] = append(arrivals, joinArrival{
			sequenceFlowId: token.PrevFlowId,
			tokenId:        token.Id,
		})

		ec.setFlowObjectState(flowObject.Id, engine.FlowObjectReady)
		ec.setTokenState(token, engine.TokenConsumed, "")

		ec.logger.Debug("token consumed by join",
			zap.String("token", token.Id),
			zap.String("element", flowObject.Id),
			zap.Int("arrived", len(selected)+1),
			zap.Int("expected", len(incoming)),
		)
		return false
	}

	isSelected := make(map[int]bool, len(selected))
	for _, i := range selected {
		isSelected[i] = true
	}

	variables := make(map[string]string)

	var remaining []joinArrival
	for i, arrival := range arrivals {
		if isSelected[i] {
			maps.Copy(variables, processInstance.tokens[arrival.tokenId].Variables)
		} else {
			remaining = append(remaining, arrival)
		}
	}

	maps.Copy(variables, token.Variables)
	token.Variables = variables

	processInstance.joins[flowObject.Id] = remaining

	return true
}

// route determines the sequence flows, a token takes when leaving a gateway.
// If no sequence flow can be taken, the token is failed and false is returned.
func (ec *executionContext) route(token *TokenEntity, flowObject *model.FlowObject, gateway model.Gateway, outgoing []*model.SequenceFlow) ([]*model.SequenceFlow, bool) {
	switch gateway.Kind {
	case model.GatewayParallel:
		return outgoing, true
	case model.GatewayEventBased:
		if gateway.EventGatewayType == model.EventGatewayParallel {
			return outgoing, true
		}
		if ec.options.EventHandler == nil {
			return outgoing[:1], true
		}
		return ec.firstFired(token, flowObject, outgoing)
	}

	defaultFlow, candidates, ok := ec.defaultFlow(token, flowObject, gateway, outgoing)
	if !ok {
		return nil, false
	}

	switch gateway.Kind {
	case model.GatewayExclusive:
		for _, sequenceFlow := range candidates {
			qualifies, abort := ec.qualifies(token, sequenceFlow)
			if abort {
				return nil, false
			}
			if qualifies {
				return []*model.SequenceFlow{sequenceFlow}, true
			}
		}
	case model.GatewayInclusive:
		sequenceFlows, ok := ec.qualifying(token, candidates)
		if !ok {
			return nil, false
		}
		if len(sequenceFlows) != 0 {
			return sequenceFlows, true
		}
	case model.GatewayComplex:
		activated, abort := ec.activated(token, flowObject, gateway)
		if abort {
			return nil, false
		}
		if activated {
			sequenceFlows, ok := ec.qualifying(token, candidates)
			if !ok {
				return nil, false
			}
			if len(sequenceFlows) != 0 {
				return sequenceFlows, true
			}
		}
	}

	if defaultFlow != nil {
		return []*model.SequenceFlow{defaultFlow}, true
	}

	detail := fmt.Sprintf("%s has no qualifying sequence flow and no default sequence flow", flowObject)
	ec.fail(token, flowObject.Id, engine.FailureNoQualifyingFlow, detail, true)
	return nil, false
}

// activated determines if all activation conditions of a complex gateway hold.
func (ec *executionContext) activated(token *TokenEntity, flowObject *model.FlowObject, gateway model.Gateway) (bool, bool) {
	for _, activationCondition := range gateway.ActivationConditions {
		result, abort := ec.evaluate(token, flowObject.Id, activationCondition)
		if abort {
			return false, true
		}
		if !result {
			return false, false
		}
	}
	return true, false
}

// defaultFlow returns the default sequence flow of a gateway, if declared, and the other outgoing sequence flows.
func (ec *executionContext) defaultFlow(token *TokenEntity, flowObject *model.FlowObject, gateway model.Gateway, outgoing []*model.SequenceFlow) (*model.SequenceFlow, []*model.SequenceFlow, bool) {
	if gateway.Default == "" {
		return nil, outgoing, true
	}

	defaultFlow := ec.graph.sequenceFlows[gateway.Default]
	if defaultFlow == nil || defaultFlow.SourceRef != flowObject.Id {
		detail := fmt.Sprintf("%s references non-existing default sequence flow %s", flowObject, gateway.Default)
		ec.fail(token, flowObject.Id, engine.FailureDanglingReference, detail, true)
		return nil, nil, false
	}

	candidates := make([]*model.SequenceFlow, 0, len(outgoing)-1)
	for _, sequenceFlow := range outgoing {
		if sequenceFlow.Id != defaultFlow.Id {
			candidates = append(candidates, sequenceFlow)
		}
	}

	return defaultFlow, candidates, true
}

// qualifying returns all sequence flows, a token can take.
func (ec *executionContext) qualifying(token *TokenEntity, candidates []*model.SequenceFlow) ([]*model.SequenceFlow, bool) {
	var sequenceFlows []*model.SequenceFlow
	for _, sequenceFlow := range candidates {
		qualifies, abort := ec.qualifies(token, sequenceFlow)
		if abort {
			return nil, false
		}
		if qualifies {
			sequenceFlows = append(sequenceFlows, sequenceFlow)
		}
	}
	return sequenceFlows, true
}

// firstFired returns the first sequence flow of an exclusive event-based gateway, whose target event has fired.
// Targets, which are no intermediate events, are taken immediately. If no event has fired, the token is paused at the
// gateway and false is returned.
func (ec *executionContext) firstFired(token *TokenEntity, flowObject *model.FlowObject, outgoing []*model.SequenceFlow) ([]*model.SequenceFlow, bool) {
	for _, sequenceFlow := range outgoing {
		target := ec.graph.flowObject(sequenceFlow.TargetRef)
		if target == nil || !target.IsEvent(model.EventIntermediate) {
			return []*model.SequenceFlow{sequenceFlow}, true
		}

		fired, err := ec.fire(token, target)
		if err != nil {
			ec.fail(token, flowObject.Id, engine.FailureEvent, fmt.Sprintf("failed to handle event %s: %v", target.Id, err), true)
			return nil, false
		}
		if fired {
			token.firedEventId = target.Id
			return []*model.SequenceFlow{sequenceFlow}, true
		}
	}

	ec.pause(token, flowObject)
	return nil, false
}
