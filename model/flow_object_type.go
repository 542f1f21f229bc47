package model

import "fmt"

// FlowObjectType describes the three flow object categories: tasks, events and gateways.
type FlowObjectType int

const (
	FlowObjectEvent FlowObjectType = iota + 1
	FlowObjectGateway
	FlowObjectTask
)

func MapFlowObjectType(s string) FlowObjectType {
	switch s {
	case "EVENT":
		return FlowObjectEvent
	case "GATEWAY":
		return FlowObjectGateway
	case "TASK":
		return FlowObjectTask
	default:
		return 0
	}
}

func (v FlowObjectType) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v FlowObjectType) String() string {
	switch v {
	case FlowObjectEvent:
		return "EVENT"
	case FlowObjectGateway:
		return "GATEWAY"
	case FlowObjectTask:
		return "TASK"
	default:
		return ""
	}
}

func (v *FlowObjectType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapFlowObjectType(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid flow object type data %s", s)
	}
	return nil
}

// TaskKind describes the supported task variants.
//
// Service and script tasks are automatic, a user task requires an external resume.
type TaskKind int

const (
	TaskScript TaskKind = iota + 1
	TaskService
	TaskUser
)

func MapTaskKind(s string) TaskKind {
	switch s {
	case "SCRIPT":
		return TaskScript
	case "SERVICE":
		return TaskService
	case "USER":
		return TaskUser
	default:
		return 0
	}
}

func (v TaskKind) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v TaskKind) String() string {
	switch v {
	case TaskScript:
		return "SCRIPT"
	case TaskService:
		return "SERVICE"
	case TaskUser:
		return "USER"
	default:
		return ""
	}
}

// EventKind describes the supported event variants.
type EventKind int

const (
	EventEnd EventKind = iota + 1
	EventIntermediate
	EventStart
)

func MapEventKind(s string) EventKind {
	switch s {
	case "END":
		return EventEnd
	case "INTERMEDIATE":
		return EventIntermediate
	case "START":
		return EventStart
	default:
		return 0
	}
}

func (v EventKind) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v EventKind) String() string {
	switch v {
	case EventEnd:
		return "END"
	case EventIntermediate:
		return "INTERMEDIATE"
	case EventStart:
		return "START"
	default:
		return ""
	}
}

// GatewayKind describes the five supported gateway variants.
type GatewayKind int

const (
	GatewayComplex GatewayKind = iota + 1
	GatewayEventBased
	GatewayExclusive
	GatewayInclusive
	GatewayParallel
)

func MapGatewayKind(s string) GatewayKind {
	switch s {
	case "COMPLEX":
		return GatewayComplex
	case "EVENT_BASED":
		return GatewayEventBased
	case "EXCLUSIVE":
		return GatewayExclusive
	case "INCLUSIVE":
		return GatewayInclusive
	case "PARALLEL":
		return GatewayParallel
	default:
		return 0
	}
}

func (v GatewayKind) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v GatewayKind) String() string {
	switch v {
	case GatewayComplex:
		return "COMPLEX"
	case GatewayEventBased:
		return "EVENT_BASED"
	case GatewayExclusive:
		return "EXCLUSIVE"
	case GatewayInclusive:
		return "INCLUSIVE"
	case GatewayParallel:
		return "PARALLEL"
	default:
		return ""
	}
}

// GatewayDirection restricts the number of incoming and outgoing sequence flows of a gateway.
// The zero value is [GatewayUnspecified].
type GatewayDirection int

const (
	GatewayUnspecified GatewayDirection = iota
	GatewayConverging
	GatewayDiverging
	GatewayMixed
)

// MapGatewayDirection maps the value of a BPMN gatewayDirection attribute.
func MapGatewayDirection(s string) (GatewayDirection, bool) {
	switch s {
	case "", "Unspecified":
		return GatewayUnspecified, true
	case "Converging":
		return GatewayConverging, true
	case "Diverging":
		return GatewayDiverging, true
	case "Mixed":
		return GatewayMixed, true
	default:
		return 0, false
	}
}

func (v GatewayDirection) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v GatewayDirection) String() string {
	switch v {
	case GatewayUnspecified:
		return "UNSPECIFIED"
	case GatewayConverging:
		return "CONVERGING"
	case GatewayDiverging:
		return "DIVERGING"
	case GatewayMixed:
		return "MIXED"
	default:
		return ""
	}
}

// EventGatewayType is the type of an event-based gateway. The zero value is [EventGatewayExclusive].
type EventGatewayType int

const (
	EventGatewayExclusive EventGatewayType = iota
	EventGatewayParallel
)

// MapEventGatewayType maps the value of a BPMN eventGatewayType attribute.
func MapEventGatewayType(s string) (EventGatewayType, bool) {
	switch s {
	case "", "Exclusive":
		return EventGatewayExclusive, true
	case "Parallel":
		return EventGatewayParallel, true
	default:
		return 0, false
	}
}

func (v EventGatewayType) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v EventGatewayType) String() string {
	switch v {
	case EventGatewayExclusive:
		return "EXCLUSIVE"
	case EventGatewayParallel:
		return "PARALLEL"
	default:
		return ""
	}
}

func marshalEnum(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}
