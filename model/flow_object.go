package model

// A FlowObject is a node of the process graph - a task, an event or a gateway.
type FlowObject struct {
	Id   string
	Name string

	// Behavior is one of [Task], [Event] or [Gateway].
	Behavior Behavior
}

// Type returns the category of the flow object, or 0 if no behavior is set.
func (f *FlowObject) Type() FlowObjectType {
	if f.Behavior == nil {
		return 0
	}
	return f.Behavior.Type()
}

func (f *FlowObject) IsEvent(kind EventKind) bool {
	event, ok := f.Behavior.(Event)
	return ok && event.Kind == kind
}

func (f *FlowObject) IsGateway(kind GatewayKind) bool {
	gateway, ok := f.Behavior.(Gateway)
	return ok && gateway.Kind == kind
}

func (f *FlowObject) IsTask(kind TaskKind) bool {
	task, ok := f.Behavior.(Task)
	return ok && task.Kind == kind
}

// Kind returns the variant of the flow object (e.g. "EXCLUSIVE_GATEWAY") or an empty string, if no behavior is set.
func (f *FlowObject) Kind() string {
	if f.Behavior == nil {
		return ""
	}
	return f.Behavior.kind()
}

func (f *FlowObject) String() string {
	if f.Behavior == nil {
		return f.Id
	}
	return f.Behavior.kind() + ":" + f.Id
}

// Behavior is the closed set of flow object variants. It is implemented by [Task], [Event] and [Gateway] only.
type Behavior interface {
	Type() FlowObjectType

	kind() string
}

type Task struct {
	Kind   TaskKind
	Script *Script // Script of a script task, if defined.
}

// IsAutomatic determines if the task is executed without external interaction.
func (t Task) IsAutomatic() bool {
	return t.Kind == TaskService || t.Kind == TaskScript
}

func (t Task) Type() FlowObjectType {
	return FlowObjectTask
}

func (t Task) kind() string {
	return t.Kind.String() + "_TASK"
}

type Event struct {
	Kind EventKind
}

func (e Event) Type() FlowObjectType {
	return FlowObjectEvent
}

func (e Event) kind() string {
	return e.Kind.String() + "_EVENT"
}

type Gateway struct {
	Kind      GatewayKind
	Direction GatewayDirection

	// Default is the ID of the default sequence flow (exclusive, inclusive and complex gateways).
	Default string
	// ActivationConditions of a complex gateway.
	ActivationConditions []Script

	// EventGatewayType and Instantiate apply to event-based gateways only.
	EventGatewayType EventGatewayType
	Instantiate      bool
}

func (g Gateway) Type() FlowObjectType {
	return FlowObjectGateway
}

func (g Gateway) kind() string {
	return g.Kind.String() + "_GATEWAY"
}
