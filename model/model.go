package model

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Namespace of BPMN 2.0 model elements.
const NamespaceModel = "http://www.omg.org/spec/BPMN/20100524/MODEL"

// New parses BPMN 2.0 XML into a model. Each process of the definitions is returned as a fully populated [Process].
//
// Elements outside of a process (e.g. diagram interchange, collaborations or messages) are skipped. Within a
// process, flow nodes that are not supported result in a [ParseError] of type [ParseErrorUnsupportedElement].
func New(bpmnXmlReader io.Reader) (*Model, error) {
	p := parser{
		collaborationRefs: make(map[string]string),
	}

	decoder := xml.NewDecoder(bpmnXmlReader)

	count := 0
	for {
		token, err := decoder.Token()
		if token == nil || err == io.EOF {
			if count == 0 {
				return nil, &ParseError{Type: ParseErrorNoDefinitions, Detail: "XML is empty"}
			}
			break
		} else if err != nil {
			return nil, &ParseError{Type: ParseErrorEncoding, Detail: "failed to decode XML", Err: err}
		}

		count++

		switch t := token.(type) {
		case xml.StartElement:
			if err := p.start(t); err != nil {
				return nil, err
			}
			p.stack = append(p.stack, t.Name.Local)
		case xml.CharData:
			if p.capture != nil {
				p.capture.Write(t)
			}
		case xml.EndElement:
			if len(p.stack) != 0 {
				p.stack = p.stack[:len(p.stack)-1]
			}
			if err := p.end(t); err != nil {
				return nil, err
			}
		}
	}

	if !p.definitionsParsed {
		return nil, &ParseError{Type: ParseErrorNoDefinitions, Detail: "no definitions found"}
	}

	for _, process := range p.processes {
		process.CollaborationRef = p.collaborationRefs[process.Id]
	}

	return &Model{Definitions: &p.definitions, Processes: p.processes}, nil
}

type Model struct {
	Definitions *Definitions
	Processes   []*Process
}

// ProcessById returns the process with the given id, or nil, if no such process exists.
func (m *Model) ProcessById(id string) *Process {
	for _, process := range m.Processes {
		if process.Id == id {
			return process
		}
	}
	return nil
}

type Definitions struct {
	Id                 string
	Name               string
	TargetNamespace    string
	ExpressionLanguage ScriptLanguage // Language of expressions, which do not specify a language.
}

type parser struct {
	definitions       Definitions
	definitionsParsed bool

	processes         []*Process
	collaborationRefs map[string]string // process ID -> collaboration ID

	stack []string // local names of the open elements

	process       *Process
	collaboration string
	flowObject    *FlowObject
	sequenceFlow  *SequenceFlow

	capture     *strings.Builder // collects character data of a script or expression
	captureLang ScriptLanguage
}

// parent returns the local name of the innermost open element.
func (p *parser) parent() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) start(t xml.StartElement) error {
	name := t.Name.Local

	switch name {
	case "definitions":
		expressionLanguage := DefaultScriptLanguage
		if v := getAttrValue(t.Attr, "expressionLanguage"); v != "" {
			language, ok := MapScriptLanguage(v)
			if !ok {
				return unknownVariant(name, "expressionLanguage", v)
			}
			expressionLanguage = language
		}

		p.definitions = Definitions{
			Id:                 getAttrValue(t.Attr, "id"),
			Name:               getAttrValue(t.Attr, "name"),
			TargetNamespace:    getAttrValue(t.Attr, "targetNamespace"),
			ExpressionLanguage: expressionLanguage,
		}
		p.definitionsParsed = true
		return nil
	case "collaboration":
		p.collaboration = getAttrValue(t.Attr, "id")
		return nil
	case "participant":
		if processRef := getAttrValue(t.Attr, "processRef"); processRef != "" && p.collaboration != "" {
			p.collaborationRefs[processRef] = p.collaboration
		}
		return nil
	case "process":
		if p.process != nil {
			return &ParseError{Type: ParseErrorUnsupportedElement, Element: name, Detail: "nested process"}
		}
		return p.startProcess(t)
	}

	if p.process == nil {
		return nil // skip elements outside of a process
	}

	switch p.parent() {
	case "process":
		return p.startProcessChild(t)
	case "laneSet":
		if name == "lane" {
			p.process.AddMetadata(MetadataLanes, nameOrId(t.Attr))
		}
	case "sequenceFlow":
		if name == "conditionExpression" {
			return p.startConditionExpression(t)
		}
	case "scriptTask":
		if name == "script" {
			p.capture = &strings.Builder{}
		}
	case "complexGateway":
		if name == "activationCondition" {
			language, err := p.language(t, "language")
			if err != nil {
				return err
			}
			p.capture = &strings.Builder{}
			p.captureLang = language
		}
	}

	return nil
}

func (p *parser) startProcess(t xml.StartElement) error {
	process := NewProcess(getAttrValue(t.Attr, "id"), getAttrValue(t.Attr, "name"))

	processType, ok := MapProcessType(getAttrValue(t.Attr, "processType"))
	if !ok {
		return unknownVariant("process", "processType", getAttrValue(t.Attr, "processType"))
	}
	process.Type = processType

	var err error
	if process.IsExecutable, err = parseBoolAttr(t, "isExecutable"); err != nil {
		return err
	}
	if process.IsClosed, err = parseBoolAttr(t, "isClosed"); err != nil {
		return err
	}

	p.process = process
	p.processes = append(p.processes, process)
	return nil
}

func (p *parser) startProcessChild(t xml.StartElement) error {
	name := t.Name.Local

	switch name {
	case "startEvent":
		return p.startFlowObject(t, Event{Kind: EventStart})
	case "endEvent":
		return p.startFlowObject(t, Event{Kind: EventEnd})
	case "intermediateCatchEvent", "intermediateThrowEvent":
		return p.startFlowObject(t, Event{Kind: EventIntermediate})
	case "task", "userTask":
		return p.startFlowObject(t, Task{Kind: TaskUser})
	case "serviceTask":
		return p.startFlowObject(t, Task{Kind: TaskService})
	case "scriptTask":
		language, err := p.language(t, "scriptFormat")
		if err != nil {
			return err
		}
		if err := p.startFlowObject(t, Task{Kind: TaskScript}); err != nil {
			return err
		}
		p.captureLang = language
		return nil
	case "exclusiveGateway":
		return p.startGateway(t, GatewayExclusive)
	case "parallelGateway":
		return p.startGateway(t, GatewayParallel)
	case "inclusiveGateway":
		return p.startGateway(t, GatewayInclusive)
	case "complexGateway":
		return p.startGateway(t, GatewayComplex)
	case "eventBasedGateway":
		return p.startGateway(t, GatewayEventBased)
	case "sequenceFlow":
		return p.startSequenceFlow(t)
	case "property":
		p.process.AddMetadata(MetadataProperties, nameOrId(t.Attr))
	case "performer":
		p.process.AddMetadata(MetadataRoles, nameOrId(t.Attr))
	case "resourceRole", "humanPerformer", "potentialOwner":
		p.process.AddMetadata(MetadataResourceRoles, nameOrId(t.Attr))
	case "correlationSubscription":
		p.process.AddMetadata(MetadataCorrelationSubscriptions, nameOrId(t.Attr))
	case "supports":
		p.capture = &strings.Builder{}
	case "textAnnotation", "association", "group":
		p.process.AddMetadata(MetadataArtifacts, getAttrValue(t.Attr, "id"))
	case "auditing":
		p.process.Auditing = true
	case "monitoring":
		p.process.Monitoring = true
	case
		"dataInputAssociation",
		"dataObject",
		"dataObjectReference",
		"dataOutputAssociation",
		"dataStoreReference",
		"documentation",
		"extensionElements",
		"ioBinding",
		"ioSpecification",
		"laneSet":
		// structural or descriptive, not relevant for the execution
	default:
		if t.Name.Space != "" && t.Name.Space != NamespaceModel {
			return nil // vendor extension
		}
		return &ParseError{Type: ParseErrorUnsupportedElement, Element: name, Detail: getAttrValue(t.Attr, "id")}
	}

	return nil
}

func (p *parser) startFlowObject(t xml.StartElement, behavior Behavior) error {
	id := getAttrValue(t.Attr, "id")
	if id == "" {
		return &ParseError{Type: ParseErrorMalformedAttribute, Element: t.Name.Local, Attribute: "id", Detail: "is required"}
	}

	p.flowObject = &FlowObject{
		Id:       id,
		Name:     getAttrValue(t.Attr, "name"),
		Behavior: behavior,
	}
	return nil
}

func (p *parser) startGateway(t xml.StartElement, kind GatewayKind) error {
	direction, ok := MapGatewayDirection(getAttrValue(t.Attr, "gatewayDirection"))
	if !ok {
		return unknownVariant(t.Name.Local, "gatewayDirection", getAttrValue(t.Attr, "gatewayDirection"))
	}

	gateway := Gateway{Kind: kind, Direction: direction}

	switch kind {
	case GatewayExclusive, GatewayInclusive, GatewayComplex:
		gateway.Default = getAttrValue(t.Attr, "default")
	case GatewayEventBased:
		eventGatewayType, ok := MapEventGatewayType(getAttrValue(t.Attr, "eventGatewayType"))
		if !ok {
			return unknownVariant(t.Name.Local, "eventGatewayType", getAttrValue(t.Attr, "eventGatewayType"))
		}

		instantiate, err := parseBoolAttr(t, "instantiate")
		if err != nil {
			return err
		}

		gateway.EventGatewayType = eventGatewayType
		gateway.Instantiate = instantiate
	}

	return p.startFlowObject(t, gateway)
}

func (p *parser) startSequenceFlow(t xml.StartElement) error {
	id := getAttrValue(t.Attr, "id")
	if id == "" {
		return &ParseError{Type: ParseErrorMalformedAttribute, Element: t.Name.Local, Attribute: "id", Detail: "is required"}
	}

	isImmediate, err := parseBoolAttr(t, "isImmediate")
	if err != nil {
		return err
	}

	p.sequenceFlow = NewSequenceFlow(id, getAttrValue(t.Attr, "sourceRef"), getAttrValue(t.Attr, "targetRef"))
	p.sequenceFlow.Name = getAttrValue(t.Attr, "name")
	p.sequenceFlow.IsImmediate = isImmediate
	return nil
}

func (p *parser) startConditionExpression(t xml.StartElement) error {
	if getAttrValue(t.Attr, "evaluatesToTypeRef") != "" {
		return &ParseError{
			Type:      ParseErrorMalformedAttribute,
			Element:   t.Name.Local,
			Attribute: "evaluatesToTypeRef",
			Detail:    "is not supported",
		}
	}

	language, err := p.language(t, "language")
	if err != nil {
		return err
	}

	p.sequenceFlow.Type = SequenceFlowConditional
	p.capture = &strings.Builder{}
	p.captureLang = language
	return nil
}

func (p *parser) end(t xml.EndElement) error {
	if p.process == nil {
		if t.Name.Local == "collaboration" {
			p.collaboration = ""
		}
		return nil
	}

	switch t.Name.Local {
	case "process":
		p.process = nil
	case "conditionExpression":
		if p.sequenceFlow != nil {
			p.sequenceFlow.Condition = p.captured()
		}
	case "script":
		if p.flowObject != nil && p.flowObject.IsTask(TaskScript) {
			p.flowObject.Behavior = Task{Kind: TaskScript, Script: p.captured()}
		}
	case "activationCondition":
		if p.flowObject != nil && p.flowObject.IsGateway(GatewayComplex) {
			gateway := p.flowObject.Behavior.(Gateway)
			if script := p.captured(); script != nil {
				gateway.ActivationConditions = append(gateway.ActivationConditions, *script)
			}
			p.flowObject.Behavior = gateway
		}
	case "supports":
		if p.parent() == "process" && p.capture != nil {
			if value := strings.TrimSpace(p.capture.String()); value != "" {
				p.process.AddMetadata(MetadataSupports, value)
			}
			p.capture = nil
		}
	case "sequenceFlow":
		if p.sequenceFlow == nil || p.parent() != "process" {
			return nil
		}
		if err := p.process.AddSequenceFlow(p.sequenceFlow); err != nil {
			return processModelError(t.Name.Local, err)
		}
		p.sequenceFlow = nil
	default:
		if p.flowObject == nil || p.flowObject.Id == "" || p.parent() != "process" {
			return nil
		}
		if err := p.process.AddFlowObject(p.flowObject); err != nil {
			return processModelError(t.Name.Local, err)
		}
		p.flowObject = nil
	}

	return nil
}

// captured returns the collected character data as script, or nil, if blank.
func (p *parser) captured() *Script {
	defer func() {
		p.capture = nil
		p.captureLang = 0
	}()

	if p.capture == nil {
		return nil
	}

	source := strings.TrimSpace(p.capture.String())
	if source == "" {
		return nil
	}

	language := p.captureLang
	if language == 0 {
		language = p.definitions.ExpressionLanguage
	}
	if language == 0 {
		language = DefaultScriptLanguage
	}
	return &Script{Language: language, Source: source}
}

// language maps the value of a language attribute, falling back to the language of the definitions.
func (p *parser) language(t xml.StartElement, attrName string) (ScriptLanguage, error) {
	v := getAttrValue(t.Attr, attrName)
	if v == "" {
		if p.definitions.ExpressionLanguage != 0 {
			return p.definitions.ExpressionLanguage, nil
		}
		return DefaultScriptLanguage, nil
	}

	language, ok := MapScriptLanguage(v)
	if !ok {
		return 0, unknownVariant(t.Name.Local, attrName, v)
	}
	return language, nil
}

func getAttrValue(attributes []xml.Attr, name string) string {
	for i := range attributes {
		if attributes[i].Name.Local == name {
			return attributes[i].Value
		}
	}
	return ""
}

func nameOrId(attributes []xml.Attr) string {
	if name := getAttrValue(attributes, "name"); name != "" {
		return name
	}
	return getAttrValue(attributes, "id")
}

func parseBoolAttr(t xml.StartElement, name string) (bool, error) {
	v := getAttrValue(t.Attr, name)
	if v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ParseError{
			Type:      ParseErrorMalformedAttribute,
			Element:   t.Name.Local,
			Attribute: name,
			Detail:    fmt.Sprintf("invalid boolean %q", v),
		}
	}
	return b, nil
}

func processModelError(element string, err error) error {
	var modelErr *Error
	if errors.As(err, &modelErr) {
		return &ParseError{Type: ParseErrorProcessModel, Element: element, Detail: modelErr.Id, Err: err}
	}
	return &ParseError{Type: ParseErrorProcessModel, Element: element, Err: err}
}

func unknownVariant(element string, attribute string, value string) error {
	return &ParseError{
		Type:      ParseErrorUnknownVariant,
		Element:   element,
		Attribute: attribute,
		Detail:    fmt.Sprintf("unknown value %q", value),
	}
}
