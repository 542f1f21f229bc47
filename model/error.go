package model

import (
	"fmt"
)

// ErrorType describes the possible failures of a process mutation.
type ErrorType int

const (
	ErrorFlowObjectAlreadyExists ErrorType = iota + 1
	ErrorFlowObjectNotFound
	ErrorSequenceFlowAlreadyExists
	ErrorSequenceFlowNotFound
	ErrorValueNotFound
)

func (v ErrorType) String() string {
	switch v {
	case ErrorFlowObjectAlreadyExists:
		return "FLOW_OBJECT_ALREADY_EXISTS"
	case ErrorFlowObjectNotFound:
		return "FLOW_OBJECT_NOT_FOUND"
	case ErrorSequenceFlowAlreadyExists:
		return "SEQUENCE_FLOW_ALREADY_EXISTS"
	case ErrorSequenceFlowNotFound:
		return "SEQUENCE_FLOW_NOT_FOUND"
	case ErrorValueNotFound:
		return "VALUE_NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Sentinels for the use with errors.Is.
var (
	ErrFlowObjectAlreadyExists   = &Error{Type: ErrorFlowObjectAlreadyExists}
	ErrFlowObjectNotFound        = &Error{Type: ErrorFlowObjectNotFound}
	ErrSequenceFlowAlreadyExists = &Error{Type: ErrorSequenceFlowAlreadyExists}
	ErrSequenceFlowNotFound      = &Error{Type: ErrorSequenceFlowNotFound}
	ErrValueNotFound             = &Error{Type: ErrorValueNotFound}
)

// Error is returned when a [Process] cannot be mutated.
type Error struct {
	Type ErrorType
	Id   string // ID of the flow object or sequence flow, or the value of a metadata list.
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Id)
}

// Is reports whether target is an error of the same type, ignoring the ID.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// ParseErrorType describes why BPMN XML could not be parsed.
type ParseErrorType int

const (
	ParseErrorEncoding ParseErrorType = iota + 1
	ParseErrorMalformedAttribute
	ParseErrorNoDefinitions
	ParseErrorProcessModel
	ParseErrorUnknownVariant
	ParseErrorUnsupportedElement
)

func (v ParseErrorType) String() string {
	switch v {
	case ParseErrorEncoding:
		return "ENCODING"
	case ParseErrorMalformedAttribute:
		return "MALFORMED_ATTRIBUTE"
	case ParseErrorNoDefinitions:
		return "NO_DEFINITIONS"
	case ParseErrorProcessModel:
		return "PROCESS_MODEL"
	case ParseErrorUnknownVariant:
		return "UNKNOWN_VARIANT"
	case ParseErrorUnsupportedElement:
		return "UNSUPPORTED_ELEMENT"
	default:
		return "UNKNOWN"
	}
}

// ParseError is returned by [New], when the BPMN XML cannot be turned into a model.
type ParseError struct {
	Type      ParseErrorType
	Element   string // Local name of the XML element, if known.
	Attribute string // Local name of the XML attribute, if the error relates to one.
	Detail    string
	Err       error // Wrapped cause, if any.
}

func (e *ParseError) Error() string {
	s := e.Type.String()
	if e.Element != "" {
		s += ": " + e.Element
	}
	if e.Attribute != "" {
		s += "@" + e.Attribute
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
