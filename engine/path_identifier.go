package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// PathIdentifier identifies the path, a token has been created for.
//
// The string form is <flow element ID>[/<loop index>][/<parent token ID>], where optional segments are only present if set.
// A parent token ID, which consists only of digits, cannot be distinguished from a loop index, when no loop index is set.
type PathIdentifier struct {
	FlowElementId string // ID of the flow element, a token has been created at - a start event or a sequence flow.
	LoopIndex     *int   // Optional loop iteration - the number of earlier visits of the splitting gateway.
	ParentTokenId string // Optional ID of the parent token.
}

// NewPathIdentifier creates a path identifier for a flow element, without loop context and parent.
func NewPathIdentifier(flowElementId string) PathIdentifier {
	return PathIdentifier{FlowElementId: flowElementId}
}

// NewLoopPathIdentifier creates a path identifier for a flow element, visited within the given loop iteration.
func NewLoopPathIdentifier(flowElementId string, loopIndex int, parentTokenId string) PathIdentifier {
	return PathIdentifier{FlowElementId: flowElementId, LoopIndex: &loopIndex, ParentTokenId: parentTokenId}
}

// ParsePathIdentifier parses the string form of a path identifier.
func ParsePathIdentifier(s string) (PathIdentifier, error) {
	if s == "" {
		return PathIdentifier{}, &PathIdentifierError{Value: s, Detail: "is empty"}
	}

	segments := strings.Split(s, "/")
	if segments[0] == "" {
		return PathIdentifier{}, &PathIdentifierError{Value: s, Detail: "flow element ID is empty"}
	}

	p := PathIdentifier{FlowElementId: segments[0]}

	rest := segments[1:]
	if len(rest) != 0 {
		if loopIndex, err := strconv.Atoi(rest[0]); err == nil && loopIndex >= 0 && !strings.HasPrefix(rest[0], "+") {
			p.LoopIndex = &loopIndex
			rest = rest[1:]
		}
	}

	if len(rest) != 0 {
		p.ParentTokenId = strings.Join(rest, "/")
		if p.ParentTokenId == "" {
			return PathIdentifier{}, &PathIdentifierError{Value: s, Detail: "parent token ID is empty"}
		}
	}

	return p, nil
}

// Clone returns a copy, which does not share the loop index.
func (p PathIdentifier) Clone() PathIdentifier {
	if p.LoopIndex != nil {
		loopIndex := *p.LoopIndex
		p.LoopIndex = &loopIndex
	}
	return p
}

func (p PathIdentifier) Equal(o PathIdentifier) bool {
	if p.FlowElementId != o.FlowElementId || p.ParentTokenId != o.ParentTokenId {
		return false
	}
	if p.LoopIndex == nil || o.LoopIndex == nil {
		return p.LoopIndex == o.LoopIndex
	}
	return *p.LoopIndex == *o.LoopIndex
}

func (p PathIdentifier) HasLoopIndex() bool {
	return p.LoopIndex != nil
}

func (p PathIdentifier) HasParent() bool {
	return p.ParentTokenId != ""
}

func (p PathIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p PathIdentifier) String() string {
	var sb strings.Builder
	sb.WriteString(p.FlowElementId)
	if p.LoopIndex != nil {
		sb.WriteRune('/')
		sb.WriteString(strconv.Itoa(*p.LoopIndex))
	}
	if p.ParentTokenId != "" {
		sb.WriteRune('/')
		sb.WriteString(p.ParentTokenId)
	}
	return sb.String()
}

func (p *PathIdentifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePathIdentifier(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PathIdentifierError is returned, when a string cannot be parsed as path identifier.
type PathIdentifierError struct {
	Value  string
	Detail string
}

func (e *PathIdentifierError) Error() string {
	return fmt.Sprintf("invalid path identifier %q: %s", e.Value, e.Detail)
}

// NewTokenId generates a token ID, which consists of the optional debug label, the path identifier and a random 128-bit suffix.
//
// Token IDs are never reused.
func NewTokenId(p PathIdentifier, debugLabel string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	if debugLabel == "" {
		return fmt.Sprintf("%s-%s", p, suffix)
	}
	return fmt.Sprintf("%s-%s-%s", debugLabel, p, suffix)
}
