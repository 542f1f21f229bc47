package internal

import (
	"maps"
	"slices"
	"time"

	"github.com/flastex/go-bpmn/engine"
)

type TokenEntity struct {
	Id string

	PathId engine.PathIdentifier

	BpmnElementId  string
	ChildIds       []string
	CreatedAt      time.Time
	DetachedFromId string
	EndedAt        *time.Time
	ParentId       string
	PrevFlowId     string // ID of the sequence flow, the token arrived on
	State          engine.TokenState
	Variables      map[string]string

	firedEventId string // ID of the intermediate event, an event-based gateway has already seen fired
}

func (e *TokenEntity) Token(processInstanceId int32) engine.Token {
	var endedAt *time.Time
	if e.EndedAt != nil {
		t := *e.EndedAt
		endedAt = &t
	}

	return engine.Token{
		Id: e.Id,

		ProcessInstanceId: processInstanceId,

		BpmnElementId:  e.BpmnElementId,
		ChildIds:       slices.Clone(e.ChildIds),
		CreatedAt:      e.CreatedAt,
		DetachedFromId: e.DetachedFromId,
		EndedAt:        endedAt,
		ParentId:       e.ParentId,
		PathId:         e.PathId.Clone(),
		State:          e.State,
		Variables:      maps.Clone(e.Variables),
	}
}

func (e *TokenEntity) isLive() bool {
	return e.State == engine.TokenActive || e.State == engine.TokenPaused
}

func (e *TokenEntity) mergeVariables(variables map[string]string) {
	if len(variables) == 0 {
		return
	}
	if e.Variables == nil {
		e.Variables = make(map[string]string, len(variables))
	}
	maps.Copy(e.Variables, variables)
}
