package internal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newTestContext(t *testing.T, customizers ...func(*engine.Options)) *testContext {
	options := engine.Options{
		DefaultQueryLimit: 1000,
		EngineId:          engine.DefaultEngineId,
		Logger:            zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)),
		Scheduling:        engine.SchedulingLifo,
	}
	for _, customizer := range customizers {
		customizer(&options)
	}

	return &testContext{
		ctx:          context.Background(),
		options:      options,
		processCache: NewProcessCache(),
		time:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// testContext is a minimal, in-memory [Context].
type testContext struct {
	ctx     context.Context
	options engine.Options
	time    time.Time

	events           testEventRepository
	processes        testProcessRepository
	processCache     *ProcessCache
	processInstances testProcessInstanceRepository
}

func (c *testContext) Context() context.Context                    { return c.ctx }
func (c *testContext) Options() engine.Options                     { return c.options }
func (c *testContext) Logger() *zap.Logger                         { return c.options.Logger }
func (c *testContext) Time() time.Time                             { return c.time }
func (c *testContext) Events() EventRepository                     { return &c.events }
func (c *testContext) Processes() ProcessRepository                { return &c.processes }
func (c *testContext) ProcessCache() *ProcessCache                 { return c.processCache }
func (c *testContext) ProcessInstances() ProcessInstanceRepository { return &c.processInstances }

// mustCreateProcess creates a process from a BPMN file, located under test/bpmn.
func (c *testContext) mustCreateProcess(t *testing.T, fileName string, bpmnProcessId string) engine.Process {
	bpmnXml, err := os.ReadFile("../../test/bpmn/" + fileName)
	if err != nil {
		t.Fatalf("failed to read BPMN file %s: %v", fileName, err)
	}

	process, err := CreateProcess(c, engine.CreateProcessCmd{BpmnProcessId: bpmnProcessId, BpmnXml: string(bpmnXml)})
	if err != nil {
		t.Fatalf("failed to create process %s: %v", bpmnProcessId, err)
	}
	return process
}

func (c *testContext) mustCreateProcessInstance(t *testing.T, fileName string, bpmnProcessId string, variables ...map[string]string) engine.ProcessInstance {
	c.mustCreateProcess(t, fileName, bpmnProcessId)

	cmd := engine.CreateProcessInstanceCmd{BpmnProcessId: bpmnProcessId}
	if len(variables) != 0 {
		cmd.Variables = variables[0]
	}

	processInstance, err := CreateProcessInstance(c, cmd)
	if err != nil {
		t.Fatalf("failed to create process instance: %v", err)
	}
	return processInstance
}

func (c *testContext) mustRun(t *testing.T, id int32) engine.ProcessInstance {
	processInstance, err := RunProcessInstance(c, engine.RunProcessInstanceCmd{Id: id})
	if err != nil {
		t.Fatalf("failed to run process instance: %v", err)
	}
	return processInstance
}

func (c *testContext) mustStep(t *testing.T, id int32) engine.ProcessInstance {
	processInstance, err := StepProcessInstance(c, engine.StepProcessInstanceCmd{Id: id})
	if err != nil {
		t.Fatalf("failed to step process instance: %v", err)
	}
	return processInstance
}

type testEventRepository struct {
	events []engine.Event
}

func (r *testEventRepository) Insert(events []engine.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *testEventRepository) Query(c engine.EventCriteria, _ engine.QueryOptions) ([]engine.Event, error) {
	var results []engine.Event
	for _, e := range r.events {
		if MatchEvent(c, e) {
			results = append(results, e)
		}
	}
	return results, nil
}

type testProcessRepository struct {
	entities []*ProcessEntity
}

func (r *testProcessRepository) Insert(entity *ProcessEntity) error {
	entity.Id = int32(len(r.entities) + 1)
	r.entities = append(r.entities, entity)
	return nil
}

func (r *testProcessRepository) Select(id int32) (*ProcessEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *testProcessRepository) SelectByBpmnProcessId(bpmnProcessId string) (*ProcessEntity, error) {
	for _, e := range r.entities {
		if e.BpmnProcessId == bpmnProcessId {
			return e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *testProcessRepository) Query(engine.ProcessCriteria, engine.QueryOptions) ([]engine.Process, error) {
	return nil, nil
}

type testProcessInstanceRepository struct {
	entities []*ProcessInstanceEntity
}

func (r *testProcessInstanceRepository) Insert(entity *ProcessInstanceEntity) error {
	entity.Id = int32(len(r.entities) + 1)
	r.entities = append(r.entities, entity)
	return nil
}

func (r *testProcessInstanceRepository) Select(id int32) (*ProcessInstanceEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *testProcessInstanceRepository) Query(engine.ProcessInstanceCriteria, engine.QueryOptions) ([]engine.ProcessInstance, error) {
	return nil, nil
}

func (r *testProcessInstanceRepository) QueryTokens(engine.TokenCriteria, engine.QueryOptions) ([]engine.Token, error) {
	return nil, nil
}
