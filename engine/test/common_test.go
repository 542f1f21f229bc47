package test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/mem"
	"github.com/flastex/go-bpmn/engine/pg"
	"github.com/flastex/go-bpmn/script"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap/zaptest"
)

// testEngine is an engine configuration, all BPMN tests are run with.
type testEngine struct {
	name     string
	e        engine.Engine
	recorder *pg.Recorder // set, when the execution history is recorded
}

func mustCreateEngines(t *testing.T) []testEngine {
	evaluator, err := script.NewEvaluator(func(o *script.Options) {
		o.JavaScriptFallback = true
		o.Logger = zaptest.NewLogger(t)
	})
	if err != nil {
		t.Fatalf("failed to create evaluator: %v", err)
	}

	newEngine := func(customizer func(*engine.Options)) engine.Engine {
		e, err := mem.New(func(o *mem.Options) {
			o.Common.Evaluator = evaluator
			o.Common.Logger = zaptest.NewLogger(t)
			o.Common.TaskHandler = evaluator.TaskHandler()

			customizer(&o.Common)
		})
		if err != nil {
			t.Fatalf("failed to create mem engine: %v", err)
		}
		return e
	}

	engines := []testEngine{
		{name: "lifo_", e: newEngine(func(o *engine.Options) { o.Scheduling = engine.SchedulingLifo })},
		{name: "fifo_", e: newEngine(func(o *engine.Options) { o.Scheduling = engine.SchedulingFifo })},
	}

	databaseUrl := os.Getenv("GO_BPMN_TEST_DATABASE_URL")
	if testing.Short() || databaseUrl == "" {
		return engines
	}

	recorder := mustCreateRecorder(t, databaseUrl)

	engines = append(engines, testEngine{
		name: "pg_",
		e: newEngine(func(o *engine.Options) {
			o.Recorder = recorder
			o.OnRecordFailure = func(_ []engine.Event, err error) {
				t.Errorf("failed to record events: %v", err)
			}
		}),
		recorder: recorder,
	})

	return engines
}

func mustCreateRecorder(t *testing.T, databaseUrl string) *pg.Recorder {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseUrl)
	if err != nil {
		t.Fatalf("failed to establish database connection: %v", err)
	}

	defer conn.Close(ctx)

	databaseSchema := fmt.Sprintf("test_bpmn_%s", strings.Replace(time.Now().Format("20060102150405.000"), ".", "", 1))
	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", databaseSchema))
	if err != nil {
		t.Fatalf("failed to create database schema: %v", err)
	}

	databaseUrl = fmt.Sprintf("%s?search_path=%s", databaseUrl, databaseSchema)

	recorder, err := pg.New(databaseUrl, func(o *pg.Options) {
		o.Logger = zaptest.NewLogger(t)
	})
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}

	return recorder
}

func mustCreateProcess(t *testing.T, e engine.Engine, fileName string, bpmnProcessId string) engine.Process {
	process, err := e.CreateProcess(context.Background(), engine.CreateProcessCmd{
		BpmnProcessId: bpmnProcessId,
		BpmnXml:       mustReadBpmnFile(t, fileName),
	})
	if err != nil {
		t.Fatalf("failed to create process: %v", err)
	}

	return process
}

func mustCreateProcessInstance(t *testing.T, e engine.Engine, process engine.Process, variables ...map[string]string) *engine.ProcessInstanceAssert {
	return engine.AssertStart(t, e, process.BpmnProcessId, variables...)
}

func mustReadBpmnFile(t *testing.T, fileName string) string {
	b, err := os.ReadFile("../../test/bpmn/" + fileName)
	if err != nil {
		t.Fatalf("failed to read BPMN file: %v", err)
	}
	return string(b)
}
