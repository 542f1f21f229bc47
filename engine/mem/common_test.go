package mem

import (
	"context"
	"os"
	"testing"

	"github.com/flastex/go-bpmn/engine"
	"go.uber.org/zap/zaptest"
)

func mustCreateEngine(t *testing.T, customizers ...func(*Options)) engine.Engine {
	customizers = append([]func(*Options){func(o *Options) {
		o.Common.Logger = zaptest.NewLogger(t)
	}}, customizers...)

	e, err := New(customizers...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
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

func mustReadBpmnFile(t *testing.T, fileName string) string {
	b, err := os.ReadFile("../../test/bpmn/" + fileName)
	if err != nil {
		t.Fatalf("failed to read BPMN file: %v", err)
	}
	return string(b)
}
