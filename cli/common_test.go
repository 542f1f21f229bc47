package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func mustCreateEngine(t *testing.T) engine.Engine {
	e, shutdown, err := newEngine(config{
		EngineId:      engine.DefaultEngineId,
		Evaluator:     evaluatorJavaScript,
		LogLevel:      zapcore.DebugLevel,
		Scheduling:    engine.SchedulingLifo,
		ScriptTimeout: time.Second,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	t.Cleanup(shutdown)
	return e
}

// execute executes a command and returns its output.
func execute(e engine.Engine, args []string) (string, error) {
	rootCmd := newRootCmd(&Cli{e: e, version: "0.0.0-test"})
	rootCmd.PersistentPostRun = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)

	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, e engine.Engine, args []string) string {
	out, err := execute(e, args)
	if err != nil {
		t.Fatalf("failed to execute %v: %v", args, err)
	}
	return out
}
