package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
)

func newTaskTest(t *testing.T, e engine.Engine) taskTest {
	return taskTest{
		e: e,

		taskTest: mustCreateProcess(t, e, "task/task.bpmn", "taskTest"),
	}
}

type taskTest struct {
	e engine.Engine

	taskTest engine.Process
}

func (x taskTest) tasks(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.taskTest, map[string]string{"amount": "21"})
	piAssert.Run()

	piAssert.HasPassed("serviceTask")
	piAssert.HasPassed("scriptTask")

	piAssert.IsWaitingAt("task")
	piAssert.HasVariable("amount", "21")
	piAssert.HasVariable("total", "42")
	piAssert.Resume()

	piAssert.IsCompletedAt("endEvent")
	piAssert.HasVariable("total", "42")
	piAssert.IsCompleted()
}
