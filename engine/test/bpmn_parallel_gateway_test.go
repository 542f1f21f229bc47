package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
	"github.com/stretchr/testify/assert"
)

func newParallelGatewayTest(t *testing.T, e engine.Engine) parallelGatewayTest {
	return parallelGatewayTest{
		e: e,

		parallelTest:          mustCreateProcess(t, e, "gateway/parallel.bpmn", "parallelTest"),
		parallelUserTasksTest: mustCreateProcess(t, e, "gateway/parallel.bpmn", "parallelUserTasksTest"),
	}
}

type parallelGatewayTest struct {
	e engine.Engine

	parallelTest          engine.Process
	parallelUserTasksTest engine.Process
}

func (x parallelGatewayTest) serviceTasks(t *testing.T) {
	assert := assert.New(t)

	piAssert := mustCreateProcessInstance(t, x.e, x.parallelTest)
	piAssert.Run()

	piAssert.HasPassed("serviceTaskA")
	piAssert.HasPassed("serviceTaskB")
	piAssert.HasPassed("serviceTaskC")
	piAssert.HasPassed("join")

	piAssert.IsCompletedAt("endEvent")
	piAssert.IsCompleted()

	assert.Empty(piAssert.ProcessInstance().Failures)
}

func (x parallelGatewayTest) userTasks(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.parallelUserTasksTest)
	piAssert.Run()

	piAssert.HasTokens(engine.TokenPaused, 2)

	piAssert.IsWaitingAt("userTaskA")
	piAssert.Resume()
	piAssert.IsNotCompleted()

	piAssert.IsWaitingAt("userTaskB")
	piAssert.Resume()

	piAssert.HasTokens(engine.TokenCompleted, 2)
	piAssert.IsCompletedAt("endA")
	piAssert.IsCompletedAt("endB")
	piAssert.IsCompleted()
}
