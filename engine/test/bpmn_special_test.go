package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
)

func newSpecialTest(t *testing.T, e engine.Engine) specialTest {
	return specialTest{
		e: e,

		simpleTest:        mustCreateProcess(t, e, "simple.bpmn", "simpleTest"),
		startMultipleTest: mustCreateProcess(t, e, "event/intermediate.bpmn", "startMultipleTest"),
	}
}

type specialTest struct {
	e engine.Engine

	simpleTest        engine.Process
	startMultipleTest engine.Process
}

func (x specialTest) simple(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.simpleTest)
	piAssert.Run()

	piAssert.IsWaitingAt("userTask")
	piAssert.Resume(map[string]string{"approved": "true"})

	piAssert.IsCompletedAt("endEvent1")
	piAssert.HasVariable("approved", "true")
	piAssert.HasPassed("gateway1")
	piAssert.HasNotPassed("endEvent2")
	piAssert.IsCompleted()
}

func (x specialTest) startMultiple(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.startMultipleTest)
	piAssert.Run()

	piAssert.IsCompletedAt("endA")
	piAssert.HasNotPassed("startB")
	piAssert.IsCompleted()
}
