package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
)

func newIntermediateEventTest(t *testing.T, e engine.Engine) intermediateEventTest {
	return intermediateEventTest{
		e: e,

		intermediateTest: mustCreateProcess(t, e, "event/intermediate.bpmn", "intermediateTest"),
	}
}

type intermediateEventTest struct {
	e engine.Engine

	intermediateTest engine.Process
}

func (x intermediateEventTest) passThrough(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.intermediateTest)
	piAssert.Run()

	piAssert.HasPassed("catchEvent")
	piAssert.HasPassed("throwEvent")
	piAssert.IsCompletedAt("endEvent")
	piAssert.IsCompleted()
}
