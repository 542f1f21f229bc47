package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
)

func newEventBasedGatewayTest(t *testing.T, e engine.Engine) eventBasedGatewayTest {
	return eventBasedGatewayTest{
		e: e,

		eventBasedExclusiveTest: mustCreateProcess(t, e, "gateway/event-based.bpmn", "eventBasedExclusiveTest"),
		eventBasedParallelTest:  mustCreateProcess(t, e, "gateway/event-based.bpmn", "eventBasedParallelTest"),
	}
}

type eventBasedGatewayTest struct {
	e engine.Engine

	eventBasedExclusiveTest engine.Process
	eventBasedParallelTest  engine.Process
}

func (x eventBasedGatewayTest) exclusive(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.eventBasedExclusiveTest)
	piAssert.Run()

	piAssert.HasPassed("messageReceived")
	piAssert.HasNotPassed("timeout")
	piAssert.IsCompletedAt("endA")
	piAssert.IsCompleted()
}

func (x eventBasedGatewayTest) parallel(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.eventBasedParallelTest)
	piAssert.Run()

	piAssert.HasTokens(engine.TokenCompleted, 2)
	piAssert.HasPassed("messageReceived")
	piAssert.HasPassed("timeout")
	piAssert.IsCompleted()
}
