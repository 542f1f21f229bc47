package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
)

func newInclusiveGatewayTest(t *testing.T, e engine.Engine) inclusiveGatewayTest {
	return inclusiveGatewayTest{
		e: e,

		inclusiveTest: mustCreateProcess(t, e, "gateway/inclusive.bpmn", "inclusiveTest"),
	}
}

type inclusiveGatewayTest struct {
	e engine.Engine

	inclusiveTest engine.Process
}

func (x inclusiveGatewayTest) all(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.inclusiveTest, map[string]string{"a": "1", "b": "1"})
	piAssert.Run()

	piAssert.HasTokens(engine.TokenCompleted, 2)
	piAssert.HasPassed("endA")
	piAssert.HasPassed("endB")
	piAssert.IsNotCompletedAt("endD")
	piAssert.IsCompleted()
}

func (x inclusiveGatewayTest) defaultFlow(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.inclusiveTest, map[string]string{"a": "", "b": ""})
	piAssert.Run()

	piAssert.HasTokens(engine.TokenCompleted, 1)
	piAssert.IsCompletedAt("endD")
	piAssert.IsCompleted()
}
