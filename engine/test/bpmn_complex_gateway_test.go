package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
)

func newComplexGatewayTest(t *testing.T, e engine.Engine) complexGatewayTest {
	return complexGatewayTest{
		e: e,

		complexTest: mustCreateProcess(t, e, "gateway/complex.bpmn", "complexTest"),
	}
}

type complexGatewayTest struct {
	e engine.Engine

	complexTest engine.Process
}

func (x complexGatewayTest) activated(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.complexTest, map[string]string{"ready": "true", "b": "true"})
	piAssert.Run()

	piAssert.HasTokens(engine.TokenCompleted, 2)
	piAssert.IsCompletedAt("endA")
	piAssert.IsCompletedAt("endB")
	piAssert.IsNotCompletedAt("endD")
	piAssert.IsCompleted()
}

func (x complexGatewayTest) notActivated(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.complexTest, map[string]string{"ready": "", "b": "true"})
	piAssert.Run()

	piAssert.IsCompletedAt("endD")
	piAssert.IsNotCompletedAt("endA")
	piAssert.IsNotCompletedAt("endB")
	piAssert.IsCompleted()
}
