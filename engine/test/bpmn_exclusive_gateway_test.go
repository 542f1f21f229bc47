package test

import (
	"testing"

	"github.com/flastex/go-bpmn/engine"
	"github.com/stretchr/testify/assert"
)

func newExclusiveGatewayTest(t *testing.T, e engine.Engine) exclusiveGatewayTest {
	return exclusiveGatewayTest{
		e: e,

		exclusiveTest:          mustCreateProcess(t, e, "gateway/exclusive.bpmn", "exclusiveTest"),
		exclusiveNoDefaultTest: mustCreateProcess(t, e, "gateway/exclusive.bpmn", "exclusiveNoDefaultTest"),
	}
}

type exclusiveGatewayTest struct {
	e engine.Engine

	exclusiveTest          engine.Process
	exclusiveNoDefaultTest engine.Process
}

func (x exclusiveGatewayTest) condition(t *testing.T) {
	assert := assert.New(t)

	piAssert := mustCreateProcessInstance(t, x.e, x.exclusiveTest, map[string]string{"a": "", "b": "true", "c": ""})
	piAssert.Run()

	piAssert.IsCompletedAt("endB")
	piAssert.IsNotCompletedAt("endD")
	piAssert.IsCompleted()

	assert.Empty(piAssert.ProcessInstance().Failures)
}

func (x exclusiveGatewayTest) defaultFlow(t *testing.T) {
	piAssert := mustCreateProcessInstance(t, x.e, x.exclusiveTest, map[string]string{"a": "", "b": "", "c": ""})
	piAssert.Run()

	piAssert.IsCompletedAt("endD")
	piAssert.HasNotPassed("endA")
	piAssert.IsCompleted()
}

func (x exclusiveGatewayTest) evaluationError(t *testing.T) {
	assert := assert.New(t)

	// variables a, b and c are not defined
	piAssert := mustCreateProcessInstance(t, x.e, x.exclusiveTest)
	piAssert.Run()

	failure := piAssert.HasFailed("fork", engine.FailureEvaluation)
	assert.False(failure.Terminated)
	assert.Contains(failure.Detail, "is not defined")

	piAssert.IsCompletedAt("endD")
	piAssert.IsCompleted()
}

func (x exclusiveGatewayTest) noQualifyingFlow(t *testing.T) {
	assert := assert.New(t)

	piAssert := mustCreateProcessInstance(t, x.e, x.exclusiveNoDefaultTest, map[string]string{"a": ""})
	piAssert.Run()

	failure := piAssert.HasFailed("fork", engine.FailureNoQualifyingFlow)
	assert.True(failure.Terminated)

	piAssert.HasTokens(engine.TokenTerminated, 1)
	piAssert.IsFailed()
}
