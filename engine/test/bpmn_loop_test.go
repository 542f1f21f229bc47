package test

import (
	"strings"
	"testing"

	"github.com/flastex/go-bpmn/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoopTest(t *testing.T, e engine.Engine) loopTest {
	return loopTest{
		e: e,

		loopTest: mustCreateProcess(t, e, "gateway/loop.bpmn", "loopTest"),
	}
}

type loopTest struct {
	e engine.Engine

	loopTest engine.Process
}

func (x loopTest) loop(t *testing.T) {
	assert := assert.New(t)

	piAssert := mustCreateProcessInstance(t, x.e, x.loopTest)
	piAssert.Run()

	piAssert.IsWaitingAt("userTask")

	// the split is visited the first time
	token := piAssert.Token()
	require.Len(t, token.ChildIds, 1)

	firstChild, _ := piAssert.ProcessInstance().Token(token.ChildIds[0])
	assert.Nil(firstChild.PathId.LoopIndex)
	assert.Equal(engine.TokenCompleted, firstChild.State)

	piAssert.Resume(map[string]string{"again": "true"})

	// the split is visited the second time
	piAssert.IsWaitingAt("userTask")

	token = piAssert.Token()
	require.Len(t, token.ChildIds, 2)

	secondChild, _ := piAssert.ProcessInstance().Token(token.ChildIds[1])
	require.NotNil(t, secondChild.PathId.LoopIndex)
	assert.Equal(1, *secondChild.PathId.LoopIndex)
	assert.Equal("b", secondChild.PathId.FlowElementId)
	assert.True(strings.HasPrefix(secondChild.Id, "b/1/"+token.Id+"-"))

	piAssert.Resume(map[string]string{"again": ""})

	piAssert.HasTokens(engine.TokenCompleted, 3)
	piAssert.IsCompletedAt("endA")
	piAssert.IsCompleted()
}
