package internal

import (
	"strings"
	"testing"

	"github.com/flastex/go-bpmn/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProcess(t *testing.T) {
	assert := assert.New(t)

	ctx := newTestContext(t)

	process := ctx.mustCreateProcess(t, "simple.bpmn", "simpleTest")
	assert.Equal(int32(1), process.Id)
	assert.Equal("simpleTest", process.BpmnProcessId)
	assert.Equal("Simple Process", process.Name)
	assert.True(process.IsExecutable)
	assert.Equal(ctx.time, process.CreatedAt)

	t.Run("returns existing process", func(t *testing.T) {
		existing := ctx.mustCreateProcess(t, "simple.bpmn", "simpleTest")
		assert.Equal(process, existing)
		assert.Len(ctx.processes.entities, 1)
	})

	t.Run("returns error when BPMN XML differs", func(t *testing.T) {
		_, err := CreateProcess(ctx, engine.CreateProcessCmd{
			BpmnProcessId: "simpleTest",
			BpmnXml:       `<definitions><process id="simpleTest" /></definitions>`,
		})
		require.IsType(t, engine.Error{}, err)
		assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
	})

	t.Run("returns error when BPMN XML is invalid", func(t *testing.T) {
		_, err := CreateProcess(ctx, engine.CreateProcessCmd{BpmnProcessId: "test", BpmnXml: "<definitions"})
		require.IsType(t, engine.Error{}, err)
		assert.Equal(engine.ErrorProcessModel, err.(engine.Error).Type)
	})

	t.Run("returns error when BPMN process not exists", func(t *testing.T) {
		_, err := CreateProcess(ctx, engine.CreateProcessCmd{
			BpmnProcessId: "notExisting",
			BpmnXml:       `<definitions><process id="a" /><process id="b" /></definitions>`,
		})
		require.IsType(t, engine.Error{}, err)

		engineErr := err.(engine.Error)
		assert.Equal(engine.ErrorProcessModel, engineErr.Type)
		assert.Contains(engineErr.Detail, "[a, b]")
	})

	t.Run("returns error when command is invalid", func(t *testing.T) {
		_, err := CreateProcess(ctx, engine.CreateProcessCmd{})
		require.IsType(t, engine.Error{}, err)

		engineErr := err.(engine.Error)
		assert.Equal(engine.ErrorValidation, engineErr.Type)
		require.Len(t, engineErr.Causes, 2)
		assert.Equal("#/bpmnProcessId", engineErr.Causes[0].Pointer)
		assert.Equal("required", engineErr.Causes[0].Type)
		assert.Equal("#/bpmnXml", engineErr.Causes[1].Pointer)
	})
}

func TestGetBpmnXml(t *testing.T) {
	assert := assert.New(t)

	ctx := newTestContext(t)

	process := ctx.mustCreateProcess(t, "simple.bpmn", "simpleTest")

	bpmnXml, err := GetBpmnXml(ctx, engine.GetBpmnXmlCmd{ProcessId: process.Id})
	require.NoError(t, err)
	assert.True(strings.Contains(bpmnXml, `id="simpleTest"`))

	_, err = GetBpmnXml(ctx, engine.GetBpmnXmlCmd{ProcessId: 2})
	require.IsType(t, engine.Error{}, err)
	assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)

	_, err = GetBpmnXml(ctx, engine.GetBpmnXmlCmd{})
	require.IsType(t, engine.Error{}, err)
	assert.Equal(engine.ErrorValidation, err.(engine.Error).Type)
	assert.Equal("#/processId", err.(engine.Error).Causes[0].Pointer)
}

func TestProcessCache(t *testing.T) {
	assert := assert.New(t)

	ctx := newTestContext(t)

	process := ctx.mustCreateProcess(t, "simple.bpmn", "simpleTest")

	cached, ok := ctx.processCache.Get("simpleTest")
	require.True(t, ok)
	assert.NotNil(cached.graph)

	ctx.processCache.Clear()

	_, ok = ctx.processCache.GetById(process.Id)
	assert.False(ok)

	// graph is rebuilt from the stored BPMN XML
	ctx.processes.entities[0].graph = nil

	cached, err := ctx.processCache.GetOrCacheById(ctx, process.Id)
	require.NoError(t, err)
	require.NotNil(t, cached.graph)
	assert.NotNil(cached.graph.flowObject("userTask"))

	cached, ok = ctx.processCache.Get("simpleTest")
	assert.True(ok)
	assert.Equal(process.Id, cached.Id)

	_, err = ctx.processCache.GetOrCache(ctx, "notExisting")
	assert.Error(err)
}

func TestCreateProcessInstanceValidation(t *testing.T) {
	assert := assert.New(t)

	ctx := newTestContext(t)
	ctx.mustCreateProcess(t, "simple.bpmn", "simpleTest")

	t.Run("debug label", func(t *testing.T) {
		processInstance, err := CreateProcessInstance(ctx, engine.CreateProcessInstanceCmd{
			BpmnProcessId: "simpleTest",
			DebugLabel:    "order",
		})
		require.NoError(t, err)
		assert.True(strings.HasPrefix(processInstance.Tokens[0].Id, "order-startEvent-"))

		_, err = CreateProcessInstance(ctx, engine.CreateProcessInstanceCmd{
			BpmnProcessId: "simpleTest",
			DebugLabel:    "a/b",
		})
		require.IsType(t, engine.Error{}, err)

		engineErr := err.(engine.Error)
		assert.Equal(engine.ErrorValidation, engineErr.Type)
		require.Len(t, engineErr.Causes, 1)
		assert.Equal("#/debugLabel", engineErr.Causes[0].Pointer)
		assert.Equal("excludes", engineErr.Causes[0].Type)
	})

	t.Run("variables", func(t *testing.T) {
		_, err := CreateProcessInstance(ctx, engine.CreateProcessInstanceCmd{
			BpmnProcessId: "simpleTest",
			Variables:     map[string]string{"x": strings.Repeat("a", 4097)},
		})
		require.IsType(t, engine.Error{}, err)

		engineErr := err.(engine.Error)
		require.Len(t, engineErr.Causes, 1)
		assert.Equal("#/variables/x", engineErr.Causes[0].Pointer)
		assert.Equal("max", engineErr.Causes[0].Type)
	})

	t.Run("variables are copied", func(t *testing.T) {
		variables := map[string]string{"a": "1"}

		processInstance, err := CreateProcessInstance(ctx, engine.CreateProcessInstanceCmd{
			BpmnProcessId: "simpleTest",
			Variables:     variables,
		})
		require.NoError(t, err)

		variables["a"] = "2"
		assert.Equal("1", processInstance.Tokens[0].Variables["a"])
	})

	t.Run("process not found", func(t *testing.T) {
		_, err := CreateProcessInstance(ctx, engine.CreateProcessInstanceCmd{BpmnProcessId: "notExisting"})
		require.IsType(t, engine.Error{}, err)
		assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)
	})

	t.Run("process instance not found", func(t *testing.T) {
		_, err := GetProcessInstance(ctx, engine.GetProcessInstanceCmd{Id: 99})
		require.IsType(t, engine.Error{}, err)
		assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)

		_, err = ResumeToken(ctx, engine.ResumeTokenCmd{ProcessInstanceId: 1, TokenId: "notExisting"})
		require.IsType(t, engine.Error{}, err)
		assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)
	})
}

func TestPointer(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("#", pointer("Cmd"))
	assert.Equal("#/bpmnProcessId", pointer("CreateProcessInstanceCmd.bpmnProcessId"))
	assert.Equal("#/variables/x", pointer("ResumeTokenCmd.variables[x]"))
}
