package pg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/engine/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	t.Run("returns error when database URL is empty", func(t *testing.T) {
		_, err := New("")
		assert.EqualError(err, "database URL is empty")
	})

	t.Run("returns error when options are invalid", func(t *testing.T) {
		_, err := New("postgres://localhost:5432/test", func(o *Options) {
			o.EngineId = ""
		})
		assert.EqualError(err, "engine ID must not be empty or blank")

		_, err = New("postgres://localhost:5432/test", func(o *Options) {
			o.Timeout = 0
		})
		assert.EqualError(err, "timeout must be greater than 0")
	})

	t.Run("returns error when database URL is invalid", func(t *testing.T) {
		_, err := New("postgres://localhost:5432/test?pool_max_conns=x")
		assert.ErrorContains(err, "failed to parse database URL")
	})
}

func TestRecorder(t *testing.T) {
	assert := assert.New(t)

	recorder := mustCreateRecorder(t, func(o *Options) {
		o.EngineId = "test-engine"
	})
	defer recorder.Close()

	ctx := context.Background()

	t.Run("record", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)

		events := []engine.Event{
			{ProcessInstanceId: 1, Sequence: 1, Type: engine.EventTokenCreated, Time: now, TokenId: "startEvent-1", BpmnElementId: "startEvent", TokenState: engine.TokenActive, Detail: "startEvent"},
			{ProcessInstanceId: 1, Sequence: 2, Type: engine.EventFlowObjectStateChanged, Time: now, BpmnElementId: "startEvent", FlowObjectState: engine.FlowObjectReady},
			{ProcessInstanceId: 1, Sequence: 3, Type: engine.EventTokenMoved, Time: now, TokenId: "startEvent-1", BpmnElementId: "endEvent", SequenceFlowId: "flow1"},
		}

		require.NoError(t, recorder.Record(ctx, events))
		require.NoError(t, recorder.Record(ctx, nil))

		results, err := recorder.Query(ctx, engine.EventCriteria{ProcessInstanceId: 1}, engine.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(events, results)

		results, err = recorder.Query(ctx, engine.EventCriteria{TokenId: "startEvent-1"}, engine.QueryOptions{Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(events[2], results[0])

		results, err = recorder.Query(ctx, engine.EventCriteria{Types: []engine.EventType{engine.EventFlowObjectStateChanged}}, engine.QueryOptions{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(events[1], results[0])
	})

	t.Run("record via engine", func(t *testing.T) {
		recorder := mustCreateRecorder(t)
		defer recorder.Close()

		e, err := mem.New(func(o *mem.Options) {
			o.Common.Recorder = recorder
			o.Common.OnRecordFailure = func(_ []engine.Event, err error) {
				t.Errorf("failed to record events: %v", err)
			}
		})
		require.NoError(t, err)
		defer e.Shutdown()

		bpmnXml, err := os.ReadFile("../../test/bpmn/simple.bpmn")
		require.NoError(t, err)

		_, err = e.CreateProcess(ctx, engine.CreateProcessCmd{BpmnProcessId: "simpleTest", BpmnXml: string(bpmnXml)})
		require.NoError(t, err)

		piAssert := engine.AssertStart(t, e, "simpleTest")
		piAssert.Run()
		piAssert.IsWaitingAt("userTask")

		expected, err := e.CreateQuery().QueryEvents(ctx, engine.EventCriteria{})
		require.NoError(t, err)

		results, err := recorder.Query(ctx, engine.EventCriteria{}, engine.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(expected, results)
	})
}
