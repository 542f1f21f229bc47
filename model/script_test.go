package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptLanguage(t *testing.T) {
	assert := assert.New(t)

	for language := ScriptGroovy; language <= ScriptXPath; language++ {
		mapped, ok := MapScriptLanguage(language.SchemaRef())
		assert.True(ok, language.String())
		assert.Equal(language, mapped)
	}

	language, ok := MapScriptLanguage("JavaScript")
	assert.True(ok)
	assert.Equal(ScriptJavaScript, language)

	_, ok = MapScriptLanguage("http://www.cobol.org")
	assert.False(ok)

	assert.Equal(ScriptXPath, DefaultScriptLanguage)
	assert.Equal("JAVASCRIPT:a > 1", Script{Language: ScriptJavaScript, Source: "a > 1"}.String())
}

func TestEnumJson(t *testing.T) {
	assert := assert.New(t)

	b, err := json.Marshal(Gateway{Kind: GatewayEventBased, Direction: GatewayConverging})
	assert.NoError(err)
	assert.Contains(string(b), `"Kind":"EVENT_BASED"`)
	assert.Contains(string(b), `"Direction":"CONVERGING"`)
	assert.Contains(string(b), `"EventGatewayType":"EXCLUSIVE"`)

	var flowObjectType FlowObjectType
	assert.NoError(json.Unmarshal([]byte(`"TASK"`), &flowObjectType))
	assert.Equal(FlowObjectTask, flowObjectType)
	assert.Error(json.Unmarshal([]byte(`"SUB_PROCESS"`), &flowObjectType))

	for _, s := range []string{"USER", "SERVICE", "SCRIPT"} {
		assert.Equal(s, MapTaskKind(s).String())
	}
	for _, s := range []string{"START", "END", "INTERMEDIATE"} {
		assert.Equal(s, MapEventKind(s).String())
	}
	for _, s := range []string{"COMPLEX", "EVENT_BASED", "EXCLUSIVE", "INCLUSIVE", "PARALLEL"} {
		assert.Equal(s, MapGatewayKind(s).String())
	}
}
