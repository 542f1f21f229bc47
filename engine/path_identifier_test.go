package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathIdentifier(t *testing.T) {
	assert := assert.New(t)

	loopIndex := 0
	loopIndex3 := 3

	tests := map[string]struct {
		path     PathIdentifier
		expected string
	}{
		"element only": {
			path:     PathIdentifier{FlowElementId: "startEvent"},
			expected: "startEvent",
		},
		"loop index": {
			path:     PathIdentifier{FlowElementId: "flowA", LoopIndex: &loopIndex3},
			expected: "flowA/3",
		},
		"loop index zero": {
			path:     PathIdentifier{FlowElementId: "flowA", LoopIndex: &loopIndex},
			expected: "flowA/0",
		},
		"parent": {
			path:     PathIdentifier{FlowElementId: "flowA", ParentTokenId: "startEvent-0a1b"},
			expected: "flowA/startEvent-0a1b",
		},
		"loop index and parent": {
			path:     PathIdentifier{FlowElementId: "flowA", LoopIndex: &loopIndex3, ParentTokenId: "startEvent-0a1b"},
			expected: "flowA/3/startEvent-0a1b",
		},
		"nested parent": {
			path:     PathIdentifier{FlowElementId: "flowC", ParentTokenId: "flowB/1/startEvent-0a1b-2c3d"},
			expected: "flowC/flowB/1/startEvent-0a1b-2c3d",
		},
		"nested parent with loop index": {
			path:     PathIdentifier{FlowElementId: "flowC", LoopIndex: &loopIndex, ParentTokenId: "flowB/startEvent-0a1b-2c3d"},
			expected: "flowC/0/flowB/startEvent-0a1b-2c3d",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := test.path.String()
			assert.Equal(test.expected, s)

			parsed, err := ParsePathIdentifier(s)
			if !assert.NoError(err) {
				return
			}

			assert.True(test.path.Equal(parsed), "expected %+v, but got %+v", test.path, parsed)
			assert.Equal(test.path.HasLoopIndex(), parsed.HasLoopIndex())
			assert.Equal(test.path.HasParent(), parsed.HasParent())
		})
	}
}

func TestParsePathIdentifier(t *testing.T) {
	assert := assert.New(t)

	t.Run("constructors", func(t *testing.T) {
		p := NewPathIdentifier("startEvent")
		assert.Equal("startEvent", p.String())

		p = NewLoopPathIdentifier("flowA", 2, "startEvent-0a1b")
		assert.Equal("flowA/2/startEvent-0a1b", p.String())
	})

	t.Run("second segment is not an index", func(t *testing.T) {
		for _, s := range []string{"flowA/-1", "flowA/+1", "flowA/x1"} {
			p, err := ParsePathIdentifier(s)
			assert.NoError(err)
			assert.Equal("flowA", p.FlowElementId)
			assert.Nil(p.LoopIndex)
			assert.Equal(s[len("flowA/"):], p.ParentTokenId)
		}
	})

	t.Run("bare integer parent is read as loop index", func(t *testing.T) {
		p, err := ParsePathIdentifier("flowA/12")
		assert.NoError(err)
		assert.Equal(12, *p.LoopIndex)
		assert.Empty(p.ParentTokenId)
	})

	invalid := map[string]string{
		"empty":              "",
		"empty element":      "/1/parent",
		"empty parent":       "flowA/1/",
		"trailing separator": "flowA/",
	}

	for name, s := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePathIdentifier(s)
			assert.IsType(&PathIdentifierError{}, err)
		})
	}
}

func TestPathIdentifierClone(t *testing.T) {
	assert := assert.New(t)

	loopIndex := 2
	p := PathIdentifier{FlowElementId: "flowA", LoopIndex: &loopIndex, ParentTokenId: "startEvent-0a1b"}

	clone := p.Clone()
	assert.True(clone.Equal(p))
	assert.NotSame(p.LoopIndex, clone.LoopIndex)

	assert.Nil(PathIdentifier{FlowElementId: "startEvent"}.Clone().LoopIndex)
}

func TestPathIdentifierJson(t *testing.T) {
	assert := assert.New(t)

	p := NewLoopPathIdentifier("flowA", 1, "startEvent-0a1b")

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(`"flowA/1/startEvent-0a1b"`, string(b))

	var unmarshalled PathIdentifier
	require.NoError(t, json.Unmarshal(b, &unmarshalled))
	assert.True(p.Equal(unmarshalled))

	assert.Error(json.Unmarshal([]byte(`""`), &unmarshalled))
}

func TestNewTokenId(t *testing.T) {
	assert := assert.New(t)

	p := NewPathIdentifier("startEvent")

	t.Run("format", func(t *testing.T) {
		tokenId := NewTokenId(p, "")
		assert.True(strings.HasPrefix(tokenId, "startEvent-"))
		assert.Len(tokenId, len("startEvent-")+32)

		tokenId = NewTokenId(p, "debug")
		assert.True(strings.HasPrefix(tokenId, "debug-startEvent-"))
	})

	t.Run("unique", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping in short mode")
		}

		n := 1_000_000
		tokenIds := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			tokenId := NewTokenId(p, "")
			if _, ok := tokenIds[tokenId]; ok {
				t.Fatalf("token ID %s generated twice", tokenId)
			}
			tokenIds[tokenId] = struct{}{}
		}
	})
}
