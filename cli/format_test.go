package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	assert := assert.New(t)

	table := newTable([]string{"ID", "NAME"})
	table.addRow([]string{"1", "a"})
	table.addRow([]string{"22", "bb"})

	assert.Equal("ID   NAME\n     \n1    a\n22   bb\n", table.format())
}

func TestMarshalYaml(t *testing.T) {
	assert := assert.New(t)

	type value struct {
		Id      string            `json:"id"`
		Enabled bool              `json:"enabled"`
		Text    string            `json:"text"`
		Empty   string            `json:"empty"`
		Map     map[string]string `json:"map"`
		List    []int             `json:"list"`
	}

	s, err := marshalYaml(value{
		Id:      "b",
		Enabled: true,
		Text:    "true",
		Map:     map[string]string{"k": "v"},
		List:    []int{1, 2},
	})
	require.NoError(t, err)

	assert.Equal(`id: b
enabled: true
text: "true"
empty: ""
map:
  k: v
list:
  - 1
  - 2
`, s)
}

func TestFormatTime(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", formatTime(time.Time{}))
	assert.Equal("", formatTimeOrNil(nil))

	v := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	assert.Equal("2026-10-19T12:00:00Z", formatTime(v))
	assert.Equal("2026-10-19T12:00:00Z", formatTimeOrNil(&v))
}
