package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(time.RFC3339)
}

func formatTimeOrNil(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}

// printResult prints a result in the configured output format. Tables are created lazily.
func printResult(c *cobra.Command, output string, v any, tables func() []table) error {
	switch output {
	case outputJson:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %v", err)
		}
		c.Println(string(b))
	case outputYaml:
		s, err := marshalYaml(v)
		if err != nil {
			return err
		}
		c.Print(s)
	default:
		for i, table := range tables() {
			if i != 0 {
				c.Println()
			}
			c.Print(table.format())
		}
	}
	return nil
}

// marshalYaml marshals a value as YAML, using its JSON representation.
// The node tree keeps the order of the JSON object keys.
func marshalYaml(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %v", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return "", fmt.Errorf("failed to unmarshal JSON as YAML: %v", err)
	}

	// JSON is parsed in flow style with quoted strings
	clearStyle(&node)

	var sb strings.Builder

	encoder := yaml.NewEncoder(&sb)
	encoder.SetIndent(2)
	if err := encoder.Encode(&node); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %v", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %v", err)
	}

	return sb.String(), nil
}

func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, content := range node.Content {
		clearStyle(content)
	}
}

func newTable(headers []string) table {
	rows := make([][]string, 2)
	rows[0] = headers
	rows[1] = make([]string, len(headers))

	return table{rows: rows}
}

type table struct {
	rows [][]string
}

func (t *table) addRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *table) format() string {
	rows := t.rows

	columns := make([]int, len(rows[0]))
	for i := 0; i < len(rows); i++ {
		for j := 0; j < len(columns); j++ {
			l := utf8.RuneCountInString(rows[i][j])
			if columns[j] < l {
				columns[j] = l
			}
		}
	}

	var sb strings.Builder
	for i := 0; i < len(rows); i++ {
		for j := 0; j < len(columns); j++ {
			if j != 0 {
				sb.WriteString("   ")
			}

			value := rows[i][j]
			sb.WriteString(value)

			// no trailing spaces
			if j == len(columns)-1 {
				continue
			}

			l := utf8.RuneCountInString(value)
			for k := 0; k < columns[j]-l; k++ {
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
