package pg

import (
	"strings"
	"text/template"

	"github.com/flastex/go-bpmn/engine"
)

var (
	sqlTemplateFunctions = template.FuncMap{
		"joinEventType": joinEventType,
		"quoteString":   quoteString,
	}

	sqlEventQuery *template.Template = newSqlTemplate("event_query.sql")
)

func newSqlTemplate(name string) *template.Template {
	return template.Must(template.New(name).Funcs(sqlTemplateFunctions).ParseFS(resources, "sql/"+name))
}

func joinEventType(values []engine.EventType) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = quoteString(v.String())
	}
	return strings.Join(s, ",")
}

// copied from https://github.com/jackc/pgx/blob/v5.5.0/internal/sanitize/sanitize.go#L90
func quoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
