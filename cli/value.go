package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flastex/go-bpmn/engine"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*schedulingValue)(nil)
	_ pflag.Value = (*variablesValue)(nil)
)

// schedulingValue is a custom flag value for a token scheduling.
type schedulingValue engine.Scheduling

func (v *schedulingValue) Set(s string) error {
	scheduling := engine.MapScheduling(strings.ToUpper(strings.TrimSpace(s)))
	if scheduling == 0 {
		return fmt.Errorf("invalid scheduling %s", s)
	}

	*v = schedulingValue(scheduling)
	return nil
}

func (v schedulingValue) String() string {
	return strings.ToLower(engine.Scheduling(v).String())
}

func (v schedulingValue) Type() string {
	return "scheduling"
}

// variablesValue is a custom flag value for token variables, which can be specified multiple times.
// In contrast to a string to string flag, a value is not split at commas.
type variablesValue map[string]string

func newVariablesValue(m *map[string]string) *variablesValue {
	if *m == nil {
		*m = make(map[string]string)
	}
	return (*variablesValue)(m)
}

func (v *variablesValue) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("invalid variable %s: must be formatted as name=value", s)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("invalid variable %s: name is empty", s)
	}

	(*v)[name] = value
	return nil
}

func (v variablesValue) String() string {
	return formatVariables(v)
}

func (v variablesValue) Type() string {
	return "variable"
}

func formatVariables(variables map[string]string) string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + variables[name]
	}
	return strings.Join(pairs, ",")
}
