/*
go-bpmn is a CLI for validating and running BPMN 2.0 processes.

Usage:

	go-bpmn [flags]
	go-bpmn [command]

Available Commands:

	completion  Generate the autocompletion script for the specified shell
	help        Help about any command
	path        Parse path identifiers and generate token IDs
	run         Run a BPMN process
	validate    Validate a BPMN file
	version     Show version

Flags:

	    --config string              Path to a YAML, JSON or TOML config file
	    --database-url string        PostgreSQL database URL - if set, the execution history is recorded
	    --engine-id string           Engine ID (default "default-engine")
	    --evaluator string           Condition evaluator: none, javascript or forced (default "javascript")
	    --fail-on-evaluation-error   Terminate tokens, when a condition cannot be evaluated
	    --forced-flows strings       IDs of sequence flows or complex gateways, the forced evaluator evaluates to true
	-h, --help                       help for go-bpmn
	    --log-level string           Log level: debug, info, warn or error (default "warn")
	-o, --output string              Output format: table, json or yaml (default "table")
	    --scheduling scheduling      Order, in which active tokens are processed: lifo or fifo (default lifo)
	    --script-timeout duration    Time limit of a single script evaluation (default 1s)

Each flag can also be set via an environment variable, prefixed with GO_BPMN_ (e.g. GO_BPMN_LOG_LEVEL=debug), or via
the config file.

Use "go-bpmn [command] --help" for more information about a command.
*/
package main

import (
	"os"

	"github.com/flastex/go-bpmn/cli"
)

var (
	version = "unknown-version"
)

func main() {
	cli := cli.New(version)
	os.Exit(cli.Execute())
}
