package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/flastex/go-bpmn/engine"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(cli *Cli) *cobra.Command {
	var (
		bpmnFileName      string
		completeUserTasks bool
		maxResumes        int
		resumeVariables   map[string]string

		cmd engine.CreateProcessInstanceCmd
	)

	c := cobra.Command{
		Use:   "run",
		Short: "Run a BPMN process",
		Long: `Creates a process from a BPMN file and runs an instance of it, until no active token remains.

When user tasks are completed, paused tokens are resumed with the resume variables, until no token is paused.`,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()

			bpmnModel, bpmnXml, err := readBpmnFile(bpmnFileName)
			if err != nil {
				return err
			}

			if cmd.BpmnProcessId == "" {
				if len(bpmnModel.Processes) != 1 {
					bpmnProcessIds := make([]string, len(bpmnModel.Processes))
					for i, process := range bpmnModel.Processes {
						bpmnProcessIds[i] = process.Id
					}
					return fmt.Errorf("BPMN file %s defines processes [%s]: specify a BPMN process ID", bpmnFileName, strings.Join(bpmnProcessIds, ", "))
				}
				cmd.BpmnProcessId = bpmnModel.Processes[0].Id
			}

			if _, err := cli.e.CreateProcess(ctx, engine.CreateProcessCmd{
				BpmnProcessId: cmd.BpmnProcessId,
				BpmnXml:       bpmnXml,
			}); err != nil {
				return err
			}

			processInstance, err := cli.e.CreateProcessInstance(ctx, cmd)
			if err != nil {
				return err
			}

			processInstance, err = cli.e.RunProcessInstance(ctx, engine.RunProcessInstanceCmd{Id: processInstance.Id})
			if err != nil {
				return err
			}

			if completeUserTasks {
				processInstance, err = resumeAll(ctx, cli.e, processInstance, resumeVariables, maxResumes)
				if err != nil {
					return err
				}
			}

			cli.logger.Info("process instance ran",
				zap.Int32("id", processInstance.Id),
				zap.String("bpmnProcessId", processInstance.BpmnProcessId),
				zap.Stringer("state", processInstance.State),
			)

			if err := printResult(c, cli.config.Output, processInstance, func() []table {
				return processInstanceTables(processInstance)
			}); err != nil {
				return err
			}

			if processInstance.State == engine.InstanceFailed {
				return fmt.Errorf("process instance %d failed", processInstance.Id)
			}
			return nil
		},
	}

	c.Flags().StringVar(&bpmnFileName, "bpmn-file", "", "Path to a BPMN XML file")
	c.Flags().BoolVar(&completeUserTasks, "complete-user-tasks", false, "Resume paused tokens, until no token is paused")
	c.Flags().IntVar(&maxResumes, "max-resumes", 1000, "Maximum number of resumed tokens, when user tasks are completed")
	c.Flags().Var(newVariablesValue(&resumeVariables), "resume-variable", "Variable, consisting of name and value, that is set when a token is resumed")

	c.Flags().StringVar(&cmd.BpmnProcessId, "bpmn-process-id", "", "ID of the process element within the BPMN XML - required, if the file defines multiple processes")
	c.Flags().StringVar(&cmd.BpmnStartElementId, "start-element-id", "", "ID of the start event to start at")
	c.Flags().StringVar(&cmd.DebugLabel, "debug-label", "", "Label, prefixed to the IDs of all tokens")
	c.Flags().Var(newVariablesValue(&cmd.Variables), "variable", "Variable, consisting of name and value")

	c.MarkFlagRequired("bpmn-file")
	c.MarkFlagFilename("bpmn-file", ".bpmn", ".bpmn20.xml", ".xml")

	return &c
}

// resumeAll resumes paused tokens in creation order, until no token is paused.
func resumeAll(ctx context.Context, e engine.Engine, processInstance engine.ProcessInstance, variables map[string]string, maxResumes int) (engine.ProcessInstance, error) {
	var resumes int
	for {
		paused := processInstance.TokensByState(engine.TokenPaused)
		if len(paused) == 0 {
			return processInstance, nil
		}

		if resumes == maxResumes {
			return processInstance, fmt.Errorf("process instance %d: maximum number of %d resumes exceeded", processInstance.Id, maxResumes)
		}

		var err error
		processInstance, err = e.ResumeToken(ctx, engine.ResumeTokenCmd{
			ProcessInstanceId: processInstance.Id,
			TokenId:           paused[0].Id,
			Variables:         variables,
		})
		if err != nil {
			return processInstance, err
		}

		resumes++
	}
}

func processInstanceTables(processInstance engine.ProcessInstance) []table {
	summary := newTable([]string{
		"PROCESS INSTANCE",
		"BPMN PROCESS ID",
		"STATE",
		"CREATED AT",
		"ENDED AT",
	})

	summary.addRow([]string{
		strconv.Itoa(int(processInstance.Id)),
		processInstance.BpmnProcessId,
		processInstance.State.String(),
		formatTime(processInstance.CreatedAt),
		formatTimeOrNil(processInstance.EndedAt),
	})

	tokens := newTable([]string{
		"TOKEN",
		"BPMN ELEMENT ID",
		"STATE",
		"PARENT",
		"VARIABLES",
	})

	for _, token := range processInstance.Tokens {
		tokens.addRow([]string{
			token.Id,
			token.BpmnElementId,
			token.State.String(),
			token.ParentId,
			formatVariables(token.Variables),
		})
	}

	tables := []table{summary, tokens}
	if len(processInstance.Failures) == 0 {
		return tables
	}

	failures := newTable([]string{
		"TOKEN",
		"BPMN ELEMENT ID",
		"TYPE",
		"TERMINATED",
		"DETAIL",
	})

	for _, failure := range processInstance.Failures {
		failures.addRow([]string{
			failure.TokenId,
			failure.BpmnElementId,
			failure.Type.String(),
			strconv.FormatBool(failure.Terminated),
			failure.Detail,
		})
	}

	return append(tables, failures)
}
