package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/flastex/go-bpmn/model"
	"github.com/spf13/cobra"
)

type processView struct {
	Id            string             `json:"id"`
	Name          string             `json:"name,omitempty"`
	IsExecutable  bool               `json:"isExecutable"`
	FlowObjects   []flowObjectView   `json:"flowObjects"`
	SequenceFlows []sequenceFlowView `json:"sequenceFlows"`
}

type flowObjectView struct {
	Id   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

type sequenceFlowView struct {
	Id        string `json:"id"`
	SourceRef string `json:"sourceRef"`
	TargetRef string `json:"targetRef"`
	Condition string `json:"condition,omitempty"`
}

func newProcessView(process *model.Process) processView {
	flowObjects := process.FlowObjects()
	sequenceFlows := process.SequenceFlows()

	v := processView{
		Id:            process.Id,
		Name:          process.Name,
		IsExecutable:  process.IsExecutable,
		FlowObjects:   make([]flowObjectView, len(flowObjects)),
		SequenceFlows: make([]sequenceFlowView, len(sequenceFlows)),
	}

	for i, flowObject := range flowObjects {
		v.FlowObjects[i] = flowObjectView{
			Id:   flowObject.Id,
			Kind: flowObject.Kind(),
			Name: flowObject.Name,
		}
	}

	for i, sequenceFlow := range sequenceFlows {
		var condition string
		if sequenceFlow.Condition != nil {
			condition = sequenceFlow.Condition.String()
		}

		v.SequenceFlows[i] = sequenceFlowView{
			Id:        sequenceFlow.Id,
			SourceRef: sequenceFlow.SourceRef,
			TargetRef: sequenceFlow.TargetRef,
			Condition: condition,
		}
	}

	return v
}

func newValidateCmd(cli *Cli) *cobra.Command {
	var bpmnFileName string

	c := cobra.Command{
		Use:   "validate",
		Short: "Validate a BPMN file",
		Long:  "Parses a BPMN file and lists its processes, flow objects and sequence flows.",
		RunE: func(c *cobra.Command, _ []string) error {
			bpmnModel, _, err := readBpmnFile(bpmnFileName)
			if err != nil {
				return err
			}

			results := make([]processView, len(bpmnModel.Processes))
			for i, process := range bpmnModel.Processes {
				results[i] = newProcessView(process)
			}

			return printResult(c, cli.config.Output, results, func() []table {
				processes := newTable([]string{
					"PROCESS",
					"NAME",
					"EXECUTABLE",
					"FLOW OBJECTS",
					"SEQUENCE FLOWS",
				})
				flowObjects := newTable([]string{
					"PROCESS",
					"FLOW OBJECT",
					"KIND",
					"NAME",
				})
				sequenceFlows := newTable([]string{
					"PROCESS",
					"SEQUENCE FLOW",
					"SOURCE",
					"TARGET",
					"CONDITION",
				})

				for _, result := range results {
					processes.addRow([]string{
						result.Id,
						result.Name,
						strconv.FormatBool(result.IsExecutable),
						strconv.Itoa(len(result.FlowObjects)),
						strconv.Itoa(len(result.SequenceFlows)),
					})

					for _, flowObject := range result.FlowObjects {
						flowObjects.addRow([]string{
							result.Id,
							flowObject.Id,
							flowObject.Kind,
							flowObject.Name,
						})
					}

					for _, sequenceFlow := range result.SequenceFlows {
						sequenceFlows.addRow([]string{
							result.Id,
							sequenceFlow.Id,
							sequenceFlow.SourceRef,
							sequenceFlow.TargetRef,
							sequenceFlow.Condition,
						})
					}
				}

				return []table{processes, flowObjects, sequenceFlows}
			})
		},
		Annotations: map[string]string{noEngineRequired: ""},
	}

	c.Flags().StringVar(&bpmnFileName, "bpmn-file", "", "Path to a BPMN XML file")

	c.MarkFlagRequired("bpmn-file")
	c.MarkFlagFilename("bpmn-file", ".bpmn", ".bpmn20.xml", ".xml")

	return &c
}

// readBpmnFile reads a BPMN file once and parses its content. The model and the BPMN XML are returned.
func readBpmnFile(bpmnFileName string) (*model.Model, string, error) {
	b, err := os.ReadFile(bpmnFileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open BPMN file %s: %v", bpmnFileName, err)
	}

	bpmnModel, err := model.New(bytes.NewReader(b))
	if err != nil {
		var parseErr *model.ParseError
		if errors.As(err, &parseErr) {
			return nil, "", fmt.Errorf("invalid BPMN file %s: %w", bpmnFileName, parseErr)
		}
		return nil, "", fmt.Errorf("failed to parse BPMN file %s: %w", bpmnFileName, err)
	}

	return bpmnModel, string(b), nil
}
