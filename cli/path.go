package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/flastex/go-bpmn/engine"
	"github.com/spf13/cobra"
)

type pathIdentifierView struct {
	FlowElementId string `json:"flowElementId"`
	LoopIndex     *int   `json:"loopIndex,omitempty"`
	ParentTokenId string `json:"parentTokenId,omitempty"`
}

func newPathCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:         "path",
		Short:       "Parse path identifiers and generate token IDs",
		RunE:        cli.help,
		Annotations: map[string]string{noEngineRequired: ""},
	}

	c.AddCommand(newPathParseCmd(cli))
	c.AddCommand(newPathTokenIdCmd(cli))

	return &c
}

func newPathParseCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "parse PATH_ID",
		Short: "Parse a path identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			pathId, err := engine.ParsePathIdentifier(args[0])
			if err != nil {
				return err
			}

			result := pathIdentifierView{
				FlowElementId: pathId.FlowElementId,
				LoopIndex:     pathId.LoopIndex,
				ParentTokenId: pathId.ParentTokenId,
			}

			return printResult(c, cli.config.Output, result, func() []table {
				var loopIndex string
				if result.LoopIndex != nil {
					loopIndex = strconv.Itoa(*result.LoopIndex)
				}

				pathIdTable := newTable([]string{
					"FLOW ELEMENT ID",
					"LOOP INDEX",
					"PARENT TOKEN ID",
				})

				pathIdTable.addRow([]string{
					result.FlowElementId,
					loopIndex,
					result.ParentTokenId,
				})

				return []table{pathIdTable}
			})
		},
		Annotations: map[string]string{noEngineRequired: ""},
	}

	return &c
}

func newPathTokenIdCmd(_ *Cli) *cobra.Command {
	var (
		debugLabel    string
		elementId     string
		loopIndex     int
		parentTokenId string
	)

	c := cobra.Command{
		Use:   "token-id",
		Short: "Generate a token ID",
		RunE: func(c *cobra.Command, _ []string) error {
			if strings.Contains(debugLabel, "/") {
				return errors.New("debug label must not contain a slash")
			}

			pathId := engine.PathIdentifier{FlowElementId: elementId, ParentTokenId: parentTokenId}
			if loopIndex >= 0 {
				pathId = engine.NewLoopPathIdentifier(elementId, loopIndex, parentTokenId)
			}

			c.Println(engine.NewTokenId(pathId, debugLabel))
			return nil
		},
		Annotations: map[string]string{noEngineRequired: ""},
	}

	c.Flags().StringVar(&debugLabel, "debug-label", "", "Label, prefixed to the token ID")
	c.Flags().StringVar(&elementId, "element-id", "", "ID of the start event or sequence flow, the token is created at")
	c.Flags().IntVar(&loopIndex, "loop-index", -1, "Loop iteration - negative, if the token is not created within a loop")
	c.Flags().StringVar(&parentTokenId, "parent-token-id", "", "ID of the parent token")

	c.MarkFlagRequired("element-id")

	return &c
}
