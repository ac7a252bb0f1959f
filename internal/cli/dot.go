package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topolab/pkg/dot"
)

// dotCommand creates the dot command for Graphviz exports.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output   string
		svg      bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot <lab.clab.yaml>",
		Short: "Export a containerlab file as Graphviz DOT or SVG",
		Long: `Export the topology of a containerlab file in Graphviz DOT format,
or render it directly to SVG with --svg. DOT output goes to stdout unless
-o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), args[0], output, svg, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout, or <input>.svg with --svg)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG instead of DOT text")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include addresses, roles, and interface names")

	return cmd
}

// runDot exports a lab file as DOT text or a rendered SVG.
func (c *CLI) runDot(ctx context.Context, input, output string, svg, detailed bool) error {
	g, err := loadLabGraph(input)
	if err != nil {
		return err
	}

	text := dot.ToDOT(g, dot.Options{Detailed: detailed})

	data := []byte(text)
	if svg {
		if data, err = dot.RenderSVG(text); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if output == "" {
			output = defaultOutput(input, ".svg")
		}
	}

	w, err := openOutput(output)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if output != "" {
		printSuccess("Topology exported")
		printFile(output)
	}
	return nil
}
