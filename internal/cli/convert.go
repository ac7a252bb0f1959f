package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topolab/pkg/clab"
	"github.com/matzehuels/topolab/pkg/pipeline"
)

// convertCommand creates the convert command, the offline counterpart of
// fetch for raw topologies saved with snapshot show.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		opts   pipeline.Options
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <topology.json>",
		Short: "Convert a saved raw topology into a containerlab file",
		Long: `Convert a raw topology JSON file into a containerlab topology file
without contacting an NSP. Raw topology files come from snapshot show.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputFile = args[0]
			return c.runConvert(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVar(&opts.LabName, "name", "", "lab name written into the topology file")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "containerlab node kind (default "+clab.DefaultKind+")")
	cmd.Flags().StringVar(&opts.Image, "image", "", "container image for lab nodes (default "+clab.DefaultImage+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>.clab.yaml)")

	return cmd
}

// runConvert reads a raw topology file and writes the lab document.
func (c *CLI) runConvert(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	raw, _, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("read topology: %w", err)
	}

	g, stats, err := runner.Normalize(ctx, raw, opts)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	lab := runner.ExportLab(ctx, g, opts)

	output, err = resolveOutput(output, defaultOutput(opts.InputFile, ".clab.yaml"))
	if err != nil {
		return err
	}
	if err := clab.WriteDocumentFile(lab, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Converted %d links", stats.Links))

	printSuccess("Topology converted")
	printFile(output)
	printStats(stats.Nodes, stats.Links, false)
	printNewline()
	printNextStep("Compute a diagram layout", appName+" layout "+output)

	return nil
}
