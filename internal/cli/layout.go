package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topolab/pkg/clab"
	"github.com/matzehuels/topolab/pkg/diagram"
	"github.com/matzehuels/topolab/pkg/pipeline"
	"github.com/matzehuels/topolab/pkg/topo"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		opts    pipeline.Options
		tiers   []string
		output  string
		noCache bool
	)
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout <lab.clab.yaml>",
		Short: "Compute tiered diagram coordinates for a containerlab file",
		Long: `Compute deterministic 2D coordinates for the nodes of a containerlab
topology file and write them as a coordinate document.

Nodes are assigned to tiers by the selected strategy, ordered within each
tier to reduce link crossings, and placed on a fixed grid. The same
topology always produces the same coordinates. Use --tier to pin
individual nodes to a tier.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hints, err := parseTierHints(tiers)
			if err != nil {
				return err
			}
			opts.TierHints = hints
			if err := pipeline.ValidateOrientation(opts.Orientation); err != nil {
				return err
			}
			if err := pipeline.ValidateStrategy(opts.Strategy); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVar(&opts.Orientation, "orientation", opts.Orientation, "tier direction, horizontal or vertical")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", opts.Strategy, "tier assignment strategy, degree or distance")
	cmd.Flags().StringArrayVar(&tiers, "tier", nil, "pin a node to a tier as name=N (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>.coords.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

// runLayout computes coordinates for a lab file and writes the diagram.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := loadLabGraph(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	l, cached, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	doc, err := runner.ExportDiagram(ctx, g, l)
	if err != nil {
		return fmt.Errorf("diagram: %w", err)
	}

	output, err = resolveOutput(output, defaultOutput(input, ".coords.json"))
	if err != nil {
		return err
	}
	if err := diagram.WriteDocumentFile(doc, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(g.NodeCount(), g.LinkCount(), cached)
	printNewline()
	printNextStep("Browse the topology", appName+" view "+input)

	return nil
}

// loadLabGraph reads a containerlab file and imports it as a canonical graph.
func loadLabGraph(path string) (*topo.Graph, error) {
	doc, err := clab.ReadDocumentFile(path)
	if err != nil {
		return nil, fmt.Errorf("load lab %s: %w", path, err)
	}
	g, err := clab.Import(doc)
	if err != nil {
		return nil, fmt.Errorf("import lab %s: %w", path, err)
	}
	return g, nil
}

// parseTierHints parses repeated name=N pins into a tier hint map.
func parseTierHints(pairs []string) (map[string]int, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	hints := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid tier hint %q (expected name=N)", pair)
		}
		tier, err := strconv.Atoi(value)
		if err != nil || tier < 0 {
			return nil, fmt.Errorf("invalid tier hint %q (expected name=N)", pair)
		}
		hints[name] = tier
	}
	return hints, nil
}
