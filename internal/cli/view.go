package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// viewCommand creates the view command, an interactive topology browser.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <lab.clab.yaml>",
		Short: "Browse a containerlab topology interactively",
		Long: `Browse the nodes and links of a containerlab topology file in an
interactive terminal view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(args[0])
		},
	}
	return cmd
}

// runView loads a lab file and starts the interactive browser.
func (c *CLI) runView(input string) error {
	g, err := loadLabGraph(input)
	if err != nil {
		return err
	}

	m := newTopologyModel(input, g)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
