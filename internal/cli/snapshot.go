package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topolab/pkg/archive"
	"github.com/matzehuels/topolab/pkg/profile"
	"github.com/matzehuels/topolab/pkg/topo"
)

// snapshotCommand creates the snapshot command with subcommands.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage archived topology snapshots",
		Long: `List and retrieve topology snapshots saved with fetch --archive.

Snapshots are stored as files under ~/.local/share/topolab/snapshots, or in
MongoDB when TOPOLAB_MONGO_URI or the profile's mongo_uri is set.`,
	}

	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())

	return cmd
}

// snapshotListCommand creates the list subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openArchive(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			snaps, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if len(snaps) == 0 {
				printInfo("No snapshots archived")
				printDetail("Run '%s fetch --archive' to create one", appName)
				return nil
			}

			for _, snap := range snaps {
				fmt.Println(StyleHighlight.Render(snap.ID))
				printDetail("%s · %d nodes · %d links · %s",
					snap.Server, snap.Nodes, snap.Links, formatAge(snap.FetchedAt))
			}
			return nil
		},
	}
}

// snapshotShowCommand creates the show subcommand.
func (c *CLI) snapshotShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a snapshot or write its raw topology to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openArchive(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			snap, err := store.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get snapshot: %w", err)
			}

			if output == "" {
				printKeyValue("ID", snap.ID)
				printKeyValue("Server", snap.Server)
				printKeyValue("Network", snap.Network)
				printKeyValue("Fetched", snap.FetchedAt.Format("Jan 2, 2006 15:04"))
				printKeyValue("Nodes", fmt.Sprintf("%d", snap.Nodes))
				printKeyValue("Links", fmt.Sprintf("%d", snap.Links))
				return nil
			}

			if output, err = resolveOutput(output, ""); err != nil {
				return err
			}
			if err := topo.WriteRawFile(snap.Raw, output); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Snapshot exported")
			printFile(output)
			printNewline()
			printNextStep("Convert it offline", appName+" convert "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the raw topology to a file")

	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

// openArchive opens the snapshot store, honoring TOPOLAB_MONGO_URI and the
// default profile's mongo_uri.
func openArchive(ctx context.Context) (archive.Store, error) {
	uri := os.Getenv(archive.EnvMongoURI)
	if uri == "" {
		if store, err := profile.NewStore(""); err == nil {
			if prof, err := store.Get(""); err == nil {
				uri = prof.MongoURI
			}
		}
	}
	store, err := archive.Open(ctx, uri, "")
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store, nil
}

// formatAge renders how long ago a snapshot was taken.
func formatAge(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
