package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/topolab/pkg/archive"
	"github.com/matzehuels/topolab/pkg/clab"
	"github.com/matzehuels/topolab/pkg/nsp"
	"github.com/matzehuels/topolab/pkg/pipeline"
	"github.com/matzehuels/topolab/pkg/profile"
	"github.com/matzehuels/topolab/pkg/topo"
)

// Environment fallbacks for connection settings. Flags win over the
// environment; the environment wins over the saved profile.
const (
	envServer   = "NSP_SERVER"
	envUsername = "NSP_USERNAME"
	envPassword = "NSP_PASSWORD"
	envProxy    = "NSP_PROXY"
)

// defaultLabFile is where fetch writes the lab when -o is not given.
const defaultLabFile = "data.clab.yaml"

// fetchFlags holds the connection flags for the fetch command.
type fetchFlags struct {
	server      string        // NSP address, host or URL
	username    string        // prompted when empty everywhere
	password    string        // prompted when empty everywhere, never stored
	proxy       string        // optional HTTP proxy
	network     string        // network to fetch, defaults in the client
	profileName string        // saved profile, default profile when empty
	insecure    bool          // skip TLS verification
	timeout     time.Duration // per-request timeout
}

// fetchOutputs holds the non-connection fetch flags.
type fetchOutputs struct {
	output  string // lab file path, defaultLabFile when empty
	labName string // lab name written into the document
	noCache bool   // disable caching entirely
	refresh bool   // bypass the fetch cache
	archive bool   // save the raw topology as a snapshot
}

// fetchCommand creates the fetch command, the live NSP-to-containerlab flow.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		flags fetchFlags
		out   fetchOutputs
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the L2 topology from an NSP and export a containerlab file",
		Long: `Fetch the Layer 2 topology from a Nokia NSP and export it as a
containerlab topology file.

Connection settings are resolved from flags, then NSP_* environment
variables (a .env file in the working directory is loaded first), then the
saved profile. Missing credentials are prompted for interactively.

Fetched topologies are cached locally; use --refresh to force a live fetch
or --no-cache to bypass the cache entirely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), flags, out)
		},
	}

	cmd.Flags().StringVarP(&flags.server, "server", "s", "", "NSP server address or URL")
	cmd.Flags().StringVarP(&flags.username, "username", "u", "", "NSP username (prompted when empty)")
	cmd.Flags().StringVarP(&flags.password, "password", "p", "", "NSP password (prompted when empty)")
	cmd.Flags().StringVar(&flags.proxy, "proxy", "", "HTTP proxy for NSP requests")
	cmd.Flags().StringVar(&flags.network, "network", "", "network to fetch (default "+nsp.DefaultNetwork+")")
	cmd.Flags().StringVar(&flags.profileName, "profile", "", "saved profile to use (default profile when empty)")
	cmd.Flags().BoolVar(&flags.insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "timeout per NSP request")
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "output file (default "+defaultLabFile+")")
	cmd.Flags().StringVar(&out.labName, "name", "", "lab name written into the topology file")
	cmd.Flags().BoolVar(&out.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&out.refresh, "refresh", false, "bypass the fetch cache")
	cmd.Flags().BoolVar(&out.archive, "archive", false, "archive the raw topology as a snapshot")

	return cmd
}

// runFetch resolves the connection, fetches the topology, and writes the lab.
func (c *CLI) runFetch(ctx context.Context, flags fetchFlags, out fetchOutputs) error {
	// A .env in the working directory supplies NSP_* variables; a missing
	// file is fine.
	_ = godotenv.Load()

	ctx = withLogger(ctx, c.Logger)

	store, err := profile.NewStore("")
	if err != nil {
		c.Logger.Debug("profile store unavailable", "err", err)
		store = nil
	}

	cfg, prof, err := resolveConnection(flags, store)
	if err != nil {
		return err
	}

	if cfg.Username == "" {
		if cfg.Username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if cfg.Password == "" {
		if cfg.Password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	cacheStore, err := newCache(ctx, out.noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	cfg.Cache = cacheStore
	cfg.Logger = c.Logger
	client, err := nsp.New(cfg)
	if err != nil {
		return err
	}

	// The runner shares the client's cache store and closes it.
	runner := pipeline.NewRunner(cacheStore, nil, c.Logger)
	defer runner.Close()

	opts := pipeline.Options{
		Fetcher: client,
		Refresh: out.refresh,
		LabName: out.labName,
		Logger:  c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching topology from %s...", client.Server()))
	spinner.Start()

	raw, cached, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	g, stats, err := runner.Normalize(ctx, raw, opts)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	lab := runner.ExportLab(ctx, g, opts)

	outputPath, err := resolveOutput(out.output, defaultLabFile)
	if err != nil {
		return err
	}
	if err := clab.WriteDocumentFile(lab, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if out.archive {
		if err := archiveSnapshot(ctx, raw, prof.MongoURI); err != nil {
			printWarning("Snapshot not archived: %v", err)
		}
	}

	printSuccess("Topology exported")
	printFile(outputPath)
	printStats(stats.Nodes, stats.Links, cached)
	if stats.LAGs > 0 {
		printDetail("%d LAG endpoints collapsed", stats.LAGs)
	}
	if stats.Duplicates > 0 {
		printDetail("%d duplicate link reports dropped", stats.Duplicates)
	}
	if stats.Isolated > 0 {
		printDetail("%d isolated nodes kept", stats.Isolated)
	}
	printNewline()
	printNextStep("Compute a diagram layout", appName+" layout "+outputPath)

	return nil
}

// =============================================================================
// Connection Resolution
// =============================================================================

// resolveConnection merges flags, NSP_* environment variables, and the saved
// profile into a client config. Flags win over the environment, which wins
// over the profile. The password never comes from the profile; it also
// returns the profile so callers can reach profile-only settings.
func resolveConnection(flags fetchFlags, store *profile.Store) (nsp.Config, profile.Profile, error) {
	var prof profile.Profile
	if store != nil {
		p, err := store.Get(flags.profileName)
		switch {
		case err == nil:
			prof = p
		case flags.profileName != "":
			// An explicitly named profile must exist.
			return nsp.Config{}, profile.Profile{}, fmt.Errorf("load profile: %w", err)
		}
	}

	cfg := nsp.Config{
		Server:   firstOf(flags.server, os.Getenv(envServer), prof.Server),
		Username: firstOf(flags.username, os.Getenv(envUsername), prof.Username),
		Password: firstOf(flags.password, os.Getenv(envPassword)),
		Proxy:    firstOf(flags.proxy, os.Getenv(envProxy), prof.Proxy),
		Network:  firstOf(flags.network, prof.Network),
		Insecure: flags.insecure || prof.Insecure,
		Timeout:  flags.timeout,
	}
	if cfg.Server == "" {
		return nsp.Config{}, profile.Profile{}, fmt.Errorf("NSP server is required (use --server, %s, or a profile)", envServer)
	}
	return cfg, prof, nil
}

// =============================================================================
// Prompts
// =============================================================================

// promptLine reads one line from stdin with a prompt.
func promptLine(prompt string) (string, error) {
	printInline("%s", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo. It refuses to prompt when
// stdin is not a terminal so piped runs fail fast instead of hanging.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password required (use --password or %s)", envPassword)
	}
	printInline("%s", prompt)
	defer printNewline()
	secret, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// =============================================================================
// Snapshot Archiving
// =============================================================================

// archiveSnapshot saves the raw topology to the snapshot archive. The
// MongoDB backend is selected by TOPOLAB_MONGO_URI, falling back to the
// profile's mongo_uri; otherwise snapshots go to the local file store.
func archiveSnapshot(ctx context.Context, raw *topo.RawTopology, profileURI string) error {
	logger := loggerFromContext(ctx)

	uri := firstOf(os.Getenv(archive.EnvMongoURI), profileURI)
	store, err := archive.Open(ctx, uri, "")
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.Debug("close snapshot store", "err", err)
		}
	}()

	snap := archive.New(raw)
	if err := store.Save(ctx, snap); err != nil {
		return err
	}
	logger.Debug("archived snapshot", "id", snap.ID, "links", snap.Links)
	printDetail("Archived snapshot %s", snap.ID)
	return nil
}
