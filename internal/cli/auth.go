package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topolab/pkg/errors"
	"github.com/matzehuels/topolab/pkg/nsp"
	"github.com/matzehuels/topolab/pkg/profile"
)

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage saved NSP connection profiles",
		Long: `Save NSP connection settings as named profiles so fetch does not need
the full flag set every time.

Profiles never store passwords; those come from NSP_PASSWORD or an
interactive prompt at fetch time. Profiles are stored in
~/.config/topolab/profiles.toml`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authDefaultCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var (
		name        string
		makeDefault bool
		noVerify    bool
		prof        profile.Profile
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an NSP connection profile",
		Long: `Save NSP connection settings as a named profile. Missing server or
username values are prompted for.

Unless --no-verify is given, the credentials are checked with a throwaway
NSP login before saving. The password used for verification is never
stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAuthLogin(cmd.Context(), name, prof, makeDefault, noVerify)
		},
	}

	cmd.Flags().StringVar(&name, "name", "default", "profile name")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default profile")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "save without checking credentials")
	cmd.Flags().StringVarP(&prof.Server, "server", "s", "", "NSP server address or URL")
	cmd.Flags().StringVarP(&prof.Username, "username", "u", "", "NSP username")
	cmd.Flags().StringVar(&prof.Proxy, "proxy", "", "HTTP proxy for NSP requests")
	cmd.Flags().StringVar(&prof.Network, "network", "", "network to fetch (default "+nsp.DefaultNetwork+")")
	cmd.Flags().StringVar(&prof.MongoURI, "mongo-uri", "", "MongoDB URI for snapshot archiving")
	cmd.Flags().BoolVar(&prof.Insecure, "insecure", false, "skip TLS certificate verification")

	return cmd
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [name]",
		Short: "Delete a saved profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := profile.NewStore("")
			if err != nil {
				return fmt.Errorf("open profile store: %w", err)
			}

			var name string
			if len(args) > 0 {
				name = args[0]
			} else {
				f, err := store.Load()
				if err != nil {
					return err
				}
				if f.Default == "" {
					return profile.ErrNoDefault
				}
				name = f.Default
			}

			if err := store.Delete(name); err != nil {
				return fmt.Errorf("delete profile: %w", err)
			}
			printSuccess("Profile %q deleted", name)
			return nil
		},
	}
}

// authDefaultCommand creates the default subcommand.
func (c *CLI) authDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Select the default profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := profile.NewStore("")
			if err != nil {
				return fmt.Errorf("open profile store: %w", err)
			}
			if err := store.SetDefault(args[0]); err != nil {
				return err
			}
			printSuccess("Default profile is now %q", args[0])
			return nil
		},
	}
}

// authStatusCommand creates the status subcommand.
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := profile.NewStore("")
			if err != nil {
				return fmt.Errorf("open profile store: %w", err)
			}
			f, err := store.Load()
			if err != nil {
				return err
			}
			if len(f.Profiles) == 0 {
				printInfo("No profiles saved")
				printDetail("Run '%s auth login' to create one", appName)
				return nil
			}

			names := make([]string, 0, len(f.Profiles))
			for name := range f.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				p := f.Profiles[name]
				title := name
				if name == f.Default {
					title += " (default)"
				}
				fmt.Println(StyleTitle.Render(title))
				printKeyValue("Server", p.Server)
				if p.Username != "" {
					printKeyValue("Username", p.Username)
				}
				if p.Network != "" {
					printKeyValue("Network", p.Network)
				}
				if p.Proxy != "" {
					printKeyValue("Proxy", p.Proxy)
				}
				if p.MongoURI != "" {
					printKeyValue("Archive", p.MongoURI)
				}
				if p.Insecure {
					printKeyValue("TLS", "verification disabled")
				}
				printNewline()
			}
			printDetail("File: %s", store.Path())
			return nil
		},
	}
}

// =============================================================================
// Profile Login
// =============================================================================

// runAuthLogin fills in, verifies, and saves a profile.
func (c *CLI) runAuthLogin(ctx context.Context, name string, prof profile.Profile, makeDefault, noVerify bool) error {
	if err := errors.ValidateProfileName(name); err != nil {
		return err
	}

	_ = godotenv.Load()

	var err error
	if prof.Server == "" {
		prof.Server = os.Getenv(envServer)
	}
	if prof.Username == "" {
		prof.Username = os.Getenv(envUsername)
	}
	if prof.Server == "" {
		if prof.Server, err = promptLine("Server: "); err != nil {
			return err
		}
	}
	if prof.Username == "" {
		if prof.Username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if prof.Server == "" {
		return errors.New(errors.ErrCodeInvalidServer, "NSP server is required")
	}

	if !noVerify {
		if err := c.verifyProfile(ctx, prof); err != nil {
			return err
		}
	}

	store, err := profile.NewStore("")
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	if err := store.Save(name, prof, makeDefault); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	printSuccess("Profile %q saved", name)
	printDetail("File: %s", store.Path())
	return nil
}

// verifyProfile checks the profile's credentials with a throwaway login. The
// password comes from NSP_PASSWORD or a prompt and is discarded afterwards.
func (c *CLI) verifyProfile(ctx context.Context, prof profile.Profile) error {
	password := os.Getenv(envPassword)
	if password == "" {
		var err error
		if password, err = promptPassword("Password (verification only): "); err != nil {
			return err
		}
	}

	client, err := nsp.New(nsp.Config{
		Server:   prof.Server,
		Username: prof.Username,
		Password: password,
		Proxy:    prof.Proxy,
		Network:  prof.Network,
		Insecure: prof.Insecure,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Verifying credentials...")
	spinner.Start()

	sess, err := client.Login(ctx)
	if err != nil {
		spinner.StopWithError("Verification failed")
		return fmt.Errorf("verify credentials: %w", err)
	}
	if err := sess.Revoke(ctx); err != nil {
		c.Logger.Debug("revoke verification session", "err", err)
	}
	spinner.Stop()

	printSuccess("Credentials verified against %s", client.Server())
	return nil
}
