package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"ipcatalog/internal/config"
	"ipcatalog/internal/support"
)

// Opener builds the catalog once flags have been applied to the
// configuration. The closer releases whatever the catalog holds open.
type Opener func(ctx context.Context, cfg config.Config) (Service, io.Closer, error)

type root struct {
	cfg  config.Config
	open Opener

	service Service
	closers []io.Closer

	dbPath   string
	noEnrich bool
	noRDNS   bool
	logLevel string
}

// NewRootCommand returns the ipcatalog command tree. Without a subcommand it
// starts the interactive shell.
func NewRootCommand(cfg config.Config, open Opener) *cobra.Command {
	r := &root{cfg: cfg, open: open}

	cmd := &cobra.Command{
		Use:   "ipcatalog",
		Short: "Catalog IP addresses by reputation and rank the networks they fall in",
		Long: `ipcatalog records a reputation judgment for individual IP addresses,
enriched with routing metadata and reverse DNS, and ranks the networks
they belong to by aggregate score.

Classifications: b (benign), pb (probably benign), s (suspicious), m (malicious).
Patterns accept % for any run of characters and _ for exactly one.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  r.setup,
		PersistentPostRunE: r.teardown,
		RunE:               r.runShell,
	}

	cmd.PersistentFlags().StringVar(&r.dbPath, "db", "", "Database path or DSN (overrides IPCATALOG_DB_DSN)")
	cmd.PersistentFlags().BoolVar(&r.noEnrich, "no-enrich", false, "Skip routing metadata lookups")
	cmd.PersistentFlags().BoolVar(&r.noRDNS, "no-rdns", false, "Skip reverse DNS lookups")
	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <ip> <b|pb|s|m>",
			Short: "Record a judgment for an address",
			Args:  cobra.ExactArgs(2),
			RunE:  r.runCommand(runAdd),
		},
		&cobra.Command{
			Use:   "del <pattern>",
			Short: "Remove addresses matching a pattern",
			Args:  cobra.ExactArgs(1),
			RunE:  r.runCommand(runDelete),
		},
		&cobra.Command{
			Use:   "get [pattern]",
			Short: "List addresses matching a pattern",
			Args:  cobra.MaximumNArgs(1),
			RunE:  r.runCommand(runGet),
		},
		&cobra.Command{
			Use:   "subnet4 <length>",
			Short: "Rank IPv4 networks by aggregate score",
			Args:  cobra.ExactArgs(1),
			RunE:  r.runCommand(runSubnet4),
		},
		&cobra.Command{
			Use:   "subnet6 <length>",
			Short: "Rank IPv6 networks by aggregate score",
			Args:  cobra.ExactArgs(1),
			RunE:  r.runCommand(runSubnet6),
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE:  r.runShell,
		},
	)

	return cmd
}

func (r *root) applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		r.cfg.Database.DSN = r.dbPath
	}
	if r.noEnrich {
		r.cfg.Enrichment.Enabled = false
	}
	if r.noRDNS {
		r.cfg.ReverseDNS.Enabled = false
	}
	if r.logLevel != "" {
		r.cfg.Log.Level = r.logLevel
	}
}

func (r *root) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	r.applyFlags(cmd)

	logCloser, err := support.SetupLogging(r.cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	r.closers = append(r.closers, logCloser)

	service, closer, err := r.open(cmd.Context(), r.cfg)
	if err != nil {
		_ = r.teardown(cmd, nil)
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	r.service = service
	if closer != nil {
		r.closers = append(r.closers, closer)
	}

	log.Debug("Catalog opened",
		"driver", r.cfg.Database.Driver,
		"enrichment", r.cfg.Enrichment.Enabled,
		"rdns", r.cfg.ReverseDNS.Enabled)
	return nil
}

func (r *root) teardown(*cobra.Command, []string) error {
	var firstErr error
	// Release in reverse so the log file closes last.
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

func (r *root) runCommand(run handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		shell := NewShell(r.service, cmd.OutOrStdout())
		return r.closeOnError(cmd, run(cmd.Context(), shell, args))
	}
}

func (r *root) runShell(cmd *cobra.Command, _ []string) error {
	return r.closeOnError(cmd, NewShell(r.service, cmd.OutOrStdout()).Run(cmd.Context()))
}

// closeOnError releases resources when a command fails, since cobra skips
// the post-run hook in that case.
func (r *root) closeOnError(cmd *cobra.Command, err error) error {
	if err != nil {
		if closeErr := r.teardown(cmd, nil); closeErr != nil {
			log.Warn("Failed to release resources", "error", closeErr)
		}
	}
	return err
}
