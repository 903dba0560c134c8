package cmd

import (
	"fmt"
	"os"

	"github.com/kebairia/wikiops/internal/config"
	"github.com/kebairia/wikiops/internal/health"
	"github.com/kebairia/wikiops/internal/logger"
	"github.com/kebairia/wikiops/internal/privilege"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the deployment environment",
	Long: `health verifies the deployment front to back: privileges, compose
file, env file, data directories, compose CLI, container status, and an
HTTP probe against the wiki. Exits 1 only when an error-class problem
was found; warnings alone do not fail the check.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runHealth(cmd))
	},
}

func runHealth(cmd *cobra.Command) int {
	cfg, log, cleanup, ok := setup(cmd)
	if !ok {
		return 1
	}
	defer cleanup()

	tally := health.NewChecker(cfg, log).Run(cmd.Context())
	if tally.Error > 0 {
		return 1
	}
	return 0
}

// privileged reports whether the process passes the platform gate. A var so
// tests can stub it.
var privileged = func() bool { return privilege.New().Privileged() }

// setup enforces the privilege gate, then loads the configuration and
// builds the run logger. Shared by both commands. The gate runs before any
// filesystem side effect, so an unprivileged run touches nothing.
func setup(cmd *cobra.Command) (config.Config, logger.Logger, func(), bool) {
	if !privileged() {
		fmt.Fprintln(os.Stderr, "ERROR: this command must run with elevated privileges")
		fmt.Fprintf(os.Stderr, "       %s\n", privilege.Hint())
		return config.Config{}, nil, nil, false
	}

	explicit := cmd.Root().PersistentFlags().Changed("config")
	cfg, err := config.Load(ConfigFile, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return config.Config{}, nil, nil, false
	}

	log, cleanup, err := logger.New(cfg.LogPath())
	if err != nil {
		// Losing the log file is not worth aborting the run over.
		fmt.Fprintf(os.Stderr, "WARN: %v; logging to console only\n", err)
		log, cleanup, _ = logger.New("")
	}
	return cfg, log, cleanup, true
}
