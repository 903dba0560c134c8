package cmd

import (
	"os"

	"github.com/kebairia/wikiops/internal/backup"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump the wiki database and rotate old backups",
	Long: `backup runs pg_dump inside the database service through the compose
CLI, streams the dump into backups/<prefix>_<timestamp>.sql, and then
deletes all but the most recent backups per the retention setting.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runBackup(cmd))
	},
}

func runBackup(cmd *cobra.Command) int {
	cfg, log, cleanup, ok := setup(cmd)
	if !ok {
		return 1
	}
	defer cleanup()

	if err := backup.New(cfg, log).Run(cmd.Context()); err != nil {
		log.Error("backup failed", "error", err)
		return 1
	}
	return 0
}
