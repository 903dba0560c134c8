package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kebairia/wikiops/internal/compose"
	"github.com/kebairia/wikiops/internal/config"
	"github.com/kebairia/wikiops/internal/envfile"
	"github.com/kebairia/wikiops/internal/logger"
)

// Required env keys for a backup run. The password is validated for
// presence but never passed to pg_dump: the dump authenticates through the
// orchestrator's own trusted channel.
const (
	KeyUser     = "POSTGRES_USER"
	KeyPassword = "POSTGRES_PASSWORD"
	KeyDatabase = "POSTGRES_DB"
)

// TimestampLayout names backup files so lexicographic order equals
// chronological order.
const TimestampLayout = "20060102_150405"

// Orchestrator runs one backup front to back: env load, directory setup,
// dump through the compose CLI, then best-effort retention rotation.
// Resolve and Now are injectable for tests.
type Orchestrator struct {
	Config  config.Config
	Log     logger.Logger
	Resolve func(ctx context.Context) (compose.Command, error)
	Now     func() time.Time
}

// New builds an Orchestrator over the host's compose CLI.
func New(cfg config.Config, log logger.Logger) *Orchestrator {
	resolver := compose.NewResolver()
	return &Orchestrator{
		Config:  cfg,
		Log:     log,
		Resolve: resolver.Resolve,
		Now:     time.Now,
	}
}

// Run performs the backup. Every step up to and including the dump is
// fail-fast; rotation failures only warn.
func (o *Orchestrator) Run(ctx context.Context) error {
	cfg := o.Config

	env, err := envfile.Load(cfg.EnvPath(), KeyUser, KeyPassword, KeyDatabase)
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	user := env[KeyUser]
	database := env[KeyDatabase]

	dir := cfg.BackupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory %q: %w", dir, err)
	}
	o.Log.Info("backup directory ready", "path", dir)

	started := o.Now()
	dest := filepath.Join(dir,
		fmt.Sprintf("%s_%s.sql", cfg.Backup.Prefix, started.Format(TimestampLayout)))
	o.Log.Info("backup file", "path", dest)

	cmd, err := o.Resolve(ctx)
	if err != nil {
		return err
	}
	o.Log.Info("compose command resolved", "command", cmd.String())

	record := Record{Database: database, StartedAt: started}
	if err := o.dump(ctx, cmd, user, database, dest); err != nil {
		record.Status = "failed"
		record.Error = err.Error()
		record.DurationMS = o.Now().Sub(started).Milliseconds()
		o.writeRecord(record)
		return err
	}

	if cfg.Backup.Compress {
		compressed, err := CompressZstd(dest)
		if err != nil {
			return fmt.Errorf("compress backup file: %w", err)
		}
		o.Log.Info("backup compressed", "path", compressed)
		dest = compressed
	}

	record.Status = "success"
	record.File = dest
	record.DurationMS = o.Now().Sub(started).Milliseconds()
	if info, err := os.Stat(dest); err == nil {
		record.SizeBytes = info.Size()
	}
	o.writeRecord(record)

	deleted := Rotate(dir, cfg.Backup.Prefix, cfg.Retention.KeepLast, o.Log)
	if deleted > 0 {
		o.Log.Info("rotation removed old backups",
			"deleted", deleted, "keep_last", cfg.Retention.KeepLast)
	}

	o.Log.Info("backup complete", "path", dest)
	return nil
}

// dump streams pg_dump's stdout straight into dest, capturing stderr. On a
// non-zero exit the destination is deleted so a partial artifact is never
// kept.
func (o *Orchestrator) dump(ctx context.Context, cmd compose.Command, user, database, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create backup file %q: %w", dest, err)
	}

	var stderr bytes.Buffer
	dump := cmd.Exec(ctx, "exec", "-T", o.Config.Service, "pg_dump", "-U", user, database)
	dump.Dir = o.Config.ProjectRoot
	dump.Stdout = out
	dump.Stderr = &stderr

	o.Log.Info("starting pg_dump", "service", o.Config.Service, "database", database)
	runErr := dump.Run()
	closeErr := out.Close()

	if runErr != nil {
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			o.Log.Warn("failed to remove partial backup file", "path", dest, "error", err)
		}
		o.Log.Info("make sure the database service is running and the env values are correct",
			"service", o.Config.Service)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("pg_dump failed: %w: %s", runErr, msg)
		}
		return fmt.Errorf("pg_dump failed: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to finalize backup file %q: %w", dest, closeErr)
	}
	return nil
}

// writeRecord persists the run metadata; a failure here only warns.
func (o *Orchestrator) writeRecord(record Record) {
	if err := record.Write(o.Config.BackupDir()); err != nil {
		o.Log.Warn("failed to write backup metadata", "error", err)
	}
}
