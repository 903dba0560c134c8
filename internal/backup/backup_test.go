package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/wikiops/internal/compose"
	"github.com/kebairia/wikiops/internal/config"
	"github.com/kebairia/wikiops/internal/envfile"
	"github.com/kebairia/wikiops/internal/logger"
)

const testEnv = "POSTGRES_USER=wikijs\nPOSTGRES_PASSWORD=secret\nPOSTGRES_DB=wiki\n"

// newTestOrchestrator builds an Orchestrator over a temp project root whose
// compose prefix is a stub executable with the given shell body.
func newTestOrchestrator(t *testing.T, script string) *Orchestrator {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.ProjectRoot = root
	require.NoError(t, os.WriteFile(cfg.EnvPath(), []byte(testEnv), 0644))

	stub := filepath.Join(t.TempDir(), "compose-stub")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\n"+script+"\n"), 0755))

	return &Orchestrator{
		Config: cfg,
		Log:    logger.NewNop(),
		Resolve: func(ctx context.Context) (compose.Command, error) {
			return compose.NewCommand(stub), nil
		},
		Now: func() time.Time {
			return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		},
	}
}

func readMetadata(t *testing.T, dir string) Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, MetadataFilename))
	require.NoError(t, err)
	var record Record
	require.NoError(t, json.Unmarshal(data, &record))
	return record
}

func TestRun_WritesDumpBytes(t *testing.T) {
	o := newTestOrchestrator(t, `printf 'dump content'`)

	require.NoError(t, o.Run(context.Background()))

	dest := filepath.Join(o.Config.BackupDir(), "wikijs_db_20260830_120000.sql")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "dump content", string(data))

	record := readMetadata(t, o.Config.BackupDir())
	assert.Equal(t, "success", record.Status)
	assert.Equal(t, "wiki", record.Database)
	assert.Equal(t, dest, record.File)
	assert.Equal(t, int64(len("dump content")), record.SizeBytes)
}

func TestRun_DumpFailureRemovesPartialFile(t *testing.T) {
	o := newTestOrchestrator(t, `printf 'partial bytes'
echo 'connection to server failed' >&2
exit 1`)

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection to server failed")

	dest := filepath.Join(o.Config.BackupDir(), "wikijs_db_20260830_120000.sql")
	assert.NoFileExists(t, dest)

	record := readMetadata(t, o.Config.BackupDir())
	assert.Equal(t, "failed", record.Status)
	assert.NotEmpty(t, record.Error)
}

func TestRun_MissingEnvKeysFailBeforeAnySideEffect(t *testing.T) {
	o := newTestOrchestrator(t, `printf 'dump'`)
	require.NoError(t, os.WriteFile(o.Config.EnvPath(), []byte("POSTGRES_USER=wikijs\n"), 0644))

	err := o.Run(context.Background())
	require.ErrorIs(t, err, envfile.ErrMissingKeys)
	assert.Contains(t, err.Error(), "POSTGRES_DB")
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
	assert.NoDirExists(t, o.Config.BackupDir())
}

func TestRun_RotatesAfterSuccess(t *testing.T) {
	o := newTestOrchestrator(t, `printf 'dump'`)
	o.Config.Retention.KeepLast = 10

	dir := o.Config.BackupDir()
	require.NoError(t, os.MkdirAll(dir, 0755))
	base := time.Now().Add(-48 * time.Hour)
	for i := 0; i < 12; i++ {
		path := filepath.Join(dir, fmt.Sprintf("wikijs_db_202607%02d_120000.sql", i+1))
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
		mtime := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	require.NoError(t, o.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	remaining := 0
	for _, entry := range entries {
		if matchesPattern(entry.Name(), "wikijs_db") {
			remaining++
		}
	}
	assert.Equal(t, 10, remaining)
	assert.FileExists(t, filepath.Join(dir, "wikijs_db_20260830_120000.sql"))
}

func TestRun_CompressProducesZstArtifact(t *testing.T) {
	o := newTestOrchestrator(t, `printf 'dump content'`)
	o.Config.Backup.Compress = true

	require.NoError(t, o.Run(context.Background()))

	dir := o.Config.BackupDir()
	assert.NoFileExists(t, filepath.Join(dir, "wikijs_db_20260830_120000.sql"))
	assert.FileExists(t, filepath.Join(dir, "wikijs_db_20260830_120000.sql.zst"))

	record := readMetadata(t, dir)
	assert.Equal(t, "success", record.Status)
	assert.Equal(t, filepath.Join(dir, "wikijs_db_20260830_120000.sql.zst"), record.File)
}

func TestRun_PassesUserAndDatabaseToDump(t *testing.T) {
	o := newTestOrchestrator(t, `echo "$@" > "$ARGS_FILE"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("ARGS_FILE", argsFile)

	require.NoError(t, o.Run(context.Background()))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "exec -T db pg_dump -U wikijs wiki\n", string(data))
}
