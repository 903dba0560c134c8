package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kebairia/wikiops/internal/logger"
)

// Rotate deletes every backup file in dir beyond the keep most recent,
// ordered by modification time. Rotation is best-effort cleanup: listing
// and deletion failures warn and never fail the run. Returns the number of
// files removed.
func Rotate(dir, prefix string, keep int, log logger.Logger) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("rotation skipped, cannot list backup directory",
			"path", dir, "error", err)
		return 0
	}

	type backupFile struct {
		path    string
		modTime time.Time
	}

	var files []backupFile
	for _, entry := range entries {
		if entry.IsDir() || !matchesPattern(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Warn("rotation skipped a file", "name", entry.Name(), "error", err)
			continue
		}
		files = append(files, backupFile{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(files) <= keep {
		return 0
	}

	// Newest first; everything beyond rank keep is deleted.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	deleted := 0
	for _, f := range files[keep:] {
		if err := os.Remove(f.path); err != nil {
			log.Warn("failed to delete old backup", "path", f.path, "error", err)
			continue
		}
		log.Info("deleted old backup", "path", f.path)
		deleted++
	}
	return deleted
}

// matchesPattern reports whether name is a backup artifact for prefix,
// plain or zstd-compressed. The per-run metadata file never matches.
func matchesPattern(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+"_") &&
		(strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, ".sql.zst"))
}
