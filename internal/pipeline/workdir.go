package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const workDirPrefix = "pdfsheet-"

func createWorkDir(root, runID string) (string, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return "", err
		}
	}
	return os.MkdirTemp(root, workDirPrefix+runID+"-")
}

// removeWorkDir deletes dir recursively. A missing dir is not an error.
func removeWorkDir(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("dir", dir).Msg("failed to remove working directory")
	}
}

// CleanupStale removes working directories under root (os.TempDir when empty)
// left behind by earlier processes and older than maxAge.
func CleanupStale(root string, maxAge time.Duration) int {
	if root == "" {
		root = os.TempDir()
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), workDirPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if os.RemoveAll(filepath.Join(root, e.Name())) == nil {
			removed++
		}
	}
	return removed
}
