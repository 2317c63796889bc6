package grading

import (
	"os"

	"go.uber.org/zap"
)

// ReleaseArtifacts removes temporary page images. Missing files are ignored;
// other failures are logged and skipped so a stuck file never fails a run.
func ReleaseArtifacts(paths []string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove page image", zap.String("path", path), zap.Error(err))
		}
	}
}
