package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// ArtifactPath returns the on-disk path of the artifact for key. The process id keeps
// paths unique across server instances sharing tmpDir.
func ArtifactPath(tmpDir string, pid int, key domain.Fingerprint, format domain.Format) string {
	short := strings.ReplaceAll(domain.ShortenPath(key.String()), string(os.PathSeparator), "_")
	name := fmt.Sprintf("sqlapi-%d-%s:%s.%s", pid, short, domain.DefaultLayerName, format.Extension)
	return filepath.Join(tmpDir, name)
}

// removeArtifact deletes path. A missing file counts as removed.
func removeArtifact(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return zerr.With(zerr.Wrap(err, "failed to remove artifact"), "path", path)
}

// cleanup removes path, logging failures instead of returning them.
func cleanup(logger ports.Logger, path string) {
	if err := removeArtifact(path); err != nil {
		logger.Error(err)
		return
	}
	logger.Info("artifact removed", "path", path)
}
