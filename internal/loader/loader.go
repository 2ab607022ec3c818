package loader

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	charmlog "github.com/charmbracelet/log"

	"docqa/internal/domain"
)

// ErrDataDirNotFound is returned when the configured data directory does not exist.
var ErrDataDirNotFound = errors.New("data directory not found")

// Loader reads plain-text documents from a directory tree.
type Loader struct {
	dir    string
	glob   string
	logger *charmlog.Logger
}

func New(dir, glob string, logger *charmlog.Logger) *Loader {
	if glob == "" {
		glob = "**/*.txt"
	}
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Loader{dir: dir, glob: glob, logger: logger}
}

// CheckDir verifies that the data directory exists and is a directory.
func (l *Loader) CheckDir() error {
	info, err := os.Stat(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDataDirNotFound, l.dir)
		}
		return fmt.Errorf("stat data directory %s: %w", l.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", l.dir)
	}
	return nil
}

// Load returns one Document per matching file, ordered by relative path.
// Zero matches is not an error.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	if err := l.CheckDir(); err != nil {
		return nil, err
	}
	fsys := os.DirFS(l.dir)
	matches, err := doublestar.Glob(fsys, l.glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q in %s: %w", l.glob, l.dir, err)
	}
	sort.Strings(matches)

	documents := make([]domain.Document, 0, len(matches))
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			l.logger.Warn("skipping empty document", "path", rel)
			continue
		}
		documents = append(documents, domain.Document{
			ID:      hashString(rel),
			Path:    filepath.Join(l.dir, filepath.FromSlash(rel)),
			Content: string(data),
		})
	}
	return documents, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
