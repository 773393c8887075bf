package crawler

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"semgraph/internal/logging"
)

// Crawler enumerates analyzable source files under a root.
type Crawler struct {
	ignored   map[string]bool
	supported func(name string) bool
	gitignore *ignore.GitIgnore
	logger    *slog.Logger
}

// NewCrawler creates a crawler that prunes directories named in ignored and
// emits files accepted by supported.
func NewCrawler(ignored map[string]bool, supported func(name string) bool) *Crawler {
	if ignored == nil {
		ignored = map[string]bool{}
	}
	return &Crawler{
		ignored:   ignored,
		supported: supported,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger used for skipped entries.
func (c *Crawler) WithLogger(l *slog.Logger) *Crawler {
	c.logger = logging.OrDefault(l)
	return c
}

// WithGitignore additionally prunes paths matched by root/.gitignore.
// A missing .gitignore leaves the crawler unchanged.
func (c *Crawler) WithGitignore(root string) (*Crawler, error) {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	c.gitignore = gi
	return c, nil
}

// Walk visits root top-down and calls onFile with the absolute path of every
// supported file. Excluded directories are pruned before descent and
// unreadable entries are skipped.
func (c *Crawler) Walk(root string, onFile func(path string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Debug("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}

		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			if c.ignored[d.Name()] || c.gitignored(absRoot, path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if c.supported != nil && !c.supported(d.Name()) {
			return nil
		}
		if c.gitignored(absRoot, path, false) {
			return nil
		}

		onFile(path)
		return nil
	})
}

// ListFiles collects Walk results in visit order.
func (c *Crawler) ListFiles(root string) ([]string, error) {
	var files []string
	err := c.Walk(root, func(path string) {
		files = append(files, path)
	})
	return files, err
}

func (c *Crawler) gitignored(root, path string, dir bool) bool {
	if c.gitignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}
	return c.gitignore.MatchesPath(rel)
}
