package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"semgraph/internal/logging"
)

const (
	SettingsDirName  = ".semgraph"
	SettingsFileName = "settings.json"
)

// ErrNoContext is returned when no repository has been recorded yet.
var ErrNoContext = errors.New("no current context recorded; run init in a repository")

// Settings is the per-user document naming the active repository.
type Settings struct {
	path   string
	logger *slog.Logger
}

// DefaultSettingsPath returns ~/.semgraph/settings.json.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, SettingsDirName, SettingsFileName), nil
}

func NewSettings(path string, logger *slog.Logger) *Settings {
	return &Settings{path: path, logger: logging.OrDefault(logger)}
}

func (s *Settings) Path() string { return s.path }

// read returns the document as a generic map so unknown keys survive a
// rewrite. Malformed documents read as empty.
func (s *Settings) read() map[string]any {
	doc := map[string]any{}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("settings unreadable", "path", s.path, "error", err)
		}
		return doc
	}
	if err := validateDocument("mem://prefs/settings.json", settingsSchema, raw); err != nil {
		s.logger.Warn("settings malformed", "path", s.path, "error", err)
		return doc
	}
	_ = json.Unmarshal(raw, &doc)
	return doc
}

// UpdateContext records dir as the current repository.
func (s *Settings) UpdateContext(dir string) error {
	doc := s.read()
	doc["current_context"] = dir

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// CurrentContext returns the recorded repository, or ErrNoContext.
func (s *Settings) CurrentContext() (string, error) {
	ctx, _ := s.read()["current_context"].(string)
	if strings.TrimSpace(ctx) == "" {
		return "", ErrNoContext
	}
	return ctx, nil
}

// EnsureGitignore makes sure root/.gitignore mentions entry, creating the
// file if needed. It reports whether the file was changed.
func EnsureGitignore(root, entry string) (bool, error) {
	path := filepath.Join(root, ".gitignore")
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	content := string(raw)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == entry || line == entry+"/" || line == "/"+entry || line == "/"+entry+"/" {
			return false, nil
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
