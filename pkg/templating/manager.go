package templating

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrMissingTemplate is returned when a named template cannot be read.
var ErrMissingTemplate = errors.New("template not found")

// TemplateManager loads templates from a single directory and renders them.
// It holds no template content between calls: every Execute reads the file
// again. All methods are safe for concurrent use.
type TemplateManager struct {
	logger      *slog.Logger
	templateDir string
}

// NewTemplateManager creates a TemplateManager serving files from templateDir.
// The directory is checked once so that a misconfiguration is reported at
// startup, but a missing directory is not fatal: requests for its templates
// will fail with ErrMissingTemplate instead.
func NewTemplateManager(logger *slog.Logger, templateDir string) *TemplateManager {
	tm := &TemplateManager{
		logger:      logger,
		templateDir: templateDir,
	}

	if info, err := os.Stat(templateDir); err != nil || !info.IsDir() {
		logger.Warn("Template directory is not readable, pages will fail to render", "dir", templateDir)
	} else {
		logger.Info("Template manager initialized", "dir", templateDir, "templates", len(tm.GetTemplateNames()))
	}
	return tm
}

// Load reads the raw text of the named template.
func (tm *TemplateManager) Load(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: invalid name %q", ErrMissingTemplate, name)
	}
	data, err := os.ReadFile(filepath.Join(tm.templateDir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingTemplate, name, err)
	}
	return string(data), nil
}

// Execute renders the named template with the given replacements and writes
// the result to w. Nothing is written if the template cannot be loaded.
func (tm *TemplateManager) Execute(w io.Writer, name string, replacements []Replacement) error {
	text, err := tm.Load(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, Render(text, replacements))
	return err
}

// GetTemplateDir returns the directory templates are read from.
func (tm *TemplateManager) GetTemplateDir() string {
	return tm.templateDir
}

// GetTemplateNames returns the sorted names of the .html files currently in
// the template directory.
func (tm *TemplateManager) GetTemplateNames() []string {
	matches, err := filepath.Glob(filepath.Join(tm.templateDir, "*.html"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names
}
