// Package templates loads read-only weekly template presets from YAML files.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
)

// Preset is a named weekly template shipped with the service.
type Preset struct {
	Name        string
	Description string
	Template    calendar.WeeklyTemplate
}

// Ref returns the template reference used for plan versioning.
func (p Preset) Ref() string {
	return "preset:" + p.Name
}

type presetFile struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Slots       calendar.RawTemplate `yaml:"slots"`
}

// Loader keeps presets in memory keyed by lower-cased name.
type Loader struct {
	mu      sync.RWMutex
	presets map[string]Preset
	logger  *zap.Logger
}

// NewLoader creates an empty loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{presets: make(map[string]Preset), logger: logger}
}

// LoadFromDir loads every *.yaml and *.yml file in dir. Invalid files are
// logged and skipped. A missing directory yields no presets.
func (l *Loader) LoadFromDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			l.logger.Info("template preset directory not found", zap.String("dir", dir))
			return nil
		}
		return fmt.Errorf("stat preset dir: %w", err)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("glob preset files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			l.logger.Warn("failed to load template preset", zap.String("file", file), zap.Error(err))
			continue
		}
		loaded++
	}
	l.logger.Info("template presets loaded", zap.Int("count", loaded), zap.Int("files", len(files)))
	return nil
}

// LoadFromFile parses and validates a single preset file.
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse preset yaml: %w", err)
	}
	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	tmpl, err := calendar.ResolveTemplate(file.Slots)
	if err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}

	l.mu.Lock()
	l.presets[strings.ToLower(name)] = Preset{Name: name, Description: file.Description, Template: tmpl}
	l.mu.Unlock()
	return nil
}

// Get returns a preset by name, case-insensitively.
func (l *Loader) Get(name string) (Preset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	preset, ok := l.presets[strings.ToLower(strings.TrimSpace(name))]
	return preset, ok
}

// List returns all presets sorted by name.
func (l *Loader) List() []Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Preset, 0, len(l.presets))
	for _, preset := range l.presets {
		out = append(out, preset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
