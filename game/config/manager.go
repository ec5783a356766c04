package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/wricardo/wordle-rooms/game/engine"
	"github.com/wricardo/wordle-rooms/game/service"
)

// DefaultPresetID names the preset used when none is requested.
const DefaultPresetID = "classic"

var ErrInvalidPreset = errors.New("invalid preset")

// supported preset file extensions
var extensions = []string{".json", ".yaml", ".yml"}

// builtin presets are always available and may be overridden by files
func builtin() map[string]*service.PresetInfo {
	return map[string]*service.PresetInfo{
		"classic": {
			ID:          "classic",
			Name:        "Classic",
			Description: "Head-to-head, five words",
			MaxRounds:   5,
			MaxPlayers:  2,
		},
		"party": {
			ID:          "party",
			Name:        "Party",
			Description: "Up to eight players, ten words",
			MaxRounds:   10,
			MaxPlayers:  8,
		},
		"marathon": {
			ID:          "marathon",
			Name:        "Marathon",
			Description: "Small group, twenty words",
			MaxRounds:   20,
			MaxPlayers:  4,
		},
	}
}

// Manager handles room preset loading and caching
type Manager struct {
	presetDir string
	presets   map[string]*service.PresetInfo
	mu        sync.RWMutex
}

// NewManager creates a preset manager. An empty presetDir serves the
// built-in presets only.
func NewManager(presetDir string) (*Manager, error) {
	if presetDir != "" {
		if _, err := os.Stat(presetDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
		}
	}

	m := &Manager{presetDir: presetDir}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload discards the cache and reads every preset file again. Invalid
// files are skipped with a warning.
func (m *Manager) Reload() error {
	presets := builtin()

	if m.presetDir != "" {
		entries, err := os.ReadDir(m.presetDir)
		if err != nil {
			return fmt.Errorf("failed to read preset directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !isPresetFile(entry.Name()) {
				continue
			}

			p, err := LoadFile(filepath.Join(m.presetDir, entry.Name()))
			if err != nil {
				log.Warn().Str("module", "game.config").Str("file", entry.Name()).Err(err).Msg("skipping preset")
				continue
			}
			presets[p.ID] = p
		}
	}

	m.mu.Lock()
	m.presets = presets
	m.mu.Unlock()

	log.Debug().Str("module", "game.config").Int("presets", len(presets)).Msg("presets loaded")
	return nil
}

// Preset returns a preset by id
func (m *Manager) Preset(id string) (*service.PresetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.presets[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrPresetNotFound, id)
	}
	return p, nil
}

// ListPresets returns all presets sorted by id
func (m *Manager) ListPresets() ([]*service.PresetInfo, error) {
	m.mu.RLock()
	result := make([]*service.PresetInfo, 0, len(m.presets))
	for _, p := range m.presets {
		result = append(result, p)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Default returns the classic preset
func (m *Manager) Default() *service.PresetInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.presets[DefaultPresetID]; ok {
		return p
	}
	return builtin()[DefaultPresetID]
}

// LoadFile reads and validates a single preset file. The id defaults to
// the file name without its extension.
func LoadFile(path string) (*service.PresetInfo, error) {
	v := viper.New()
	v.SetConfigFile(path)

	base := filepath.Base(path)
	id := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	v.SetDefault("id", id)
	v.SetDefault("name", id)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	var p service.PresetInfo
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	p.Filename = base

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks a preset's id and room bounds
func Validate(p *service.PresetInfo) error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPreset)
	}
	if err := engine.ValidateSettings(p.MaxRounds, p.MaxPlayers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	return nil
}

func isPresetFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
