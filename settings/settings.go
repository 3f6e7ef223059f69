// Package settings handles tabsnap preferences from a YAML file.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/tabsnap/export"
)

// Settings are the user preferences that shape every capture and
// export. Blocklist is newline-separated hostname fragments; see
// session.Filter for matching semantics.
type Settings struct {
	Format        string `yaml:"format" json:"format"`
	OpenAndClose  bool   `yaml:"open_and_close" json:"open_and_close"`
	AutoSave      bool   `yaml:"auto_save" json:"auto_save"`
	EnableHistory bool   `yaml:"enable_history" json:"enable_history"`
	Blocklist     string `yaml:"blocklist" json:"blocklist"`
}

// Defaults returns the out-of-the-box preferences.
func Defaults() Settings {
	return Settings{Format: "html"}
}

// Validate rejects settings that would fail later at export time.
func (s Settings) Validate() error {
	if _, err := export.ParseFormat(s.Format); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.Format == "" {
		s.Format = "html"
	}
}

// Load reads preferences from path. A missing file is not an error;
// it yields Defaults, so first runs need no setup step.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("settings: read: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parse: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes preferences to path, creating parent directories.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write: %w", err)
	}
	return nil
}
