package seed

import (
	_ "embed"
	"fmt"
	"log"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset describes a named seeding scenario.
type Preset struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Users          int    `yaml:"users"`
	Posts          int    `yaml:"posts"`
	FollowsPerUser int    `yaml:"follows_per_user"`
	SkipBcrypt     bool   `yaml:"skip_bcrypt"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets parses raw YAML into presets. Names must be unique.
func LoadPresets(raw []byte) ([]Preset, error) {
	var file presetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	seen := make(map[string]bool, len(file.Presets))
	for _, p := range file.Presets {
		key := strings.ToLower(p.Name)
		if key == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		if p.Users < 0 || p.Posts < 0 || p.FollowsPerUser < 0 {
			return nil, fmt.Errorf("preset %q has negative counts", p.Name)
		}
		seen[key] = true
	}
	return file.Presets, nil
}

// Presets returns the built-in presets.
func Presets() []Preset {
	presets, err := LoadPresets(presetsYAML)
	if err != nil {
		panic(err)
	}
	return presets
}

// FindPreset looks a built-in preset up by case-insensitive name.
func FindPreset(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset seeds users, follows and engagement as described by the named preset.
func (s *Seeder) ApplyPreset(name string) error {
	preset, ok := FindPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	log.Printf("🌱 Applying preset %s: %s", preset.Name, preset.Description)
	if preset.SkipBcrypt {
		s.Factory.opts.SkipBcrypt = true
	}

	users, err := s.SeedUsers(preset.Users)
	if err != nil {
		return err
	}
	if _, err := s.SeedFollows(users, preset.FollowsPerUser); err != nil {
		return err
	}
	_, err = s.SeedEngagement(users, preset.Posts)
	return err
}
