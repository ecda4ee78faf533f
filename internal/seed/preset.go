package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a seeding profile loaded from a YAML file. Zero fields fall
// back to the defaults in normalize.
type Preset struct {
	Users           int            `yaml:"users"`
	Moderators      int            `yaml:"moderators"`
	Posts           int            `yaml:"posts"`
	CommentsPerPost int            `yaml:"comments_per_post"`
	PrivateRatio    float64        `yaml:"private_ratio"`
	MaxDays         int            `yaml:"max_days"`
	Schools         []PresetSchool `yaml:"schools"`
}

// PresetSchool describes a school node in a preset; children nest to
// arbitrary depth.
type PresetSchool struct {
	Name        string         `yaml:"name"`
	Slug        string         `yaml:"slug"`
	Description string         `yaml:"description"`
	Children    []PresetSchool `yaml:"children"`
}

// builtinPresets are named profiles usable without a file on disk.
var builtinPresets = map[string]Preset{
	"minimal": {Users: 5, Moderators: 1, Posts: 10, CommentsPerPost: 2, PrivateRatio: 0.1},
	"demo":    {Users: 40, Moderators: 4, Posts: 200, CommentsPerPost: 4, PrivateRatio: 0.2},
	"stress":  {Users: 500, Moderators: 20, Posts: 5000, CommentsPerPost: 6, PrivateRatio: 0.2},
}

// LoadPreset resolves a preset by built-in name or YAML file path.
func LoadPreset(nameOrPath string) (*Preset, error) {
	if p, ok := builtinPresets[nameOrPath]; ok {
		p.normalize()
		return &p, nil
	}

	data, err := os.ReadFile(nameOrPath) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("load seed preset %q: %w", nameOrPath, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse seed preset %q: %w", nameOrPath, err)
	}
	p.normalize()
	return &p, nil
}

func (p *Preset) normalize() {
	if p.Users <= 0 {
		p.Users = 20
	}
	if p.Moderators < 0 {
		p.Moderators = 0
	}
	if p.Moderators >= p.Users {
		p.Moderators = p.Users / 2
	}
	if p.Posts <= 0 {
		p.Posts = 100
	}
	if p.CommentsPerPost < 0 {
		p.CommentsPerPost = 0
	}
	if p.PrivateRatio <= 0 || p.PrivateRatio > 1 {
		p.PrivateRatio = 0.2
	}
	if p.MaxDays <= 0 {
		p.MaxDays = 90
	}
}

// Options converts the preset into seeder options.
func (p *Preset) Options() Options {
	return Options{
		NumUsers:        p.Users,
		NumModerators:   p.Moderators,
		NumPosts:        p.Posts,
		CommentsPerPost: p.CommentsPerPost,
		PrivateRatio:    p.PrivateRatio,
		MaxDays:         p.MaxDays,
	}
}
