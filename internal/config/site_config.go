package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"corysite/internal/roi"
)

// SiteConfig is the optional site.yaml file. It holds editorial settings that
// are easier to manage as a document than as env vars.
type SiteConfig struct {
	ROI        ROIConfig      `yaml:"roi"`
	Categories []CategoryInfo `yaml:"categories"`
	Featured   int            `yaml:"featured_limit"` // resources shown on the home page
	CTA        CTAConfig      `yaml:"cta"`
}

// ROIConfig holds named calculator scenarios.
type ROIConfig struct {
	DefaultPreset string               `yaml:"default_preset"`
	Presets       map[string]ROIPreset `yaml:"presets"`
}

// UnmarshalYAML decodes the presets and rejects any scenario whose inputs are
// missing a field or hold a non-finite number.
func (c *ROIConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		DefaultPreset string `yaml:"default_preset"`
		Presets       map[string]struct {
			Label  string      `yaml:"label"`
			Inputs roi.Request `yaml:"inputs"`
		} `yaml:"presets"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	names := make([]string, 0, len(raw.Presets))
	for name := range raw.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	var presets map[string]ROIPreset
	for _, name := range names {
		p := raw.Presets[name]
		in, err := p.Inputs.Inputs()
		if err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
		if presets == nil {
			presets = make(map[string]ROIPreset, len(names))
		}
		presets[name] = ROIPreset{Label: p.Label, Inputs: in}
	}

	c.DefaultPreset = raw.DefaultPreset
	c.Presets = presets
	return nil
}

// ROIPreset is one named calculator scenario.
type ROIPreset struct {
	Label  string     `yaml:"label"`
	Inputs roi.Inputs `yaml:"inputs"`
}

// CategoryInfo describes a resource hub category.
type CategoryInfo struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// CTAConfig holds call-to-action labels shown in page chrome.
type CTAConfig struct {
	DemoLabel string `yaml:"demo_label"`
	ROILabel  string `yaml:"roi_label"`
}

// DefaultSiteConfig returns the settings used when no site file exists.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		ROI: ROIConfig{
			DefaultPreset: "default",
			Presets: map[string]ROIPreset{
				"default": {Label: "Typical private university", Inputs: roi.Default()},
			},
		},
		Featured: 3,
		CTA: CTAConfig{
			DemoLabel: "Book a demo",
			ROILabel:  "Calculate your ROI",
		},
	}
}

// LoadSiteConfig loads the site file at path.
// Returns the defaults without error if the file doesn't exist.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Site file is optional
			return DefaultSiteConfig(), nil
		}
		return nil, err
	}
	return ParseSiteConfig(data)
}

// ParseSiteConfig decodes a site file and fills in defaults.
func ParseSiteConfig(data []byte) (*SiteConfig, error) {
	cfg := DefaultSiteConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}

	// Set defaults
	if len(cfg.ROI.Presets) == 0 {
		cfg.ROI.Presets = DefaultSiteConfig().ROI.Presets
	}
	if cfg.ROI.DefaultPreset == "" {
		cfg.ROI.DefaultPreset = "default"
	}
	if _, ok := cfg.ROI.Presets[cfg.ROI.DefaultPreset]; !ok {
		return nil, fmt.Errorf("parse site config: default preset %q is not defined", cfg.ROI.DefaultPreset)
	}
	if cfg.Featured <= 0 {
		cfg.Featured = 3
	}

	return cfg, nil
}

// Preset returns the named scenario, falling back to the default preset.
func (c *SiteConfig) Preset(name string) (ROIPreset, bool) {
	if c == nil {
		return ROIPreset{Label: "Default", Inputs: roi.Default()}, false
	}
	if p, ok := c.ROI.Presets[name]; ok {
		return p, true
	}
	p, ok := c.ROI.Presets[c.ROI.DefaultPreset]
	if !ok {
		return ROIPreset{Label: "Default", Inputs: roi.Default()}, false
	}
	return p, false
}

// PresetNames returns the preset keys in sorted order.
func (c *SiteConfig) PresetNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.ROI.Presets))
	for name := range c.ROI.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCategoryBySlug finds a category by its slug.
func (c *SiteConfig) GetCategoryBySlug(slug string) *CategoryInfo {
	if c == nil {
		return nil
	}
	for i := range c.Categories {
		if c.Categories[i].Slug == slug {
			return &c.Categories[i]
		}
	}
	return nil
}
