// Package assets owns the client's lookup tables (the asset pack) and the
// pure functions that turn a snapshot into pictures, captions and prompts.
// It also loads the pictures themselves from the game server.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/mhaclient/internal/colorize"
)

//go:embed pack.yaml
var defaultPackYAML []byte

// PackConfig is the on-disk shape of an asset pack.
type PackConfig struct {
	Placeholder   string            `yaml:"placeholder"`
	ZoneCount     int               `yaml:"zone_count"`
	FinalEnemy    string            `yaml:"final_enemy"`
	Overlays      OverlayConfig     `yaml:"overlays"`
	Enemies       []EnemyConfig     `yaml:"enemies"`
	Bosses        []string          `yaml:"bosses"`
	Themes        map[string]string `yaml:"themes"`
	DefaultPrompt string            `yaml:"default_prompt"`
	Prompts       map[string]string `yaml:"prompts"`
	Characters    []NamedColor      `yaml:"characters"`
	Zones         []NamedColor      `yaml:"zones"`
	Narrator      NamedColor        `yaml:"narrator"`
	Tutorial      []string          `yaml:"tutorial"`
}

// OverlayConfig holds the fixed captions for special scenes.
type OverlayConfig struct {
	Intro     string `yaml:"intro"`
	AllForOne string `yaml:"all_for_one"`
	FinalBoss string `yaml:"final_boss"`
}

// EnemyConfig maps a display name to its image file stem.
type EnemyConfig struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// NamedColor pairs a highlight term with its colour.
type NamedColor struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// Pack is a validated, immutable asset pack.
type Pack struct {
	placeholder   string
	zoneCount     int
	finalEnemy    string
	overlays      OverlayConfig
	enemyFiles    map[string]string
	enemyNames    []string
	bosses        map[string]bool
	themes        map[string]string
	defaultPrompt string
	prompts       map[string]string
	tutorial      []string
	colorizer     *colorize.Colorizer
}

// Default returns the embedded pack.
func Default() *Pack {
	p, err := ParsePack(defaultPackYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded asset pack is invalid: %v", err))
	}
	return p
}

// LoadPack reads a pack from a YAML file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset pack: %w", err)
	}
	p, err := ParsePack(data)
	if err != nil {
		return nil, fmt.Errorf("asset pack %s: %w", path, err)
	}
	return p, nil
}

// ParsePack decodes and validates a YAML pack.
func ParsePack(data []byte) (*Pack, error) {
	var cfg PackConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse asset pack: %w", err)
	}
	return NewPack(cfg)
}

// NewPack validates cfg and builds the lookup structures.
func NewPack(cfg PackConfig) (*Pack, error) {
	if cfg.Placeholder == "" {
		return nil, fmt.Errorf("placeholder is required")
	}
	if cfg.ZoneCount <= 0 {
		return nil, fmt.Errorf("zone_count must be positive, got %d", cfg.ZoneCount)
	}
	if cfg.DefaultPrompt == "" {
		return nil, fmt.Errorf("default_prompt is required")
	}

	p := &Pack{
		placeholder:   cfg.Placeholder,
		zoneCount:     cfg.ZoneCount,
		finalEnemy:    cfg.FinalEnemy,
		overlays:      cfg.Overlays,
		enemyFiles:    make(map[string]string, len(cfg.Enemies)),
		bosses:        make(map[string]bool, len(cfg.Bosses)),
		themes:        make(map[string]string, len(cfg.Themes)),
		defaultPrompt: cfg.DefaultPrompt,
		prompts:       make(map[string]string, len(cfg.Prompts)),
		tutorial:      append([]string(nil), cfg.Tutorial...),
	}

	for _, e := range cfg.Enemies {
		if e.Name == "" || e.File == "" {
			return nil, fmt.Errorf("enemy entry needs both name and file: %+v", e)
		}
		if strings.ContainsAny(e.File, "/\\") {
			return nil, fmt.Errorf("enemy %q: file must be a bare name, got %q", e.Name, e.File)
		}
		p.enemyFiles[e.Name] = e.File
		p.enemyNames = append(p.enemyNames, e.Name)
	}
	for _, b := range cfg.Bosses {
		p.bosses[b] = true
	}
	for k, v := range cfg.Themes {
		if k == "" {
			return nil, fmt.Errorf("theme with empty key")
		}
		p.themes[k] = v
	}
	for k, v := range cfg.Prompts {
		if k == "" {
			return nil, fmt.Errorf("prompt with empty key")
		}
		p.prompts[k] = v
	}

	terms, err := highlightTerms(cfg)
	if err != nil {
		return nil, err
	}
	c, err := colorize.New(terms)
	if err != nil {
		return nil, err
	}
	p.colorizer = c
	return p, nil
}

func highlightTerms(cfg PackConfig) ([]colorize.Term, error) {
	var terms []colorize.Term
	for _, c := range cfg.Characters {
		if c.Name == "" {
			return nil, fmt.Errorf("character with empty name")
		}
		terms = append(terms, colorize.Term{Text: c.Name, Color: c.Color, Kind: colorize.KindCharacter, WholeWord: true})
	}
	for _, z := range cfg.Zones {
		if z.Name == "" {
			return nil, fmt.Errorf("zone with empty name")
		}
		terms = append(terms, colorize.Term{Text: z.Name, Color: z.Color, Kind: colorize.KindZone, WholeWord: true})
	}
	if n := cfg.Narrator; n.Name != "" {
		terms = append(terms,
			colorize.Term{Text: "[" + n.Name + "]:", Color: n.Color, Kind: colorize.KindNarrator},
			colorize.Term{Text: n.Name, Color: n.Color, Kind: colorize.KindNarrator, WholeWord: true},
		)
	}
	return terms, nil
}

// Colorizer returns the highlighter built from the pack's name tables.
func (p *Pack) Colorizer() *colorize.Colorizer { return p.colorizer }

// Placeholder returns the path of the generic picture.
func (p *Pack) Placeholder() string { return p.placeholder }

// ZoneCount is the number of zones in a full run.
func (p *Pack) ZoneCount() int { return p.zoneCount }

// Prompt resolves the input label for a game_state tag.
func (p *Pack) Prompt(gameState string) string {
	if s, ok := p.prompts[gameState]; ok {
		return s
	}
	return p.defaultPrompt
}

// ThemeName returns the display name of a zone theme, or the raw tag when
// the pack does not know it.
func (p *Pack) ThemeName(theme string) string {
	if s, ok := p.themes[theme]; ok {
		return s
	}
	return theme
}

// EnemyImage returns the image path for an enemy and whether the name was
// known. Unknown names map to the placeholder.
func (p *Pack) EnemyImage(name string) (string, bool) {
	file, ok := p.enemyFiles[name]
	if !ok {
		return p.placeholder, false
	}
	if p.bosses[file] {
		return "/images/bosses/" + file + ".png", true
	}
	return "/images/enemies/" + file + ".png", true
}

// ZoneImage returns the background path for a zone theme.
func (p *Pack) ZoneImage(theme string) string {
	return "/images/zones/" + theme + ".png"
}

// Tutorial returns the how-to-play text, one paragraph per entry.
func (p *Pack) Tutorial() []string {
	return append([]string(nil), p.tutorial...)
}

// ImagePaths lists every picture the pack can ask for, for cache warm-up.
func (p *Pack) ImagePaths() []string {
	seen := map[string]bool{p.placeholder: true}
	paths := []string{p.placeholder}
	for _, name := range p.enemyNames {
		if path, _ := p.EnemyImage(name); !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	themes := make([]string, 0, len(p.themes))
	for t := range p.themes {
		themes = append(themes, t)
	}
	sort.Strings(themes)
	for _, t := range themes {
		paths = append(paths, p.ZoneImage(t))
	}
	return paths
}
