package assets

import (
	"github.com/agnivade/levenshtein"

	"chosenoffset.com/mhaclient/internal/api"
	"chosenoffset.com/mhaclient/internal/locale"
)

// Theme tags with special presentation.
const (
	ThemeIntro      = "intro"
	ThemeCharSelect = "char_select"
	ThemeFinalBoss  = "final_boss"
)

// PanelKind selects which of the two overlay panels is showing.
type PanelKind int

const (
	PanelZone PanelKind = iota
	PanelEnemy
)

// Scene is the picture and caption for one snapshot.
type Scene struct {
	// Image is the path to show; empty means a pure black frame.
	Image   string
	Overlay string
	Panel   PanelKind
	// Keep means the snapshot carries nothing to show and the previous
	// scene stays on screen.
	Keep bool
	// UnknownEnemy is set when an enemy had no image mapping.
	UnknownEnemy bool
}

// Scene picks the picture, caption and panel for a snapshot.
func (p *Pack) Scene(s api.Snapshot, pr *locale.Printer) Scene {
	if s.InCombat && s.Enemy != nil {
		if s.Enemy.Name == p.finalEnemy && p.finalEnemy != "" {
			return Scene{Overlay: p.overlays.AllForOne, Panel: PanelEnemy}
		}
		img, known := p.EnemyImage(s.Enemy.Name)
		return Scene{
			Image:        img,
			Overlay:      pr.Sprintf(locale.EnemyLevel, s.Enemy.Name, s.Enemy.Level),
			Panel:        PanelEnemy,
			UnknownEnemy: !known,
		}
	}

	switch s.Theme {
	case "":
		return Scene{Keep: true}
	case ThemeIntro:
		return Scene{Image: p.placeholder, Overlay: p.overlays.Intro, Panel: PanelZone}
	case ThemeCharSelect:
		return Scene{Image: p.placeholder, Overlay: pr.Sprintf(locale.ZoneCharSelect, s.Zone), Panel: PanelZone}
	case ThemeFinalBoss:
		return Scene{Overlay: p.overlays.FinalBoss, Panel: PanelZone}
	default:
		return Scene{
			Image:   p.ZoneImage(s.Theme),
			Overlay: pr.Sprintf(locale.ZoneTheme, s.Zone, p.ThemeName(s.Theme)),
			Panel:   PanelZone,
		}
	}
}

// ClosestEnemy returns the known enemy name nearest to name by edit
// distance, for diagnostics when the server sends a name the pack lacks.
func (p *Pack) ClosestEnemy(name string) (string, int) {
	best, bestDist := "", -1
	for _, cand := range p.enemyNames {
		d := levenshtein.ComputeDistance(name, cand)
		if bestDist < 0 || d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, bestDist
}
