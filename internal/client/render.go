package client

import (
	"context"

	"chosenoffset.com/mhaclient/internal/api"
	"chosenoffset.com/mhaclient/internal/assets"
	"chosenoffset.com/mhaclient/internal/locale"
	"chosenoffset.com/mhaclient/internal/save"
	"chosenoffset.com/mhaclient/internal/ui"
	"chosenoffset.com/mhaclient/internal/ui/hud"
)

// Render replaces everything on the surface with snapshot s.
//
// The log is cleared and rebuilt, so rendering the same snapshot twice
// gives the same log. A new game_state scrolls the log to the top; a repeat
// of the previous one follows the bottom only if the reader was already
// there before the update.
func (r *Renderer) Render(ctx context.Context, s api.Snapshot) {
	r.mu.Lock()
	newScreen := !r.rendered || r.lastGameState != s.GameState
	r.rendered = true
	r.lastGameState = s.GameState
	snap := s
	r.state = &snap
	sid := r.sessionID
	r.mu.Unlock()

	before := r.surface.LogMetrics()
	r.surface.ClearLog()
	colorizer := r.pack.Colorizer()
	for _, m := range s.Messages {
		r.surface.AppendLog(ui.Line{Spans: colorizer.Spans(m.Text), Type: m.Style()})
	}
	r.scroll(newScreen, before)

	r.renderScene(s)
	r.renderStats(s)
	r.renderProgress(s)
	r.surface.SetText(ui.InputPrompt, r.pack.Prompt(s.GameState))
	r.surface.FocusInput()

	if s.GameState == api.StateCharSelect && s.Zone > 0 {
		r.autosave(ctx, sid, s)
	}
}

func (r *Renderer) scroll(newScreen bool, before ui.LogMetrics) {
	after := r.surface.LogMetrics()
	switch {
	case newScreen, after.Fits():
		r.surface.ScrollLog(ui.ScrollTop)
	case before.NearBottom(ScrollThreshold):
		r.surface.ScrollLog(ui.ScrollBottom)
	}
}

func (r *Renderer) renderScene(s api.Snapshot) {
	sc := r.pack.Scene(s, r.printer)
	if sc.Keep {
		return
	}
	if sc.UnknownEnemy {
		closest, dist := r.pack.ClosestEnemy(s.Enemy.Name)
		r.logger.Warn("no image for enemy", "enemy", s.Enemy.Name, "closest", closest, "distance", dist)
	}

	r.surface.SetImage(sc.Image)
	r.surface.SetText(ui.ImageOverlay, sc.Overlay)
	if sc.Panel == assets.PanelEnemy {
		r.surface.SetVisible(ui.ZoneInfo, false)
		r.surface.SetVisible(ui.EnemyInfo, true)
		return
	}
	r.surface.SetText(ui.ZoneInfo, sc.Overlay)
	r.surface.SetVisible(ui.ZoneInfo, true)
	r.surface.SetVisible(ui.EnemyInfo, false)
}

func (r *Renderer) renderStats(s api.Snapshot) {
	if c := s.Character; c != nil {
		r.surface.SetVisible(ui.StatsBar, true)
		r.surface.SetText(ui.CharName, c.Name)

		hp := hud.Meter{Value: c.HP, Max: c.MaxHP}
		r.surface.SetFill(ui.CharHPFill, hp.Percent())
		r.surface.SetText(ui.CharHPText, hp.Label())

		energy := hud.Meter{Value: c.Energy, Max: c.MaxEnergy}
		r.surface.SetFill(ui.CharEnergyFill, energy.Percent())
		r.surface.SetText(ui.CharEnergyText, energy.Label())

		r.surface.SetText(ui.InventoryCount, r.printer.Sprintf(locale.Items, len(c.Inventory)))
	} else {
		r.surface.SetVisible(ui.StatsBar, false)
	}

	if e := s.Enemy; s.InCombat && e != nil {
		r.surface.SetText(ui.EnemyName, e.Name)
		r.surface.SetText(ui.EnemyLevel, r.printer.Sprintf(locale.Level, e.Level))
		hp := hud.Meter{Value: e.HP, Max: e.MaxHP}
		r.surface.SetFill(ui.EnemyHPFill, hp.Percent())
		r.surface.SetText(ui.EnemyHPText, hp.Label())
	}
}

func (r *Renderer) renderProgress(s api.Snapshot) {
	if s.Zone > 0 {
		r.surface.SetText(ui.ProgressText, r.printer.Sprintf(locale.ZoneProgress, s.Zone, r.pack.ZoneCount()))
	}
	if s.ActiveCount != nil && s.TotalCount != nil {
		r.surface.SetText(ui.StudentsText, r.printer.Sprintf(locale.Active, *s.ActiveCount, *s.TotalCount))
	}
}

// autosave overwrites the resume slot. Failures are logged only.
func (r *Renderer) autosave(ctx context.Context, sid string, s api.Snapshot) {
	rec := save.Record{
		SessionID: sid,
		GameState: s,
		Zone:      s.Zone,
		Timestamp: r.now().UnixMilli(),
	}
	if err := r.slot.Write(ctx, rec); err != nil {
		r.logger.Warn("autosave failed", "zone", s.Zone, "error", err)
		return
	}
	r.logger.Debug("auto saved", "zone", s.Zone)
}
