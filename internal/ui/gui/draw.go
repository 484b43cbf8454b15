package gui

import (
	"image"
	"image/color"

	"chosenoffset.com/mhaclient/internal/colorize"
	"chosenoffset.com/mhaclient/internal/locale"
	"chosenoffset.com/mhaclient/internal/render"
	"chosenoffset.com/mhaclient/internal/ui"
	"chosenoffset.com/mhaclient/internal/ui/hud"
)

var (
	colorBackground = color.RGBA{20, 20, 30, 255}
	colorPanel      = color.RGBA{30, 30, 45, 230}
	colorBorder     = color.RGBA{60, 60, 80, 255}
	colorText       = color.RGBA{220, 220, 220, 255}
	colorDim        = color.RGBA{120, 120, 120, 255}
	colorWarning    = color.RGBA{255, 110, 110, 255}
	colorTitle      = color.RGBA{255, 255, 255, 255}
	colorButton     = color.RGBA{40, 60, 110, 255}
	colorButtonOff  = color.RGBA{45, 45, 55, 255}
	colorOverlay    = color.RGBA{0, 0, 0, 200}
	colorCaption    = color.RGBA{0, 0, 0, 160}
)

// Draw renders the current state.
func (v *View) Draw(screen render.Image) {
	items := v.startItems()

	v.mu.Lock()
	defer v.mu.Unlock()

	screen.Fill(colorBackground)
	if v.visible[ui.StartOverlay] {
		v.drawStartLocked(screen, items)
	} else {
		v.drawPictureLocked(screen)
		v.drawPanelLocked(screen)
		v.drawStatsLocked(screen)
		v.drawLogLocked(screen)
		v.drawInputLocked(screen)
	}
	if v.busy {
		msg := v.printer.Sprintf(locale.Loading)
		w, _ := v.r.MeasureText(msg, 0.9)
		v.r.DrawText(screen, msg, v.width-w-padding, v.height-padding-inputH-promptH-4, colorDim, 0.9)
	}
	if v.notice != "" {
		v.drawNoticeLocked(screen)
	}
}

func (v *View) drawBox(screen render.Image, r rect, fill color.Color) {
	v.r.FillRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), fill)
	v.r.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, colorBorder)
}

func (v *View) drawStartLocked(screen render.Image, items []startItem) {
	tw, _ := v.r.MeasureText(v.title, 2.5)
	v.r.DrawText(screen, v.title, (v.width-tw)/2, v.height/4, colorTitle, 2.5)

	for i, r := range startButtons(v.width, v.height, len(items)) {
		fill := colorButton
		label := v.itemLabelLocked(items[i])
		textColor := colorTitle
		if items[i] == itemContinue && !v.resumeEnabled {
			fill = colorButtonOff
			textColor = colorDim
		}
		v.drawBox(screen, r, fill)
		lw, lh := v.r.MeasureText(label, 1.2)
		v.r.DrawText(screen, label, r.x+(r.w-lw)/2, r.y+(r.h-lh)/2, textColor, 1.2)
	}

	// Start failures are logged before the overlay goes away.
	y := v.height - padding - v.lineHeight
	for i := len(v.log) - 1; i >= 0 && y > v.height*3/4; i-- {
		v.r.DrawText(screen, v.log[i].line.Text(), padding, y, colorWarning, 1)
		y -= v.lineHeight
	}

	if v.showTutorial {
		box := rect{v.width/2 - 300, padding * 2, 600, 0}
		var rows []string
		for _, line := range v.tutorial {
			for _, row := range wrapSpans(v.r, []colorize.Span{{Text: line}}, box.w-2*padding) {
				rows = append(rows, colorize.Plain(row))
			}
			rows = append(rows, "")
		}
		box.h = len(rows)*v.lineHeight + 2*padding
		v.drawBox(screen, box, colorPanel)
		for i, row := range rows {
			v.r.DrawText(screen, row, box.x+padding, box.y+padding+i*v.lineHeight, colorText, 1)
		}
	}
}

func (v *View) drawPictureLocked(screen render.Image) {
	r := v.lay.image
	if v.picture == nil {
		v.r.FillRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), color.Black)
	} else {
		// Centred in case the upload is smaller than the box.
		b := v.picture.Bounds()
		opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
		opts.GeoM.Translate(float64(r.x+(r.w-b.Dx())/2), float64(r.y+(r.h-b.Dy())/2))
		screen.DrawImage(v.picture, opts)
	}
	v.r.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, colorBorder)

	if caption := v.text[ui.ImageOverlay]; caption != "" {
		_, ch := v.r.MeasureText(caption, 1.1)
		strip := rect{r.x, r.y + r.h - ch - 12, r.w, ch + 12}
		v.r.FillRect(screen, float32(strip.x), float32(strip.y), float32(strip.w), float32(strip.h), colorCaption)
		v.r.DrawText(screen, caption, strip.x+padding, strip.y+6, colorTitle, 1.1)
	}
}

func (v *View) drawPanelLocked(screen render.Image) {
	r := v.lay.panel
	v.drawBox(screen, r, colorPanel)
	x, y := r.x+padding, r.y+padding

	switch {
	case v.visible[ui.EnemyInfo]:
		v.r.DrawText(screen, v.text[ui.EnemyName], x, y, colorWarning, 1.2)
		_, h := v.r.MeasureText("Mg", 1.2)
		y += h + 4
		v.r.DrawText(screen, v.text[ui.EnemyLevel], x, y, colorText, 1)
		y += v.lineHeight + 4
		pct := v.fill[ui.EnemyHPFill]
		hud.DrawBar(v.r, screen, x, y, r.w-2*padding, barHeight, pct, hud.HealthColor(pct), v.text[ui.EnemyHPText])
	case v.visible[ui.ZoneInfo]:
		v.r.DrawText(screen, v.text[ui.ZoneInfo], x, y, colorText, 1.1)
	}
}

func (v *View) drawStatsLocked(screen render.Image) {
	r := v.lay.stats
	if r.h <= 0 {
		return
	}
	v.drawBox(screen, r, colorPanel)
	x, y := r.x+padding, r.y+padding
	barW := r.w - 2*padding

	if v.visible[ui.StatsBar] {
		v.r.DrawText(screen, v.text[ui.CharName], x, y, colorTitle, 1.1)
		y += v.lineHeight + 6
		hp := v.fill[ui.CharHPFill]
		hud.DrawBar(v.r, screen, x, y, barW, barHeight, hp, hud.HealthColor(hp), v.text[ui.CharHPText])
		y += barHeight + 6
		hud.DrawBar(v.r, screen, x, y, barW, barHeight, v.fill[ui.CharEnergyFill], hud.ColorEnergy, v.text[ui.CharEnergyText])
		y += barHeight + 8
		v.r.DrawText(screen, v.text[ui.InventoryCount], x, y, colorText, 1)
		y += v.lineHeight
	}
	for _, el := range []ui.Element{ui.ProgressText, ui.StudentsText} {
		if t := v.text[el]; t != "" && y+v.lineHeight <= r.y+r.h {
			v.r.DrawText(screen, t, x, y, colorText, 1)
			y += v.lineHeight
		}
	}
}

// drawLogLocked draws the rows that intersect the viewport into a clipped
// sub-image of the screen.
func (v *View) drawLogLocked(screen render.Image) {
	r := v.lay.log
	v.drawBox(screen, r, colorPanel)
	inner := image.Rect(r.x+padding, r.y+padding, r.x+r.w-padding, r.y+r.h-padding)
	dst := screen.SubImage(inner)

	y := inner.Min.Y - v.offset
	for _, entry := range v.log {
		base := colorText
		if entry.line.Type == "warning" {
			base = colorWarning
		}
		for _, row := range entry.rows {
			if y+v.lineHeight > inner.Min.Y && y < inner.Max.Y {
				v.drawRow(dst, row, inner.Min.X, y, base)
			}
			y += v.lineHeight
		}
		y += paraGap
		if y >= inner.Max.Y {
			break
		}
	}

	// Scroll indicator.
	m := v.metricsLocked()
	if !m.Fits() {
		track := float64(r.h - 2*padding)
		thumb := track * float64(m.Visible) / float64(m.Content)
		top := track * float64(m.Offset) / float64(m.Content)
		v.r.FillRect(screen, float32(r.x+r.w-5), float32(float64(inner.Min.Y)+top), 3, float32(thumb), colorDim)
	}
}

func (v *View) drawRow(dst render.Image, row []colorize.Span, x, y int, base color.Color) {
	for _, sp := range row {
		c := base
		if sp.Kind != colorize.KindPlain {
			if parsed, err := colorize.ParseHex(sp.Color); err == nil {
				c = parsed
			}
		}
		v.r.DrawText(dst, sp.Text, x, y, c, 1)
		w, _ := v.r.MeasureText(sp.Text, 1)
		x += w
	}
}

func (v *View) drawInputLocked(screen render.Image) {
	if p := v.text[ui.InputPrompt]; p != "" {
		v.r.DrawText(screen, p, v.lay.prompt.x, v.lay.prompt.y, colorTitle, 1)
	}
	r := v.lay.input
	v.drawBox(screen, r, colorPanel)
	line := "> " + string(v.typed)
	if v.focused && (v.ticks/30)%2 == 0 {
		line += "_"
	}
	_, h := v.r.MeasureText(line, 1)
	v.r.DrawText(screen, line, r.x+padding, r.y+(r.h-h)/2, colorText, 1)
}

func (v *View) drawNoticeLocked(screen render.Image) {
	v.r.FillRect(screen, 0, 0, float32(v.width), float32(v.height), colorOverlay)
	w, h := v.r.MeasureText(v.notice, 1.3)
	box := rect{(v.width-w)/2 - 2*padding, (v.height-h)/2 - 2*padding, w + 4*padding, h + 4*padding}
	v.drawBox(screen, box, colorPanel)
	v.r.DrawText(screen, v.notice, box.x+2*padding, box.y+2*padding, colorWarning, 1.3)
}
