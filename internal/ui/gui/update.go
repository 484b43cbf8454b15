package gui

import (
	"context"

	"chosenoffset.com/mhaclient/internal/locale"
	"chosenoffset.com/mhaclient/internal/render"
	"chosenoffset.com/mhaclient/internal/ui"
)

const wheelStep = 40

// startItem is one entry on the start overlay.
type startItem int

const (
	itemNewGame startItem = iota
	itemContinue
	itemTutorial
	itemRetry
)

// Update handles one tick of input.
func (v *View) Update() error {
	if v.ctx.Err() != nil {
		return render.ErrQuit
	}
	v.ticks++
	v.uploadPending()

	v.mu.Lock()
	if v.noticeLeft > 0 {
		v.noticeLeft--
		if v.noticeLeft == 0 {
			v.notice = ""
		}
	}
	notice := v.notice != ""
	overlay := v.visible[ui.StartOverlay]
	v.mu.Unlock()

	if notice {
		if v.input.IsMouseButtonJustPressed(render.MouseButtonLeft) ||
			v.input.IsKeyJustPressed(render.KeyEnter) ||
			v.input.IsKeyJustPressed(render.KeyEscape) {
			v.mu.Lock()
			v.notice = ""
			v.noticeLeft = 0
			v.mu.Unlock()
		}
		return nil
	}

	if v.input.IsKeyJustPressed(render.KeyF5) && v.ctrl != nil && v.ctrl.CanRetry() {
		v.dispatch("retry", v.ctrl.Retry)
	}

	if overlay {
		v.updateStart()
		return nil
	}
	v.updateScroll()
	v.updateInput()
	return nil
}

// startItems lists the overlay entries in display order. Retry only shows
// after a failed call.
func (v *View) startItems() []startItem {
	items := []startItem{itemNewGame, itemContinue, itemTutorial}
	if v.ctrl != nil && v.ctrl.CanRetry() {
		items = append(items, itemRetry)
	}
	return items
}

func (v *View) itemLabelLocked(it startItem) string {
	switch it {
	case itemNewGame:
		return v.printer.Sprintf(locale.NewGame)
	case itemContinue:
		label := v.resumeLabel
		if label == "" {
			label = v.printer.Sprintf(locale.Continue)
		}
		return label
	case itemTutorial:
		return v.printer.Sprintf(locale.Tutorial)
	default:
		return v.printer.Sprintf(locale.Retry)
	}
}

func (v *View) updateStart() {
	items := v.startItems()
	chosen := -1

	if v.input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		mx, my := v.input.GetCursorPosition()
		for i, r := range startButtons(v.width, v.height, len(items)) {
			if pointInRect(mx, my, r) {
				chosen = i
				break
			}
		}
	}
	// Number keys pick entries too.
	for _, ch := range v.input.AppendInputChars(nil) {
		if i := int(ch - '1'); i >= 0 && i < len(items) {
			chosen = i
		}
	}
	if chosen < 0 {
		return
	}

	switch items[chosen] {
	case itemNewGame:
		v.dispatch("new game", v.ctrl.StartNewGame)
	case itemContinue:
		v.mu.Lock()
		enabled := v.resumeEnabled
		v.mu.Unlock()
		if enabled {
			v.dispatch("continue", v.ctrl.ResumeGame)
		}
	case itemTutorial:
		v.mu.Lock()
		v.showTutorial = !v.showTutorial
		v.mu.Unlock()
	case itemRetry:
		v.dispatch("retry", v.ctrl.Retry)
	}
}

func (v *View) updateScroll() {
	page := v.lay.log.h - 2*padding - v.lineHeight
	if w := v.input.Wheel(); w != 0 {
		v.scrollBy(int(-w * wheelStep))
	}
	if v.input.IsKeyRepeated(render.KeyPageUp) {
		v.scrollBy(-page)
	}
	if v.input.IsKeyRepeated(render.KeyPageDown) {
		v.scrollBy(page)
	}
	if v.input.IsKeyJustPressed(render.KeyHome) {
		v.ScrollLog(ui.ScrollTop)
	}
	if v.input.IsKeyJustPressed(render.KeyEnd) {
		v.ScrollLog(ui.ScrollBottom)
	}
}

func (v *View) updateInput() {
	v.mu.Lock()
	v.typed = v.input.AppendInputChars(v.typed)
	if v.input.IsKeyRepeated(render.KeyBackspace) && len(v.typed) > 0 {
		v.typed = v.typed[:len(v.typed)-1]
	}
	submit := v.input.IsKeyJustPressed(render.KeyEnter)
	text := string(v.typed)
	v.mu.Unlock()

	if submit {
		v.dispatch("input", func(ctx context.Context) error {
			return v.ctrl.SubmitInput(ctx, text)
		})
	}
}
