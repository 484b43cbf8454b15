package gui

const (
	padding     = 12
	panelHeight = 86
	promptH     = 20
	inputH      = 30
	barHeight   = 18
	paraGap     = 6
	buttonW     = 260
	buttonH     = 44
)

type rect struct {
	x, y, w, h int
}

func pointInRect(px, py int, r rect) bool {
	return px >= r.x && px <= r.x+r.w && py >= r.y && py <= r.y+r.h
}

// layout splits the screen into a picture column on the left and the log
// on the right, with the prompt and input line across the bottom.
type layout struct {
	image  rect
	panel  rect
	stats  rect
	log    rect
	prompt rect
	input  rect
}

func newLayout(width, height int) layout {
	left := width * 42 / 100
	if left > 560 {
		left = 560
	}
	imgH := left * 9 / 16
	bottom := height - padding - inputH

	var l layout
	l.image = rect{padding, padding, left, imgH}
	l.panel = rect{padding, l.image.y + imgH + 8, left, panelHeight}
	statsY := l.panel.y + panelHeight + 8
	l.prompt = rect{padding, bottom - promptH - 4, width - 2*padding, promptH}
	l.input = rect{padding, bottom, width - 2*padding, inputH}
	l.stats = rect{padding, statsY, left, l.prompt.y - 8 - statsY}

	logX := padding*2 + left
	l.log = rect{logX, padding, width - logX - padding, l.prompt.y - 8 - padding}
	return l
}

// startButtons places the start overlay buttons in a centred column.
func startButtons(width, height, n int) []rect {
	total := n*buttonH + (n-1)*12
	y := height/2 - total/2 + 40
	x := width/2 - buttonW/2
	out := make([]rect, n)
	for i := range out {
		out[i] = rect{x, y + i*(buttonH+12), buttonW, buttonH}
	}
	return out
}
