package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/ksyntax/internal/highlight"
	"github.com/dshills/ksyntax/internal/theme"
)

const tabWidth = 4

// preview shows one highlighted file in a full screen pager.
type preview struct {
	screen   tcell.Screen
	provider *highlight.Provider
	lines    []string
	top      int
}

func newPreview(s tcell.Screen, p *highlight.Provider, lines []string) *preview {
	return &preview{screen: s, provider: p, lines: lines}
}

// run initializes the screen and shows the file until the user quits.
func (v *preview) run() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	defer v.screen.Fini()

	for {
		v.draw()
		if v.handle(v.screen.PollEvent()) {
			return nil
		}
	}
}

func (v *preview) draw() {
	th := v.provider.Theme()
	base := theme.NewStyle(th.Foreground).WithBackground(th.Background)

	v.screen.SetStyle(base.TCell(false))
	v.screen.Fill(' ', base.TCell(false))

	w, h := v.screen.Size()
	for y := 0; y < h && v.top+y < len(v.lines); y++ {
		n := v.top + y
		runes := []rune(v.lines[n])

		styles := make([]tcell.Style, len(runes))
		for i := range styles {
			styles[i] = base.TCell(false)
		}
		for _, s := range v.provider.Styles(uint32(n)) {
			st := s.Style
			if st.Foreground.IsDefault() {
				st.Foreground = th.Foreground
			}
			if st.Background.IsDefault() {
				st.Background = th.Background
			}
			for i := s.Offset; i < s.Offset+s.Length && i < len(runes); i++ {
				styles[i] = st.TCell(false)
			}
		}

		x := 0
		for i, r := range runes {
			if x >= w {
				break
			}
			if r == '\t' {
				for next := x + tabWidth - x%tabWidth; x < next && x < w; x++ {
					v.screen.SetContent(x, y, ' ', nil, styles[i])
				}
				continue
			}
			v.screen.SetContent(x, y, r, nil, styles[i])
			x += max(uniseg.StringWidth(string(r)), 1)
		}
	}
	v.screen.Show()
}

// handle processes one event and reports whether the pager should close.
func (v *preview) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case nil:
		return true
	case *tcell.EventResize:
		v.scroll(0)
		v.screen.Sync()
	case *tcell.EventKey:
		_, h := v.screen.Size()
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			v.scroll(-1)
		case tcell.KeyDown, tcell.KeyEnter:
			v.scroll(1)
		case tcell.KeyPgUp:
			v.scroll(-h)
		case tcell.KeyPgDn:
			v.scroll(h)
		case tcell.KeyHome:
			v.top = 0
		case tcell.KeyEnd:
			v.scroll(len(v.lines))
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'k':
				v.scroll(-1)
			case 'j':
				v.scroll(1)
			case ' ':
				v.scroll(h)
			}
		}
	}
	return false
}

// scroll moves the first visible line by n, keeping the last page full.
func (v *preview) scroll(n int) {
	_, h := v.screen.Size()
	v.top = min(max(v.top+n, 0), max(len(v.lines)-h, 0))
}
