package braille

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lines returns the surface as plain text, one string per cell row. Empty
// cells are spaces.
func (s *Surface) Lines() []string {
	out := make([]string, s.rows)
	row := make([]rune, s.cols)
	for y := range s.rows {
		for x := range s.cols {
			row[x] = glyph(s.mask[y][x])
		}
		out[y] = string(row)
	}
	return out
}

// String returns Lines joined by newlines.
func (s *Surface) String() string {
	return strings.Join(s.Lines(), "\n")
}

func glyph(mask uint8) rune {
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}

// Compose renders surfaces stacked bottom to top as colored text. The
// dots of every surface are merged; a cell takes the color of the topmost
// surface with dots in it. All surfaces must have the size of the first.
func Compose(surfaces ...*Surface) string {
	if len(surfaces) == 0 {
		return ""
	}
	base := surfaces[0]

	var sb strings.Builder
	styles := make(map[color.RGBA]lipgloss.Style)
	style := func(c color.RGBA) lipgloss.Style {
		st, ok := styles[c]
		if !ok {
			st = lipgloss.NewStyle().Foreground(hexColor(c))
			styles[c] = st
		}
		return st
	}

	for y := range base.rows {
		if y > 0 {
			sb.WriteByte('\n')
		}

		// Runs of one color are styled together
		var run []rune
		var runColor color.RGBA
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runColor.A == 0 {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(style(runColor).Render(string(run)))
			}
			run = run[:0]
		}

		for x := range base.cols {
			var mask uint8
			var c color.RGBA
			for _, s := range surfaces {
				if y >= s.rows || x >= s.cols || s.mask[y][x] == 0 {
					continue
				}
				mask |= s.mask[y][x]
				c = s.cellColor(x, y)
			}
			if c != runColor {
				flush()
				runColor = c
			}
			run = append(run, glyph(mask))
		}
		flush()
	}
	return sb.String()
}

// Render returns the surface as colored text.
func (s *Surface) Render() string {
	return Compose(s)
}

func (s *Surface) cellColor(x, y int) color.RGBA {
	if c := s.colors[y][x]; c.A != 0 {
		return c
	}
	if s.Ink == nil {
		return color.RGBA{}
	}
	return color.RGBAModel.Convert(s.Ink).(color.RGBA)
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
