// Package draw renders to ANSI terminals: a scaled half-block canvas, buffered
// chunked output for SSH sessions, and a few text helpers.
package draw

import (
	"strings"
	"unicode/utf8"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Shade characters from lightest to darkest.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	return Shades[int(intensity*float64(len(Shades)-1))]
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a canvas pixel color. ColorNone means the pixel is unset.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorCyan
	ColorBrightCyan
	ColorYellow
	ColorRed
	ColorGreen
)

// ColorReset restores the terminal's default attributes.
const ColorReset = "\033[0m"

var colorCodes = [...]string{
	ColorNone:       ColorReset,
	ColorWhite:      "\033[97m",
	ColorGray:       "\033[90m",
	ColorCyan:       "\033[36m",
	ColorBrightCyan: "\033[96m",
	ColorYellow:     "\033[93m",
	ColorRed:        "\033[91m",
	ColorGreen:      "\033[92m",
}

// ANSI returns the escape sequence selecting the color.
func (c Color) ANSI() string {
	if int(c) >= len(colorCodes) {
		return ColorReset
	}
	return colorCodes[c]
}

// Text is a line of text at a 1-based canvas position.
type Text struct {
	Col   int
	Row   int
	Value string
	Color Color
}

// Centered returns text horizontally centered on col.
func Centered(col, row int, value string) Text {
	return Text{Col: col - utf8.RuneCountInString(value)/2, Row: row, Value: value}
}

// Width returns the number of terminal cells the text covers.
func (t Text) Width() int {
	return utf8.RuneCountInString(t.Value)
}

// Draw queues the text on cw and marks its cells dirty on the canvas so they
// are repainted once the text goes away.
func (t Text) Draw(cw *ChunkWriter, canvas *Canvas) {
	if t.Value == "" {
		return
	}
	col, row := max(t.Col, 1), max(t.Row, 1)
	if t.Color != ColorNone {
		cw.WriteAt(col, row, t.Color.ANSI()+t.Value+ColorReset)
	} else {
		cw.WriteAt(col, row, t.Value)
	}
	if canvas != nil {
		canvas.MarkTextDirty(col, row, t.Width())
	}
}

// Bar renders a gauge of width cells filled to frac (0..1), using shade
// characters for the partial cell.
func Bar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac = min(max(frac, 0), 1)
	filled := frac * float64(width)
	full := int(filled)

	var b strings.Builder
	b.Grow(width * 3)
	for i := 0; i < width; i++ {
		switch {
		case i < full:
			b.WriteRune(BlockFull)
		case i == full:
			b.WriteRune(ShadeLevel(filled - float64(full)))
		default:
			b.WriteRune(BlockEmpty)
		}
	}
	return b.String()
}
