package output

import "strings"

// BoxStyle is the character set used for box drawing.
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
}

var (
	// ASCIIStyle draws boxes with plain ASCII.
	ASCIIStyle = BoxStyle{
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		Horizontal: '-', Vertical: '|',
	}

	// UnicodeStyle draws boxes with Unicode box-drawing characters.
	UnicodeStyle = BoxStyle{
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
		Horizontal: '─', Vertical: '│',
	}
)

// Canvas is a 2D character buffer for the grid sketch.
type Canvas struct {
	Width  int
	Height int
	buffer [][]rune
	style  BoxStyle
}

// NewCanvas creates a blank canvas.
func NewCanvas(width, height int, useUnicode bool) *Canvas {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
		for j := range buffer[i] {
			buffer[i][j] = ' '
		}
	}
	style := ASCIIStyle
	if useUnicode {
		style = UnicodeStyle
	}
	return &Canvas{Width: width, Height: height, buffer: buffer, style: style}
}

// SetCell sets one character; out-of-bounds writes are ignored.
func (c *Canvas) SetCell(x, y int, r rune) {
	if x >= 0 && x < c.Width && y >= 0 && y < c.Height {
		c.buffer[y][x] = r
	}
}

// DrawBox outlines a box at (x, y) with the given size.
func (c *Canvas) DrawBox(x, y, width, height int) {
	if width < 2 || height < 2 {
		return
	}
	c.SetCell(x, y, c.style.TopLeft)
	c.SetCell(x+width-1, y, c.style.TopRight)
	c.SetCell(x, y+height-1, c.style.BottomLeft)
	c.SetCell(x+width-1, y+height-1, c.style.BottomRight)
	for i := 1; i < width-1; i++ {
		c.SetCell(x+i, y, c.style.Horizontal)
		c.SetCell(x+i, y+height-1, c.style.Horizontal)
	}
	for i := 1; i < height-1; i++ {
		c.SetCell(x, y+i, c.style.Vertical)
		c.SetCell(x+width-1, y+i, c.style.Vertical)
	}
}

// FillRect fills a rectangle with a character.
func (c *Canvas) FillRect(x, y, width, height int, r rune) {
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			c.SetCell(x+dx, y+dy, r)
		}
	}
}

// DrawTextCentered writes text centered within a width, truncating when
// it does not fit.
func (c *Canvas) DrawTextCentered(x, y, width int, text string) {
	if len(text) >= width {
		text = text[:width]
	}
	pad := (width - len(text)) / 2
	for i, r := range text {
		c.SetCell(x+pad+i, y, r)
	}
}

// String renders the canvas.
func (c *Canvas) String() string {
	var sb strings.Builder
	for i, row := range c.buffer {
		for _, cell := range row {
			sb.WriteRune(cell)
		}
		if i < len(c.buffer)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}
