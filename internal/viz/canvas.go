package viz

import (
	"math"
	"strings"

	"github.com/san-kum/pairenergy/internal/geom"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is Width*2 by Height*4
// sub-pixels; points outside are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Lit reports whether the sub-pixel (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Projection draws the cell outline and every position folded into the cell,
// looking down axis 2. The marked particle is drawn as a cross.
func Projection(c *Canvas, positions []geom.Vec3, lengths geom.Vec3, mark int) {
	c.Clear()
	w, h := c.Width*2-1, c.Height*4-1
	if w <= 0 || h <= 0 {
		return
	}
	c.DrawLine(0, 0, w, 0)
	c.DrawLine(w, 0, w, h)
	c.DrawLine(w, h, 0, h)
	c.DrawLine(0, h, 0, 0)

	fold := func(v, l float64) float64 {
		if l <= 0 {
			return 0.5
		}
		f := math.Mod(v, l) / l
		if f < 0 {
			f++
		}
		return f
	}
	px := func(p geom.Vec3) (int, int) {
		x := 1 + int(fold(p[0], lengths[0])*float64(w-2))
		y := h - 1 - int(fold(p[1], lengths[1])*float64(h-2))
		return x, y
	}

	for _, p := range positions {
		x, y := px(p)
		c.Set(x, y)
	}
	if mark >= 0 && mark < len(positions) {
		x, y := px(positions[mark])
		c.DrawLine(x-2, y, x+2, y)
		c.DrawLine(x, y-2, x, y+2)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
