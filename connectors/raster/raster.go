package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"waste-stats/domain/report"
)

// Geometry of a rendered section, in pixels (one pixel is one PDF point).
const (
	DefaultWidth = 760
	margin       = 20
	titleHeight  = 32
	rowHeight    = 24
	labelWidth   = 240
	valueWidth   = 140
	barHeight    = 12
	glyphWidth   = 8
)

var (
	background = color.RGBA{255, 255, 255, 255}
	ink        = color.RGBA{30, 30, 30, 255}
	muted      = color.RGBA{90, 90, 90, 255}
	track      = color.RGBA{235, 238, 240, 255}
	fallback   = color.RGBA{128, 128, 128, 255}
)

// Renderer draws sections as plain charts: a bold title, then one line
// per row with an optional proportional bar.
type Renderer struct {
	Width int
}

func New(width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{Width: width}
}

// Rasterize implements report.Rasterizer.
func (r *Renderer) Rasterize(s report.Section) (image.Image, error) {
	if r.Width < labelWidth+valueWidth+2*margin {
		return nil, fmt.Errorf("section %s: width %d too small", s.Name, r.Width)
	}
	h := 2*margin + titleHeight + len(s.Rows)*rowHeight
	img := image.NewRGBA(image.Rect(0, 0, r.Width, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	drawText(img, margin, margin+20, s.Title, inconsolata.Bold8x16, ink, r.Width-2*margin)

	barX := margin + labelWidth
	barW := r.Width - 2*margin - labelWidth - valueWidth
	for i, row := range s.Rows {
		top := margin + titleHeight + i*rowHeight
		baseline := top + 17
		face, col := font.Face(inconsolata.Regular8x16), color.Color(muted)
		if row.Heading {
			face, col = inconsolata.Bold8x16, ink
		}
		drawText(img, margin, baseline, row.Label, face, col, labelWidth-glyphWidth)

		if row.Color == "" {
			drawText(img, barX, baseline, row.Value, face, ink, r.Width-margin-barX)
			continue
		}
		barTop := top + (rowHeight-barHeight)/2
		fill(img, image.Rect(barX, barTop, barX+barW, barTop+barHeight), track)
		frac := math.Max(0, math.Min(1, row.Fraction))
		if w := int(math.Round(frac * float64(barW))); w > 0 {
			fill(img, image.Rect(barX, barTop, barX+w, barTop+barHeight), ParseHSL(row.Color))
		}
		drawText(img, barX+barW+glyphWidth, baseline, row.Value, face, ink, valueWidth-glyphWidth)
	}
	return img, nil
}

func fill(img *image.RGBA, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawText writes label with its baseline at y, cut to fit maxWidth.
func drawText(img *image.RGBA, x, y int, label string, face font.Face, c color.Color, maxWidth int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(truncate(label, maxWidth/glyphWidth))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "~"
	}
	return string(runes[:n-1]) + "~"
}

// ParseHSL converts a CSS "hsl(h, s%, l%)" color. Anything unparseable is gray.
func ParseHSL(s string) color.RGBA {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), "hsl(")
	if !ok {
		return fallback
	}
	body, ok = strings.CutSuffix(body, ")")
	if !ok {
		return fallback
	}
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return fallback
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(p), "%"), 64)
		if err != nil {
			return fallback
		}
		v[i] = f
	}
	return hslToRGBA(v[0], v[1]/100, v[2]/100)
}

func hslToRGBA(h, s, l float64) color.RGBA {
	h = math.Mod(math.Mod(h, 360)+360, 360)
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return color.RGBA{to8(r), to8(g), to8(b), 255}
}
