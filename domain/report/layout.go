package report

// Defaults of the stitched page, in points.
const (
	DefaultGap     = 40.0
	DefaultPadding = 60.0
)

type Size struct {
	W, H float64
}

// Placement is where one section lands on the page.
type Placement struct {
	X, Y, W, H float64
}

// Layout is a single page holding every section stacked top to bottom.
type Layout struct {
	Width, Height float64
	Placements    []Placement
}

// Landscape is true when the page is at least as wide as it is tall.
func (l Layout) Landscape() bool { return l.Width >= l.Height }

// ComputeLayout stacks sections vertically, each centred horizontally.
// The page is the widest section plus padding on both sides, and the
// summed heights plus the gaps between sections plus padding.
func ComputeLayout(sizes []Size, gap, padding float64) Layout {
	var maxW, sumH float64
	for _, s := range sizes {
		maxW = max(maxW, s.W)
		sumH += s.H
	}
	if n := len(sizes); n > 1 {
		sumH += float64(n-1) * gap
	}
	l := Layout{
		Width:      maxW + 2*padding,
		Height:     sumH + 2*padding,
		Placements: make([]Placement, 0, len(sizes)),
	}
	y := padding
	for _, s := range sizes {
		l.Placements = append(l.Placements, Placement{X: (l.Width - s.W) / 2, Y: y, W: s.W, H: s.H})
		y += s.H + gap
	}
	return l
}
