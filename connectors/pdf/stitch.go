package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"waste-stats/domain/report"
)

// Stitcher places section rasters on a single custom-sized PDF page.
type Stitcher struct{}

func New() *Stitcher { return &Stitcher{} }

// Stitch implements report.Stitcher. Units are points, so a raster of
// w×h pixels covers w×h points.
func (Stitcher) Stitch(w io.Writer, l report.Layout, images []image.Image) error {
	if len(images) != len(l.Placements) {
		return fmt.Errorf("%d images for %d placements", len(images), len(l.Placements))
	}
	orientation := "P"
	if l.Landscape() {
		orientation = "L"
	}
	// gofpdf swaps the size for landscape pages, so describe the page portrait.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: min(l.Width, l.Height), Ht: max(l.Width, l.Height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Waste Management Report", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode section %d: %w", i, err)
		}
		name := fmt.Sprintf("section-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		p := l.Placements[i]
		pdf.ImageOptions(name, p.X, p.Y, p.W, p.H, false, opts, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
