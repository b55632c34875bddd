package lviz

// Debug helpers for eyeballing what a modifier does to an image: render
// the source-lookup grid as a PNG, and summarize displacement magnitudes.

import(
	"fmt"
	"log"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"github.com/skypies/util/histogram"

	"github.com/openphoto/lenskit/pkg/lmod"
)

// DumpCoordGrid renders every nth source-lookup vector of the modifier's
// coordinate chain into a PNG: a dot at the output pixel, a line to where
// it samples the source. Out-of-bounds pixels get a cross.
func DumpCoordGrid(m *lmod.Modifier, width, height, step int, title, filename string) error {
	if step < 1 {
		step = 32
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	buf := make([]float64, 2)
	for y:=0; y<height; y += step {
		for x:=0; x<width; x += step {
			if !m.ApplyGeometryDistortion(float64(x), float64(y), 1, 1, buf) {
				return fmt.Errorf("coordinate chain is empty, nothing to dump")
			}
			sx, sy := buf[0], buf[1]

			if lmod.IsOutOfBounds(sx, sy) {
				dc.SetRGB(1, 0, 0)
				dc.DrawLine(float64(x)-3, float64(y)-3, float64(x)+3, float64(y)+3)
				dc.DrawLine(float64(x)-3, float64(y)+3, float64(x)+3, float64(y)-3)
				dc.Stroke()
				continue
			}

			dc.SetRGB(0.3, 0.8, 0.3)
			dc.DrawLine(float64(x), float64(y), sx, sy)
			dc.Stroke()
			dc.SetRGB(1, 1, 1)
			dc.DrawPoint(float64(x), float64(y), 1.2)
			dc.Fill()
		}
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 20, 30)
	return dc.SavePNG(filename)
}

// DisplacementStats walks the whole grid and histograms the displacement
// magnitude in pixels, logging a summary. Handy for sanity checking a
// calibration before burning CPU on a full-size image.
func DisplacementStats(m *lmod.Modifier, width, height int) string {
	hist := histogram.Histogram{NumBuckets: 64, ValMin: 0, ValMax: 64}

	row := make([]float64, width*2)
	outOfBounds := 0
	maxDisp := 0.0
	for y:=0; y<height; y++ {
		if !m.ApplyGeometryDistortion(0, float64(y), width, 1, row) {
			return "coordinate chain is empty"
		}
		for x:=0; x<width; x++ {
			sx, sy := row[x*2], row[x*2+1]
			if lmod.IsOutOfBounds(sx, sy) {
				outOfBounds++
				continue
			}
			d := math.Hypot(sx-float64(x), sy-float64(y))
			if d > maxDisp {
				maxDisp = d
			}
			hist.Add(histogram.ScalarVal(int(d)))
		}
	}

	str := fmt.Sprintf("displacement px: %v, max %.2f, oob %d", hist, maxDisp, outOfBounds)
	log.Printf("%s\n", str)
	return str
}
