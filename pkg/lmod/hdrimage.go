package lmod

import(
	"image"
	"image/color"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
)

// Devignetted wraps an HDR image with the color chain of a modifier, so
// downstream consumers (tone mappers, encoders) see the corrected pixel
// values without an intermediate buffer. The modifier must have been
// initialized with the F64 pixel format.
type Devignetted struct {
	Src hdr.Image
	Mod *Modifier
}

func NewDevignetted(src hdr.Image, mod *Modifier) Devignetted {
	return Devignetted{Src: src, Mod: mod}
}

// Implement image.Image
func (d Devignetted)ColorModel() color.Model { return hdrcolor.RGBModel }
func (d Devignetted)Bounds() image.Rectangle { return d.Src.Bounds() }
func (d Devignetted)At(x, y int) color.Color { return d.HDRAt(x, y) }

// Implement hdr.Image
func (d Devignetted)Size() int { return d.Src.Size() }

func (d Devignetted)HDRAt(x, y int) hdrcolor.Color {
	r, g, b, _ := d.Src.HDRAt(x, y).HDRRGBA()
	buf := []float64{r, g, b}
	d.Mod.ApplyColorModification(buf, float64(x), float64(y), 1, 1, RolesRGB, 3*8)
	return hdrcolor.RGB{R: buf[0], G: buf[1], B: buf[2]}
}
