package lmod

// The block-apply entry points. Each one reads only immutable
// post-Initialize state and caller-owned buffers, so callers can fan
// disjoint tiles out over as many goroutines as they like against the
// same modifier.

// ApplyColorModification runs the color chain over a pixel block in
// place. (x, y) is the image position of the block's top-left pixel,
// rowStride is in bytes, and pixels must be the slice type matching the
// pixel format given to Initialize. Reports false when there is nothing
// to do or the buffer type doesn't match.
func (m *Modifier)ApplyColorModification(pixels interface{}, x, y float64,
	width, height int, roles ComponentRoles, rowStride int) bool {

	if len(m.colorCBs) == 0 || width <= 0 || height <= 0 {
		return false
	}
	strideElems := rowStride / m.format.BytesPerComponent()

	switch pix := pixels.(type) {
	case []uint8:
		if m.format != PixelU8 {
			return false
		}
		applyColorRows(m, pix, x, y, width, height, roles, strideElems)
	case []uint16:
		if m.format != PixelU16 {
			return false
		}
		applyColorRows(m, pix, x, y, width, height, roles, strideElems)
	case []uint32:
		if m.format != PixelU32 {
			return false
		}
		applyColorRows(m, pix, x, y, width, height, roles, strideElems)
	case []float32:
		if m.format != PixelF32 {
			return false
		}
		applyColorRows(m, pix, x, y, width, height, roles, strideElems)
	case []float64:
		if m.format != PixelF64 {
			return false
		}
		applyColorRows(m, pix, x, y, width, height, roles, strideElems)
	default:
		return false
	}
	return true
}

func applyColorRows[T pixelComponent](m *Modifier, pix []T, x, y float64,
	width, height int, roles ComponentRoles, strideElems int) {

	for j:=0; j<height; j++ {
		lo := j * strideElems
		hi := lo + strideElems
		if hi > len(pix) {
			hi = len(pix)
		}
		row := pix[lo:hi]
		for _, cb := range m.colorCBs {
			cb.fn(x, y+float64(j), row, roles, width)
		}
	}
}

// ApplyGeometryDistortion computes, for every pixel of the block whose
// top-left output coordinate is (xu, yu), the source coordinate to sample
// from. res receives interleaved (x, y) pairs, width*height*2 values.
// Reports false when the coordinate chain is empty.
func (m *Modifier)ApplyGeometryDistortion(xu, yu float64, width, height int, res []float64) bool {
	if len(m.coordCBs) == 0 || width <= 0 || height <= 0 {
		return false
	}

	for j:=0; j<height; j++ {
		strip := res[j*width*2 : (j+1)*width*2]
		for i:=0; i<width; i++ {
			strip[i*2] = (xu + float64(i) - m.CenterX) * m.NormScale
			strip[i*2+1] = (yu + float64(j) - m.CenterY) * m.NormScale
		}
		m.applyCoordChain(strip)
		for i:=0; i<width*2; i += 2 {
			strip[i] = strip[i]*m.NormUnScale + m.CenterX
			strip[i+1] = strip[i+1]*m.NormUnScale + m.CenterY
		}
	}
	return true
}

// ApplySubpixelDistortion is ApplyGeometryDistortion for the subpixel
// chain: res receives (xR, yR, xG, yG, xB, yB) groups, width*height*6
// values.
func (m *Modifier)ApplySubpixelDistortion(xu, yu float64, width, height int, res []float64) bool {
	if len(m.subpixelCBs) == 0 || width <= 0 || height <= 0 {
		return false
	}

	for j:=0; j<height; j++ {
		strip := res[j*width*6 : (j+1)*width*6]
		for i:=0; i<width; i++ {
			nx := (xu + float64(i) - m.CenterX) * m.NormScale
			ny := (yu + float64(j) - m.CenterY) * m.NormScale
			strip[i*6+0], strip[i*6+1] = nx, ny
			strip[i*6+2], strip[i*6+3] = nx, ny
			strip[i*6+4], strip[i*6+5] = nx, ny
		}
		m.applySubpixelChain(strip)
		for i:=0; i<width*6; i += 2 {
			strip[i] = strip[i]*m.NormUnScale + m.CenterX
			strip[i+1] = strip[i+1]*m.NormUnScale + m.CenterY
		}
	}
	return true
}

// ApplySubpixelGeometryDistortion fuses stages 2 and 3: the coordinate
// chain runs once per pixel, its result seeds all three channels, and the
// subpixel chain refines them. res receives (xR, yR, xG, yG, xB, yB)
// groups, width*height*6 values. Doing both stages in one pass avoids a
// second resampling round in the caller.
func (m *Modifier)ApplySubpixelGeometryDistortion(xu, yu float64, width, height int, res []float64) bool {
	if (len(m.coordCBs) == 0 && len(m.subpixelCBs) == 0) || width <= 0 || height <= 0 {
		return false
	}

	coords := make([]float64, width*2)

	for j:=0; j<height; j++ {
		for i:=0; i<width; i++ {
			coords[i*2] = (xu + float64(i) - m.CenterX) * m.NormScale
			coords[i*2+1] = (yu + float64(j) - m.CenterY) * m.NormScale
		}
		m.applyCoordChain(coords)

		strip := res[j*width*6 : (j+1)*width*6]
		for i:=0; i<width; i++ {
			nx, ny := coords[i*2], coords[i*2+1]
			strip[i*6+0], strip[i*6+1] = nx, ny
			strip[i*6+2], strip[i*6+3] = nx, ny
			strip[i*6+4], strip[i*6+5] = nx, ny
		}
		m.applySubpixelChain(strip)
		for i:=0; i<width*6; i += 2 {
			strip[i] = strip[i]*m.NormUnScale + m.CenterX
			strip[i+1] = strip[i+1]*m.NormUnScale + m.CenterY
		}
	}
	return true
}

func (m *Modifier)applySubpixelChain(io []float64) {
	for _, cb := range m.subpixelCBs {
		cb.fn(io)
	}
}
