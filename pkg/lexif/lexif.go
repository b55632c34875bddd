package lexif

// Pulls the shooting parameters a modifier wants out of an image's EXIF
// block, so callers don't have to hand-copy them from their RAW developer.

import(
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// ShotParams is what Modifier.Initialize needs to know about a shot.
type ShotParams struct {
	Focal    float64 // nominal focal length, mm
	Aperture float64 // f-number
	Distance float64 // subject distance, meters; 1000 when unknown
	Maker    string
	Model    string
}

// ReadShotParams extracts the shooting parameters from the EXIF block of
// the named image file. A missing subject distance is filled with 1000m,
// which is close enough for vignetting purposes; missing focal length or
// aperture is an error, because guessing those silently would corrupt the
// correction.
func ReadShotParams(filename string) (ShotParams, error) {
	sp := ShotParams{Distance: 1000}

	f, err := os.Open(filename)
	if err != nil {
		return sp, fmt.Errorf("open '%s': %v", filename, err)
	}
	defer f.Close()

	ex, err := exif.Decode(f)
	if err != nil {
		return sp, fmt.Errorf("exif parsing '%s': %v", filename, err)
	}

	if tag, err := ex.Get(exif.FocalLength); err != nil {
		return sp, fmt.Errorf("exif FocalLength '%s': %v", filename, err)
	} else if num, denom, err := tag.Rat2(0); err != nil {
		return sp, fmt.Errorf("exif FocalLength '%s': %v", filename, err)
	} else if denom == 0 {
		return sp, fmt.Errorf("exif FocalLength '%s': zero denominator", filename)
	} else {
		sp.Focal = float64(num) / float64(denom)
	}

	if tag, err := ex.Get(exif.FNumber); err != nil {
		return sp, fmt.Errorf("exif FNumber '%s': %v", filename, err)
	} else if num, denom, err := tag.Rat2(0); err != nil {
		return sp, fmt.Errorf("exif FNumber '%s': %v", filename, err)
	} else if denom == 0 {
		return sp, fmt.Errorf("exif FNumber '%s': zero denominator", filename)
	} else {
		sp.Aperture = float64(num) / float64(denom)
	}

	// SubjectDistance is rarely written; fall back quietly
	if tag, err := ex.Get(exif.SubjectDistance); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 && num != 0 {
			sp.Distance = float64(num) / float64(denom)
		}
	}

	if tag, err := ex.Get(exif.Make); err == nil {
		sp.Maker, _ = tag.StringVal()
	}
	if tag, err := ex.Get(exif.Model); err == nil {
		sp.Model, _ = tag.StringVal()
	}

	return sp, nil
}
