package ldb

// A Camera record, as produced by the external database loader or built
// ad hoc by a caller doing a search.
type Camera struct {
	Maker   MLString `yaml:"maker"`
	Model   MLString `yaml:"model"`
	Variant MLString `yaml:"variant,omitempty"`
	Mount   string   `yaml:"mount"`

	// Ratio of the reference 35mm frame diagonal to this sensor's diagonal
	CropFactor float64 `yaml:"cropfactor"`

	// Set by the external searcher when ranking matches; never persisted
	Score int `yaml:"-"`
}

func NewCamera() *Camera {
	return &Camera{}
}

func (c *Camera)Clone() *Camera {
	c2 := *c
	c2.Score = 0
	return &c2
}

// Check reports whether the camera record is complete enough to use.
func (c *Camera)Check() bool {
	return !c.Maker.Empty() && !c.Model.Empty() && c.Mount != "" && c.CropFactor > 0
}
