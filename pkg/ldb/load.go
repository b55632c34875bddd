package ldb

import(
	"errors"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Lens records are normally produced by the external XML database tooling.
// For everything else (tests, ad hoc corrections, caching the subset of
// the database an application cares about) we read and write them as YAML.

var(
	// ErrWrongFormat flags a record file that doesn't parse or fails Check
	ErrWrongFormat = errors.New("wrong database record format")
	// ErrNoDatabase flags a missing record file
	ErrNoDatabase = errors.New("no database found")
)

/* Example lens record file ...

maker:
  value: Tamron
model:
  value: Tamron SP AF 17-50mm f/2.8
mounts: [Nikon F AF]
cropfactor: 1.5
aspectratio: 1.5
type: 1
calibdistortion:
  - model: 3
    focal: 17
    terms: [0.02458, -0.06895, 0.02573, 0, 0]
*/

// LoadLens reads one lens record from a YAML file and validates it.
func LoadLens(filename string) (*Lens, error) {
	l := NewLens()

	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", filename, ErrNoDatabase)
	}
	if err := yaml.Unmarshal(contents, l); err != nil {
		return nil, fmt.Errorf("parse '%s': %v: %w", filename, err, ErrWrongFormat)
	}

	if !l.Check() {
		return nil, fmt.Errorf("check '%s': %w", filename, ErrWrongFormat)
	}

	return l, nil
}

// SaveLens writes one lens record as YAML.
func SaveLens(filename string, l *Lens) error {
	b, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal lens '%s': %v", l.Model, err)
	}
	if err := ioutil.WriteFile(filename, b, 0644); err != nil {
		return fmt.Errorf("write '%s': %v", filename, err)
	}
	return nil
}

// LoadMount and LoadCamera follow the same shape, for completeness of the
// loader contract.

func LoadMount(filename string) (*Mount, error) {
	m := &Mount{}
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", filename, ErrNoDatabase)
	}
	if err := yaml.Unmarshal(contents, m); err != nil {
		return nil, fmt.Errorf("parse '%s': %v: %w", filename, err, ErrWrongFormat)
	}
	if !m.Check() {
		return nil, fmt.Errorf("check '%s': %w", filename, ErrWrongFormat)
	}
	return m, nil
}

func LoadCamera(filename string) (*Camera, error) {
	c := NewCamera()
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", filename, ErrNoDatabase)
	}
	if err := yaml.Unmarshal(contents, c); err != nil {
		return nil, fmt.Errorf("parse '%s': %v: %w", filename, err, ErrWrongFormat)
	}
	if !c.Check() {
		return nil, fmt.Errorf("check '%s': %w", filename, ErrWrongFormat)
	}
	return c, nil
}
