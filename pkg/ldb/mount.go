package ldb

// A Mount names a lens mount and the set of other mounts whose lenses can
// be attached to it (via adapters or plain mechanical compatibility).
type Mount struct {
	Name   MLString `yaml:"name"`
	Compat []string `yaml:"compat,omitempty"`
}

func NewMount(name string) *Mount {
	return &Mount{Name: NewMLString(name)}
}

// AddCompat records another mount as compatible with this one.
func (m *Mount)AddCompat(val string) {
	if val == "" {
		return
	}
	for _, c := range m.Compat {
		if c == val {
			return
		}
	}
	m.Compat = append(m.Compat, val)
}

// Check reports whether the mount record is usable.
func (m *Mount)Check() bool {
	return !m.Name.Empty()
}
