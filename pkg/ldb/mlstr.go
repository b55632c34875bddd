package ldb

import(
	"bytes"
	"fmt"
)

// An MLString holds a default value plus per-language translations, in
// insertion order. The external database tooling speaks a packed wire form
// (NUL-separated default, then lang/translation pairs); we keep an ordered
// mapping in memory and round-trip to the packed form only at the edges.
type MLString struct {
	Value        string       `yaml:"value"`
	Translations []Translation `yaml:"translations,omitempty"`
}

type Translation struct {
	Lang  string `yaml:"lang"`
	Value string `yaml:"value"`
}

// NewMLString returns an MLString whose default segment is val.
func NewMLString(val string) MLString {
	return MLString{Value: val}
}

// Add sets the translation for lang, replacing any previous one. An empty
// lang replaces the default value.
func (s *MLString)Add(lang, val string) {
	if lang == "" {
		s.Value = val
		return
	}
	for i := range s.Translations {
		if s.Translations[i].Lang == lang {
			s.Translations[i].Value = val
			return
		}
	}
	s.Translations = append(s.Translations, Translation{lang, val})
}

// Get looks up the translation for lang, falling back to English and then
// to the default value.
func (s MLString)Get(lang string) string {
	def := s.Value
	for _, tr := range s.Translations {
		if tr.Lang == lang {
			return tr.Value
		}
		if tr.Lang == "en" {
			def = tr.Value
		}
	}
	return def
}

func (s MLString)Empty() bool { return s.Value == "" && len(s.Translations) == 0 }

func (s MLString)String() string { return s.Get("en") }

// Packed encodes the string into the NUL-separated wire form: default
// value, then (lang, translation) pairs, closed by a final NUL.
func (s MLString)Packed() []byte {
	var buf bytes.Buffer
	buf.WriteString(s.Value)
	buf.WriteByte(0)
	for _, tr := range s.Translations {
		buf.WriteString(tr.Lang)
		buf.WriteByte(0)
		buf.WriteString(tr.Value)
		buf.WriteByte(0)
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

// ParsePacked decodes the packed wire form produced by Packed (or by the
// external XML tooling).
func ParsePacked(b []byte) (MLString, error) {
	segs := bytes.Split(b, []byte{0})
	// A well-formed buffer ends in a double NUL, so the last two split
	// segments are empty.
	if len(segs) < 2 || len(segs[len(segs)-1]) != 0 {
		return MLString{}, fmt.Errorf("packed mlstr: missing terminator")
	}
	segs = segs[:len(segs)-1]
	if len(segs[len(segs)-1]) == 0 {
		segs = segs[:len(segs)-1]
	}

	s := MLString{Value: string(segs[0])}
	segs = segs[1:]
	if len(segs)%2 != 0 {
		return MLString{}, fmt.Errorf("packed mlstr: odd number of lang/value segments")
	}
	for i:=0; i<len(segs); i += 2 {
		s.Translations = append(s.Translations, Translation{string(segs[i]), string(segs[i+1])})
	}
	return s, nil
}
