package channels

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Matrix maps a netcode major version to the minor versions considered
// mutually compatible. Majors and minors keep first-insertion order.
type Matrix struct {
	majors []string
	minors map[string][]string
}

func NewMatrix() *Matrix {
	return &Matrix{minors: map[string][]string{}}
}

// AddMajor registers major with no minor constraint if it is not known yet.
func (m *Matrix) AddMajor(major string) {
	if _, ok := m.minors[major]; ok {
		return
	}
	m.majors = append(m.majors, major)
	m.minors[major] = []string{}
}

// Add appends minor under major. Minors already listed are ignored.
func (m *Matrix) Add(major, minor string) {
	m.AddMajor(major)
	for _, have := range m.minors[major] {
		if have == minor {
			return
		}
	}
	m.minors[major] = append(m.minors[major], minor)
}

// Set replaces the minors listed under major.
func (m *Matrix) Set(major string, minors []string) {
	m.AddMajor(major)
	m.minors[major] = append([]string{}, minors...)
}

func (m *Matrix) Majors() []string { return append([]string(nil), m.majors...) }

func (m *Matrix) Minors(major string) []string {
	return append([]string(nil), m.minors[major]...)
}

// MarshalJSON writes majors in insertion order.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, major := range m.majors {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(major)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.minors[major])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DevWindow returns the last n build counters ending at latest, oldest first.
// Counters below 1 are not emitted.
func DevWindow(latest, n int) []string {
	first := latest - (n - 1)
	if first < 1 {
		first = 1
	}
	out := make([]string, 0, n)
	for i := first; i <= latest; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
