// Package geometry parses size requests, estimates thumbnail dimensions and
// turns them into resize-tool parameters. Nothing in here touches pixel data.
package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSize is returned for size tokens that do not match the grammar.
	ErrInvalidSize = errors.New("invalid size")
	// ErrInvalidGeometry is returned when a size can not be computed, e.g. for a
	// zero sized source or a request where both dimensions are derived.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// Size is a resolved pixel size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Half returns the size a retina source is treated as when it should also
// serve a 2x variant.
func (s Size) Half() Size {
	return Size{Width: s.Width / 2, Height: s.Height / 2}
}

// Dimension is one requested side of a thumbnail: an absolute pixel value or a
// percentage of the source. A zero value means "derive from the other side".
type Dimension struct {
	Value   int
	Percent bool
}

// Px returns an absolute dimension.
func Px(v int) Dimension { return Dimension{Value: v} }

// Pct returns a percentage dimension.
func Pct(v int) Dimension { return Dimension{Value: v, Percent: true} }

// ParseDimension parses "120" or "50%".
func ParseDimension(s string) (Dimension, error) {
	raw := s
	percent := strings.HasSuffix(s, "%")
	if percent {
		s = s[:len(s)-1]
	}
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return Dimension{}, fmt.Errorf("%w: dimension %q", ErrInvalidSize, raw)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Dimension{}, fmt.Errorf("%w: dimension %q: %v", ErrInvalidSize, raw, err)
	}
	return Dimension{Value: v, Percent: percent}, nil
}

// IsZero reports whether the dimension has to be derived.
func (d Dimension) IsZero() bool {
	return d.Value == 0
}

func (d Dimension) String() string {
	if d.Percent {
		return strconv.Itoa(d.Value) + "%"
	}
	return strconv.Itoa(d.Value)
}

// resolve converts the dimension into pixels relative to the source side.
func (d Dimension) resolve(source int) float64 {
	if d.Percent {
		return float64(source) * float64(d.Value) / 100.0
	}
	return float64(d.Value)
}

// Viewport is the layout size a thumbnail is meant for. It is reported to
// callers but never influences resizing.
type Viewport struct {
	Width  Dimension
	Height Dimension
}

// SizeRequest is one parsed entry of a size spec.
type SizeRequest struct {
	Width    Dimension
	Height   Dimension
	Viewport *Viewport
}

// Request builds an absolute width x height request.
func Request(width, height int) SizeRequest {
	return SizeRequest{Width: Px(width), Height: Px(height)}
}

// IsZero reports whether neither dimension was requested.
func (r SizeRequest) IsZero() bool {
	return r.Width.IsZero() && r.Height.IsZero()
}

// HasPercent reports whether either dimension is relative to the source.
func (r SizeRequest) HasPercent() bool {
	return r.Width.Percent || r.Height.Percent
}

// Pair returns the textual width and height, the form used for hashing.
// Dimensions are in canonical form, so zero padded input hashes like the
// plain number.
func (r SizeRequest) Pair() []string {
	return []string{r.Width.String(), r.Height.String()}
}

func (r SizeRequest) String() string {
	s := r.Width.String() + "x" + r.Height.String()
	if r.Viewport != nil {
		s += ":" + r.Viewport.Width.String() + "x" + r.Viewport.Height.String()
	}
	return s
}
