package thumbnail

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
)

var (
	// ErrMissingSize is returned when options carry no size.
	ErrMissingSize = errors.New("size is required but missing in thumbnail options")
	// ErrInvalidOption is returned for unknown option keys and out of range
	// values.
	ErrInvalidOption = errors.New("invalid thumbnail option")
)

var pngquantRE = regexp.MustCompile(`^\d+(-\d+)?$`)

// Options describe how a thumbnail is rendered from its source.
type Options struct {
	// Size is the requested size. Its viewport is reported to callers but not
	// part of the thumbnail identity.
	Size geometry.SizeRequest
	Crop geometry.Crop
	// Upscale allows thumbnails larger than the source.
	Upscale bool
	// Factor2x enables the double density variant.
	Factor2x bool
	// Quality is the encoder quality, 1 to 100.
	Quality int
	// Pngquant is an optional "min-max" quality range for PNG optimization.
	Pngquant string
}

// DefaultOptions returns the options used for anything not set explicitly.
func DefaultOptions() Options {
	return Options{
		Crop:     geometry.NoCrop,
		Factor2x: true,
		Quality:  90,
	}
}

// Validate checks the options once before a thumbnail is built from them.
func (o Options) Validate() error {
	if o.Size.IsZero() {
		return ErrMissingSize
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: quality %d is not within 1..100", ErrInvalidOption, o.Quality)
	}
	if o.Pngquant != "" && !pngquantRE.MatchString(o.Pngquant) {
		return fmt.Errorf("%w: pngquant quality %q", ErrInvalidOption, o.Pngquant)
	}
	return nil
}

// identity returns the options in the form they are hashed and registered.
func (o Options) identity() map[string]any {
	m := map[string]any{
		"size":     o.Size.Pair(),
		"upscale":  o.Upscale,
		"factor2x": o.Factor2x,
		"quality":  o.Quality,
		"pngquant": nil,
	}

	switch o.Crop {
	case geometry.NoCrop:
		m["crop"] = false
	case geometry.CropOn:
		m["crop"] = true
	default:
		m["crop"] = string(o.Crop)
	}

	if o.Pngquant != "" {
		m["pngquant"] = o.Pngquant
	}
	return m
}

// String renders the options sorted by key.
func (o Options) String() string {
	id := o.identity()
	keys := make([]string, 0, len(id))
	for k := range id {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := id[k]
		switch k {
		case "size":
			v = o.Size.String()
		case "pngquant":
			v = o.Pngquant
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}

// Decode applies an option map, as stored in the registry or given on the
// command line, on top of base. Unknown keys are rejected.
func Decode(base Options, m map[string]any) (Options, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// "size" sorts before "viewport", so an explicit viewport always wins.
	sort.Strings(keys)

	o := base
	for _, key := range keys {
		value := m[key]
		var err error
		switch key {
		case "size":
			o.Size, err = decodeSize(value, o.Size.Viewport)
		case "viewport":
			o.Size.Viewport, err = decodeViewport(value)
		case "crop":
			o.Crop, err = decodeCrop(value)
		case "upscale":
			o.Upscale, err = decodeBool(value)
		case "factor2x":
			o.Factor2x, err = decodeBool(value)
		case "quality":
			o.Quality, err = decodeInt(value)
		case "pngquant":
			o.Pngquant, err = decodeOptionalString(value)
		default:
			return Options{}, fmt.Errorf("%w: unknown option %q", ErrInvalidOption, key)
		}
		if err != nil {
			return Options{}, fmt.Errorf("%w: %s: %v", ErrInvalidOption, key, err)
		}
	}
	return o, nil
}

func decodeSize(v any, viewport *geometry.Viewport) (geometry.SizeRequest, error) {
	if s, ok := v.(string); ok {
		reqs, err := geometry.Parse(s)
		if err != nil {
			return geometry.SizeRequest{}, err
		}
		if len(reqs) != 1 {
			return geometry.SizeRequest{}, fmt.Errorf("expected a single size, got %q", s)
		}
		if reqs[0].Viewport == nil {
			reqs[0].Viewport = viewport
		}
		return reqs[0], checkSize(reqs[0])
	}

	w, h, err := decodePair(v)
	if err != nil {
		return geometry.SizeRequest{}, err
	}
	req := geometry.SizeRequest{Width: w, Height: h, Viewport: viewport}
	return req, checkSize(req)
}

// checkSize rejects a size that is given but has no dimension to start from.
func checkSize(req geometry.SizeRequest) error {
	if req.IsZero() {
		return fmt.Errorf("%w: size %s has no non-zero dimension", geometry.ErrInvalidGeometry, req)
	}
	return nil
}

func decodeViewport(v any) (*geometry.Viewport, error) {
	if v == nil {
		return nil, nil
	}
	w, h, err := decodePair(v)
	if err != nil {
		return nil, err
	}
	return &geometry.Viewport{Width: w, Height: h}, nil
}

func decodePair(v any) (geometry.Dimension, geometry.Dimension, error) {
	var items []string
	switch v := v.(type) {
	case []string:
		items = v
	case []any:
		for _, item := range v {
			s, err := scalarString(item)
			if err != nil {
				return geometry.Dimension{}, geometry.Dimension{}, err
			}
			items = append(items, s)
		}
	default:
		return geometry.Dimension{}, geometry.Dimension{}, fmt.Errorf("expected a [width, height] pair, got %T", v)
	}
	if len(items) != 2 {
		return geometry.Dimension{}, geometry.Dimension{}, fmt.Errorf("expected a [width, height] pair, got %d values", len(items))
	}

	w, err := geometry.ParseDimension(items[0])
	if err != nil {
		return geometry.Dimension{}, geometry.Dimension{}, err
	}
	h, err := geometry.ParseDimension(items[1])
	if err != nil {
		return geometry.Dimension{}, geometry.Dimension{}, err
	}
	return w, h, nil
}

func decodeCrop(v any) (geometry.Crop, error) {
	switch v := v.(type) {
	case nil:
		return geometry.NoCrop, nil
	case bool:
		if v {
			return geometry.CropOn, nil
		}
		return geometry.NoCrop, nil
	default:
		s, err := scalarString(v)
		if err != nil {
			return geometry.NoCrop, err
		}
		return geometry.ParseCrop(s), nil
	}
}

func decodeBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

func decodeInt(v any) (int, error) {
	s, err := scalarString(v)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

func decodeOptionalString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	return scalarString(v)
}

func scalarString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("expected an integer, got %v", v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("unexpected value of type %T", v)
	}
}
