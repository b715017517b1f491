package geometry

import (
	"fmt"
	"regexp"
	"strings"
)

var sizeRE = regexp.MustCompile(`^(\d+%?)(?:x(\d+%?)?)?(?::(\d+%?)(?:x(\d+%?)?)?)?$`)

// ParseError points at the token of a size spec that could not be parsed.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%q is not a valid size", e.Token)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidSize
}

// Parse reads a comma separated size spec such as "400x100,250,50%x0:1000".
// An omitted height (with or without the "x") is 0, i.e. derived from the
// aspect ratio. Order is kept and duplicates are not removed.
func Parse(text string) ([]SizeRequest, error) {
	tokens := strings.Split(text, ",")
	requests := make([]SizeRequest, 0, len(tokens))

	for _, token := range tokens {
		req, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func parseToken(token string) (SizeRequest, error) {
	m := sizeRE.FindStringSubmatch(token)
	if m == nil {
		return SizeRequest{}, &ParseError{Token: token}
	}

	dims := make([]Dimension, 4)
	for i, raw := range m[1:] {
		if raw == "" {
			continue
		}
		d, err := ParseDimension(raw)
		if err != nil {
			return SizeRequest{}, &ParseError{Token: token}
		}
		dims[i] = d
	}

	req := SizeRequest{Width: dims[0], Height: dims[1]}
	if m[3] != "" {
		req.Viewport = &Viewport{Width: dims[2], Height: dims[3]}
	}
	return req, nil
}
