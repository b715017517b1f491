package geometry

import (
	"fmt"
	"math"
)

// Estimate computes the size of the thumbnail the resize tool will produce for
// req on a source of the given size, without running the tool.
//
// Cropping keeps the requested frame; without upscaling the frame is shrunk
// until it fits inside the source. Without cropping the source is scaled to fit
// the frame and never enlarged unless upscale is set.
func Estimate(source Size, req SizeRequest, crop, upscale bool) (Size, error) {
	if source.Width <= 0 || source.Height <= 0 {
		return Size{}, fmt.Errorf("%w: source size %s", ErrInvalidGeometry, source)
	}
	if req.IsZero() {
		return Size{}, fmt.Errorf("%w: request %s has no dimension", ErrInvalidGeometry, req)
	}

	sw := float64(source.Width)
	sh := float64(source.Height)

	width := req.Width.resolve(source.Width)
	height := req.Height.resolve(source.Height)

	if width == 0 {
		width = height * sw / sh
	}
	if height == 0 {
		height = width * sh / sw
	}

	widthScale := width / sw
	heightScale := height / sh

	if crop {
		if !upscale {
			ratio := math.Max(math.Max(widthScale, heightScale), 1)
			width /= ratio
			height /= ratio
		}
	} else {
		ratio := math.Min(widthScale, heightScale)
		if !upscale {
			ratio = math.Min(ratio, 1)
		}
		width = sw * ratio
		height = sh * ratio
	}

	return Size{Width: int(math.Round(width)), Height: int(math.Round(height))}, nil
}

// FactorSize multiplies a dimension for a pixel density factor. Percentages
// keep their unit, a zero size renders as an empty string.
func FactorSize(d Dimension, factor int) string {
	if d.Percent {
		return Pct(d.Value * factor).String()
	}
	if v := d.Value * factor; v != 0 {
		return Px(v).String()
	}
	return ""
}
