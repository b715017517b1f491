package geometry

import "math"

// ClampFamily walks a batch of requests for one source and stops at the first
// one that reaches the source size, unless upscaling is allowed. That request
// is rewritten to fit the source and becomes the last one returned, so a
// family never contains variants that would only be upscaled copies.
//
// Percentage requests are always kept as they can not outgrow the source.
func ClampFamily(source Size, requests []SizeRequest, crop, upscale bool) []SizeRequest {
	if source.Width <= 0 || source.Height <= 0 {
		// Nothing sensible to compare against; Estimate reports the bad source.
		return append([]SizeRequest(nil), requests...)
	}

	family := make([]SizeRequest, 0, len(requests))

	for _, req := range requests {
		if upscale || req.HasPercent() || !reachesSource(source, req) {
			family = append(family, req)
			continue
		}

		family = append(family, clampRequest(source, req, crop))
		break
	}
	return family
}

func reachesSource(source Size, req SizeRequest) bool {
	return req.Width.Value >= source.Width || req.Height.Value >= source.Height
}

func clampRequest(source Size, req SizeRequest, crop bool) SizeRequest {
	w, h := req.Width.Value, req.Height.Value
	clamped := SizeRequest{Viewport: req.Viewport}

	switch {
	case crop:
		clamped.Width = Px(min(source.Width, w))
		clamped.Height = Px(min(source.Height, h))
	case w >= source.Width:
		clamped.Width = Px(source.Width)
		clamped.Height = Px(scaleSide(h, float64(source.Width)/float64(w), source.Height))
	default:
		clamped.Width = Px(scaleSide(w, float64(source.Height)/float64(h), source.Width))
		clamped.Height = Px(source.Height)
	}
	return clamped
}

// scaleSide scales a requested side by factor. A derived side follows the
// source aspect ratio, which for a source sized frame is the source side.
func scaleSide(requested int, factor float64, sourceSide int) int {
	if requested == 0 {
		return sourceSide
	}
	return int(math.Round(float64(requested) * factor))
}
