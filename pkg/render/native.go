package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
)

// Native renders thumbnails in process. It understands the same resize
// options GraphicsMagick is given, so both produce the estimated size.
type Native struct {
	// SmartCrop picks the crop window by image content instead of the center
	// when the gravity is Center.
	SmartCrop bool
	// Filter is the resampling filter, Lanczos when unset.
	Filter imaging.ResampleFilter
}

var anchors = map[geometry.Gravity]imaging.Anchor{
	geometry.Center:    imaging.Center,
	geometry.North:     imaging.Top,
	geometry.NorthEast: imaging.TopRight,
	geometry.East:      imaging.Right,
	geometry.SouthEast: imaging.BottomRight,
	geometry.South:     imaging.Bottom,
	geometry.SouthWest: imaging.BottomLeft,
	geometry.West:      imaging.Left,
	geometry.NorthWest: imaging.TopLeft,
}

// Render implements thumbnail.Renderer.
func (n Native) Render(ctx context.Context, in, out string, opts geometry.ResizeOptions) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	img, err := imaging.Open(in)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", in, err)
	}

	if value, ok := opts.Get("resize"); ok {
		if img, err = n.resize(img, value); err != nil {
			return err
		}
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	gravity, hasGravity := opts.Get("gravity")
	frame, hasCrop := opts.Get("crop")
	if hasGravity && hasCrop {
		if img, err = n.crop(img, geometry.Gravity(gravity), frame); err != nil {
			return err
		}
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	var encode []imaging.EncodeOption
	if q, ok := opts.Get("quality"); ok {
		quality, err := strconv.Atoi(q)
		if err != nil {
			return fmt.Errorf("invalid quality %q", q)
		}
		encode = append(encode, imaging.JPEGQuality(quality))
	}

	if err := imaging.Save(img, out, encode...); err != nil {
		return fmt.Errorf("encoding %s: %w", out, err)
	}
	return nil
}

func (n Native) filter() imaging.ResampleFilter {
	if n.Filter.Support == 0 {
		return imaging.Lanczos
	}
	return n.Filter
}

// resize applies a "WxH" frame with an optional "^" (fill) or ">" (shrink
// only) flag. An empty side is unconstrained.
func (n Native) resize(img image.Image, value string) (image.Image, error) {
	flag := ""
	if strings.HasSuffix(value, "^") || strings.HasSuffix(value, ">") {
		flag = value[len(value)-1:]
		value = value[:len(value)-1]
	}
	w, h, err := parseFrame(value)
	if err != nil {
		return nil, err
	}

	sw, sh := img.Bounds().Dx(), img.Bounds().Dy()
	if sw == 0 || sh == 0 || (w == 0 && h == 0) {
		return img, nil
	}

	scaleW, scaleH := float64(w)/float64(sw), float64(h)/float64(sh)
	var scale float64
	switch {
	case w == 0:
		scale = scaleH
	case h == 0:
		scale = scaleW
	case flag == "^":
		scale = math.Max(scaleW, scaleH)
	default:
		scale = math.Min(scaleW, scaleH)
	}

	if flag == ">" && scale >= 1 {
		return img, nil
	}

	tw := max(int(math.Round(float64(sw)*scale)), 1)
	th := max(int(math.Round(float64(sh)*scale)), 1)
	if tw == sw && th == sh {
		return img, nil
	}
	return imaging.Resize(img, tw, th, n.filter()), nil
}

// crop cuts a "WxH+0+0" frame anchored at gravity.
func (n Native) crop(img image.Image, gravity geometry.Gravity, value string) (image.Image, error) {
	frame, _, _ := strings.Cut(value, "+")
	w, h, err := parseFrame(frame)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	w, h = min(orAll(w, bounds.Dx()), bounds.Dx()), min(orAll(h, bounds.Dy()), bounds.Dy())

	if gravity == geometry.Center && n.SmartCrop {
		analyzer := smartcrop.NewAnalyzer(&resizer{filter: n.filter()})
		best, err := analyzer.FindBestCrop(img, w, h)
		if err != nil {
			return nil, fmt.Errorf("finding best crop: %w", err)
		}
		return imaging.Resize(imaging.Crop(img, best), w, h, n.filter()), nil
	}

	anchor, ok := anchors[gravity]
	if !ok {
		anchor = imaging.Center
	}
	return imaging.CropAnchor(img, w, h, anchor), nil
}

func parseFrame(value string) (int, int, error) {
	ws, hs, _ := strings.Cut(value, "x")
	w, err := atoiOrZero(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame %q", value)
	}
	h, err := atoiOrZero(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame %q", value)
	}
	return w, h, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func orAll(v, all int) int {
	if v == 0 {
		return all
	}
	return v
}

// resizer implements the smartcrop resizer on top of imaging.
type resizer struct {
	filter imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
