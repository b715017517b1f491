package geometry

import (
	"strconv"
	"strings"
)

// Crop is the crop setting of a thumbnail. NoCrop disables cropping, CropOn
// crops around the center and any other value names the gravity to crop
// towards. Unknown gravity names still crop but emit no gravity directive.
type Crop string

const (
	NoCrop Crop = ""
	CropOn Crop = "true"
)

// ParseCrop normalizes the user facing crop values (booleans, 0/1 and
// gravity names).
func ParseCrop(token string) Crop {
	switch t := strings.TrimSpace(token); strings.ToLower(t) {
	case "", "false", "0", "no", "off":
		return NoCrop
	case "true", "1", "yes", "on":
		return CropOn
	default:
		return Crop(t)
	}
}

// Enabled reports whether the thumbnail fills and crops its frame.
func (c Crop) Enabled() bool {
	return c != NoCrop
}

// Gravity returns the anchor for the crop, or "" if none applies.
func (c Crop) Gravity() Gravity {
	return cropGravity[c]
}

// Gravity is a GraphicsMagick gravity name.
type Gravity string

const (
	Center    Gravity = "Center"
	North     Gravity = "North"
	NorthEast Gravity = "NorthEast"
	East      Gravity = "East"
	SouthEast Gravity = "SouthEast"
	South     Gravity = "South"
	SouthWest Gravity = "SouthWest"
	West      Gravity = "West"
	NorthWest Gravity = "NorthWest"
)

var cropGravity = map[Crop]Gravity{
	CropOn: Center,
	"C":    Center,
	"N":    North,
	"NE":   NorthEast,
	"E":    East,
	"SE":   SouthEast,
	"S":    South,
	"SW":   SouthWest,
	"W":    West,
	"NW":   NorthWest,

	"Center":    Center,
	"North":     North,
	"NorthEast": NorthEast,
	"East":      East,
	"SouthEast": SouthEast,
	"South":     South,
	"SouthWest": SouthWest,
	"West":      West,
	"NorthWest": NorthWest,
}

// Option is a single resize-tool parameter. An empty Value renders as a bare
// flag.
type Option struct {
	Key   string
	Value string
}

// ResizeOptions is an ordered parameter list. The order is significant: the
// profile strip comes first, resize before gravity and crop, quality last.
type ResizeOptions []Option

// Get returns the value of the first option with the given key.
func (o ResizeOptions) Get(key string) (string, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return "", false
}

// Args renders the options as command line flags. Keys starting with "+" are
// passed through as is, every other key gets a leading dash.
func (o ResizeOptions) Args() []string {
	args := make([]string, 0, len(o)*2)
	for _, opt := range o {
		if strings.HasPrefix(opt.Key, "+") {
			args = append(args, opt.Key)
		} else {
			args = append(args, "-"+opt.Key)
		}
		if opt.Value != "" {
			args = append(args, opt.Value)
		}
	}
	return args
}

// BuildResizeOptions translates an estimated size into resize parameters for
// the given pixel density factor.
func BuildResizeOptions(size Size, factor int, crop Crop, upscale bool, quality int) ResizeOptions {
	opts := ResizeOptions{
		// Embedded color profiles are dropped to keep output consistent.
		{Key: "+profile", Value: "*"},
	}

	suffix := ">"
	switch {
	case crop.Enabled():
		suffix = "^"
	case upscale:
		suffix = ""
	}

	frame := FactorSize(Px(size.Width), factor) + "x" + FactorSize(Px(size.Height), factor)
	opts = append(opts, Option{Key: "resize", Value: frame + suffix})

	if gravity := crop.Gravity(); gravity != "" {
		opts = append(opts,
			Option{Key: "gravity", Value: string(gravity)},
			Option{Key: "crop", Value: frame + "+0+0"},
		)
	}

	return append(opts, Option{Key: "quality", Value: strconv.Itoa(quality)})
}
