package geometry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResizeOptions_Order(t *testing.T) {
	opts := BuildResizeOptions(Size{50, 25}, 1, CropOn, false, 90)

	assert.Equal(t, ResizeOptions{
		{Key: "+profile", Value: "*"},
		{Key: "resize", Value: "50x25^"},
		{Key: "gravity", Value: "Center"},
		{Key: "crop", Value: "50x25+0+0"},
		{Key: "quality", Value: "90"},
	}, opts)
}

func TestBuildResizeOptions_NoCrop(t *testing.T) {
	opts := BuildResizeOptions(Size{50, 25}, 1, NoCrop, false, 5)

	_, hasGravity := opts.Get("gravity")
	_, hasCrop := opts.Get("crop")
	assert.False(t, hasGravity)
	assert.False(t, hasCrop)

	quality, _ := opts.Get("quality")
	assert.Equal(t, "5", quality)
	assert.Equal(t, "quality", opts[len(opts)-1].Key)
}

func TestBuildResizeOptions_Factor(t *testing.T) {
	opts := BuildResizeOptions(Size{50, 25}, 2, Crop("N"), false, 90)

	resize, _ := opts.Get("resize")
	crop, _ := opts.Get("crop")
	gravity, _ := opts.Get("gravity")
	assert.Equal(t, "100x50^", resize)
	assert.Equal(t, "100x50+0+0", crop)
	assert.Equal(t, "North", gravity)
}

func TestBuildResizeOptions_UnknownGravity(t *testing.T) {
	opts := BuildResizeOptions(Size{50, 25}, 1, Crop("invalid"), false, 90)

	resize, _ := opts.Get("resize")
	assert.Equal(t, "50x25^", resize)
	_, hasGravity := opts.Get("gravity")
	assert.False(t, hasGravity)
}

func TestBuildResizeOptions_Sizes(t *testing.T) {
	tests := []struct {
		source  Size
		request SizeRequest
		upscale bool
		crop    bool
		resize  string
		cropArg string
	}{
		{Size{100, 200}, Request(600, 300), true, true, "600x300^", "600x300+0+0"},
		{Size{100, 200}, Request(600, 300), true, false, "150x300", ""},
		{Size{100, 200}, Request(600, 300), false, true, "100x50^", "100x50+0+0"},
		{Size{100, 200}, Request(600, 300), false, false, "100x200>", ""},
		{Size{100, 200}, Request(300, 600), true, true, "300x600^", "300x600+0+0"},
		{Size{100, 200}, Request(300, 600), true, false, "300x600", ""},
		{Size{100, 200}, Request(300, 600), false, true, "100x200^", "100x200+0+0"},
		{Size{100, 200}, Request(300, 600), false, false, "100x200>", ""},
		{Size{200, 400}, Request(100, 50), true, true, "100x50^", "100x50+0+0"},
		{Size{200, 400}, Request(100, 50), true, false, "25x50", ""},
		{Size{200, 400}, Request(100, 50), false, true, "100x50^", "100x50+0+0"},
		{Size{200, 400}, Request(100, 50), false, false, "25x50>", ""},
		{Size{200, 400}, Request(50, 100), true, true, "50x100^", "50x100+0+0"},
		{Size{200, 400}, Request(50, 100), true, false, "50x100", ""},
		{Size{200, 400}, Request(50, 100), false, true, "50x100^", "50x100+0+0"},
		{Size{200, 400}, Request(50, 100), false, false, "50x100>", ""},
		{Size{100, 200}, Request(600, 200), true, true, "600x200^", "600x200+0+0"},
		{Size{100, 200}, Request(600, 200), true, false, "100x200", ""},
		{Size{100, 200}, Request(600, 200), false, true, "100x33^", "100x33+0+0"},
		{Size{100, 200}, Request(600, 200), false, false, "100x200>", ""},
		{Size{100, 200}, Request(200, 600), true, true, "200x600^", "200x600+0+0"},
		{Size{100, 200}, Request(200, 600), true, false, "200x400", ""},
		{Size{100, 200}, Request(200, 600), false, true, "67x200^", "67x200+0+0"},
		{Size{100, 200}, Request(200, 600), false, false, "100x200>", ""},	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s->%s/upscale=%v/crop=%v", tt.source, tt.request, tt.upscale, tt.crop)
		t.Run(name, func(t *testing.T) {
			crop := NoCrop
			if tt.crop {
				crop = CropOn
			}
			size, err := Estimate(tt.source, tt.request, crop.Enabled(), tt.upscale)
			require.NoError(t, err)

			opts := BuildResizeOptions(size, 1, crop, tt.upscale, 90)
			resize, _ := opts.Get("resize")
			cropArg, _ := opts.Get("crop")
			assert.Equal(t, tt.resize, resize)
			assert.Equal(t, tt.cropArg, cropArg)
		})
	}
}

func TestCropGravity(t *testing.T) {
	tests := []struct {
		token    string
		expected Gravity
	}{
		{"true", Center},
		{"True", Center},
		{"1", Center},
		{"C", Center},
		{"N", North},
		{"NW", NorthWest},
		{"NE", NorthEast},
		{"W", West},
		{"E", East},
		{"S", South},
		{"SW", SouthWest},
		{"SE", SouthEast},
		{"Center", Center},
		{"North", North},
		{"NorthWest", NorthWest},
		{"NorthEast", NorthEast},
		{"West", West},
		{"East", East},
		{"South", South},
		{"SouthWest", SouthWest},
		{"SouthEast", SouthEast},
		{"0", ""},
		{"false", ""},
		{"", ""},
		{"invalid", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCrop(tt.token).Gravity())
		})
	}
}

func TestParseCrop_Enabled(t *testing.T) {
	assert.False(t, ParseCrop("").Enabled())
	assert.False(t, ParseCrop("false").Enabled())
	assert.False(t, ParseCrop("0").Enabled())
	assert.True(t, ParseCrop("1").Enabled())
	assert.True(t, ParseCrop("SE").Enabled())
	assert.True(t, ParseCrop("invalid").Enabled())
}

func TestResizeOptions_Args(t *testing.T) {
	opts := ResizeOptions{
		{Key: "trueflag"},
		{Key: "+falseflag"},
		{Key: "valueflag", Value: "somevalue"},
	}

	assert.Equal(t, []string{"-trueflag", "+falseflag", "-valueflag", "somevalue"}, opts.Args())
}
