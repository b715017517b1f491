package geometry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		source   Size
		request  SizeRequest
		upscale  bool
		crop     bool
		expected Size
	}{
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(100)}, true, true, Size{200, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(100)}, false, true, Size{100, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(100)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(100)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(100)}, true, true, Size{100, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(100)}, false, true, Size{100, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(100)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(100)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(100)}, true, true, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(100)}, false, true, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(100)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(100)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(50)}, true, true, Size{50, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(50)}, false, true, Size{50, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(50)}, true, false, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(50)}, false, false, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, true, true, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, true, true, Size{400, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, false, true, Size{100, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(200)}, true, true, Size{200, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(200)}, false, true, Size{100, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(200)}, true, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(200)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, true, true, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(400)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, true, true, Size{400, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, false, true, Size{100, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(400)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(300)}, true, true, Size{50, 300}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(300)}, false, true, Size{33, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(300)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(300)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(50)}, true, true, Size{300, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(50)}, false, true, Size{100, 17}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(50)}, true, false, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(50)}, false, false, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, true, true, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(0)}, true, true, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(0)}, false, true, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(0)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(50), Height: Px(0)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(0)}, true, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(0)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(0)}, true, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(100), Height: Px(0)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, true, true, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(200), Height: Px(0)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(0)}, true, true, Size{300, 600}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(0)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(0)}, true, false, Size{300, 600}},
		{Size{100, 200}, SizeRequest{Width: Px(300), Height: Px(0)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(0)}, true, true, Size{400, 800}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(0)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(0)}, true, false, Size{400, 800}},
		{Size{100, 200}, SizeRequest{Width: Px(400), Height: Px(0)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(50)}, true, true, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(50)}, false, true, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(50)}, true, false, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(50)}, false, false, Size{25, 50}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(100)}, true, true, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(100)}, false, true, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(100)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(100)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(200)}, true, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(200)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(200)}, true, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(200)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(300)}, true, true, Size{150, 300}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(300)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(300)}, true, false, Size{150, 300}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(300)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(400)}, true, true, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(400)}, false, true, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(400)}, true, false, Size{200, 400}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Px(400)}, false, false, Size{100, 200}},
		{Size{100, 200}, SizeRequest{Width: Px(75), Height: Px(100)}, true, true, Size{75, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(75), Height: Px(100)}, false, true, Size{75, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(75), Height: Px(100)}, true, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(75), Height: Px(100)}, false, false, Size{50, 100}},
		{Size{100, 200}, SizeRequest{Width: Px(0), Height: Pct(75)}, true, true, Size{75, 150}},
		{Size{100, 200}, SizeRequest{Width: Pct(50), Height: Px(0)}, true, true, Size{50, 100}},	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s->%s/upscale=%v/crop=%v", tt.source, tt.request, tt.upscale, tt.crop)
		t.Run(name, func(t *testing.T) {
			got, err := Estimate(tt.source, tt.request, tt.crop, tt.upscale)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEstimate_ShrinksPortraitSource(t *testing.T) {
	got, err := Estimate(Size{100, 200}, Request(50, 50), false, false)
	require.NoError(t, err)
	assert.Equal(t, Size{25, 50}, got)
}

func TestEstimate_PercentBeforeDerive(t *testing.T) {
	// 75% of the height is 150, the width follows the source ratio.
	got, err := Estimate(Size{100, 200}, SizeRequest{Width: Px(0), Height: Pct(75)}, false, false)
	require.NoError(t, err)
	assert.Equal(t, Size{75, 150}, got)

	got, err = Estimate(Size{100, 200}, SizeRequest{Width: Pct(50), Height: Px(0)}, false, false)
	require.NoError(t, err)
	assert.Equal(t, Size{50, 100}, got)
}

func TestEstimate_Idempotent(t *testing.T) {
	sources := []Size{{100, 200}, {200, 100}, {1920, 1080}, {400, 400}}
	requests := []SizeRequest{Request(50, 50), Request(0, 100), Request(160, 0), Request(300, 600)}

	for _, source := range sources {
		for _, req := range requests {
			first, err := Estimate(source, req, false, false)
			require.NoError(t, err)

			again, err := Estimate(source, Request(first.Width, first.Height), false, true)
			require.NoError(t, err)
			assert.Equal(t, first, again, "%s -> %s", source, req)
		}
	}
}

// Rounding the estimate can lose the aspect ratio, so estimating the estimate
// again only reproduces it when the scale divides exactly.
func TestEstimate_NotIdempotentAfterRounding(t *testing.T) {
	source := Size{3, 100}

	first, err := Estimate(source, Request(0, 45), false, false)
	require.NoError(t, err)
	assert.Equal(t, Size{1, 45}, first)

	again, err := Estimate(source, Request(first.Width, first.Height), false, true)
	require.NoError(t, err)
	assert.Equal(t, Size{1, 33}, again)
}

func TestEstimate_InvalidInput(t *testing.T) {
	_, err := Estimate(Size{0, 200}, Request(50, 50), false, false)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = Estimate(Size{100, 0}, Request(50, 50), true, false)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = Estimate(Size{100, 200}, Request(0, 0), false, false)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestFactorSize(t *testing.T) {
	assert.Equal(t, "20", FactorSize(Px(10), 2))
	assert.Equal(t, "10", FactorSize(Px(10), 1))
	assert.Equal(t, "20%", FactorSize(Pct(10), 2))
	assert.Equal(t, "", FactorSize(Px(0), 2))
}
