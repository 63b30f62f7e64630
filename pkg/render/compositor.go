package render

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/marinelabs/sailgraph/pkg/track"
)

// tickHalfHeight is the half-length of the short marks drawn at each
// extent endpoint
const tickHalfHeight = 6

// ChannelColors selects the draw colour per channel
type ChannelColors struct {
	Boatspeed     color.RGBA
	Windspeed     color.RGBA
	WindDirection color.RGBA
}

// DefaultColors returns the conventional channel palette: boat speed
// green, wind speed white, wind direction red
func DefaultColors() ChannelColors {
	return ChannelColors{
		Boatspeed:     color.RGBA{G: 0xff, A: 0xff},
		Windspeed:     color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		WindDirection: color.RGBA{R: 0xff, A: 0xff},
	}
}

// Compose maps binned extents to pixel rows and issues the draw commands.
// Boat and wind speed share one linear scale so the channels stay visually
// comparable, with one unit of headroom above the largest speed. Wind
// direction (already folded to 0-180) maps inverted so 0 degrees sits at
// the bottom edge. Per column each channel gets a tick at each extent
// endpoint and then the connecting segment on top, in channel order
// boatspeed, windspeed, winddirection.
func Compose(canvas Canvas, binned track.Binned, colors ChannelColors) {
	_, height := canvas.Size()
	if height <= 1 || len(binned.Columns) == 0 {
		return
	}

	speedScale := float64(height-1) / (math.Floor(math.Max(binned.MaxBoatspeed, binned.MaxWindspeed)) + 1)
	directionScale := float64(height) / 180

	for x, col := range binned.Columns {
		boatLow := int(col.Boatspeed.Low * speedScale)
		boatHigh := int(col.Boatspeed.High * speedScale)
		windLow := int(col.Windspeed.Low * speedScale)
		windHigh := int(col.Windspeed.High * speedScale)
		// Inversion swaps which extent lands on the lower row
		directionLow := height - int(col.WindDirection.High*directionScale)
		directionHigh := height - int(col.WindDirection.Low*directionScale)

		for _, segment := range []struct {
			low, high int
			color     color.RGBA
		}{
			{boatLow, boatHigh, colors.Boatspeed},
			{windLow, windHigh, colors.Windspeed},
			{directionLow, directionHigh, colors.WindDirection},
		} {
			canvas.DrawVerticalLine(x, segment.low-tickHalfHeight, segment.low+tickHalfHeight, segment.color)
			canvas.DrawVerticalLine(x, segment.high-tickHalfHeight, segment.high+tickHalfHeight, segment.color)
			canvas.DrawVerticalLine(x, segment.low, segment.high, segment.color)
		}
	}
}

// Render runs the bin-and-compose pipeline over the visible time range and
// returns the finished raster. Deterministic for identical inputs; fewer
// than two in-range points yield a blank image of the requested size.
func Render(data track.Dataset, width, height int, start, end time.Time) *image.RGBA {
	canvas := NewImageCanvas(width, height)
	RenderTo(canvas, data, width, start, end, DefaultColors())
	return canvas.Image()
}

// RenderTo is Render against a caller-supplied canvas and palette
func RenderTo(canvas Canvas, data track.Dataset, binCount int, start, end time.Time, colors ChannelColors) {
	binned := track.Bin(data, start, end, binCount)
	Compose(canvas, binned, colors)
}
