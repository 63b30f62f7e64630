package render

import (
	"image/color"
	"testing"
	"time"

	"github.com/marinelabs/sailgraph/pkg/track"
)

// recordingCanvas captures draw commands without rasterizing
type recordingCanvas struct {
	width, height int
	calls         []drawCall
}

type drawCall struct {
	x, y0, y1 int
	color     color.RGBA
}

func (c *recordingCanvas) Size() (int, int) { return c.width, c.height }

func (c *recordingCanvas) DrawVerticalLine(x, y0, y1 int, col color.RGBA) {
	c.calls = append(c.calls, drawCall{x: x, y0: y0, y1: y1, color: col})
}

func TestRenderEmptyDataset(t *testing.T) {
	img := Render(nil, 640, 480, time.Time{}, time.Now())

	bounds := img.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 480 {
		t.Fatalf("expected 640x480 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{}) {
				t.Fatalf("expected blank image, found pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestRenderSinglePointIssuesNoDrawCalls(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	data := track.Dataset{
		{Timestamp: base, Boatspeed: 5, Windspeed: 10, WindDirection: 45},
	}

	canvas := &recordingCanvas{width: 100, height: 50}
	RenderTo(canvas, data, 100, base.Add(-time.Minute), base.Add(time.Minute), DefaultColors())

	if len(canvas.calls) != 0 {
		t.Errorf("expected no draw calls, got %d", len(canvas.calls))
	}
}

func TestComposeDrawOrder(t *testing.T) {
	binned := track.Binned{
		Columns: []track.ColumnExtents{
			{
				Boatspeed:     track.Extent{Low: 2, High: 2},
				Windspeed:     track.Extent{Low: 5, High: 5},
				WindDirection: track.Extent{Low: 10, High: 10},
			},
		},
		MaxBoatspeed: 2,
		MaxWindspeed: 5,
	}

	canvas := &recordingCanvas{width: 1, height: 400}
	colors := DefaultColors()
	Compose(canvas, binned, colors)

	// Three primitives per channel: low tick, high tick, connecting segment
	if len(canvas.calls) != 9 {
		t.Fatalf("expected 9 draw calls, got %d", len(canvas.calls))
	}

	wantOrder := []color.RGBA{
		colors.Boatspeed, colors.Boatspeed, colors.Boatspeed,
		colors.Windspeed, colors.Windspeed, colors.Windspeed,
		colors.WindDirection, colors.WindDirection, colors.WindDirection,
	}
	for i, call := range canvas.calls {
		if call.color != wantOrder[i] {
			t.Errorf("call %d: expected color %v, got %v", i, wantOrder[i], call.color)
		}
		if call.x != 0 {
			t.Errorf("call %d: expected column 0, got %d", i, call.x)
		}
	}

	// The connecting segment is the last primitive per channel, so it
	// overdraws the ticks at its endpoints.
	segment := canvas.calls[2]
	if segment.y0 != segment.y1 {
		t.Errorf("flat extent should give a single-row segment, got %d..%d", segment.y0, segment.y1)
	}
}

func TestRenderModePairScenario(t *testing.T) {
	// Three points in one column: boatspeed mode pair (2,2) even though the
	// window maximum is 9, so the drawn row reflects 2 while the scale
	// reflects 9.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	data := track.Dataset{
		{Timestamp: base, Boatspeed: 2, Windspeed: 5, WindDirection: 10},
		{Timestamp: base.Add(time.Second), Boatspeed: 2, Windspeed: 5, WindDirection: 10},
		{Timestamp: base.Add(2 * time.Second), Boatspeed: 9, Windspeed: 5, WindDirection: 10},
	}

	const height = 400
	canvas := &recordingCanvas{width: 1, height: height}
	RenderTo(canvas, data, 1, base, base.Add(2*time.Second), DefaultColors())

	if len(canvas.calls) != 9 {
		t.Fatalf("expected 9 draw calls, got %d", len(canvas.calls))
	}

	// speed_scale = (h-1)/(floor(9)+1)
	speedScale := float64(height-1) / 10
	wantBoatRow := int(2 * speedScale)
	boatSegment := canvas.calls[2]
	if boatSegment.y0 != wantBoatRow || boatSegment.y1 != wantBoatRow {
		t.Errorf("expected boatspeed segment at row %d, got %d..%d", wantBoatRow, boatSegment.y0, boatSegment.y1)
	}

	wantWindRow := int(5 * speedScale)
	windSegment := canvas.calls[5]
	if windSegment.y0 != wantWindRow || windSegment.y1 != wantWindRow {
		t.Errorf("expected windspeed segment at row %d, got %d..%d", wantWindRow, windSegment.y0, windSegment.y1)
	}

	// direction_scale = h/180, inverted
	directionScale := float64(height) / 180
	wantDirectionRow := height - int(10*directionScale)
	directionSegment := canvas.calls[8]
	if directionSegment.y0 != wantDirectionRow || directionSegment.y1 != wantDirectionRow {
		t.Errorf("expected winddirection segment at row %d, got %d..%d",
			wantDirectionRow, directionSegment.y0, directionSegment.y1)
	}
}

func TestRenderRasterPixels(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	data := track.Dataset{
		{Timestamp: base, Boatspeed: 2, Windspeed: 5, WindDirection: 10},
		{Timestamp: base.Add(time.Second), Boatspeed: 2, Windspeed: 5, WindDirection: 10},
		{Timestamp: base.Add(2 * time.Second), Boatspeed: 9, Windspeed: 5, WindDirection: 10},
	}

	const height = 400
	img := Render(data, 1, height, base, base.Add(2*time.Second))
	colors := DefaultColors()

	speedScale := float64(height-1) / 10
	if got := img.RGBAAt(0, int(2*speedScale)); got != colors.Boatspeed {
		t.Errorf("boatspeed pixel: expected %v, got %v", colors.Boatspeed, got)
	}
	if got := img.RGBAAt(0, int(5*speedScale)); got != colors.Windspeed {
		t.Errorf("windspeed pixel: expected %v, got %v", colors.Windspeed, got)
	}
	directionScale := float64(height) / 180
	directionRow := height - int(10*directionScale)
	if got := img.RGBAAt(0, directionRow); got != colors.WindDirection {
		t.Errorf("winddirection pixel: expected %v, got %v", colors.WindDirection, got)
	}
	// A row far from every mark stays blank
	if got := img.RGBAAt(0, 250); got != (color.RGBA{}) {
		t.Errorf("expected blank pixel at row 250, got %v", got)
	}
}

func TestImageCanvasClamping(t *testing.T) {
	canvas := NewImageCanvas(4, 10)
	red := color.RGBA{R: 0xff, A: 0xff}

	canvas.DrawVerticalLine(2, -5, 30, red)
	for y := 0; y < 10; y++ {
		if canvas.Image().RGBAAt(2, y) != red {
			t.Errorf("row %d not filled after clamped draw", y)
		}
	}

	// Reversed endpoints draw the same segment
	canvas.DrawVerticalLine(3, 8, 4, red)
	for y := 4; y <= 8; y++ {
		if canvas.Image().RGBAAt(3, y) != red {
			t.Errorf("row %d not filled after reversed draw", y)
		}
	}

	// Out-of-range column is a no-op
	canvas.DrawVerticalLine(7, 0, 9, red)
}
