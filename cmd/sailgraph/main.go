package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/marinelabs/sailgraph/pkg/hcl"
	"github.com/marinelabs/sailgraph/pkg/render"
	"github.com/marinelabs/sailgraph/pkg/temporal"
	"github.com/marinelabs/sailgraph/pkg/track"
)

func main() {
	// Set up logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Define command line flags
	var (
		inPath   string
		outPath  string
		specPath string
		width    int
		height   int
		startStr string
		endStr   string
	)

	flag.StringVar(&inPath, "in", "", "Path to NMEA log file (default stdin)")
	flag.StringVar(&outPath, "out", "track.png", "Path to output PNG file")
	flag.StringVar(&specPath, "spec", "", "Path to HCL render spec file (optional)")
	flag.IntVar(&width, "width", temporal.DefaultGraphWidth, "Graph width in pixels")
	flag.IntVar(&height, "height", temporal.DefaultGraphHeight, "Graph height in pixels")
	flag.StringVar(&startStr, "start", "", "Window start (RFC3339, default earliest fix)")
	flag.StringVar(&endStr, "end", "", "Window end (RFC3339, default latest fix)")
	flag.Parse()

	if err := run(logger, inPath, outPath, specPath, width, height, startStr, endStr); err != nil {
		logger.Error("Render failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, inPath, outPath, specPath string, width, height int, startStr, endStr string) error {
	var (
		window *temporal.TimeRange
		colors = render.DefaultColors()
	)

	// A render spec file overrides the dimension and window flags
	if specPath != "" {
		content, err := os.ReadFile(specPath)
		if err != nil {
			return fmt.Errorf("failed to read spec file: %w", err)
		}
		if !hcl.IsHCL(content) {
			return fmt.Errorf("spec file %s is not valid HCL", specPath)
		}
		request, err := hcl.ParseRenderSpec(string(content))
		if err != nil {
			return fmt.Errorf("failed to parse render spec: %w", err)
		}
		if request.Width > 0 {
			width = request.Width
		}
		if request.Height > 0 {
			height = request.Height
		}
		window = request.TimeRange
		if request.Colors != nil {
			colors, err = render.OverrideColors(colors, request.Colors)
			if err != nil {
				return fmt.Errorf("invalid colors in render spec: %w", err)
			}
		}
	}

	if startStr != "" || endStr != "" {
		parsed, err := parseWindow(startStr, endStr)
		if err != nil {
			return err
		}
		window = parsed
	}

	data, err := track.LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to load track: %w", err)
	}

	logger.Info("Loaded track", "points", len(data))

	start, end, ok := data.TimeBounds()
	if window != nil {
		start, end = window.Start, window.End
	} else if !ok {
		logger.Warn("Track has no complete fixes; output will be blank")
	}

	canvas := render.NewImageCanvas(width, height)
	binned := track.Bin(data, start, end, width)
	render.Compose(canvas, binned, colors)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := canvas.EncodePNG(out); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	logger.Info("Wrote graph", "path", outPath, "width", width, "height", height,
		"columns", len(binned.Columns))

	return nil
}

// parseWindow builds a time range from the -start/-end flags; both are required
// once either is given.
func parseWindow(startStr, endStr string) (*temporal.TimeRange, error) {
	if startStr == "" || endStr == "" {
		return nil, fmt.Errorf("both -start and -end must be set to window the track")
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse -start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse -end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("-end must not be before -start")
	}

	return &temporal.TimeRange{Start: start, End: end}, nil
}
