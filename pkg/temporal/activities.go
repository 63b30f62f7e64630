package temporal

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marinelabs/sailgraph/pkg/render"
	"github.com/marinelabs/sailgraph/pkg/track"
)

// Activities interface defines all the activities used by workflows
type Activities interface {
	AppendSentencesActivity(ctx context.Context, trackID string, lines []string) error
	LoadSentencesActivity(ctx context.Context, trackID string) ([]string, error)
	RenderTrackActivity(ctx context.Context, lines []string, request RenderRequest) (*RenderResult, error)
}

// StorageService defines the interface for durable sentence storage
type StorageService interface {
	AppendSentences(ctx context.Context, trackID string, lines []string) error
	LoadSentences(ctx context.Context, trackID string) ([]string, error)
}

// ActivitiesImpl implements the Activities interface
type ActivitiesImpl struct {
	logger  *slog.Logger
	storage StorageService
}

// NewActivitiesImpl creates a new activities implementation
func NewActivitiesImpl(logger *slog.Logger, storage StorageService) *ActivitiesImpl {
	return &ActivitiesImpl{
		logger:  logger,
		storage: storage,
	}
}

// AppendSentencesActivity persists raw NMEA lines for a track
func (a *ActivitiesImpl) AppendSentencesActivity(ctx context.Context, trackID string, lines []string) error {
	a.logger.Info("Appending sentences", "trackID", trackID, "count", len(lines))

	if err := a.storage.AppendSentences(ctx, trackID, lines); err != nil {
		a.logger.Error("Failed to append to storage", "error", err)
		return fmt.Errorf("failed to append to storage: %w", err)
	}

	a.logger.Info("Successfully appended sentences", "trackID", trackID, "count", len(lines))
	return nil
}

// LoadSentencesActivity loads a track's raw NMEA lines from storage
func (a *ActivitiesImpl) LoadSentencesActivity(ctx context.Context, trackID string) ([]string, error) {
	a.logger.Info("Loading sentences", "trackID", trackID)

	lines, err := a.storage.LoadSentences(ctx, trackID)
	if err != nil {
		a.logger.Error("Failed to load sentences", "error", err)
		return nil, fmt.Errorf("failed to load sentences: %w", err)
	}

	a.logger.Info("Successfully loaded sentences", "trackID", trackID, "count", len(lines))
	return lines, nil
}

// RenderTrackActivity assembles the lines into fixes and renders the
// requested window into a PNG. An undecodable line fails the whole render.
func (a *ActivitiesImpl) RenderTrackActivity(ctx context.Context, lines []string, request RenderRequest) (*RenderResult, error) {
	a.logger.Info("Rendering track", "trackID", request.TrackID, "lineCount", len(lines))

	data, err := track.Load(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		a.logger.Error("Failed to assemble track", "error", err)
		return nil, fmt.Errorf("failed to assemble track: %w", err)
	}

	width, height := request.Width, request.Height
	if width <= 0 {
		width = DefaultGraphWidth
	}
	if height <= 0 {
		height = DefaultGraphHeight
	}

	var window TimeRange
	if request.TimeRange != nil {
		window = *request.TimeRange
	} else if start, end, ok := data.TimeBounds(); ok {
		window = TimeRange{Start: start, End: end}
	}

	colors, err := render.OverrideColors(render.DefaultColors(), request.Colors)
	if err != nil {
		a.logger.Error("Invalid colour override", "error", err)
		return nil, fmt.Errorf("invalid colour override: %w", err)
	}

	binned := track.Bin(data, window.Start, window.End, width)
	canvas := render.NewImageCanvas(width, height)
	render.Compose(canvas, binned, colors)

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		a.logger.Error("Failed to encode PNG", "error", err)
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	a.logger.Info("Successfully rendered track", "trackID", request.TrackID,
		"points", len(data), "columns", len(binned.Columns), "bytes", buf.Len())

	return &RenderResult{
		PNG:        buf.Bytes(),
		PointCount: len(data),
		Columns:    len(binned.Columns),
		TimeRange:  window,
	}, nil
}
