package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// Workflow IDs
	IngestionWorkflowIDPrefix = "track-"
	RenderWorkflowIDPrefix    = "render-"

	// Signal names
	SentenceSignalName = "sentence-signal"

	// Activity names
	AppendSentencesActivityName = "append-sentences"
	LoadSentencesActivityName   = "load-sentences"
	RenderTrackActivityName     = "render-track"

	// Default values
	DefaultContinueAsNewThreshold = 10000 // sentences before ContinueAsNew

	DefaultGraphWidth  = 1000
	DefaultGraphHeight = 400
)

// SentenceSignal carries raw NMEA lines to an ingestion workflow
type SentenceSignal struct {
	Lines []string `json:"lines"`
}

// TimeRange is the visible time window of a render
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RenderRequest describes one graph render of a track. Zero width/height
// fall back to the 1000x400 defaults, and a nil time range renders the
// whole track.
type RenderRequest struct {
	TrackID   string            `json:"track_id"`
	Width     int               `json:"width,omitempty"`
	Height    int               `json:"height,omitempty"`
	TimeRange *TimeRange        `json:"time_range,omitempty"`
	Colors    map[string]string `json:"colors,omitempty"` // channel name -> #rrggbb
}

// RenderResult is the finished raster plus render metadata
type RenderResult struct {
	PNG        []byte    `json:"png"`
	PointCount int       `json:"point_count"`
	Columns    int       `json:"columns"`
	TimeRange  TimeRange `json:"time_range"`
}

// IngestionWorkflowState represents the state of an ingestion workflow
type IngestionWorkflowState struct {
	TrackID        string    `json:"track_id"`
	SentenceCount  int       `json:"sentence_count"`
	LastSentenceAt time.Time `json:"last_sentence_at"`
}

// IngestionWorkflow appends NMEA sentences for a specific track as they
// arrive via signal
func IngestionWorkflow(ctx workflow.Context, trackID string) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting ingestion workflow", "trackID", trackID)

	state := IngestionWorkflowState{
		TrackID:        trackID,
		SentenceCount:  0,
		LastSentenceAt: workflow.Now(ctx),
	}

	signalChan := workflow.GetSignalChannel(ctx, SentenceSignalName)

	for {
		var signal SentenceSignal
		signalChan.Receive(ctx, &signal)

		logger.Info("Received sentences", "count", len(signal.Lines))

		ao := workflow.ActivityOptions{
			ScheduleToCloseTimeout: 30 * time.Second,
			RetryPolicy: &temporal.RetryPolicy{
				MaximumAttempts: 3,
			},
		}
		ctx = workflow.WithActivityOptions(ctx, ao)

		err := workflow.ExecuteActivity(ctx, AppendSentencesActivityName, trackID, signal.Lines).Get(ctx, nil)
		if err != nil {
			logger.Error("Failed to append sentences", "error", err)
			// Keep accepting later signals rather than failing the workflow
			continue
		}

		state.SentenceCount += len(signal.Lines)
		state.LastSentenceAt = workflow.Now(ctx)

		// Roll over before the history grows unbounded
		if state.SentenceCount >= DefaultContinueAsNewThreshold {
			logger.Info("Continuing as new", "sentenceCount", state.SentenceCount)
			return workflow.NewContinueAsNewError(ctx, IngestionWorkflow, trackID)
		}
	}
}

// RenderWorkflow loads a track's sentences and renders them into a raster
// graph
func RenderWorkflow(ctx workflow.Context, request RenderRequest) (*RenderResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting render workflow", "trackID", request.TrackID)

	ao := workflow.ActivityOptions{
		ScheduleToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	// Step 1: Load the raw sentences from storage
	var lines []string
	err := workflow.ExecuteActivity(ctx, LoadSentencesActivityName, request.TrackID).Get(ctx, &lines)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentences: %w", err)
	}

	logger.Info("Loaded sentences", "trackID", request.TrackID, "count", len(lines))

	// Step 2: Assemble, bin and rasterize
	var result *RenderResult
	err = workflow.ExecuteActivity(ctx, RenderTrackActivityName, lines, request).Get(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to render track: %w", err)
	}

	logger.Info("Render completed", "trackID", request.TrackID,
		"points", result.PointCount, "columns", result.Columns)
	return result, nil
}

// Utility functions for workflow IDs

// GenerateIngestionWorkflowID creates a workflow ID for ingestion
func GenerateIngestionWorkflowID(trackID string) string {
	return IngestionWorkflowIDPrefix + trackID
}

// GenerateRenderWorkflowID creates a workflow ID for renders
func GenerateRenderWorkflowID(trackID string) string {
	return fmt.Sprintf("%s%s-%d", RenderWorkflowIDPrefix, trackID, time.Now().UnixNano())
}
