package temporal

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"os"
	"testing"
	"time"
)

var testSentences = []string{
	"$GPRMC,110134,A,6003.261,N,02450.099,E,4.8,190.0,120625,6.1,E",
	"$WIMWV,214.8,T,10.1,N,A",
	"$GPVHW,245.1,T,245.6,M,5.2,N,9.6,K",
	"$GPGGA,110135,6003.261,N,02450.099,E,1,08,0.9,5.4,M,46.9,M,,",
	"$WIMWV,215.0,T,10.3,N,A",
	"$GPVHW,245.1,T,245.6,M,5.3,N,9.8,K",
}

func TestActivitiesImpl_AppendSentencesActivity(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	storage := NewMockStorageService()

	activities := NewActivitiesImpl(logger, storage)

	err := activities.AppendSentencesActivity(context.Background(), "track-123", testSentences)
	if err != nil {
		t.Fatalf("AppendSentencesActivity failed: %v", err)
	}

	if storage.GetSentenceCount("track-123") != len(testSentences) {
		t.Errorf("Expected %d sentences in storage, got %d",
			len(testSentences), storage.GetSentenceCount("track-123"))
	}
}

func TestActivitiesImpl_LoadSentencesActivity(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	storage := NewMockStorageService()

	activities := NewActivitiesImpl(logger, storage)

	err := storage.AppendSentences(context.Background(), "track-123", testSentences)
	if err != nil {
		t.Fatalf("Failed to store test sentences: %v", err)
	}

	lines, err := activities.LoadSentencesActivity(context.Background(), "track-123")
	if err != nil {
		t.Fatalf("LoadSentencesActivity failed: %v", err)
	}

	if len(lines) != len(testSentences) {
		t.Errorf("Expected %d sentences, got %d", len(testSentences), len(lines))
	}

	lines, err = activities.LoadSentencesActivity(context.Background(), "unknown-track")
	if err != nil {
		t.Fatalf("LoadSentencesActivity failed for unknown track: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected no sentences for unknown track, got %d", len(lines))
	}
}

func TestActivitiesImpl_RenderTrackActivity(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	activities := NewActivitiesImpl(logger, NewMockStorageService())

	result, err := activities.RenderTrackActivity(context.Background(), testSentences, RenderRequest{
		TrackID: "track-123",
		Width:   320,
		Height:  200,
	})
	if err != nil {
		t.Fatalf("RenderTrackActivity failed: %v", err)
	}

	if result.PointCount != 2 {
		t.Errorf("Expected 2 fixes, got %d", result.PointCount)
	}
	if result.TimeRange.Start.IsZero() || result.TimeRange.End.IsZero() {
		t.Errorf("Expected the time range to default to the track bounds, got %+v", result.TimeRange)
	}

	img, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatalf("Result is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 200 {
		t.Errorf("Expected 320x200 image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestActivitiesImpl_RenderTrackActivityDefaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	activities := NewActivitiesImpl(logger, NewMockStorageService())

	result, err := activities.RenderTrackActivity(context.Background(), nil, RenderRequest{
		TrackID: "track-123",
	})
	if err != nil {
		t.Fatalf("RenderTrackActivity failed on an empty track: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatalf("Result is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != DefaultGraphWidth || img.Bounds().Dy() != DefaultGraphHeight {
		t.Errorf("Expected %dx%d default image, got %dx%d",
			DefaultGraphWidth, DefaultGraphHeight, img.Bounds().Dx(), img.Bounds().Dy())
	}
	if result.PointCount != 0 || result.Columns != 0 {
		t.Errorf("Expected an empty render, got %+v", result)
	}
}

func TestActivitiesImpl_RenderTrackActivityBadLine(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	activities := NewActivitiesImpl(logger, NewMockStorageService())

	_, err := activities.RenderTrackActivity(context.Background(),
		[]string{"garbage line"}, RenderRequest{TrackID: "track-123"})
	if err == nil {
		t.Fatal("Expected an error for an undecodable line")
	}
}

func TestActivitiesImpl_RenderTrackActivityBadColor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	activities := NewActivitiesImpl(logger, NewMockStorageService())

	_, err := activities.RenderTrackActivity(context.Background(), testSentences, RenderRequest{
		TrackID: "track-123",
		Colors:  map[string]string{"boatspeed": "not-a-colour"},
	})
	if err == nil {
		t.Fatal("Expected an error for an invalid colour override")
	}
}

func TestActivitiesImpl_RenderTrackActivityWindow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	activities := NewActivitiesImpl(logger, NewMockStorageService())

	window := &TimeRange{
		Start: time.Date(2025, 6, 12, 11, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 12, 11, 1, 34, 0, time.UTC),
	}
	result, err := activities.RenderTrackActivity(context.Background(), testSentences, RenderRequest{
		TrackID:   "track-123",
		Width:     100,
		Height:    100,
		TimeRange: window,
	})
	if err != nil {
		t.Fatalf("RenderTrackActivity failed: %v", err)
	}

	if !result.TimeRange.Start.Equal(window.Start) || !result.TimeRange.End.Equal(window.End) {
		t.Errorf("Expected the requested window back, got %+v", result.TimeRange)
	}
	// Only one fix falls inside the window, so nothing is drawn
	if result.Columns != 0 {
		t.Errorf("Expected no columns for a single in-window fix, got %d", result.Columns)
	}
}
