package track

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/marinelabs/sailgraph/pkg/nmea"
)

// DataPoint is one complete fix: a moment with all three measured channels
// populated. Speeds are in knots, wind direction in true degrees 0-360.
type DataPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Boatspeed     float64   `json:"boatspeed"`
	Windspeed     float64   `json:"windspeed"`
	WindDirection float64   `json:"winddirection"`
}

// Complete reports whether every channel has been observed. Zero remains
// the unset sentinel for each field, so a dead-calm 0-knot reading never
// completes a fix; the next non-zero reading does.
func (p DataPoint) Complete() bool {
	return p.Boatspeed > 0 &&
		p.Windspeed > 0 &&
		p.WindDirection != 0 &&
		!p.Timestamp.IsZero()
}

// Dataset is an ordered sequence of fixes in arrival order. Arrival order
// is not re-sorted: interleaved talkers may yield non-monotonic timestamps.
type Dataset []DataPoint

// TimeBounds returns the earliest and latest timestamps in the dataset
func (d Dataset) TimeBounds() (start, end time.Time, ok bool) {
	if len(d) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = d[0].Timestamp, d[0].Timestamp
	for _, p := range d[1:] {
		if p.Timestamp.Before(start) {
			start = p.Timestamp
		}
		if p.Timestamp.After(end) {
			end = p.Timestamp
		}
	}
	return start, end, true
}

// Apply merges one decoded sentence into the accumulator. Time-only
// sentences replace just the clock, keeping whatever date the accumulator
// already carries (the epoch date until a dated sentence arrives).
// Dated sentences replace the whole timestamp. Measurement sentences set
// their channel; fields the decoder could not derive are skipped.
func Apply(s nmea.Sentence, acc *DataPoint) {
	switch s := s.(type) {
	case nmea.ClockSentence:
		if s.HasClock {
			date := acc.Timestamp.UTC().Truncate(24 * time.Hour)
			acc.Timestamp = date.Add(s.Clock)
		}
	case nmea.DatetimeSentence:
		if s.HasTimestamp {
			acc.Timestamp = s.Timestamp
		}
	case nmea.WindSentence:
		if s.HasSpeed {
			acc.Windspeed = s.SpeedKnots
		}
		if s.HasAngle {
			acc.WindDirection = s.AngleTrue
		}
	case nmea.WaterSpeedSentence:
		if s.HasSpeed {
			acc.Boatspeed = s.SpeedKnots
		}
	}
}

// Process merges one sentence into the accumulator and, when the
// accumulator becomes a complete fix, returns a detached copy and resets
// the accumulator for the next fix. The completed timestamp is carried
// forward: the next fix usually arrives from a different talker without a
// fresh time sentence.
func Process(s nmea.Sentence, acc *DataPoint) (DataPoint, bool) {
	Apply(s, acc)
	if !acc.Complete() {
		return DataPoint{}, false
	}
	point := *acc
	*acc = DataPoint{Timestamp: point.Timestamp}
	return point, true
}

// Load reads NMEA lines from r and assembles them into a dataset. The
// first line that cannot be decoded aborts the load with the decode error;
// blank lines are skipped.
func Load(r io.Reader) (Dataset, error) {
	var (
		data Dataset
		acc  DataPoint
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sentence, err := nmea.Decode(line)
		if err != nil {
			return nil, err
		}
		if point, done := Process(sentence, &acc); done {
			data = append(data, point)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return data, nil
}

// LoadFile loads a dataset from the named file, or from stdin when the
// name is empty
func LoadFile(name string) (Dataset, error) {
	if name == "" {
		return Load(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return Load(f)
}
