package track

import (
	"math"
	"sort"
	"time"
)

// ValueEpsilon is the tolerance used when grouping near-equal channel
// values during mode-pair reduction. Two readings closer than this are
// counted as the same value.
const ValueEpsilon = 1e-9

// minBinDuration keeps the sweep terminating when the visible span is
// shorter than one time unit per column
const minBinDuration = time.Millisecond

// Extent is the representative low/high value pair for one channel in one
// bin
type Extent struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ColumnExtents holds the per-channel extents for one pixel column
type ColumnExtents struct {
	Boatspeed     Extent `json:"boatspeed"`
	Windspeed     Extent `json:"windspeed"`
	WindDirection Extent `json:"winddirection"`
}

// Binned is the result of reducing a visible time range to one column per
// pixel. Columns is nil when fewer than two points fall in the range.
// MaxBoatspeed and MaxWindspeed are taken over the whole visible range and
// drive the shared speed scale.
type Binned struct {
	Columns      []ColumnExtents `json:"columns"`
	MaxBoatspeed float64         `json:"max_boatspeed"`
	MaxWindspeed float64         `json:"max_windspeed"`
}

// Bin partitions the points inside [start, end] into at most binCount
// equal-duration bins and reduces each bin per channel with ModePair.
// Wind directions are folded onto 0-180 before reduction.
func Bin(d Dataset, start, end time.Time, binCount int) Binned {
	var binned Binned
	if binCount <= 0 {
		return binned
	}

	var visible Dataset
	for _, p := range d {
		if !p.Timestamp.Before(start) && !p.Timestamp.After(end) {
			visible = append(visible, p)
		}
	}
	if len(visible) < 2 {
		return binned
	}

	earliest, latest, _ := visible.TimeBounds()
	if earliest.Before(start) {
		earliest = start
	}
	if latest.After(end) {
		latest = end
	}
	for _, p := range visible {
		binned.MaxBoatspeed = math.Max(binned.MaxBoatspeed, p.Boatspeed)
		binned.MaxWindspeed = math.Max(binned.MaxWindspeed, p.Windspeed)
	}

	binDuration := (latest.Sub(earliest) / time.Duration(binCount)).Truncate(time.Millisecond)
	if binDuration < minBinDuration {
		binDuration = minBinDuration
	}

	// Bounded sweep: one half-open window [binStart, binStart+binDuration)
	// per column, never more than binCount columns.
	binStart := earliest
	for x := 0; x < binCount && !binStart.After(latest); x++ {
		binEnd := binStart.Add(binDuration)

		var boatspeeds, windspeeds, winddirections []float64
		for _, p := range visible {
			if p.Timestamp.Before(binStart) || !p.Timestamp.Before(binEnd) {
				continue
			}
			boatspeeds = append(boatspeeds, p.Boatspeed)
			windspeeds = append(windspeeds, p.Windspeed)
			winddirections = append(winddirections, FoldDirection(p.WindDirection))
		}

		binned.Columns = append(binned.Columns, ColumnExtents{
			Boatspeed:     ModePair(boatspeeds),
			Windspeed:     ModePair(windspeeds),
			WindDirection: ModePair(winddirections),
		})
		binStart = binEnd
	}
	return binned
}

// FoldDirection reflects directions above 180 degrees onto the
// complementary 0-180 range, keeping magnitude and discarding the
// port/starboard sense
func FoldDirection(v float64) float64 {
	if v > 180 {
		return 360 - v
	}
	return v
}

// ModePair reduces a bin's values to the two most frequent readings.
// Values within ValueEpsilon of a group's representative count into that
// group. Groups are ranked by count, ties broken toward the smaller value;
// the result is the (min, max) of the top two representatives. This keeps
// transient spikes out of the column while still conveying spread.
func ModePair(values []float64) Extent {
	switch len(values) {
	case 0:
		return Extent{}
	case 1:
		return Extent{Low: values[0], High: values[0]}
	}

	type group struct {
		value float64
		count int
	}
	var groups []group
	for _, v := range values {
		found := false
		for i := range groups {
			if math.Abs(groups[i].value-v) < ValueEpsilon {
				groups[i].count++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, group{value: v, count: 1})
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value < groups[j].value
	})

	a := groups[0].value
	b := a
	if len(groups) > 1 {
		b = groups[1].value
	}
	return Extent{Low: math.Min(a, b), High: math.Max(a, b)}
}
