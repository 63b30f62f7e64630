package nmea

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentence is the interface implemented by all decoded NMEA 0183 sentences
type Sentence interface {
	GetTalker() string
	GetType() string
}

// DecodeError reports a line that could not be framed as an NMEA sentence.
// A malformed line is not recoverable; callers are expected to abort the load.
type DecodeError struct {
	Line   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("nmea: cannot decode %q: %s", e.Line, e.Reason)
}

// ClockSentence carries a UTC time of day without a date (GGA, GLL, BWC,
// BWR, GRS, GST, GXA, TRF, ZFO, ZTG). ZTG is sometimes grouped with the
// dated Z-family sentences, but its wire format has no date field, so it
// decodes as a clock. Clock is the offset from midnight UTC.
type ClockSentence struct {
	Talker   string        `json:"talker"`
	Type     string        `json:"type"`
	Clock    time.Duration `json:"clock"`
	HasClock bool          `json:"has_clock"`
}

func (s ClockSentence) GetTalker() string { return s.Talker }
func (s ClockSentence) GetType() string   { return s.Type }

// DatetimeSentence carries a full UTC date and time (RMC, ZDA)
type DatetimeSentence struct {
	Talker       string    `json:"talker"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	HasTimestamp bool      `json:"has_timestamp"`
}

func (s DatetimeSentence) GetTalker() string { return s.Talker }
func (s DatetimeSentence) GetType() string   { return s.Type }

// WindSentence carries wind speed and/or true wind angle (MWV). Either
// field may be absent: a relative-reference MWV has no true angle, and a
// sentence with an unknown speed unit has no usable speed.
type WindSentence struct {
	Talker     string  `json:"talker"`
	Type       string  `json:"type"`
	SpeedKnots float64 `json:"speed_knots"`
	HasSpeed   bool    `json:"has_speed"`
	AngleTrue  float64 `json:"angle_true"`
	HasAngle   bool    `json:"has_angle"`
}

func (s WindSentence) GetTalker() string { return s.Talker }
func (s WindSentence) GetType() string   { return s.Type }

// WaterSpeedSentence carries speed through water in knots (VBW, VHW)
type WaterSpeedSentence struct {
	Talker     string  `json:"talker"`
	Type       string  `json:"type"`
	SpeedKnots float64 `json:"speed_knots"`
	HasSpeed   bool    `json:"has_speed"`
}

func (s WaterSpeedSentence) GetTalker() string { return s.Talker }
func (s WaterSpeedSentence) GetType() string   { return s.Type }

// RawSentence represents any sentence type without a registered parser.
// Consumers treat it as a no-op.
type RawSentence struct {
	Talker string   `json:"talker"`
	Type   string   `json:"type"`
	Fields []string `json:"fields"`
}

func (s RawSentence) GetTalker() string { return s.Talker }
func (s RawSentence) GetType() string   { return s.Type }

// sentenceParser builds a typed sentence from the comma-separated fields
// following the address word
type sentenceParser func(talker, typ string, fields []string) Sentence

// parsers maps sentence type to its field parser. Types absent from the
// registry decode to RawSentence.
var parsers = map[string]sentenceParser{
	"RMC": parseRMC,
	"ZDA": parseZDA,
	"GGA": clockAtField(0),
	"GLL": clockAtField(4),
	"BWC": clockAtField(0),
	"BWR": clockAtField(0),
	"GRS": clockAtField(0),
	"GST": clockAtField(0),
	"GXA": clockAtField(0),
	"TRF": clockAtField(0),
	"ZFO": clockAtField(0),
	"ZTG": clockAtField(0),
	"MWV": parseMWV,
	"VBW": parseVBW,
	"VHW": parseVHW,
}

// Decode frames one line as an NMEA 0183 sentence and parses it into a
// typed Sentence. Framing failures (missing start delimiter, short address
// word, bad checksum) return a *DecodeError. Field-level problems never
// fail the decode; the affected fields are simply left unset.
func Decode(line string) (Sentence, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return nil, &DecodeError{Line: line, Reason: "empty line"}
	}
	if line[0] != '$' && line[0] != '!' {
		return nil, &DecodeError{Line: line, Reason: "missing start delimiter"}
	}

	body := line[1:]
	if idx := strings.LastIndexByte(body, '*'); idx >= 0 {
		if err := verifyChecksum(body[:idx], body[idx+1:]); err != nil {
			return nil, &DecodeError{Line: line, Reason: err.Error()}
		}
		body = body[:idx]
	}

	fields := strings.Split(body, ",")
	address := fields[0]
	if len(address) < 4 {
		return nil, &DecodeError{Line: line, Reason: "address word too short"}
	}

	// Proprietary sentences use a one-character talker prefix
	talker, typ := address[:2], address[2:]
	if strings.HasPrefix(address, "P") {
		talker, typ = address[:1], address[1:]
	}

	parser, ok := parsers[typ]
	if !ok {
		return RawSentence{Talker: talker, Type: typ, Fields: fields[1:]}, nil
	}
	return parser(talker, typ, fields[1:]), nil
}

func verifyChecksum(body, hexSum string) error {
	want, err := strconv.ParseUint(strings.TrimSpace(hexSum), 16, 8)
	if err != nil {
		return fmt.Errorf("unparseable checksum %q", hexSum)
	}
	var got byte
	for i := 0; i < len(body); i++ {
		got ^= body[i]
	}
	if got != byte(want) {
		return fmt.Errorf("checksum mismatch: computed %02X, sentence says %02X", got, want)
	}
	return nil
}

// clockAtField builds a parser for sentence types whose only payload of
// interest is a UTC time-of-day field at the given index
func clockAtField(index int) sentenceParser {
	return func(talker, typ string, fields []string) Sentence {
		s := ClockSentence{Talker: talker, Type: typ}
		if clock, ok := parseClock(fieldAt(fields, index)); ok {
			s.Clock = clock
			s.HasClock = true
		}
		return s
	}
}

// parseRMC handles the recommended minimum sentence: time at field 0,
// date (ddmmyy) at field 8
func parseRMC(talker, typ string, fields []string) Sentence {
	s := DatetimeSentence{Talker: talker, Type: typ}
	clock, okClock := parseClock(fieldAt(fields, 0))
	date, okDate := parseDate(fieldAt(fields, 8))
	if okClock && okDate {
		s.Timestamp = date.Add(clock)
		s.HasTimestamp = true
	}
	return s
}

// parseZDA handles time at field 0 and day, month, four-digit year at
// fields 1-3
func parseZDA(talker, typ string, fields []string) Sentence {
	s := DatetimeSentence{Talker: talker, Type: typ}
	clock, okClock := parseClock(fieldAt(fields, 0))
	day, okDay := parseInt(fieldAt(fields, 1))
	month, okMonth := parseInt(fieldAt(fields, 2))
	year, okYear := parseInt(fieldAt(fields, 3))
	if okClock && okDay && okMonth && okYear {
		s.Timestamp = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Add(clock)
		s.HasTimestamp = true
	}
	return s
}

// parseMWV handles wind angle at field 0, reference (R relative, T true)
// at field 1, speed at field 2, speed unit at field 3
func parseMWV(talker, typ string, fields []string) Sentence {
	s := WindSentence{Talker: talker, Type: typ}
	if speed, ok := parseFloat(fieldAt(fields, 2)); ok {
		if knots, ok := toKnots(speed, fieldAt(fields, 3)); ok {
			s.SpeedKnots = knots
			s.HasSpeed = true
		}
	}
	if angle, ok := parseFloat(fieldAt(fields, 0)); ok && fieldAt(fields, 1) == "T" {
		s.AngleTrue = angle
		s.HasAngle = true
	}
	return s
}

// parseVBW handles longitudinal water speed in knots at field 0
func parseVBW(talker, typ string, fields []string) Sentence {
	s := WaterSpeedSentence{Talker: talker, Type: typ}
	if speed, ok := parseFloat(fieldAt(fields, 0)); ok {
		s.SpeedKnots = speed
		s.HasSpeed = true
	}
	return s
}

// parseVHW handles water speed in knots at field 4
func parseVHW(talker, typ string, fields []string) Sentence {
	s := WaterSpeedSentence{Talker: talker, Type: typ}
	if speed, ok := parseFloat(fieldAt(fields, 4)); ok {
		s.SpeedKnots = speed
		s.HasSpeed = true
	}
	return s
}

// toKnots converts a speed value with an NMEA unit indicator to knots.
// N is knots, K is km/h, M is m/s.
func toKnots(speed float64, unit string) (float64, bool) {
	switch unit {
	case "N":
		return speed, true
	case "K":
		return speed / 1.852, true
	case "M":
		return speed * 3600 / 1852, true
	default:
		return 0, false
	}
}

// parseClock parses an hhmmss or hhmmss.sss UTC field into an offset from
// midnight
func parseClock(field string) (time.Duration, bool) {
	if len(field) < 6 {
		return 0, false
	}
	hour, okHour := parseInt(field[0:2])
	minute, okMinute := parseInt(field[2:4])
	second, okSecond := parseFloat(field[4:])
	if !okHour || !okMinute || !okSecond {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second >= 61 {
		return 0, false
	}
	clock := time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second*float64(time.Second))
	return clock, true
}

// parseDate parses a ddmmyy field. Two-digit years map to 2000-2099,
// matching the GPS-era convention.
func parseDate(field string) (time.Time, bool) {
	if len(field) != 6 {
		return time.Time{}, false
	}
	day, okDay := parseInt(field[0:2])
	month, okMonth := parseInt(field[2:4])
	year, okYear := parseInt(field[4:6])
	if !okDay || !okMonth || !okYear {
		return time.Time{}, false
	}
	return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func fieldAt(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}

func parseInt(field string) (int, bool) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloat(field string) (float64, bool) {
	if field == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
