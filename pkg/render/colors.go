package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses a #rrggbb or rrggbb colour string
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// OverrideColors applies per-channel colour overrides, keyed by channel
// name (boatspeed, windspeed, winddirection), to a base palette
func OverrideColors(base ChannelColors, overrides map[string]string) (ChannelColors, error) {
	for channel, value := range overrides {
		c, err := ParseHexColor(value)
		if err != nil {
			return base, err
		}
		switch channel {
		case "boatspeed":
			base.Boatspeed = c
		case "windspeed":
			base.Windspeed = c
		case "winddirection":
			base.WindDirection = c
		default:
			return base, fmt.Errorf("unknown channel %q", channel)
		}
	}
	return base, nil
}
