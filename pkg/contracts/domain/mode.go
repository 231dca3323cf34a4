package domain

import (
	"fmt"
	"strings"
)

// Mode identifies one of the seven transport services tracked in the ridership data.
// The numeric order is the display order used everywhere series are emitted.
type Mode int

const (
	ModeSubways Mode = iota
	ModeBuses
	ModeLIRR
	ModeMetroNorth
	ModeStatenIslandRailway
	ModeAccessARide
	ModeBridgesAndTunnels
)

// ModeCount is the number of tracked modes.
const ModeCount = 7

// ModeInfo is the static column and color mapping for a mode.
type ModeInfo struct {
	Key              string `json:"key"`
	Label            string `json:"label"`
	AbsoluteColumn   string `json:"absolute_column"`
	PercentageColumn string `json:"percentage_column"`
	Color            string `json:"color"`
	ColorHex         string `json:"color_hex"`
}

var modeTable = [ModeCount]ModeInfo{
	ModeSubways: {
		Key:              "subways",
		Label:            "Subways",
		AbsoluteColumn:   "Subways: Total Estimated Ridership",
		PercentageColumn: "Subways: % of Comparable Pre-Pandemic Day",
		Color:            "blue",
		ColorHex:         "#0000FF",
	},
	ModeBuses: {
		Key:              "buses",
		Label:            "Buses",
		AbsoluteColumn:   "Buses: Total Estimated Ridership",
		PercentageColumn: "Buses: % of Comparable Pre-Pandemic Day",
		Color:            "red",
		ColorHex:         "#FF0000",
	},
	ModeLIRR: {
		Key:              "lirr",
		Label:            "Long Island Rails",
		AbsoluteColumn:   "LIRR: Total Estimated Ridership",
		PercentageColumn: "LIRR: % of Comparable Pre-Pandemic Day",
		Color:            "green",
		ColorHex:         "#008000",
	},
	ModeMetroNorth: {
		Key:              "metro-north",
		Label:            "Metro-North",
		AbsoluteColumn:   "Metro-North: Total Estimated Ridership",
		PercentageColumn: "Metro-North: % of Comparable Pre-Pandemic Day",
		Color:            "purple",
		ColorHex:         "#800080",
	},
	ModeStatenIslandRailway: {
		Key:              "sir",
		Label:            "Staten Island Railway",
		AbsoluteColumn:   "Staten Island Railway: Total Estimated Ridership",
		PercentageColumn: "Staten Island Railway: % of Comparable Pre-Pandemic Day",
		Color:            "orange",
		ColorHex:         "#FFA500",
	},
	ModeAccessARide: {
		Key:              "access-a-ride",
		Label:            "Access-A-Ride",
		AbsoluteColumn:   "Access-A-Ride: Total Scheduled Trips",
		PercentageColumn: "Access-A-Ride: % of Comparable Pre-Pandemic Day",
		Color:            "teal",
		ColorHex:         "#008080",
	},
	ModeBridgesAndTunnels: {
		Key:              "bridges-tunnels",
		Label:            "Bridges and Tunnels",
		AbsoluteColumn:   "Bridges and Tunnels: Total Traffic",
		PercentageColumn: "Bridges and Tunnels: % of Comparable Pre-Pandemic Day",
		Color:            "brown",
		ColorHex:         "#A52A2A",
	},
}

// legacy display labels still accepted on input
var modeAliases = map[string]Mode{
	"access-a-rid": ModeAccessARide,
}

// DefaultModes is the selection shown when the dashboard first loads.
var DefaultModes = []Mode{ModeSubways, ModeBuses, ModeBridgesAndTunnels}

// AllModes returns every mode in display order.
func AllModes() []Mode {
	modes := make([]Mode, ModeCount)
	for i := range modes {
		modes[i] = Mode(i)
	}
	return modes
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= 0 && int(m) < ModeCount
}

// Info returns the static mapping entry for the mode.
func (m Mode) Info() ModeInfo {
	if !m.Valid() {
		return ModeInfo{}
	}
	return modeTable[m]
}

// Key returns the URL-safe identifier for the mode.
func (m Mode) Key() string { return m.Info().Key }

// Label returns the display label for the mode.
func (m Mode) Label() string { return m.Info().Label }

// Color returns the named chart color for the mode.
func (m Mode) Color() string { return m.Info().Color }

// String implements fmt.Stringer
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return m.Label()
}

// MarshalText encodes the mode as its key so maps keyed by Mode serialize cleanly.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.Key()), nil
}

// UnmarshalText accepts either the key or the display label.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode resolves a key or display label, case-insensitively.
func ParseMode(s string) (Mode, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == "" {
		return 0, fmt.Errorf("%w: empty mode", ErrUnknownMode)
	}
	for i, info := range modeTable {
		if needle == info.Key || needle == strings.ToLower(info.Label) {
			return Mode(i), nil
		}
	}
	if m, ok := modeAliases[needle]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ParseModes resolves a list of mode identifiers. Comma separated entries are split.
func ParseModes(values []string) ([]Mode, error) {
	modes := make([]Mode, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			m, err := ParseMode(part)
			if err != nil {
				return nil, err
			}
			modes = append(modes, m)
		}
	}
	return modes, nil
}

// SortModes returns the distinct modes of the input in display order.
func SortModes(modes []Mode) []Mode {
	var seen [ModeCount]bool
	for _, m := range modes {
		if m.Valid() {
			seen[m] = true
		}
	}
	out := make([]Mode, 0, len(modes))
	for i, ok := range seen {
		if ok {
			out = append(out, Mode(i))
		}
	}
	return out
}
