package port

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"firestige.xyz/meshlisten/internal/mesh/wire"
)

// positionScale converts Position.latitude_i/longitude_i to degrees.
const positionScale = 1e-7

const unknownMarker = "?"

// Reading is the port-specific interpretation of a payload.
type Reading interface {
	// Kind names the reading type, e.g. "text" or "position".
	Kind() string
	// Render returns a one-line human-readable form, or "" when there is
	// nothing worth showing.
	Render() string
}

// TextReading is a TEXT_MESSAGE payload.
type TextReading struct {
	Text  string `yaml:"text"`
	Valid bool   `yaml:"valid_utf8"`
}

func newTextReading(payload []byte) TextReading {
	if utf8.Valid(payload) {
		return TextReading{Text: string(payload), Valid: true}
	}
	return TextReading{Text: hex.EncodeToString(payload)}
}

func (TextReading) Kind() string { return "text" }

func (r TextReading) Render() string {
	if !r.Valid {
		return "Message (raw): " + r.Text
	}
	return "Message: " + r.Text
}

// NodeInfoReading is a NODEINFO payload (a User message).
type NodeInfoReading struct {
	LongName  string `yaml:"long_name"`
	ShortName string `yaml:"short_name"`
	HWModel   string `yaml:"hw_model"`
}

func newNodeInfoReading(payload []byte) NodeInfoReading {
	user := wire.Decode(payload)
	r := NodeInfoReading{
		LongName:  nameField(user, 2),
		ShortName: nameField(user, 3),
		HWModel:   unknownMarker,
	}
	if v, ok := user[4]; ok {
		r.HWModel = v.String()
	}
	return r
}

func nameField(msg wire.Message, num uint64) string {
	b, ok := msg.Bytes(num)
	if !ok {
		return unknownMarker
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

func (NodeInfoReading) Kind() string { return "nodeinfo" }

func (r NodeInfoReading) Render() string {
	return fmt.Sprintf("Node: %s (%s)  hw_model: %s", r.LongName, r.ShortName, r.HWModel)
}

// PositionReading is a POSITION payload. Absent fields stay nil.
type PositionReading struct {
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
	Altitude  *string  `yaml:"altitude,omitempty"`
	Payload   []byte   `yaml:"-"`
}

func newPositionReading(payload []byte) PositionReading {
	pos := wire.Decode(payload)
	r := PositionReading{Payload: payload}
	if v, ok := pos.Int32(1); ok {
		lat := float64(v) * positionScale
		r.Latitude = &lat
	}
	if v, ok := pos.Int32(2); ok {
		lon := float64(v) * positionScale
		r.Longitude = &lon
	}
	if v, ok := pos[3]; ok {
		alt := v.String()
		r.Altitude = &alt
	}
	return r
}

func (PositionReading) Kind() string { return "position" }

func (r PositionReading) Render() string {
	var parts []string
	if r.Latitude != nil {
		parts = append(parts, fmt.Sprintf("lat=%.6f", *r.Latitude))
	}
	if r.Longitude != nil {
		parts = append(parts, fmt.Sprintf("lon=%.6f", *r.Longitude))
	}
	if r.Altitude != nil {
		parts = append(parts, fmt.Sprintf("alt=%sm", *r.Altitude))
	}
	if len(parts) == 0 {
		return "Position: " + hex.EncodeToString(r.Payload)
	}
	return "Position: " + strings.Join(parts, ", ")
}

// TelemetryReading is a TELEMETRY payload. It is not decoded further.
type TelemetryReading struct {
	Payload []byte `yaml:"-"`
}

func (TelemetryReading) Kind() string { return "telemetry" }

func (r TelemetryReading) Render() string {
	return "Telemetry: " + hex.EncodeToString(r.Payload)
}

// RawReading covers every port without a dedicated interpretation.
type RawReading struct {
	Payload []byte `yaml:"-"`
}

func (RawReading) Kind() string { return "raw" }

func (r RawReading) Render() string {
	if len(r.Payload) == 0 {
		return ""
	}
	return "Payload: " + hex.EncodeToString(r.Payload)
}
