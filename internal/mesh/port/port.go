// Package port interprets a decoded Meshtastic Data message according to
// its application port number.
package port

import (
	"fmt"

	"firestige.xyz/meshlisten/internal/mesh/wire"
)

// Num is an application port number (Data.portnum).
type Num uint64

const (
	Unknown        Num = 0
	TextMessage    Num = 1
	RemoteHardware Num = 2
	Position       Num = 3
	NodeInfo       Num = 4
	Routing        Num = 5
	Admin          Num = 6
	TextCompressed Num = 7
	Waypoint       Num = 8
	Reply          Num = 32
	IPTunnel       Num = 33
	Paxcounter     Num = 34
	Serial         Num = 64
	StoreForward   Num = 65
	RangeTest      Num = 66
	Telemetry      Num = 67
	ZPS            Num = 68
	Simulator      Num = 69
	Traceroute     Num = 70
	NeighborInfo   Num = 71
	ATAKPlugin     Num = 72
	MapReport      Num = 73
)

var names = map[Num]string{
	Unknown:        "UNKNOWN",
	TextMessage:    "TEXT_MESSAGE",
	RemoteHardware: "REMOTE_HARDWARE",
	Position:       "POSITION",
	NodeInfo:       "NODEINFO",
	Routing:        "ROUTING",
	Admin:          "ADMIN",
	TextCompressed: "TEXT_COMPRESSED",
	Waypoint:       "WAYPOINT",
	Reply:          "REPLY",
	IPTunnel:       "IP_TUNNEL",
	Paxcounter:     "PAXCOUNTER",
	Serial:         "SERIAL",
	StoreForward:   "STORE_FORWARD",
	RangeTest:      "RANGE_TEST",
	Telemetry:      "TELEMETRY",
	ZPS:            "ZPS",
	Simulator:      "SIMULATOR",
	Traceroute:     "TRACEROUTE",
	NeighborInfo:   "NEIGHBORINFO",
	ATAKPlugin:     "ATAK_PLUGIN",
	MapReport:      "MAP_REPORT",
}

// Name returns the port's symbolic name, or PORT_<n> for unknown ports.
func (n Num) Name() string {
	if name, ok := names[n]; ok {
		return name
	}
	return fmt.Sprintf("PORT_%d", uint64(n))
}

func (n Num) String() string { return n.Name() }

// Data is a dispatched top-level application message.
type Data struct {
	Port    Num
	Payload []byte
	Reading Reading
}

// Dispatch reads the port (field 1) and payload (field 2) of msg and builds
// the reading for that port. A missing or mistyped port counts as Unknown; a
// missing or mistyped payload counts as empty.
func Dispatch(msg wire.Message) Data {
	num, _ := msg.Varint(1)
	payload, _ := msg.Bytes(2)
	if payload == nil {
		payload = []byte{}
	}

	d := Data{Port: Num(num), Payload: payload}
	switch d.Port {
	case TextMessage:
		d.Reading = newTextReading(payload)
	case NodeInfo:
		d.Reading = newNodeInfoReading(payload)
	case Position:
		d.Reading = newPositionReading(payload)
	case Telemetry:
		d.Reading = TelemetryReading{Payload: payload}
	default:
		d.Reading = RawReading{Payload: payload}
	}
	return d
}
