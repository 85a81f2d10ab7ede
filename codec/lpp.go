package codec

import "fmt"

// LPPType is a Cayenne Low Power Payload sensor type code.
type LPPType uint8

// Closed table of sensor types this decoder understands, mirroring the
// Cayenne LPP registry. DataSize is the fixed payload width in bytes for
// that type; Parse never needs to guess a width.
const (
	LPPDigitalInput  LPPType = 0
	LPPDigitalOutput LPPType = 1
	LPPAnalogInput   LPPType = 2
	LPPAnalogOutput  LPPType = 3
	LPPGenericSensor LPPType = 100
	LPPIlluminance   LPPType = 101
	LPPPresence      LPPType = 102
	LPPTemperature   LPPType = 103
	LPPHumidity      LPPType = 104
	LPPAccelerometer LPPType = 113
	LPPBarometer     LPPType = 115
	LPPVoltage       LPPType = 116
	LPPCurrent       LPPType = 117
	LPPFrequency     LPPType = 118
	LPPPercentage    LPPType = 120
	LPPAltitude      LPPType = 121
	LPPRotation      LPPType = 122
	LPPConcentration LPPType = 125
	LPPPower         LPPType = 128
	LPPDistance      LPPType = 130
	LPPEnergy        LPPType = 131
	LPPDirection     LPPType = 132
	LPPUnixTime      LPPType = 133
	LPPGyrometer     LPPType = 134
	LPPColour        LPPType = 135
	LPPGPS           LPPType = 136
	LPPSwitch        LPPType = 142
)

// DataSize returns the fixed payload width in bytes for t, and false if t
// is outside the closed table.
func (t LPPType) DataSize() (int, bool) {
	size, ok := lppSizes[t]
	return size, ok
}

var lppSizes = map[LPPType]int{
	LPPDigitalInput:  1,
	LPPDigitalOutput: 1,
	LPPAnalogInput:   2,
	LPPAnalogOutput:  2,
	LPPGenericSensor: 4,
	LPPIlluminance:   2,
	LPPPresence:      1,
	LPPTemperature:   2,
	LPPHumidity:      1,
	LPPAccelerometer: 6,
	LPPBarometer:     2,
	LPPVoltage:       2,
	LPPCurrent:       2,
	LPPFrequency:     4,
	LPPPercentage:    1,
	LPPAltitude:      2,
	LPPRotation:      2,
	LPPConcentration: 2,
	LPPPower:         2,
	LPPDistance:      4,
	LPPEnergy:        4,
	LPPDirection:     2,
	LPPUnixTime:      4,
	LPPGyrometer:     6,
	LPPColour:        3,
	LPPGPS:           9,
	LPPSwitch:        1,
}

// LPPKind tags which field of LPPValue is meaningful.
type LPPKind int

const (
	LPPKindDigital LPPKind = iota
	LPPKindInteger
	LPPKindFloat
	LPPKindVector3
	LPPKindGPS
	LPPKindRGB
	LPPKindTimestamp
)

// LPPValue is one decoded Cayenne LPP record.
type LPPValue struct {
	Channel uint8
	Type    LPPType
	Kind    LPPKind

	Digital   bool
	Integer   int64
	Float     float64
	X, Y, Z   float64
	Lat, Lon  float64
	Alt       float64
	R, G, B   uint8
	Timestamp int64 // seconds since epoch
}

// DecodeLPP decodes a repeating [channel][type][value] Cayenne LPP
// stream. All multi-byte numerics are big-endian, matching the Cayenne
// spec rather than the surrounding MeshCore frame's little-endian
// convention. An unknown type code terminates decoding of the current
// frame; values decoded so far are returned alongside the error.
func DecodeLPP(data []byte) ([]LPPValue, error) {
	var values []LPPValue
	i := 0
	for i < len(data) {
		if i+2 > len(data) {
			return values, fmt.Errorf("lpp: truncated channel/type header at byte %d", i)
		}
		channel := data[i]
		typ := LPPType(data[i+1])
		i += 2

		size, ok := typ.DataSize()
		if !ok {
			return values, fmt.Errorf("lpp: unknown type code 0x%02X at byte %d", byte(typ), i-1)
		}
		if i+size > len(data) {
			return values, fmt.Errorf("lpp: truncated value for type 0x%02X at byte %d", byte(typ), i)
		}
		raw := data[i : i+size]
		i += size

		v, err := decodeLPPValue(channel, typ, raw)
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
	return values, nil
}

func decodeLPPValue(channel uint8, typ LPPType, raw []byte) (LPPValue, error) {
	v := LPPValue{Channel: channel, Type: typ}

	switch typ {
	case LPPDigitalInput, LPPDigitalOutput, LPPPresence, LPPSwitch:
		v.Kind = LPPKindDigital
		v.Digital = raw[0] != 0
		v.Integer = int64(raw[0])

	case LPPAnalogInput, LPPAnalogOutput:
		v.Kind = LPPKindFloat
		v.Float = float64(beInt16(raw)) / 100.0

	case LPPTemperature:
		v.Kind = LPPKindFloat
		v.Float = float64(beInt16(raw)) / 10.0

	case LPPHumidity:
		v.Kind = LPPKindFloat
		v.Float = float64(raw[0]) / 2.0

	case LPPIlluminance:
		v.Kind = LPPKindInteger
		v.Integer = int64(beUint16(raw))

	case LPPBarometer:
		v.Kind = LPPKindFloat
		v.Float = float64(beUint16(raw)) / 10.0

	case LPPVoltage:
		v.Kind = LPPKindFloat
		v.Float = float64(beUint16(raw)) / 100.0

	case LPPCurrent:
		v.Kind = LPPKindFloat
		v.Float = float64(beUint16(raw)) / 1000.0

	case LPPFrequency:
		v.Kind = LPPKindInteger
		v.Integer = int64(beUint32(raw))

	case LPPPercentage:
		v.Kind = LPPKindInteger
		v.Integer = int64(raw[0])

	case LPPAltitude, LPPDirection, LPPRotation, LPPConcentration, LPPPower:
		v.Kind = LPPKindInteger
		v.Integer = int64(beUint16(raw))

	case LPPDistance:
		v.Kind = LPPKindFloat
		v.Float = float64(beUint32(raw)) / 1000.0

	case LPPEnergy:
		v.Kind = LPPKindFloat
		v.Float = float64(beUint32(raw)) / 1000.0

	case LPPUnixTime:
		v.Kind = LPPKindTimestamp
		v.Timestamp = int64(beUint32(raw))

	case LPPGenericSensor:
		v.Kind = LPPKindInteger
		v.Integer = int64(beUint32(raw))

	case LPPAccelerometer, LPPGyrometer:
		v.Kind = LPPKindVector3
		v.X = float64(beInt16(raw[0:2])) / 1000.0
		v.Y = float64(beInt16(raw[2:4])) / 1000.0
		v.Z = float64(beInt16(raw[4:6])) / 1000.0

	case LPPColour:
		v.Kind = LPPKindRGB
		v.R, v.G, v.B = raw[0], raw[1], raw[2]

	case LPPGPS:
		v.Kind = LPPKindGPS
		v.Lat = float64(beInt24(raw[0:3])) / 10000.0
		v.Lon = float64(beInt24(raw[3:6])) / 10000.0
		v.Alt = float64(beInt24(raw[6:9])) / 100.0

	default:
		return v, fmt.Errorf("lpp: unhandled type code 0x%02X", byte(typ))
	}
	return v, nil
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beInt16(b []byte) int16   { return int16(beUint16(b)) }

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// beInt24 decodes a big-endian 24-bit two's-complement integer and
// sign-extends it to 32 bits, per GPS altitude's encoding.
func beInt24(b []byte) int32 {
	u := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	if u&0x800000 != 0 {
		u |= 0xFF000000
	}
	return int32(u)
}
