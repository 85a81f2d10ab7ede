package codec

import "time"

// Sizes fixed by the wire format. Exported so tests and callers can refer
// to them without magic numbers.
const (
	PublicKeySize     = 32
	PublicKeyPrefix   = 6
	ContactPathSize   = 64
	ContactNameSize   = 32
	ContactRecordSize = 147 // payload size after the 0x09 opcode byte

	ChannelNameSize   = 32
	ChannelSecretSize = 16

	SelfInfoHeaderSize = 58 // fixed fields before the variable-length name
	MinSelfInfoLen     = 55 // spec's lower bound; radio fields and name are read only from 58 bytes on

	StatusStatsCoreFieldsSize = 36
	StatusStatsEmbeddedBase   = 48 // embedded (binaryResponse) form, no rxAirtime
	StatusStatsEmbeddedWithRx = 52 // embedded form, with rxAirtime
	StatusStatsPushBlockSize  = 51 // push form's stats block
	StatusResponsePushSize    = 58 // 1 reserved + 6 prefix + 51 stats block

	ChannelInfoSize = ChannelNameSize + ChannelSecretSize + 1

	LoginSuccessLegacySize   = 7
	LoginSuccessExtendedSize = 13

	ControlDataPrefixSize = 4
)

// CoordScale is the fixed-point scale factor for latitude/longitude:
// wire i32 = round(degrees * CoordScale).
const CoordScale = 1_000_000.0

// SNRScale is the fixed-point scale factor for SNR bytes:
// wire i8 = round(snr * SNRScale).
const SNRScale = 4.0

// Contact mirrors the 147-byte updateContact record and the contact
// push/response shape.
type Contact struct {
	PublicKey    [PublicKeySize]byte
	Type         uint8
	Flags        uint8
	OutPathLen   int8 // -1 means flood route; 0..63 is a source-routed hop count
	Path         [ContactPathSize]byte
	Name         string
	LastAdvert   time.Time
	Lat          float64
	Lon          float64
	LastModified time.Time
}

// SelfInfo is the reply to appStart / deviceQuery.
type SelfInfo struct {
	AdvertType         uint8
	TxPower            uint8
	MaxTxPower         uint8
	PublicKey          [PublicKeySize]byte
	Lat                float64
	Lon                float64
	MultiAcks          bool
	AdvertLocationPolicy uint8
	TelemetryMode      TelemetryMode
	ManualAddContacts  bool
	RadioFreqKHz       uint32
	RadioBandwidthHz   uint32
	SpreadingFactor    uint8
	CodingRate         uint8
	Name               string
}

// TelemetryMode packs three independent 2-bit policy values into one byte:
// (env<<4) | (loc<<2) | base.
type TelemetryMode struct {
	Environment uint8
	Location    uint8
	Base        uint8
}

// PackByte packs the three 2-bit fields into one byte.
func (m TelemetryMode) PackByte() byte {
	return (m.Environment&0x3)<<4 | (m.Location&0x3)<<2 | (m.Base & 0x3)
}

// UnpackTelemetryMode unpacks a telemetry-mode byte.
func UnpackTelemetryMode(b byte) TelemetryMode {
	return TelemetryMode{
		Environment: (b >> 4) & 0x3,
		Location:    (b >> 2) & 0x3,
		Base:        b & 0x3,
	}
}

// StatusStats is the common radio/device stats block carried by both the
// statusResponse push and the binaryResponse-embedded status shape.
type StatusStats struct {
	Battery      uint16
	RSSI         int8
	SNR          float64
	Uptime       uint32
	RecvCount    uint32
	SentCount    uint32
	FloodTxCount uint32
	DirectTxCount uint32
	FloodRxCount uint32
	DirectRxCount uint32
	RxAirtime    *uint32 // present only when the trailing optional field was supplied
}

// StatusResponse is the statusResponse push event: a 6-byte public-key
// prefix plus a StatusStats block.
type StatusResponse struct {
	PublicKeyPrefix [PublicKeyPrefix]byte
	Stats           StatusStats
}

// PathDiscoveryResponse carries the outbound and inbound path discovered
// for a remote node.
type PathDiscoveryResponse struct {
	PublicKeyPrefix [PublicKeyPrefix]byte
	OutPath         []byte
	InPath          []byte
}

// TraceNode is one hop in a TraceData response. HashBytes is nil for the
// destination marker hop (an all-0xFF hash).
type TraceNode struct {
	HashBytes []byte
	SNR       float64
}

// TraceData is the traceData push event.
type TraceData struct {
	Tag      uint32
	AuthCode uint32
	HashSize int // bytes per hop: 1, 2, 4, or 8
	Nodes    []TraceNode
	FinalSNR float64
}

// ACLEntry is one record in a binaryResponse ACL payload.
type ACLEntry struct {
	KeyPrefix   [PublicKeyPrefix]byte
	Permissions uint8
}

// MMAEntry is one min/max/avg telemetry record in a binaryResponse MMA
// payload.
type MMAEntry struct {
	Channel    uint8
	SensorType LPPType
	Min, Max, Avg float64
}

// Neighbour is one record in a binaryResponse neighbours payload.
type Neighbour struct {
	KeyPrefix  []byte // width supplied by the caller, typically 4 bytes
	SecondsAgo int32
	SNR        float64
}

// ChannelInfo is the getChannel reply.
type ChannelInfo struct {
	Index  uint8
	Name   string
	Secret [ChannelSecretSize]byte
}

// LoginPermission normalizes both legacy and ACL-extended permission
// encodings onto one scalar.
type LoginPermission int

const (
	PermissionGuest LoginPermission = iota
	PermissionReadWrite
	PermissionAdmin
)

// LoginSuccess is the loginSuccess push event.
type LoginSuccess struct {
	PublicKeyPrefix [PublicKeyPrefix]byte
	Permission      LoginPermission
	Extended        bool
	Timestamp       time.Time // zero unless Extended
	FirmwareLevel   uint8     // zero unless Extended
}

// ControlData is the sendControlData response / push.
type ControlData struct {
	SNR         float64
	RSSI        int8
	PathLen     uint8
	PayloadType uint8
	NodeType    uint8
	Discover    *DiscoverResponse // non-nil when PayloadType's upper nibble is 0x9
}

// DiscoverResponse is the inner payload of a control-data discover
// response.
type DiscoverResponse struct {
	InboundSNR float64
	Tag        uint32
	PublicKey  []byte // 32 bytes when available, else 8, else whatever remains
}

// BatteryInfo is the getBattery reply. Storage is nil on the short
// (2-byte) form.
type BatteryInfo struct {
	MillivoltsOrLevel uint16
	Storage           *BatteryStorage
}

// BatteryStorage is the optional extended battery/storage payload.
type BatteryStorage struct {
	UsedKB  uint32
	TotalKB uint32
}

// StatsCore is the getStats(core) reply.
type StatsCore struct {
	BatteryMillivolts uint16
	UptimeSeconds     uint32
	Errors            uint16
	QueueLen          uint8
}

// StatsRadio is the getStats(radio) reply.
type StatsRadio struct {
	NoiseFloor   int16
	LastRSSI     int8
	LastSNR      float64
	TxAirSeconds uint32
	RxAirSeconds uint32
}

// StatsPackets is the getStats(packets) reply.
type StatsPackets struct {
	Recv     uint32
	Sent     uint32
	FloodTx  uint32
	DirectTx uint32
	FloodRx  uint32
	DirectRx uint32
}
