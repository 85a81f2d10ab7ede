package codec

import "time"

// AckTag is the 4-byte correlation identifier echoed between a
// messageSent reply and the ack push that confirms it (and, separately,
// between a binaryRequest and its binaryResponse).
type AckTag [4]byte

// Event is the tagged union of everything the parser can produce, plus
// the session-internal lifecycle/diagnostic events it synthesizes
// (ConnectionState, QueueOverflow). Exactly one field other than Code,
// Category, and Raw is meaningful for any given Code; callers switch on
// Code (or Category for coarse dispatch).
//
// A fat struct rather than an interface-per-variant was chosen so a
// single zero-allocation value can flow through the event channel
// without a type switch at every hop; codec/session code still type
// switches conceptually via Code.
type Event struct {
	Code     ResponseCode
	Category ResponseCategory

	// Raw holds the undecoded bytes: for ParseFailure events, the whole
	// frame handed to Parse; for RawData, RxLogData, and Stats events, the
	// payload after the opcode byte.
	Raw []byte

	ErrorCode *uint8

	SelfInfo       *SelfInfo
	Contact        *Contact
	NewContact     *Contact
	MessageSent    *MessageSent
	ContactMessage *ContactMessage
	ChannelMessage *ChannelMessage
	PrivateKey     []byte
	Battery        *BatteryInfo
	SignStart      *SignStart
	AdvertPath     *AdvertPath
	DeviceInfo     *DeviceInfo
	ChannelInfo    *ChannelInfo
	CustomVar      *CustomVar
	Time           *time.Time
	TuningParams   *TuningParams
	AutoAddConfig  *AutoAddConfig
	Signature      []byte
	StatsCore      *StatsCore
	StatsRadio     *StatsRadio
	StatsPackets   *StatsPackets

	Advertisement         *Advertisement
	PathUpdate            *PathUpdate
	Ack                   *AckEvent
	LoginSuccess          *LoginSuccess
	LoginFailed           *LoginFailed
	StatusResponse        *StatusResponse
	TraceData             *TraceData
	PathDiscoveryResponse *PathDiscoveryResponse
	TelemetryResponse     *TelemetryResponse
	BinaryResponse        *BinaryResponse
	ControlData           *ControlData

	ParseFailure *ParseFailure

	// Synthesized by session, never by Parse.
	ConnectionState *ConnectionStateChange
	QueueOverflow   *QueueOverflow
}

// MessageSent is the reply to sendMessage/sendChannelMessage: the
// firmware has queued the message and will (eventually, maybe) deliver
// an Ack push carrying ExpectedAck.
type MessageSent struct {
	ExpectedAck        AckTag
	SuggestedTimeoutMs uint32
}

// TextType distinguishes plain from signed message payloads.
type TextType uint8

const (
	TextPlain  TextType = 0
	TextSigned TextType = 2
)

// ContactMessage is the reply to getMessage when a contact message is
// waiting.
type ContactMessage struct {
	SenderPrefix [PublicKeyPrefix]byte
	Type         TextType
	Timestamp    time.Time
	SNR          *float64 // non-nil only on the v3 shape
	Text         string
}

// ChannelMessage is the reply to getMessage when a channel message is
// waiting.
type ChannelMessage struct {
	Channel   uint8
	Type      TextType
	Timestamp time.Time
	SNR       *float64
	Text      string
}

// SignStart is the reply to signStart: an opaque challenge the caller
// must echo back (chunked) via signData/signFinish.
type SignStart struct {
	Challenge []byte
}

// AdvertPath is the reply to getAdvertPath: the cached route to a node.
type AdvertPath struct {
	PublicKeyPrefix [PublicKeyPrefix]byte
	Path            []byte
}

// DeviceInfo is the reply to deviceQuery.
type DeviceInfo struct {
	FirmwareVersion uint8
	MaxContacts     uint16
	MaxGroupChannels uint16
	Raw             []byte
}

// CustomVar is a getCustomVar/setCustomVar "key:value" pair.
type CustomVar struct {
	Key   string
	Value string
}

// TuningParams is the reply to getTuningParams.
type TuningParams struct {
	RxDelayMs uint32
	AFCHz     uint32
}

// AutoAddConfig unpacks the auto-add-contacts bitmask.
type AutoAddConfig struct {
	OverwriteOldest bool
	AutoAddContacts bool
	AutoAddRepeaters bool
	AutoAddRoomServers bool
}

// UnpackAutoAddConfig decodes the bitmask byte described in §6.1.
func UnpackAutoAddConfig(b byte) AutoAddConfig {
	return AutoAddConfig{
		OverwriteOldest:    b&0x01 != 0,
		AutoAddContacts:    b&0x02 != 0,
		AutoAddRepeaters:   b&0x04 != 0,
		AutoAddRoomServers: b&0x08 != 0,
	}
}

// PackByte re-encodes the bitmask.
func (c AutoAddConfig) PackByte() byte {
	var b byte
	if c.OverwriteOldest {
		b |= 0x01
	}
	if c.AutoAddContacts {
		b |= 0x02
	}
	if c.AutoAddRepeaters {
		b |= 0x04
	}
	if c.AutoAddRoomServers {
		b |= 0x08
	}
	return b
}

// Advertisement is an unsolicited broadcast from a mesh node.
type Advertisement struct {
	PublicKey [PublicKeySize]byte
	Raw       []byte
}

// PathUpdate is an unsolicited path-change notification.
type PathUpdate struct {
	PublicKeyPrefix [PublicKeyPrefix]byte
	Raw             []byte
}

// AckEvent is the push that confirms a previously sent message.
type AckEvent struct {
	Code AckTag
}

// LoginFailed is the loginFailed push.
type LoginFailed struct {
	PublicKeyPrefix [PublicKeyPrefix]byte
}

// TelemetryResponse carries LPP-decoded sensor values. PublicKeyPrefix is
// nil when the telemetry wasn't correlated back to a binaryRequest (i.e.
// it came from getSelfTelemetry rather than a binaryRequest to a remote
// node).
type TelemetryResponse struct {
	PublicKeyPrefix *[PublicKeyPrefix]byte
	Values          []LPPValue
}

// BinaryResponse is the decoded wrapper around a reply to binaryRequest.
// PublicKeyPrefix is nil when Tag didn't match any pending binary-request
// correlation entry (Open Question: session context unresolved; we still
// decode as far as RequestType lets us).
type BinaryResponse struct {
	RequestType     BinaryRequestType
	Tag             AckTag
	PublicKeyPrefix *[PublicKeyPrefix]byte
	Status          *StatusResponse
	Telemetry       []LPPValue
	ACL             []ACLEntry
	MMA             []MMAEntry
	Neighbours      []Neighbour
	Raw             []byte // payload, always populated for diagnostics
}

// ParseFailure records why Parse couldn't produce a typed event.
type ParseFailure struct {
	Reason string
}

// ConnectionState is the session's connection state machine value.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReady
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ConnectionStateChange is synthesized by session on every transition.
type ConnectionStateChange struct {
	State ConnectionState
	Err   error // non-nil only when the transition was caused by a failure
}

// QueueOverflow is synthesized by session when the subscriber queue's
// backpressure policy drops an event.
type QueueOverflow struct {
	DroppedCode ResponseCode
}
