package codec

import "fmt"

// CommandCode is the opcode of a frame sent from the host to the radio.
type CommandCode byte

// Command opcodes, per the wire format table. Gaps in the numbering are
// opcodes the radio firmware reserves but this client never builds.
const (
	CmdAppStart             CommandCode = 0x01
	CmdSendMessage          CommandCode = 0x02 // also sendCommand; see BuildSendMessage/BuildSendCommand
	CmdSendChannelMessage   CommandCode = 0x03
	CmdGetContacts          CommandCode = 0x04
	CmdGetTime              CommandCode = 0x05
	CmdSetTime              CommandCode = 0x06
	CmdSendAdvertisement    CommandCode = 0x07
	CmdSetName              CommandCode = 0x08
	CmdUpdateContact        CommandCode = 0x09
	CmdGetMessage           CommandCode = 0x0A
	CmdSetRadio             CommandCode = 0x0B
	CmdSetTxPower           CommandCode = 0x0C
	CmdResetPath            CommandCode = 0x0D
	CmdSetCoordinates       CommandCode = 0x0E
	CmdRemoveContact        CommandCode = 0x0F
	CmdShareContact         CommandCode = 0x10
	CmdExportContact        CommandCode = 0x11
	CmdReboot               CommandCode = 0x13
	CmdGetBattery           CommandCode = 0x14
	CmdSetTuning            CommandCode = 0x15
	CmdDeviceQuery          CommandCode = 0x16
	CmdExportPrivateKey     CommandCode = 0x17
	CmdImportPrivateKey     CommandCode = 0x18
	CmdSendLogin            CommandCode = 0x1A
	CmdSendStatusRequest    CommandCode = 0x1B
	CmdHasConnection        CommandCode = 0x1C
	CmdSendLogout           CommandCode = 0x1D
	CmdGetContactByKey      CommandCode = 0x1E
	CmdGetChannel           CommandCode = 0x1F
	CmdSetChannel           CommandCode = 0x20
	CmdSignStart            CommandCode = 0x21
	CmdSignData             CommandCode = 0x22
	CmdSignFinish           CommandCode = 0x23
	CmdSendTrace            CommandCode = 0x24
	CmdSetDevicePin         CommandCode = 0x25
	CmdSetOtherParams       CommandCode = 0x26
	CmdGetSelfTelemetry     CommandCode = 0x27
	CmdGetCustomVar         CommandCode = 0x28
	CmdSetCustomVar         CommandCode = 0x29
	CmdGetAdvertPath        CommandCode = 0x2A
	CmdGetTuningParams      CommandCode = 0x2B
	CmdBinaryRequest        CommandCode = 0x32
	CmdFactoryReset         CommandCode = 0x33
	CmdPathDiscovery        CommandCode = 0x34
	CmdSetFloodScope        CommandCode = 0x36
	CmdSendControlData      CommandCode = 0x37
	CmdGetStats             CommandCode = 0x38
	CmdSetAutoAddConfig     CommandCode = 0x3A
	CmdGetAutoAddConfig     CommandCode = 0x3B
)

// ResponseCode is the opcode of a frame sent from the radio to the host.
// Codes below 0x80 are solicited (a reply to a pending command); codes
// at or above 0x80 are unsolicited push notifications.
type ResponseCode byte

const (
	RespOK                    ResponseCode = 0x00
	RespError                 ResponseCode = 0x01
	RespContactsStart         ResponseCode = 0x02
	RespContact               ResponseCode = 0x03
	RespContactsEnd           ResponseCode = 0x04
	RespSelfInfo              ResponseCode = 0x05
	RespMessageSent           ResponseCode = 0x06
	RespContactMessage        ResponseCode = 0x07
	RespChannelMessage        ResponseCode = 0x08
	RespPrivateKey            ResponseCode = 0x09
	RespBattery               ResponseCode = 0x0A
	RespSignStart             ResponseCode = 0x0B
	RespAdvertPath            ResponseCode = 0x0C
	RespDeviceInfo            ResponseCode = 0x0D
	RespChannelInfo           ResponseCode = 0x0E
	RespCustomVar             ResponseCode = 0x0F
	RespTime                  ResponseCode = 0x10
	RespTuningParams          ResponseCode = 0x11
	RespAutoAddConfig         ResponseCode = 0x12
	RespSignature             ResponseCode = 0x13
	RespStats                 ResponseCode = 0x18

	RespAdvertisement         ResponseCode = 0x80
	RespPathUpdate            ResponseCode = 0x81
	RespAck                   ResponseCode = 0x82
	RespNewContact            ResponseCode = 0x83
	RespRawData               ResponseCode = 0x84
	RespLoginSuccess          ResponseCode = 0x85
	RespLoginFailed           ResponseCode = 0x86
	RespStatusResponse        ResponseCode = 0x87
	RespRxLogData             ResponseCode = 0x88
	RespTraceData             ResponseCode = 0x89
	RespPathDiscoveryResponse ResponseCode = 0x8A
	RespTelemetryResponse     ResponseCode = 0x8B
	RespBinaryResponse        ResponseCode = 0x8C
	RespControlData           ResponseCode = 0x8D
)

// IsPush reports whether code is an unsolicited push notification
// (opcode >= 0x80). Push notifications are routed to subscribers and
// never resolve a pending command's waiter.
func (c ResponseCode) IsPush() bool {
	return c >= 0x80
}

// ResponseCategory groups response codes for dispatch. It has no wire
// representation; it is derived from ResponseCode via Category.
type ResponseCategory int

const (
	CategoryUnknown ResponseCategory = iota
	CategorySimple
	CategoryDevice
	CategoryContact
	CategoryMessage
	CategoryPush
	CategoryLogin
	CategorySigning
	CategoryMisc
)

var categoryTable = map[ResponseCode]ResponseCategory{
	RespOK:            CategorySimple,
	RespError:         CategorySimple,
	RespContactsStart: CategoryContact,
	RespContact:       CategoryContact,
	RespContactsEnd:   CategoryContact,
	RespSelfInfo:      CategoryDevice,
	RespMessageSent:   CategoryMessage,
	RespContactMessage: CategoryMessage,
	RespChannelMessage: CategoryMessage,
	RespPrivateKey:    CategoryDevice,
	RespBattery:       CategoryDevice,
	RespSignStart:     CategorySigning,
	RespAdvertPath:    CategoryMisc,
	RespDeviceInfo:    CategoryDevice,
	RespChannelInfo:   CategoryMisc,
	RespCustomVar:     CategoryMisc,
	RespTime:          CategoryDevice,
	RespTuningParams:  CategoryMisc,
	RespAutoAddConfig: CategoryMisc,
	RespSignature:     CategorySigning,
	RespStats:         CategoryMisc,

	RespAdvertisement:         CategoryPush,
	RespPathUpdate:            CategoryPush,
	RespAck:                   CategoryPush,
	RespNewContact:            CategoryPush,
	RespRawData:               CategoryPush,
	RespLoginSuccess:          CategoryLogin,
	RespLoginFailed:           CategoryLogin,
	RespStatusResponse:        CategoryPush,
	RespRxLogData:             CategoryPush,
	RespTraceData:             CategoryPush,
	RespPathDiscoveryResponse: CategoryPush,
	RespTelemetryResponse:     CategoryPush,
	RespBinaryResponse:        CategoryPush,
	RespControlData:           CategoryPush,
}

// Category derives the ResponseCategory for a ResponseCode. It returns
// CategoryUnknown for any code not in the closed table, which parser
// code uses to emit a parseFailure rather than guess a handler.
func (c ResponseCode) Category() (ResponseCategory, bool) {
	cat, ok := categoryTable[c]
	return cat, ok
}

// String names a response code for diagnostics; unknown codes render as
// their hex value.
func (c ResponseCode) String() string {
	if name, ok := responseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

var responseNames = map[ResponseCode]string{
	RespOK:                    "ok",
	RespError:                 "error",
	RespContactsStart:         "contactsStart",
	RespContact:               "contact",
	RespContactsEnd:           "contactsEnd",
	RespSelfInfo:              "selfInfo",
	RespMessageSent:           "messageSent",
	RespContactMessage:        "contactMessage",
	RespChannelMessage:        "channelMessage",
	RespPrivateKey:            "privateKey",
	RespBattery:               "battery",
	RespSignStart:             "signStart",
	RespAdvertPath:            "advertPath",
	RespDeviceInfo:            "deviceInfo",
	RespChannelInfo:           "channelInfo",
	RespCustomVar:             "customVar",
	RespTime:                  "time",
	RespTuningParams:          "tuningParams",
	RespAutoAddConfig:         "autoAddConfig",
	RespSignature:             "signature",
	RespStats:                 "stats",
	RespAdvertisement:         "advertisement",
	RespPathUpdate:            "pathUpdate",
	RespAck:                   "ack",
	RespNewContact:            "newContact",
	RespRawData:               "rawData",
	RespLoginSuccess:          "loginSuccess",
	RespLoginFailed:           "loginFailed",
	RespStatusResponse:        "statusResponse",
	RespRxLogData:             "rxLogData",
	RespTraceData:             "traceData",
	RespPathDiscoveryResponse: "pathDiscoveryResponse",
	RespTelemetryResponse:     "telemetryResponse",
	RespBinaryResponse:        "binaryResponse",
	RespControlData:           "controlData",
}

// StatsType selects which stats shape a getStats command/response carries.
type StatsType byte

const (
	StatsTypeCore    StatsType = 0
	StatsTypeRadio   StatsType = 1
	StatsTypePackets StatsType = 2
)

// BinaryRequestType tags the payload shape carried by a binaryRequest /
// binaryResponse pair.
type BinaryRequestType byte

const (
	BinaryRequestStatus     BinaryRequestType = 0x01
	BinaryRequestTelemetry  BinaryRequestType = 0x02
	BinaryRequestACL        BinaryRequestType = 0x03
	BinaryRequestMMA        BinaryRequestType = 0x04
	BinaryRequestNeighbours BinaryRequestType = 0x05
)
