package codec

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestParseEmptyFrame(t *testing.T) {
	ev := Parse(nil)
	if ev.ParseFailure == nil {
		t.Fatal("expected ParseFailure for empty input")
	}
}

func TestParseUnknownCode(t *testing.T) {
	ev := Parse([]byte{0x99})
	if ev.ParseFailure == nil {
		t.Fatal("expected ParseFailure for unknown response code")
	}
}

func TestParseOK(t *testing.T) {
	ev := Parse([]byte{byte(RespOK)})
	if ev.Code != RespOK || ev.Category != CategorySimple {
		t.Fatalf("got Code=%v Category=%v", ev.Code, ev.Category)
	}
}

func TestParseError(t *testing.T) {
	ev := Parse([]byte{byte(RespError), 0x07})
	if ev.ErrorCode == nil || *ev.ErrorCode != 0x07 {
		t.Fatalf("ErrorCode = %v, want 0x07", ev.ErrorCode)
	}
}

func buildContactBytes() []byte {
	buf := make([]byte, 1+ContactRecordSize)
	buf[0] = byte(RespContact)
	p := buf[1:]
	p[0] = 0x11 // pubkey[0]
	p[32] = 1   // type
	p[33] = 0   // flags
	p[34] = 0xFF // OutPathLen == -1 (flood route)
	copy(p[99:99+5], []byte("node1"))
	off := 99 + ContactNameSize
	lon := int32(-100000)
	binary.LittleEndian.PutUint32(p[off:off+4], 1700000000)
	binary.LittleEndian.PutUint32(p[off+4:off+8], uint32(int32(51500000)))
	binary.LittleEndian.PutUint32(p[off+8:off+12], uint32(lon))
	binary.LittleEndian.PutUint32(p[off+12:off+16], 1700000100)
	return buf
}

func TestParseContact(t *testing.T) {
	ev := Parse(buildContactBytes())
	if ev.ParseFailure != nil {
		t.Fatalf("unexpected ParseFailure: %v", ev.ParseFailure.Reason)
	}
	c := ev.Contact
	if c == nil {
		t.Fatal("Contact is nil")
	}
	if c.Name != "node1" {
		t.Errorf("Name = %q, want %q", c.Name, "node1")
	}
	if c.OutPathLen != -1 {
		t.Errorf("OutPathLen = %d, want -1", c.OutPathLen)
	}
	if c.Lat != 51.5 {
		t.Errorf("Lat = %v, want 51.5", c.Lat)
	}
	if c.Lon != -0.1 {
		t.Errorf("Lon = %v, want -0.1", c.Lon)
	}
	if !c.LastAdvert.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("LastAdvert = %v", c.LastAdvert)
	}
}

func TestParseContactShort(t *testing.T) {
	ev := Parse([]byte{byte(RespContact), 0x01, 0x02})
	if ev.ParseFailure == nil {
		t.Fatal("expected ParseFailure for short contact payload")
	}
}

func buildSelfInfoBytes(withName bool) []byte {
	size := SelfInfoHeaderSize
	name := "basecamp"
	if withName {
		size += len(name)
	}
	buf := make([]byte, 1+size)
	buf[0] = byte(RespSelfInfo)
	p := buf[1:]
	p[0] = 1 // advertType
	p[1] = 20
	p[2] = 22
	p[4] = 0x01 // pubkey[0]
	lon := int32(-100000)
	binary.LittleEndian.PutUint32(p[36:40], uint32(int32(51500000)))
	binary.LittleEndian.PutUint32(p[40:44], uint32(lon))
	p[44] = 1
	p[45] = 2
	p[46] = UnpackAutoAddConfig(0).PackByte() // unused helper check, leaves 0
	p[46] = byte((1 << 4) | (2 << 2) | 3)
	p[47] = 1
	if withName {
		binary.LittleEndian.PutUint32(p[48:52], 868000)
		binary.LittleEndian.PutUint32(p[52:56], 250000)
		p[56] = 7
		p[57] = 5
		copy(p[58:], name)
	}
	return buf
}

func TestParseSelfInfoMinimal(t *testing.T) {
	ev := Parse(buildSelfInfoBytes(false))
	if ev.ParseFailure != nil {
		t.Fatalf("unexpected ParseFailure: %v", ev.ParseFailure.Reason)
	}
	si := ev.SelfInfo
	if si.TelemetryMode.Environment != 1 || si.TelemetryMode.Location != 2 || si.TelemetryMode.Base != 3 {
		t.Errorf("TelemetryMode = %+v", si.TelemetryMode)
	}
	if !si.ManualAddContacts {
		t.Error("ManualAddContacts should be true")
	}
}

func TestParseSelfInfoWithName(t *testing.T) {
	ev := Parse(buildSelfInfoBytes(true))
	if ev.ParseFailure != nil {
		t.Fatalf("unexpected ParseFailure: %v", ev.ParseFailure.Reason)
	}
	if ev.SelfInfo.Name != "basecamp" {
		t.Errorf("Name = %q, want %q", ev.SelfInfo.Name, "basecamp")
	}
	if ev.SelfInfo.SpreadingFactor != 7 {
		t.Errorf("SpreadingFactor = %d, want 7", ev.SelfInfo.SpreadingFactor)
	}
}

func TestParseMessageSent(t *testing.T) {
	buf := make([]byte, 1+9)
	buf[0] = byte(RespMessageSent)
	copy(buf[2:6], []byte{0xDE, 0xAD, 0xBE, 0xEF})
	binary.LittleEndian.PutUint32(buf[6:10], 5000)
	ev := Parse(buf)
	if ev.MessageSent == nil {
		t.Fatal("MessageSent is nil")
	}
	if ev.MessageSent.ExpectedAck != (AckTag{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("ExpectedAck = % X", ev.MessageSent.ExpectedAck)
	}
	if ev.MessageSent.SuggestedTimeoutMs != 5000 {
		t.Errorf("SuggestedTimeoutMs = %d, want 5000", ev.MessageSent.SuggestedTimeoutMs)
	}
}

func buildContactMessageV1(text string) []byte {
	buf := make([]byte, 1+12+len(text))
	buf[0] = byte(RespContactMessage)
	p := buf[1:]
	copy(p[0:6], []byte{1, 2, 3, 4, 5, 6})
	p[6] = byte(TextPlain)
	binary.LittleEndian.PutUint32(p[8:12], 1700000000)
	copy(p[12:], text)
	return buf
}

func TestParseContactMessageV1(t *testing.T) {
	ev := Parse(buildContactMessageV1("hello"))
	if ev.ContactMessage == nil {
		t.Fatal("ContactMessage is nil")
	}
	if ev.ContactMessage.Text != "hello" {
		t.Errorf("Text = %q", ev.ContactMessage.Text)
	}
	if ev.ContactMessage.SNR != nil {
		t.Error("SNR should be nil on v1 shape")
	}
}

func buildContactMessageV3(text string, snr int8) []byte {
	v1 := buildContactMessageV1(text)[1:]
	buf := make([]byte, 1+3+len(v1))
	buf[0] = byte(RespContactMessage)
	p := buf[1:]
	p[0] = byte(snr)
	copy(p[3:], v1)
	return buf
}

func TestParseContactMessageV3(t *testing.T) {
	ev := Parse(buildContactMessageV3("hi v3", 12))
	if ev.ContactMessage == nil {
		t.Fatal("ContactMessage is nil")
	}
	if ev.ContactMessage.SNR == nil || *ev.ContactMessage.SNR != 3.0 {
		t.Errorf("SNR = %v, want 3.0", ev.ContactMessage.SNR)
	}
	if ev.ContactMessage.Text != "hi v3" {
		t.Errorf("Text = %q", ev.ContactMessage.Text)
	}
}

func TestParseChannelMessageV1(t *testing.T) {
	buf := make([]byte, 1+7+3)
	buf[0] = byte(RespChannelMessage)
	p := buf[1:]
	p[0] = 4 // channel
	p[1] = byte(TextPlain)
	binary.LittleEndian.PutUint32(p[3:7], 1700000000)
	copy(p[7:], "hey")
	ev := Parse(buf)
	if ev.ChannelMessage == nil {
		t.Fatal("ChannelMessage is nil")
	}
	if ev.ChannelMessage.Channel != 4 {
		t.Errorf("Channel = %d, want 4", ev.ChannelMessage.Channel)
	}
	if ev.ChannelMessage.Text != "hey" {
		t.Errorf("Text = %q", ev.ChannelMessage.Text)
	}
}

func TestParseBattery(t *testing.T) {
	buf := []byte{byte(RespBattery), 0xDC, 0x0B} // 3036 mV
	ev := Parse(buf)
	if ev.Battery == nil {
		t.Fatal("Battery is nil")
	}
	if ev.Battery.MillivoltsOrLevel != 3036 {
		t.Errorf("MillivoltsOrLevel = %d, want 3036", ev.Battery.MillivoltsOrLevel)
	}
	if ev.Battery.Storage != nil {
		t.Error("Storage should be nil on short form")
	}
}

func TestParseBatteryExtended(t *testing.T) {
	buf := make([]byte, 1+10)
	buf[0] = byte(RespBattery)
	binary.LittleEndian.PutUint16(buf[1:3], 4100)
	binary.LittleEndian.PutUint32(buf[3:7], 512)
	binary.LittleEndian.PutUint32(buf[7:11], 16384)
	ev := Parse(buf)
	if ev.Battery.Storage == nil {
		t.Fatal("Storage should be populated")
	}
	if ev.Battery.Storage.UsedKB != 512 || ev.Battery.Storage.TotalKB != 16384 {
		t.Errorf("Storage = %+v", ev.Battery.Storage)
	}
}

func TestParseChannelInfo(t *testing.T) {
	buf := make([]byte, 1+ChannelInfoSize)
	buf[0] = byte(RespChannelInfo)
	p := buf[1:]
	p[0] = 3
	copy(p[1:], "general")
	copy(p[1+ChannelNameSize:], []byte{1, 2, 3, 4})
	ev := Parse(buf)
	if ev.ChannelInfo == nil {
		t.Fatal("ChannelInfo is nil")
	}
	if ev.ChannelInfo.Name != "general" {
		t.Errorf("Name = %q", ev.ChannelInfo.Name)
	}
	if ev.ChannelInfo.Secret[0] != 1 {
		t.Errorf("Secret[0] = %d, want 1", ev.ChannelInfo.Secret[0])
	}
}

func TestParseLoginSuccessLegacy(t *testing.T) {
	buf := make([]byte, 1+LoginSuccessLegacySize)
	buf[0] = byte(RespLoginSuccess)
	buf[1] = 2 // admin
	copy(buf[2:8], []byte{1, 2, 3, 4, 5, 6})
	ev := Parse(buf)
	if ev.LoginSuccess == nil {
		t.Fatal("LoginSuccess is nil")
	}
	if ev.LoginSuccess.Extended {
		t.Error("should not be Extended")
	}
	if ev.LoginSuccess.Permission != PermissionAdmin {
		t.Errorf("Permission = %v, want PermissionAdmin", ev.LoginSuccess.Permission)
	}
}

func TestParseLoginSuccessExtended(t *testing.T) {
	buf := make([]byte, 1+LoginSuccessExtendedSize)
	buf[0] = byte(RespLoginSuccess)
	p := buf[1:]
	copy(p[0:6], []byte{1, 2, 3, 4, 5, 6})
	binary.LittleEndian.PutUint32(p[6:10], 1700000000)
	p[10] = 0x01 // ACL admin bit
	p[11] = 5
	ev := Parse(buf)
	if !ev.LoginSuccess.Extended {
		t.Fatal("should be Extended")
	}
	if ev.LoginSuccess.FirmwareLevel != 5 {
		t.Errorf("FirmwareLevel = %d, want 5", ev.LoginSuccess.FirmwareLevel)
	}
}

func TestParseAck(t *testing.T) {
	buf := []byte{byte(RespAck), 0xAA, 0xBB, 0xCC, 0xDD}
	ev := Parse(buf)
	if ev.Ack == nil {
		t.Fatal("Ack is nil")
	}
	if ev.Ack.Code != (AckTag{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Errorf("Code = % X", ev.Ack.Code)
	}
}

func buildStatusStatsBlock(size int) []byte {
	b := make([]byte, size)
	rssi := int8(-80)
	binary.LittleEndian.PutUint16(b[0:2], 4000)
	b[2] = byte(rssi)
	b[3] = 40 // SNR raw = 10.0 scaled by 4
	binary.LittleEndian.PutUint32(b[4:8], 3600)
	binary.LittleEndian.PutUint32(b[8:12], 10)
	binary.LittleEndian.PutUint32(b[12:16], 20)
	binary.LittleEndian.PutUint32(b[16:20], 30)
	binary.LittleEndian.PutUint32(b[20:24], 40)
	binary.LittleEndian.PutUint32(b[24:28], 50)
	binary.LittleEndian.PutUint32(b[28:32], 60)
	if size == StatusStatsEmbeddedWithRx {
		binary.LittleEndian.PutUint32(b[32:36], 99)
	}
	if size == StatusStatsPushBlockSize {
		// leave trailing bytes zero; push form carries extra reserved tail
	}
	return b
}

func TestParseStatusResponsePush(t *testing.T) {
	buf := make([]byte, 1+StatusResponsePushSize)
	buf[0] = byte(RespStatusResponse)
	p := buf[1:]
	copy(p[1:7], []byte{1, 2, 3, 4, 5, 6})
	copy(p[7:7+StatusStatsPushBlockSize], buildStatusStatsBlock(StatusStatsPushBlockSize))
	ev := Parse(buf)
	if ev.StatusResponse == nil {
		t.Fatalf("StatusResponse is nil: %+v", ev.ParseFailure)
	}
	if ev.StatusResponse.Stats.SNR != 10.0 {
		t.Errorf("SNR = %v, want 10.0", ev.StatusResponse.Stats.SNR)
	}
	if ev.StatusResponse.Stats.RSSI != -80 {
		t.Errorf("RSSI = %d, want -80", ev.StatusResponse.Stats.RSSI)
	}
}

func TestParseBinaryResponseStatus(t *testing.T) {
	statsBlock := buildStatusStatsBlock(StatusStatsEmbeddedBase)
	buf := make([]byte, 1+5+len(statsBlock))
	buf[0] = byte(RespBinaryResponse)
	p := buf[1:]
	p[0] = byte(BinaryRequestStatus)
	copy(p[1:5], []byte{0x01, 0x02, 0x03, 0x04})
	copy(p[5:], statsBlock)
	ev := Parse(buf)
	if ev.BinaryResponse == nil {
		t.Fatal("BinaryResponse is nil")
	}
	if ev.BinaryResponse.Status == nil {
		t.Fatal("BinaryResponse.Status is nil")
	}
	if ev.BinaryResponse.Status.Stats.Uptime != 3600 {
		t.Errorf("Uptime = %d, want 3600", ev.BinaryResponse.Status.Stats.Uptime)
	}
}

func TestParseBinaryResponseACL(t *testing.T) {
	buf := make([]byte, 1+5+7)
	buf[0] = byte(RespBinaryResponse)
	p := buf[1:]
	p[0] = byte(BinaryRequestACL)
	copy(p[5:11], []byte{1, 2, 3, 4, 5, 6})
	p[11] = 0x01
	ev := Parse(buf)
	if len(ev.BinaryResponse.ACL) != 1 {
		t.Fatalf("ACL entries = %d, want 1", len(ev.BinaryResponse.ACL))
	}
	if ev.BinaryResponse.ACL[0].Permissions != 0x01 {
		t.Errorf("Permissions = %d, want 1", ev.BinaryResponse.ACL[0].Permissions)
	}
}

func TestParsePathDiscoveryResponse(t *testing.T) {
	buf := make([]byte, 1+9+2+1)
	buf[0] = byte(RespPathDiscoveryResponse)
	p := buf[1:]
	copy(p[1:7], []byte{1, 2, 3, 4, 5, 6})
	p[7] = 2
	p[8] = 0xAA
	p[9] = 0xBB
	p[10] = 1
	p[11] = 0xCC
	ev := Parse(buf)
	if ev.PathDiscoveryResponse == nil {
		t.Fatalf("PathDiscoveryResponse is nil: %+v", ev.ParseFailure)
	}
	if len(ev.PathDiscoveryResponse.OutPath) != 2 || len(ev.PathDiscoveryResponse.InPath) != 1 {
		t.Errorf("OutPath=% X InPath=% X", ev.PathDiscoveryResponse.OutPath, ev.PathDiscoveryResponse.InPath)
	}
}

func TestParseTraceData(t *testing.T) {
	buf := make([]byte, 1+11+4+3) // 2 hops of 2-byte hash + 3 SNR bytes
	buf[0] = byte(RespTraceData)
	p := buf[1:]
	p[1] = 4    // totalHashLen: 2 hops * 2 bytes
	p[2] = 0x01 // flags: hashSize exponent 1 -> 2 bytes
	binary.LittleEndian.PutUint32(p[3:7], 0xCAFEBABE)
	binary.LittleEndian.PutUint32(p[7:11], 0xDEADBEEF)
	copy(p[11:13], []byte{0x01, 0x02})
	copy(p[13:15], []byte{0xFF, 0xFF}) // destination marker
	p[15] = 20                         // hop0 SNR raw
	p[16] = 24                         // hop1 SNR raw
	p[17] = 16                         // final SNR raw
	ev := Parse(buf)
	if ev.TraceData == nil {
		t.Fatalf("TraceData is nil: %+v", ev.ParseFailure)
	}
	if len(ev.TraceData.Nodes) != 2 {
		t.Fatalf("Nodes = %d, want 2", len(ev.TraceData.Nodes))
	}
	if ev.TraceData.Nodes[1].HashBytes != nil {
		t.Error("second hop should be nil HashBytes (destination marker)")
	}
	if ev.TraceData.FinalSNR != 4.0 {
		t.Errorf("FinalSNR = %v, want 4.0", ev.TraceData.FinalSNR)
	}
}

func TestParseControlDataDiscover(t *testing.T) {
	buf := make([]byte, 1+4+5+8)
	buf[0] = byte(RespControlData)
	p := buf[1:]
	snrRaw, rssi := int8(-4), int8(-90)
	p[0] = byte(snrRaw) // SNR raw -4 -> -1.0
	p[1] = byte(rssi)
	p[2] = 1
	p[3] = 0x90 // upper nibble 9 (discover), lower nibble 0
	inner := p[4:]
	inner[0] = 8 // inbound snr raw -> 2.0
	binary.LittleEndian.PutUint32(inner[1:5], 0x12345678)
	copy(inner[5:13], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	ev := Parse(buf)
	if ev.ControlData == nil {
		t.Fatalf("ControlData is nil: %+v", ev.ParseFailure)
	}
	if ev.ControlData.Discover == nil {
		t.Fatal("Discover should be populated for payloadType upper nibble 0x9")
	}
	if ev.ControlData.Discover.InboundSNR != 2.0 {
		t.Errorf("InboundSNR = %v, want 2.0", ev.ControlData.Discover.InboundSNR)
	}
}

func TestParseStatsDispatch(t *testing.T) {
	raw := make([]byte, 9)
	binary.LittleEndian.PutUint16(raw[0:2], 3700)
	binary.LittleEndian.PutUint32(raw[2:6], 120)
	binary.LittleEndian.PutUint16(raw[6:8], 2)
	raw[8] = 1
	ev, err := ParseStats(raw, StatsTypeCore)
	if err != nil {
		t.Fatalf("ParseStats: %v", err)
	}
	if ev.StatsCore.BatteryMillivolts != 3700 {
		t.Errorf("BatteryMillivolts = %d, want 3700", ev.StatsCore.BatteryMillivolts)
	}
}

// fuzzLengths feeds every truncation length of a well-formed frame into
// Parse and requires it never panics.
func fuzzLengths(t *testing.T, full []byte) {
	t.Helper()
	for n := 0; n <= len(full); n++ {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on %d-byte prefix: %v", n, r)
				}
			}()
			Parse(full[:n])
		}()
	}
}

func TestParseNeverPanicsOnTruncation(t *testing.T) {
	fuzzLengths(t, buildContactBytes())
	fuzzLengths(t, buildSelfInfoBytes(true))
	fuzzLengths(t, buildContactMessageV3("x", 1))
	samples := [][]byte{
		{byte(RespMessageSent)},
		{byte(RespBattery)},
		{byte(RespChannelInfo)},
		{byte(RespLoginSuccess)},
		{byte(RespStatusResponse)},
		{byte(RespTraceData)},
		{byte(RespPathDiscoveryResponse)},
		{byte(RespBinaryResponse)},
		{byte(RespControlData)},
		{byte(RespAck)},
	}
	for _, s := range samples {
		fuzzLengths(t, s)
	}
}

func TestParseNeverPanicsOnRandomBytes(t *testing.T) {
	seed := uint32(0x2545F491)
	next := func() byte {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		return byte(seed)
	}
	for trial := 0; trial < 500; trial++ {
		n := int(next()) % 40
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = next()
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on random input % X: %v", buf, r)
				}
			}()
			Parse(buf)
		}()
	}
}
