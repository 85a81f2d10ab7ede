package codec

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Parse turns a raw frame payload into an Event. It never panics: any
// input too short for its category's declared minimum yields an Event
// with ParseFailure populated and Raw holding the input frame; Code,
// Category and all other fields are left at their zero values. Unknown
// response codes are reported the same way.
//
// RespStats is the one code Parse cannot fully resolve on its own: the
// wire carries no discriminant between the core/radio/packets shapes,
// only the session (which remembers what it asked for) does. Parse
// returns the raw bytes for that code; callers in session re-dispatch
// through ParseStats once they know the requested StatsType.
func Parse(data []byte) Event {
	if len(data) == 0 {
		return failure(nil, "empty frame")
	}
	code := ResponseCode(data[0])
	cat, ok := code.Category()
	if !ok {
		return failure(data, fmt.Sprintf("unknown response code 0x%02X", data[0]))
	}
	payload := data[1:]
	ev := Event{Code: code, Category: cat}

	switch code {
	case RespOK:
		// no payload

	case RespError:
		if len(payload) >= 1 {
			e := payload[0]
			ev.ErrorCode = &e
		}

	case RespContactsStart, RespContactsEnd:
		// no structured payload beyond the code itself

	case RespContact:
		c, err := parseContact(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.Contact = &c

	case RespNewContact:
		c, err := parseContact(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.NewContact = &c

	case RespSelfInfo:
		si, err := parseSelfInfo(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.SelfInfo = &si

	case RespMessageSent:
		if len(payload) < 9 {
			return failure(data, "messageSent: short payload")
		}
		var ms MessageSent
		copy(ms.ExpectedAck[:], payload[1:5])
		ms.SuggestedTimeoutMs = binary.LittleEndian.Uint32(payload[5:9])
		ev.MessageSent = &ms

	case RespContactMessage:
		cm, err := parseContactMessage(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.ContactMessage = &cm

	case RespChannelMessage:
		cm, err := parseChannelMessage(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.ChannelMessage = &cm

	case RespPrivateKey:
		if len(payload) < 64 {
			return failure(data, "privateKey: short payload")
		}
		ev.PrivateKey = append([]byte(nil), payload...)

	case RespBattery:
		b, err := parseBattery(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.Battery = &b

	case RespSignStart:
		if len(payload) < 5 {
			return failure(data, "signStart: short payload")
		}
		ev.SignStart = &SignStart{Challenge: append([]byte(nil), payload...)}

	case RespAdvertPath:
		if len(payload) < PublicKeyPrefix {
			return failure(data, "advertPath: short payload")
		}
		ap := AdvertPath{Path: append([]byte(nil), payload[PublicKeyPrefix:]...)}
		copy(ap.PublicKeyPrefix[:], payload[:PublicKeyPrefix])
		ev.AdvertPath = &ap

	case RespDeviceInfo:
		if len(payload) < 79 {
			return failure(data, "deviceInfo: short payload")
		}
		ev.DeviceInfo = &DeviceInfo{
			FirmwareVersion:  payload[0],
			MaxContacts:      binary.LittleEndian.Uint16(payload[1:3]),
			MaxGroupChannels: binary.LittleEndian.Uint16(payload[3:5]),
			Raw:              append([]byte(nil), payload[5:]...),
		}

	case RespChannelInfo:
		ci, err := parseChannelInfo(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.ChannelInfo = &ci

	case RespCustomVar:
		parts := strings.SplitN(string(payload), ":", 2)
		cv := CustomVar{Key: parts[0]}
		if len(parts) == 2 {
			cv.Value = parts[1]
		}
		ev.CustomVar = &cv

	case RespTime:
		if len(payload) < 4 {
			return failure(data, "time: short payload")
		}
		t := time.Unix(int64(binary.LittleEndian.Uint32(payload[:4])), 0).UTC()
		ev.Time = &t

	case RespTuningParams:
		if len(payload) < 8 {
			return failure(data, "tuningParams: short payload")
		}
		ev.TuningParams = &TuningParams{
			RxDelayMs: binary.LittleEndian.Uint32(payload[0:4]),
			AFCHz:     binary.LittleEndian.Uint32(payload[4:8]),
		}

	case RespAutoAddConfig:
		if len(payload) < 1 {
			return failure(data, "autoAddConfig: short payload")
		}
		cfg := UnpackAutoAddConfig(payload[0])
		ev.AutoAddConfig = &cfg

	case RespSignature:
		if len(payload) == 0 {
			return failure(data, "signature: empty payload")
		}
		ev.Signature = append([]byte(nil), payload...)

	case RespStats:
		// Resolved by ParseStats once the caller supplies a StatsType.
		ev.Raw = append([]byte(nil), payload...)

	case RespAdvertisement:
		adv := Advertisement{Raw: append([]byte(nil), payload...)}
		if len(payload) >= PublicKeySize {
			copy(adv.PublicKey[:], payload[:PublicKeySize])
		}
		ev.Advertisement = &adv

	case RespPathUpdate:
		pu := PathUpdate{Raw: append([]byte(nil), payload...)}
		if len(payload) >= PublicKeyPrefix {
			copy(pu.PublicKeyPrefix[:], payload[:PublicKeyPrefix])
		}
		ev.PathUpdate = &pu

	case RespAck:
		if len(payload) < 4 {
			return failure(data, "ack: short payload")
		}
		var a AckEvent
		copy(a.Code[:], payload[:4])
		ev.Ack = &a

	case RespRawData, RespRxLogData:
		if len(payload) < 3 {
			return failure(data, "rawData: short payload")
		}
		ev.Raw = append([]byte(nil), payload...)

	case RespLoginSuccess:
		ls, err := parseLoginSuccess(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.LoginSuccess = &ls

	case RespLoginFailed:
		if len(payload) < PublicKeyPrefix {
			return failure(data, "loginFailed: short payload")
		}
		var lf LoginFailed
		copy(lf.PublicKeyPrefix[:], payload[:PublicKeyPrefix])
		ev.LoginFailed = &lf

	case RespStatusResponse:
		sr, err := parseStatusResponsePush(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.StatusResponse = &sr

	case RespTraceData:
		td, err := parseTraceData(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.TraceData = &td

	case RespPathDiscoveryResponse:
		pd, err := parsePathDiscoveryResponse(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.PathDiscoveryResponse = &pd

	case RespTelemetryResponse:
		values, err := DecodeLPP(payload)
		if err != nil && len(values) == 0 {
			return failure(data, err.Error())
		}
		ev.TelemetryResponse = &TelemetryResponse{Values: values}

	case RespBinaryResponse:
		br, err := parseBinaryResponse(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.BinaryResponse = &br

	case RespControlData:
		cd, err := parseControlData(payload)
		if err != nil {
			return failure(data, err.Error())
		}
		ev.ControlData = &cd
	}

	return ev
}

// ParseStats resolves an Event previously returned by Parse with
// Code == RespStats, now that the caller knows which StatsType was
// requested. raw is that event's Raw field.
func ParseStats(raw []byte, statsType StatsType) (Event, error) {
	ev := Event{Code: RespStats, Category: CategoryMisc}
	switch statsType {
	case StatsTypeCore:
		if len(raw) < 9 {
			return ev, fmt.Errorf("statsCore: short payload")
		}
		ev.StatsCore = &StatsCore{
			BatteryMillivolts: binary.LittleEndian.Uint16(raw[0:2]),
			UptimeSeconds:     binary.LittleEndian.Uint32(raw[2:6]),
			Errors:            binary.LittleEndian.Uint16(raw[6:8]),
			QueueLen:          raw[8],
		}
	case StatsTypeRadio:
		if len(raw) < 12 {
			return ev, fmt.Errorf("statsRadio: short payload")
		}
		ev.StatsRadio = &StatsRadio{
			NoiseFloor:   int16(binary.LittleEndian.Uint16(raw[0:2])),
			LastRSSI:     int8(raw[2]),
			LastSNR:      float64(int8(raw[3])) / SNRScale,
			TxAirSeconds: binary.LittleEndian.Uint32(raw[4:8]),
			RxAirSeconds: binary.LittleEndian.Uint32(raw[8:12]),
		}
	case StatsTypePackets:
		if len(raw) < 24 {
			return ev, fmt.Errorf("statsPackets: short payload")
		}
		ev.StatsPackets = &StatsPackets{
			Recv:     binary.LittleEndian.Uint32(raw[0:4]),
			Sent:     binary.LittleEndian.Uint32(raw[4:8]),
			FloodTx:  binary.LittleEndian.Uint32(raw[8:12]),
			DirectTx: binary.LittleEndian.Uint32(raw[12:16]),
			FloodRx:  binary.LittleEndian.Uint32(raw[16:20]),
			DirectRx: binary.LittleEndian.Uint32(raw[20:24]),
		}
	default:
		return ev, fmt.Errorf("statsResponse: unknown stats type %d", statsType)
	}
	return ev, nil
}

func failure(raw []byte, reason string) Event {
	return Event{
		Category:     CategoryUnknown,
		Raw:          raw,
		ParseFailure: &ParseFailure{Reason: reason},
	}
}

func parseContact(p []byte) (Contact, error) {
	var c Contact
	if len(p) < ContactRecordSize {
		return c, fmt.Errorf("contact: need %d bytes, got %d", ContactRecordSize, len(p))
	}
	copy(c.PublicKey[:], p[0:32])
	c.Type = p[32]
	c.Flags = p[33]
	c.OutPathLen = int8(p[34])
	copy(c.Path[:], p[35:35+ContactPathSize])
	off := 35 + ContactPathSize
	c.Name = decodeFixedString(p[off : off+ContactNameSize])
	off += ContactNameSize
	c.LastAdvert = time.Unix(int64(binary.LittleEndian.Uint32(p[off:off+4])), 0).UTC()
	c.Lat = float64(int32(binary.LittleEndian.Uint32(p[off+4:off+8]))) / CoordScale
	c.Lon = float64(int32(binary.LittleEndian.Uint32(p[off+8:off+12]))) / CoordScale
	c.LastModified = time.Unix(int64(binary.LittleEndian.Uint32(p[off+12:off+16])), 0).UTC()
	return c, nil
}

func parseSelfInfo(p []byte) (SelfInfo, error) {
	var si SelfInfo
	if len(p) < MinSelfInfoLen {
		return si, fmt.Errorf("selfInfo: need at least %d bytes, got %d", MinSelfInfoLen, len(p))
	}
	si.AdvertType = p[0]
	si.TxPower = p[1]
	si.MaxTxPower = p[2]
	// p[3] reserved
	copy(si.PublicKey[:], p[4:36])
	si.Lat = float64(int32(binary.LittleEndian.Uint32(p[36:40]))) / CoordScale
	si.Lon = float64(int32(binary.LittleEndian.Uint32(p[40:44]))) / CoordScale
	si.MultiAcks = p[44] != 0
	si.AdvertLocationPolicy = p[45]
	si.TelemetryMode = UnpackTelemetryMode(p[46])
	si.ManualAddContacts = p[47] != 0
	if len(p) >= SelfInfoHeaderSize {
		si.RadioFreqKHz = binary.LittleEndian.Uint32(p[48:52])
		si.RadioBandwidthHz = binary.LittleEndian.Uint32(p[52:56])
		si.SpreadingFactor = p[56]
		si.CodingRate = p[57]
		si.Name = decodeLossyUTF8(p[SelfInfoHeaderSize:])
	}
	return si, nil
}

func parseContactMessage(p []byte) (ContactMessage, error) {
	var cm ContactMessage
	const v1Min, v3Min = 12, 15
	if len(p) >= v3Min {
		snr := float64(int8(p[0])) / SNRScale
		cm.SNR = &snr
		body := p[3:]
		return parseContactMessageBody(cm, body)
	}
	if len(p) >= v1Min {
		return parseContactMessageBody(cm, p)
	}
	return cm, fmt.Errorf("contactMessage: short payload (%d bytes)", len(p))
}

func parseContactMessageBody(cm ContactMessage, body []byte) (ContactMessage, error) {
	if len(body) < 12 {
		return cm, fmt.Errorf("contactMessage: short body (%d bytes)", len(body))
	}
	copy(cm.SenderPrefix[:], body[0:6])
	cm.Type = TextType(body[6])
	// body[7] reserved
	cm.Timestamp = time.Unix(int64(binary.LittleEndian.Uint32(body[8:12])), 0).UTC()
	text := body[12:]
	if cm.Type == TextSigned {
		if len(text) < 4 {
			return cm, fmt.Errorf("contactMessage: signed text missing signature")
		}
		text = text[4:]
	}
	cm.Text = decodeLossyUTF8(text)
	return cm, nil
}

func parseChannelMessage(p []byte) (ChannelMessage, error) {
	var cm ChannelMessage
	const v1Min, v3Min = 8, 11
	if len(p) >= v3Min {
		snr := float64(int8(p[0])) / SNRScale
		cm.SNR = &snr
		return parseChannelMessageBody(cm, p[3:])
	}
	if len(p) >= v1Min {
		return parseChannelMessageBody(cm, p)
	}
	return cm, fmt.Errorf("channelMessage: short payload (%d bytes)", len(p))
}

func parseChannelMessageBody(cm ChannelMessage, body []byte) (ChannelMessage, error) {
	if len(body) < 7 {
		return cm, fmt.Errorf("channelMessage: short body (%d bytes)", len(body))
	}
	cm.Channel = body[0]
	cm.Type = TextType(body[1])
	// body[2] reserved
	cm.Timestamp = time.Unix(int64(binary.LittleEndian.Uint32(body[3:7])), 0).UTC()
	text := body[7:]
	if cm.Type == TextSigned {
		if len(text) < 4 {
			return cm, fmt.Errorf("channelMessage: signed text missing signature")
		}
		text = text[4:]
	}
	cm.Text = decodeLossyUTF8(text)
	return cm, nil
}

func parseBattery(p []byte) (BatteryInfo, error) {
	var b BatteryInfo
	if len(p) < 2 {
		return b, fmt.Errorf("battery: short payload")
	}
	b.MillivoltsOrLevel = binary.LittleEndian.Uint16(p[0:2])
	if len(p) >= 10 {
		b.Storage = &BatteryStorage{
			UsedKB:  binary.LittleEndian.Uint32(p[2:6]),
			TotalKB: binary.LittleEndian.Uint32(p[6:10]),
		}
	}
	return b, nil
}

func parseChannelInfo(p []byte) (ChannelInfo, error) {
	var ci ChannelInfo
	if len(p) < ChannelInfoSize {
		return ci, fmt.Errorf("channelInfo: need %d bytes, got %d", ChannelInfoSize, len(p))
	}
	ci.Index = p[0]
	nameWindow := p[1 : 1+ChannelNameSize]
	if nul := indexByte(nameWindow, 0); nul >= 0 {
		ci.Name = decodeLossyUTF8(nameWindow[:nul])
	} else {
		ci.Name = decodeLossyUTF8(nameWindow)
	}
	copy(ci.Secret[:], p[1+ChannelNameSize:1+ChannelNameSize+ChannelSecretSize])
	return ci, nil
}

func parseStatusStats(p []byte) (StatusStats, error) {
	var s StatusStats
	if len(p) != StatusStatsEmbeddedBase && len(p) != StatusStatsEmbeddedWithRx && len(p) != StatusStatsPushBlockSize {
		return s, fmt.Errorf("statusResponse: unexpected stats block length %d", len(p))
	}
	s.Battery = binary.LittleEndian.Uint16(p[0:2])
	s.RSSI = int8(p[2])
	s.SNR = float64(int8(p[3])) / SNRScale
	s.Uptime = binary.LittleEndian.Uint32(p[4:8])
	s.RecvCount = binary.LittleEndian.Uint32(p[8:12])
	s.SentCount = binary.LittleEndian.Uint32(p[12:16])
	s.FloodTxCount = binary.LittleEndian.Uint32(p[16:20])
	s.DirectTxCount = binary.LittleEndian.Uint32(p[20:24])
	s.FloodRxCount = binary.LittleEndian.Uint32(p[24:28])
	s.DirectRxCount = binary.LittleEndian.Uint32(p[28:32])
	if len(p) == StatusStatsEmbeddedWithRx {
		rx := binary.LittleEndian.Uint32(p[StatusStatsEmbeddedBase:])
		s.RxAirtime = &rx
	}
	return s, nil
}

func parseStatusResponsePush(p []byte) (StatusResponse, error) {
	var sr StatusResponse
	if len(p) < StatusResponsePushSize {
		return sr, fmt.Errorf("statusResponse: need %d bytes, got %d", StatusResponsePushSize, len(p))
	}
	// p[0] reserved
	copy(sr.PublicKeyPrefix[:], p[1:7])
	stats, err := parseStatusStats(p[7 : 7+StatusStatsPushBlockSize])
	if err != nil {
		return sr, err
	}
	sr.Stats = stats
	return sr, nil
}

func parsePathDiscoveryResponse(p []byte) (PathDiscoveryResponse, error) {
	var pd PathDiscoveryResponse
	if len(p) < 9 {
		return pd, fmt.Errorf("pathDiscoveryResponse: need 9 bytes, got %d", len(p))
	}
	// p[0] reserved
	copy(pd.PublicKeyPrefix[:], p[1:7])
	outLen := int(p[7])
	rest := p[8:]
	if len(rest) < outLen+1 {
		return pd, fmt.Errorf("pathDiscoveryResponse: truncated outbound path")
	}
	pd.OutPath = append([]byte(nil), rest[:outLen]...)
	rest = rest[outLen:]
	inLen := int(rest[0])
	rest = rest[1:]
	if len(rest) < inLen {
		return pd, fmt.Errorf("pathDiscoveryResponse: truncated inbound path")
	}
	pd.InPath = append([]byte(nil), rest[:inLen]...)
	return pd, nil
}

func parseTraceData(p []byte) (TraceData, error) {
	var td TraceData
	if len(p) < 11 {
		return td, fmt.Errorf("traceData: need 11 bytes, got %d", len(p))
	}
	// p[0] reserved
	totalHashLen := int(p[1])
	flags := p[2]
	td.Tag = binary.LittleEndian.Uint32(p[3:7])
	td.AuthCode = binary.LittleEndian.Uint32(p[7:11])
	switch flags & 0x03 {
	case 0:
		td.HashSize = 1
	case 1:
		td.HashSize = 2
	case 2:
		td.HashSize = 4
	case 3:
		td.HashSize = 8
	}
	rest := p[11:]
	if len(rest) < totalHashLen {
		return td, fmt.Errorf("traceData: truncated hash section")
	}
	hashSection := rest[:totalHashLen]
	rest = rest[totalHashLen:]

	if td.HashSize == 0 || totalHashLen%td.HashSize != 0 {
		return td, fmt.Errorf("traceData: hash length %d not a multiple of hash size %d", totalHashLen, td.HashSize)
	}
	hopCount := totalHashLen / td.HashSize
	if len(rest) < hopCount+1 {
		return td, fmt.Errorf("traceData: truncated SNR section")
	}
	allFF := func(b []byte) bool {
		for _, v := range b {
			if v != 0xFF {
				return false
			}
		}
		return true
	}
	for i := 0; i < hopCount; i++ {
		hash := hashSection[i*td.HashSize : (i+1)*td.HashSize]
		node := TraceNode{SNR: float64(int8(rest[i])) / SNRScale}
		if !allFF(hash) {
			node.HashBytes = append([]byte(nil), hash...)
		}
		td.Nodes = append(td.Nodes, node)
	}
	td.FinalSNR = float64(int8(rest[hopCount])) / SNRScale
	return td, nil
}

func parseLoginSuccess(p []byte) (LoginSuccess, error) {
	var ls LoginSuccess
	if len(p) >= LoginSuccessExtendedSize {
		copy(ls.PublicKeyPrefix[:], p[0:6])
		ls.Extended = true
		ls.Timestamp = time.Unix(int64(binary.LittleEndian.Uint32(p[6:10])), 0).UTC()
		aclPerm := p[10]
		ls.FirmwareLevel = p[11]
		if aclPerm&0x01 != 0 {
			ls.Permission = PermissionAdmin
		} else {
			ls.Permission = PermissionReadWrite
		}
		return ls, nil
	}
	if len(p) >= LoginSuccessLegacySize {
		legacyPerm := p[0]
		copy(ls.PublicKeyPrefix[:], p[1:7])
		switch legacyPerm {
		case 0:
			ls.Permission = PermissionGuest
		case 1:
			ls.Permission = PermissionReadWrite
		default:
			ls.Permission = PermissionAdmin
		}
		return ls, nil
	}
	return ls, fmt.Errorf("loginSuccess: need at least %d bytes, got %d", LoginSuccessLegacySize, len(p))
}

func parseBinaryResponse(p []byte) (BinaryResponse, error) {
	var br BinaryResponse
	if len(p) < 5 {
		return br, fmt.Errorf("binaryResponse: need at least 5 bytes, got %d", len(p))
	}
	br.RequestType = BinaryRequestType(p[0])
	copy(br.Tag[:], p[1:5])
	payload := p[5:]
	br.Raw = append([]byte(nil), payload...)

	switch br.RequestType {
	case BinaryRequestStatus:
		if len(payload) == StatusStatsEmbeddedBase || len(payload) == StatusStatsEmbeddedWithRx {
			stats, err := parseStatusStats(payload)
			if err == nil {
				br.Status = &StatusResponse{Stats: stats}
			}
		}
	case BinaryRequestTelemetry:
		if values, err := DecodeLPP(payload); err == nil {
			br.Telemetry = values
		}
	case BinaryRequestACL:
		br.ACL = parseACLEntries(payload)
	case BinaryRequestMMA:
		// MMA entry widths depend on the LPP type named in each record;
		// without a channel map supplied out of band we decode using the
		// sensor type's own declared width per record.
		br.MMA = parseMMAEntries(payload)
	case BinaryRequestNeighbours:
		br.Neighbours = parseNeighbours(payload, 4)
	}
	return br, nil
}

func parseACLEntries(p []byte) []ACLEntry {
	var out []ACLEntry
	for i := 0; i+7 <= len(p); i += 7 {
		rec := p[i : i+7]
		allZero := true
		for _, b := range rec[:6] {
			if b != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			continue
		}
		var e ACLEntry
		copy(e.KeyPrefix[:], rec[:6])
		e.Permissions = rec[6]
		out = append(out, e)
	}
	return out
}

func parseMMAEntries(p []byte) []MMAEntry {
	var out []MMAEntry
	i := 0
	for i+2 <= len(p) {
		channel := p[i]
		typ := LPPType(p[i+1])
		size, ok := typ.DataSize()
		if !ok {
			break
		}
		need := 2 + size*3
		if i+need > len(p) {
			break
		}
		vmin, _ := decodeLPPValue(channel, typ, p[i+2:i+2+size])
		vmax, _ := decodeLPPValue(channel, typ, p[i+2+size:i+2+2*size])
		vavg, _ := decodeLPPValue(channel, typ, p[i+2+2*size:i+2+3*size])
		out = append(out, MMAEntry{
			Channel:    channel,
			SensorType: typ,
			Min:        lppScalar(vmin),
			Max:        lppScalar(vmax),
			Avg:        lppScalar(vavg),
		})
		i += need
	}
	return out
}

func lppScalar(v LPPValue) float64 {
	switch v.Kind {
	case LPPKindFloat:
		return v.Float
	case LPPKindInteger, LPPKindTimestamp:
		return float64(v.Integer)
	case LPPKindDigital:
		if v.Digital {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func parseNeighbours(p []byte, prefixWidth int) []Neighbour {
	if len(p) < 4 {
		return nil
	}
	total := binary.LittleEndian.Uint16(p[0:2])
	returned := binary.LittleEndian.Uint16(p[2:4])
	_ = total
	rest := p[4:]
	recSize := prefixWidth + 4 + 1
	var out []Neighbour
	for i := 0; i < int(returned) && (i+1)*recSize <= len(rest); i++ {
		rec := rest[i*recSize : (i+1)*recSize]
		n := Neighbour{
			KeyPrefix:  append([]byte(nil), rec[:prefixWidth]...),
			SecondsAgo: int32(binary.LittleEndian.Uint32(rec[prefixWidth : prefixWidth+4])),
			SNR:        float64(int8(rec[prefixWidth+4])) / SNRScale,
		}
		out = append(out, n)
	}
	return out
}

func parseControlData(p []byte) (ControlData, error) {
	var cd ControlData
	if len(p) < ControlDataPrefixSize {
		return cd, fmt.Errorf("controlData: need %d bytes, got %d", ControlDataPrefixSize, len(p))
	}
	cd.SNR = float64(int8(p[0])) / SNRScale
	cd.RSSI = int8(p[1])
	cd.PathLen = p[2]
	cd.PayloadType = p[3]
	cd.NodeType = p[3] & 0x0F
	if p[3]>>4 == 0x9 {
		inner := p[4:]
		if len(inner) >= 5 {
			dr := &DiscoverResponse{
				InboundSNR: float64(int8(inner[0])) / SNRScale,
				Tag:        binary.LittleEndian.Uint32(inner[1:5]),
			}
			rest := inner[5:]
			switch {
			case len(rest) >= PublicKeySize:
				dr.PublicKey = append([]byte(nil), rest[:PublicKeySize]...)
			case len(rest) >= 8:
				dr.PublicKey = append([]byte(nil), rest[:8]...)
			default:
				dr.PublicKey = append([]byte(nil), rest...)
			}
			cd.Discover = dr
		}
	}
	return cd, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// decodeFixedString trims trailing NUL/space padding from a fixed-width
// field.
func decodeFixedString(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return decodeLossyUTF8(b[:end])
}

// decodeLossyUTF8 decodes b as UTF-8, substituting the replacement
// character for invalid sequences rather than failing the frame.
func decodeLossyUTF8(b []byte) string {
	return string([]rune(string(b)))
}
