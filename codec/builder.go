package codec

import "encoding/binary"

// Builder is stateless and total: these are free functions, not methods
// on a namespace object, matching the rest of this package. Every
// function below returns a complete frame (opcode byte + payload) ready
// to hand to a transport. Oversized variable-length fields are
// truncated to their declared maximum; short fixed-width fields are
// zero-padded.

// BuildAppStart builds the appStart command. clientID is truncated to 5
// bytes.
func BuildAppStart(clientID string) []byte {
	buf := make([]byte, 0, 13)
	buf = append(buf, byte(CmdAppStart), 0x03)
	buf = append(buf, 0x20, 0x20, 0x20, 0x20, 0x20, 0x20)
	buf = append(buf, truncateString(clientID, 5)...)
	return buf
}

// BuildSendMessage builds a text sendMessage command. destPrefix is the
// first 6 bytes of the recipient's public key.
func BuildSendMessage(destPrefix [PublicKeyPrefix]byte, text string, ts uint32, attempt uint8) []byte {
	return buildSendFrame(0x00, attempt, destPrefix, ts, []byte(text))
}

// BuildSendCommand builds a structured sendCommand frame (shares opcode
// 0x02 with sendMessage; byte 2 is reserved rather than a retry count).
func BuildSendCommand(destPrefix [PublicKeyPrefix]byte, command string, ts uint32) []byte {
	return buildSendFrame(0x01, 0x00, destPrefix, ts, []byte(command))
}

func buildSendFrame(kind, attempt byte, destPrefix [PublicKeyPrefix]byte, ts uint32, payload []byte) []byte {
	buf := make([]byte, 0, 9+len(payload))
	buf = append(buf, byte(CmdSendMessage), kind, attempt)
	buf = appendU32LE(buf, ts)
	buf = append(buf, destPrefix[:]...)
	buf = append(buf, payload...)
	return buf
}

// BuildSendChannelMessage builds a sendChannelMessage command.
func BuildSendChannelMessage(channel uint8, text string, ts uint32) []byte {
	buf := make([]byte, 0, 7+len(text))
	buf = append(buf, byte(CmdSendChannelMessage), 0x00, channel)
	buf = appendU32LE(buf, ts)
	buf = append(buf, []byte(text)...)
	return buf
}

// BuildGetContacts builds a getContacts command. since is an optional
// cutoff timestamp; pass nil to request all contacts.
func BuildGetContacts(since *uint32) []byte {
	if since == nil {
		return []byte{byte(CmdGetContacts)}
	}
	buf := []byte{byte(CmdGetContacts)}
	return appendU32LE(buf, *since)
}

// BuildGetTime builds a getTime command.
func BuildGetTime() []byte { return []byte{byte(CmdGetTime)} }

// BuildSetTime builds a setTime command.
func BuildSetTime(ts uint32) []byte {
	return appendU32LE([]byte{byte(CmdSetTime)}, ts)
}

// BuildSendAdvertisement builds a sendAdvertisement command.
func BuildSendAdvertisement(flood bool) []byte {
	if !flood {
		return []byte{byte(CmdSendAdvertisement)}
	}
	return []byte{byte(CmdSendAdvertisement), 0x01}
}

// BuildSetName builds a setName command.
func BuildSetName(name string) []byte {
	return append([]byte{byte(CmdSetName)}, []byte(name)...)
}

// BuildUpdateContact builds the 148-byte (opcode + 147-byte payload)
// updateContact frame.
func BuildUpdateContact(c Contact) []byte {
	buf := make([]byte, 1+ContactRecordSize)
	buf[0] = byte(CmdUpdateContact)
	p := buf[1:]
	copy(p[0:32], c.PublicKey[:])
	p[32] = c.Type
	p[33] = c.Flags
	p[34] = byte(c.OutPathLen)
	copy(p[35:35+ContactPathSize], c.Path[:])
	putFixedString(p[99:99+ContactNameSize], c.Name)
	off := 99 + ContactNameSize
	binary.LittleEndian.PutUint32(p[off:off+4], uint32(c.LastAdvert.Unix()))
	binary.LittleEndian.PutUint32(p[off+4:off+8], uint32(round(c.Lat*CoordScale)))
	binary.LittleEndian.PutUint32(p[off+8:off+12], uint32(round(c.Lon*CoordScale)))
	binary.LittleEndian.PutUint32(p[off+12:off+16], uint32(c.LastModified.Unix()))
	return buf
}

// BuildGetMessage builds a getMessage command.
func BuildGetMessage() []byte { return []byte{byte(CmdGetMessage)} }

// BuildSetRadio builds a setRadio command.
func BuildSetRadio(freqKHz, bwHz uint32, sf, cr uint8) []byte {
	buf := []byte{byte(CmdSetRadio)}
	buf = appendU32LE(buf, freqKHz)
	buf = appendU32LE(buf, bwHz)
	buf = append(buf, sf, cr)
	return buf
}

// BuildSetTxPower builds a setTxPower command.
func BuildSetTxPower(dBm uint32) []byte {
	return appendU32LE([]byte{byte(CmdSetTxPower)}, dBm)
}

// BuildResetPath builds a resetPath command.
func BuildResetPath(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdResetPath)}, pubkey[:]...)
}

// BuildSetCoordinates builds a setCoordinates command; the trailing
// 4-byte altitude field is always zero.
func BuildSetCoordinates(lat, lon float64) []byte {
	buf := []byte{byte(CmdSetCoordinates)}
	buf = appendU32LE(buf, uint32(round(lat*CoordScale)))
	buf = appendU32LE(buf, uint32(round(lon*CoordScale)))
	buf = append(buf, 0, 0, 0, 0)
	return buf
}

// BuildRemoveContact builds a removeContact command.
func BuildRemoveContact(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdRemoveContact)}, pubkey[:]...)
}

// BuildShareContact builds a shareContact command.
func BuildShareContact(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdShareContact)}, pubkey[:]...)
}

// BuildExportContact builds an exportContact command; pubkey is optional
// (nil exports the self contact).
func BuildExportContact(pubkey *[PublicKeySize]byte) []byte {
	if pubkey == nil {
		return []byte{byte(CmdExportContact)}
	}
	return append([]byte{byte(CmdExportContact)}, pubkey[:]...)
}

// BuildReboot builds a reboot command, with its guard string.
func BuildReboot() []byte {
	return append([]byte{byte(CmdReboot)}, []byte("reboot")...)
}

// BuildGetBattery builds a getBattery command.
func BuildGetBattery() []byte { return []byte{byte(CmdGetBattery)} }

// BuildSetTuning builds a setTuning command; the trailing 2 reserved
// bytes are always zero.
func BuildSetTuning(rxDelay, af uint32) []byte {
	buf := []byte{byte(CmdSetTuning)}
	buf = appendU32LE(buf, rxDelay)
	buf = appendU32LE(buf, af)
	buf = append(buf, 0, 0)
	return buf
}

// BuildDeviceQuery builds a deviceQuery command.
func BuildDeviceQuery() []byte { return []byte{byte(CmdDeviceQuery), 0x03} }

// BuildExportPrivateKey builds an exportPrivateKey command.
func BuildExportPrivateKey() []byte { return []byte{byte(CmdExportPrivateKey)} }

// BuildImportPrivateKey builds an importPrivateKey command.
func BuildImportPrivateKey(key []byte) []byte {
	return append([]byte{byte(CmdImportPrivateKey)}, key...)
}

// BuildSendLogin builds a sendLogin command; password is optional.
func BuildSendLogin(pubkey [PublicKeySize]byte, password string) []byte {
	buf := append([]byte{byte(CmdSendLogin)}, pubkey[:]...)
	if password != "" {
		buf = append(buf, []byte(password)...)
	}
	return buf
}

// BuildSendLogout builds a sendLogout command.
func BuildSendLogout(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdSendLogout)}, pubkey[:]...)
}

// BuildSendStatusRequest builds a sendStatusRequest command.
func BuildSendStatusRequest(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdSendStatusRequest)}, pubkey[:]...)
}

// BuildHasConnection builds a hasConnection command.
func BuildHasConnection(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdHasConnection)}, pubkey[:]...)
}

// BuildGetContactByKey builds a getContactByKey command.
func BuildGetContactByKey(pubkey [PublicKeySize]byte) []byte {
	return append([]byte{byte(CmdGetContactByKey)}, pubkey[:]...)
}

// BuildGetChannel builds a getChannel command.
func BuildGetChannel(index uint8) []byte {
	return []byte{byte(CmdGetChannel), index}
}

// BuildSetChannel builds a setChannel command. name is zero-padded to 32
// bytes; secret is truncated/padded to 16 bytes.
func BuildSetChannel(index uint8, name string, secret []byte) []byte {
	buf := make([]byte, 2+ChannelNameSize+ChannelSecretSize)
	buf[0] = byte(CmdSetChannel)
	buf[1] = index
	putFixedString(buf[2:2+ChannelNameSize], name)
	copy(buf[2+ChannelNameSize:], truncateBytes(secret, ChannelSecretSize))
	return buf
}

// BuildSignStart builds a signStart command.
func BuildSignStart() []byte { return []byte{byte(CmdSignStart)} }

// BuildSignData builds a signData command carrying one chunk.
func BuildSignData(chunk []byte) []byte {
	return append([]byte{byte(CmdSignData)}, chunk...)
}

// BuildSignFinish builds a signFinish command.
func BuildSignFinish() []byte { return []byte{byte(CmdSignFinish)} }

// BuildSendTrace builds a sendTrace command. path is optional (nil for
// flood discovery).
func BuildSendTrace(tag, authCode uint32, flags uint8, path []byte) []byte {
	buf := []byte{byte(CmdSendTrace)}
	buf = appendU32LE(buf, tag)
	buf = appendU32LE(buf, authCode)
	buf = append(buf, flags)
	buf = append(buf, path...)
	return buf
}

// BuildSetDevicePin builds a setDevicePin command.
func BuildSetDevicePin(pin uint32) []byte {
	return appendU32LE([]byte{byte(CmdSetDevicePin)}, pin)
}

// BuildSetOtherParams builds a setOtherParams command. mode packs the
// three 2-bit telemetry policy fields; multiAcks is appended only when
// non-nil.
func BuildSetOtherParams(manualAddContacts bool, mode TelemetryMode, advLocPolicy uint8, multiAcks *uint8) []byte {
	manual := byte(0)
	if manualAddContacts {
		manual = 1
	}
	buf := []byte{byte(CmdSetOtherParams), manual, mode.PackByte(), advLocPolicy}
	if multiAcks != nil {
		buf = append(buf, *multiAcks)
	}
	return buf
}

// BuildGetSelfTelemetry builds a getSelfTelemetry command. pubkey is
// optional (nil queries this device's own telemetry).
func BuildGetSelfTelemetry(pubkey *[PublicKeySize]byte) []byte {
	buf := []byte{byte(CmdGetSelfTelemetry), 0x00, 0x00, 0x00}
	if pubkey != nil {
		buf = append(buf, pubkey[:]...)
	}
	return buf
}

// BuildGetCustomVar builds a getCustomVar command.
func BuildGetCustomVar(key string) []byte {
	return append([]byte{byte(CmdGetCustomVar)}, []byte(key)...)
}

// BuildSetCustomVar builds a setCustomVar command as "key:value" bytes.
func BuildSetCustomVar(key, value string) []byte {
	return append([]byte{byte(CmdSetCustomVar)}, []byte(key+":"+value)...)
}

// BuildGetAdvertPath builds a getAdvertPath command.
func BuildGetAdvertPath(pubkey [PublicKeySize]byte) []byte {
	buf := []byte{byte(CmdGetAdvertPath), 0x00}
	return append(buf, pubkey[:]...)
}

// BuildGetTuningParams builds a getTuningParams command.
func BuildGetTuningParams() []byte { return []byte{byte(CmdGetTuningParams)} }

// BuildBinaryRequest builds a binaryRequest command.
func BuildBinaryRequest(pubkey [PublicKeySize]byte, reqType BinaryRequestType, payload []byte) []byte {
	buf := []byte{byte(CmdBinaryRequest)}
	buf = append(buf, pubkey[:]...)
	buf = append(buf, byte(reqType))
	buf = append(buf, payload...)
	return buf
}

// BuildFactoryReset builds a factoryReset command, with its guard
// string.
func BuildFactoryReset() []byte {
	return append([]byte{byte(CmdFactoryReset)}, []byte("reset")...)
}

// BuildPathDiscovery builds a pathDiscovery command.
func BuildPathDiscovery(pubkey [PublicKeySize]byte) []byte {
	buf := []byte{byte(CmdPathDiscovery), 0x00}
	return append(buf, pubkey[:]...)
}

// BuildSetFloodScope builds a setFloodScope command.
func BuildSetFloodScope(scopeKey [16]byte) []byte {
	buf := []byte{byte(CmdSetFloodScope), 0x00}
	return append(buf, scopeKey[:]...)
}

// BuildSendControlData builds a sendControlData command.
func BuildSendControlData(typ uint8, payload []byte) []byte {
	buf := []byte{byte(CmdSendControlData), typ}
	return append(buf, payload...)
}

// BuildGetStats builds a getStats command.
func BuildGetStats(statsType StatsType) []byte {
	return []byte{byte(CmdGetStats), byte(statsType)}
}

// BuildSetAutoAddConfig builds a setAutoAddConfig command.
func BuildSetAutoAddConfig(cfg AutoAddConfig) []byte {
	return []byte{byte(CmdSetAutoAddConfig), cfg.PackByte()}
}

// BuildGetAutoAddConfig builds a getAutoAddConfig command.
func BuildGetAutoAddConfig() []byte { return []byte{byte(CmdGetAutoAddConfig)} }

// --- shared helpers ---

func appendU32LE(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func truncateString(s string, max int) []byte {
	b := []byte(s)
	if len(b) > max {
		return b[:max]
	}
	return b
}

func truncateBytes(b []byte, max int) []byte {
	out := make([]byte, max)
	n := len(b)
	if n > max {
		n = max
	}
	copy(out, b[:n])
	return out
}

// putFixedString zero-pads or truncates s into dst, whose length is the
// field's declared fixed width.
func putFixedString(dst []byte, s string) {
	b := []byte(s)
	n := len(b)
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, b[:n])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func round(f float64) int64 {
	if f >= 0 {
		return int64(f + 0.5)
	}
	return int64(f - 0.5)
}
