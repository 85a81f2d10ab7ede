// Package codec builds and parses MeshCore companion-radio frames.
//
// A frame is an opaque payload handed to or received from a transport;
// codec never touches framing (see package transport) or I/O. Builders
// are pure functions of their arguments and never fail except by
// truncating oversized variable-length fields. Parse never panics: a
// malformed or short frame yields an Event with ParseFailure populated,
// carrying the raw bytes and a reason string.
//
// # Endianness
//
// Every multi-byte integer in a MeshCore frame is little-endian, with one
// exception: Cayenne LPP telemetry values (see DecodeLPP) are big-endian,
// matching the Cayenne spec rather than the surrounding frame.
//
// # Example
//
//	f := BuildAppStart("MCore")
//	// f == []byte{0x01, 0x03, 0x20, 0x20, 0x20, 0x20, 0x20, 0x20, 'M', 'C', 'o', 'r', 'e'}
//
//	ev := Parse(frame)
//	if ev.Code == RespSelfInfo {
//		fmt.Println(ev.SelfInfo.Name)
//	}
package codec
