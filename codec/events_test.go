package codec

import "testing"

func TestTelemetryModePackUnpackRoundTrip(t *testing.T) {
	for env := uint8(0); env < 4; env++ {
		for loc := uint8(0); loc < 4; loc++ {
			for base := uint8(0); base < 4; base++ {
				m := TelemetryMode{Environment: env, Location: loc, Base: base}
				got := UnpackTelemetryMode(m.PackByte())
				if got != m {
					t.Fatalf("round trip failed: in=%+v out=%+v", m, got)
				}
			}
		}
	}
}

func TestAutoAddConfigPackUnpackRoundTrip(t *testing.T) {
	cases := []AutoAddConfig{
		{},
		{OverwriteOldest: true},
		{AutoAddContacts: true, AutoAddRepeaters: true},
		{OverwriteOldest: true, AutoAddContacts: true, AutoAddRepeaters: true, AutoAddRoomServers: true},
	}
	for _, c := range cases {
		got := UnpackAutoAddConfig(c.PackByte())
		if got != c {
			t.Errorf("round trip failed: in=%+v out=%+v", c, got)
		}
	}
}

func TestConnectionStateString(t *testing.T) {
	cases := map[ConnectionState]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateReady:        "ready",
		ConnectionState(99): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestResponseCodeStringAndCategory(t *testing.T) {
	if RespSelfInfo.String() != "selfInfo" {
		t.Errorf("RespSelfInfo.String() = %q", RespSelfInfo.String())
	}
	cat, ok := RespSelfInfo.Category()
	if !ok || cat != CategoryDevice {
		t.Errorf("RespSelfInfo.Category() = (%v, %v), want (CategoryDevice, true)", cat, ok)
	}
	if _, ok := ResponseCode(0xF0).Category(); ok {
		t.Error("unassigned response code should not resolve a category")
	}
}

func TestIsPush(t *testing.T) {
	if RespSelfInfo.IsPush() {
		t.Error("RespSelfInfo should not be a push code")
	}
	if !RespAdvertisement.IsPush() {
		t.Error("RespAdvertisement should be a push code")
	}
}
