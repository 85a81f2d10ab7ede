package main

import "testing"

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "valid 6 bytes", in: "aabbccddeeff", wantErr: false},
		{name: "wrong length", in: "aabb", wantErr: true},
		{name: "not hex", in: "zzzzzzzzzzzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, err := parsePrefix(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePrefix(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && prefix[0] != 0xaa {
				t.Fatalf("prefix[0] = %#x, want 0xaa", prefix[0])
			}
		})
	}
}

func TestRouteDescription(t *testing.T) {
	if got := routeDescription(-1); got != "flood" {
		t.Fatalf("routeDescription(-1) = %q, want flood", got)
	}
	if got := routeDescription(3); got != "3 hop(s)" {
		t.Fatalf("routeDescription(3) = %q, want \"3 hop(s)\"", got)
	}
}

func TestConnectFlagsResolveSerialTakesPriority(t *testing.T) {
	f := connectFlags{serial: "/dev/ttyUSB0", baudRate: 57600, device: "should-be-ignored"}
	addr, err := f.resolve(&AddressBook{Entries: map[string]*Address{}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr.Kind != "serial" || addr.Addr != "/dev/ttyUSB0" || addr.BaudRate != 57600 {
		t.Fatalf("unexpected resolved address: %+v", addr)
	}
}

func TestConnectFlagsResolveAddressBookHit(t *testing.T) {
	book := &AddressBook{Entries: map[string]*Address{
		"lobby": {Kind: "tcp", Addr: "10.0.0.5:5000"},
	}}
	f := connectFlags{device: "lobby"}
	addr, err := f.resolve(book)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr.Addr != "10.0.0.5:5000" {
		t.Fatalf("addr = %+v, want the remembered lobby entry", addr)
	}
}

func TestConnectFlagsResolveLiteralHostPort(t *testing.T) {
	f := connectFlags{device: "192.168.9.9:5000"}
	addr, err := f.resolve(&AddressBook{Entries: map[string]*Address{}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr.Kind != "tcp" || addr.Addr != "192.168.9.9:5000" {
		t.Fatalf("unexpected resolved address: %+v", addr)
	}
}
