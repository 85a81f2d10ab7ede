package discovery

import (
	"testing"
	"time"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Name:     "node-01",
		Hostname: "node-01.local",
		IP:       "192.168.4.16",
		Port:     5000,
	}

	expected := "MeshCore bridge node-01 (node-01.local) at 192.168.4.16:5000"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_Addr(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name: "default companion port",
			device: &Device{
				IP:   "192.168.4.16",
				Port: 5000,
			},
			expected: "192.168.4.16:5000",
		},
		{
			name: "custom port",
			device: &Device{
				IP:   "10.0.0.5",
				Port: 8080,
			},
			expected: "10.0.0.5:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.Addr(); got != tt.expected {
				t.Errorf("Device.Addr() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{
			"fw":   "v1.7",
			"role": "repeater",
		},
	}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "existing key",
			key:      "fw",
			expected: "v1.7",
		},
		{
			name:     "another existing key",
			key:      "role",
			expected: "repeater",
		},
		{
			name:     "non-existent key",
			key:      "missing",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := device.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Device.GetMetadata(%v) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata_NilMap(t *testing.T) {
	device := &Device{
		Metadata: nil,
	}

	if got := device.GetMetadata("anything"); got != "" {
		t.Errorf("Device.GetMetadata() with nil map = %v, want empty string", got)
	}
}

func TestDevice_DiscoveredAt(t *testing.T) {
	now := time.Now()
	device := &Device{
		Name:         "node-01",
		DiscoveredAt: now,
	}

	if device.DiscoveredAt != now {
		t.Errorf("Device.DiscoveredAt = %v, want %v", device.DiscoveredAt, now)
	}
}
