package extractor

import (
	"errors"
	"reflect"
	"testing"

	"netintent/internal/domain"
)

func TestPingTargetFromParams(t *testing.T) {
	tests := []struct {
		name   string
		params domain.Params
		want   string
	}{
		{
			name:   "defaults",
			params: domain.Params{"host": "leaf1"},
			want:   "ping -c 4 -W 5 network-instance default 127.0.0.1",
		},
		{
			name:   "explicit",
			params: domain.Params{"destination": "10.0.0.2", "count": 10, "timeout": 2, "vrf": "mgmt"},
			want:   "ping -c 10 -W 2 network-instance mgmt 10.0.0.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PingTargetFromParams(tt.params).Command(); got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePingStats(t *testing.T) {
	tests := []struct {
		name   string
		output string
		tx, rx int
	}{
		{"linux summary", "--- 10.0.0.2 ping statistics ---\n5 packets transmitted, 5 received, 0% packet loss, time 4005ms", 5, 5},
		{"upper case", "5 PACKETS TRANSMITTED, 3 RECEIVED", 5, 3},
		{"extra spacing", "4  packets transmitted,   0 received", 4, 0},
		{"missing", "ping: unknown host", 0, 0},
		{"empty", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, rx := ParsePingStats(tt.output)
			if tx != tt.tx || rx != tt.rx {
				t.Errorf("ParsePingStats() = (%d, %d), want (%d, %d)", tx, rx, tt.tx, tt.rx)
			}
		})
	}
}

func TestPingsScenarios(t *testing.T) {
	ex := NewPingExtractor([]PingTarget{
		{Destination: "10.0.0.2", Count: 5, Timeout: 5, VRF: "default"},
		{Destination: "10.0.0.3", Count: 5, Timeout: 5, VRF: "default"},
		{Destination: "10.0.0.4", Count: 5, Timeout: 5, VRF: "default"},
	})

	raw := domain.RawCommandResult{
		Host: "leaf1",
		Results: []domain.CommandOutput{
			{Command: "ping 1", Output: "5 packets transmitted, 5 received"},
			{Command: "ping 2", Output: "5 packets transmitted, 0 received"},
			{Command: "ping 3", Err: errors.New("command timeout")},
		},
	}

	got := ex.Pings(raw)

	full := got["10.0.0.2"]
	if !full.Success || full.PacketLoss != 0 {
		t.Errorf("all received: success=%v loss=%d", full.Success, full.PacketLoss)
	}

	none := got["10.0.0.3"]
	if none.Success || none.PacketLoss != 5 {
		t.Errorf("none received: success=%v loss=%d", none.Success, none.PacketLoss)
	}

	failed := got["10.0.0.4"]
	if failed.Success || failed.PacketsTransmitted != 0 || failed.PacketLoss != 0 {
		t.Errorf("failed command: %+v", failed)
	}
	if failed.Output != "command timeout" {
		t.Errorf("failed command output = %q", failed.Output)
	}
}

func TestPingsAlignment(t *testing.T) {
	ex := NewPingExtractor([]PingTarget{
		{Destination: "a"},
		{Destination: "b"},
		{Destination: "c"},
	})

	t.Run("fewer results drop trailing destinations", func(t *testing.T) {
		raw := domain.RawCommandResult{Results: []domain.CommandOutput{
			{Output: "1 packets transmitted, 1 received"},
			{Output: "2 packets transmitted, 1 received"},
		}}
		got := ex.Pings(raw)
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		if _, ok := got["c"]; ok {
			t.Error("destination c should have no record")
		}
		if got["a"].PacketsTransmitted != 1 || got["b"].PacketsTransmitted != 2 {
			t.Errorf("results misaligned: %+v", got)
		}
	})

	t.Run("extra results are ignored", func(t *testing.T) {
		raw := domain.RawCommandResult{Results: []domain.CommandOutput{
			{Output: "1 packets transmitted, 1 received"},
			{Output: "2 packets transmitted, 2 received"},
			{Output: "3 packets transmitted, 3 received"},
			{Output: "4 packets transmitted, 4 received"},
		}}
		got := ex.Pings(raw)
		want := []string{"a", "b", "c"}
		if keys := ex.Transform(raw).Keys(); !reflect.DeepEqual(keys, want) {
			t.Errorf("keys = %v, want %v", keys, want)
		}
		if got["c"].PacketsTransmitted != 3 {
			t.Errorf("c should map to the third result, got %+v", got["c"])
		}
	})
}

func TestPingsZeroTransmittedPolicy(t *testing.T) {
	ex := NewPingExtractor([]PingTarget{{Destination: "10.0.0.2"}})
	raw := domain.RawCommandResult{Results: []domain.CommandOutput{
		{Output: "0 packets transmitted, 3 received"},
	}}

	rec := ex.Pings(raw)["10.0.0.2"]
	if rec.Success || rec.PacketLoss != 0 {
		t.Errorf("zero transmitted must fail with no loss, got %+v", rec)
	}
}

func TestPingsStructuredOutput(t *testing.T) {
	ex := NewPingExtractor([]PingTarget{{Destination: "10.0.0.2"}})
	raw := domain.RawCommandResult{Results: []domain.CommandOutput{
		{Output: map[string]any{"ping": "3 packets transmitted, 2 received"}},
	}}

	rec := ex.Pings(raw)["10.0.0.2"]
	if rec.PacketsTransmitted != 3 || rec.PacketsReceived != 2 || rec.PacketLoss != 1 {
		t.Errorf("structured output not parsed: %+v", rec)
	}
}
