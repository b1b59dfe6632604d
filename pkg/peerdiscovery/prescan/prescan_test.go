package prescan

import (
	"fmt"
	"net"
	"testing"
)

func TestCalculatePriority(t *testing.T) {
	tests := []struct {
		ip   string
		want int
	}{
		{"192.168.1.1", PriorityGateway},
		{"192.168.1.254", PriorityGateway},
		{"192.168.1.2", PriorityReserved},
		{"192.168.1.5", PriorityReserved},
		{"192.168.1.250", PriorityReserved},
		{"192.168.1.253", PriorityReserved},
		{"192.168.1.6", PriorityEarlyDHCP},
		{"192.168.1.10", PriorityEarlyDHCP},
		{"192.168.1.50", PriorityDHCPPeak},
		{"192.168.1.100", PriorityDHCPPeak},
		{"192.168.1.150", PriorityDHCPPeak},
		{"192.168.1.51", PriorityDHCPPool},
		{"192.168.1.99", PriorityDHCPPool},
		{"192.168.1.200", PriorityDHCPPool},
		{"192.168.1.11", PriorityLongTail},
		{"192.168.1.49", PriorityLongTail},
		{"192.168.1.201", PriorityLongTail},
		{"192.168.1.249", PriorityLongTail},
		{"192.168.1.0", PriorityExcluded},
		{"192.168.1.255", PriorityExcluded},
		{"fd00::1", PriorityLongTail},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := CalculatePriority(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("CalculatePriority(%s) = %d, want %d", tt.ip, got, tt.want)
			}
		})
	}
}

func TestPrioritize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "gateway first, network address last",
			input: []string{"10.0.0.0", "10.0.0.77", "10.0.0.1"},
			want:  []string{"10.0.0.1", "10.0.0.77", "10.0.0.0"},
		},
		{
			name:  "equal priority keeps input order",
			input: []string{"10.0.0.30", "10.0.0.12", "10.0.0.20"},
			want:  []string{"10.0.0.30", "10.0.0.12", "10.0.0.20"},
		},
		{
			name:  "non ip strings are long tail",
			input: []string{"printer.lan", "10.0.0.254", "10.0.0.255"},
			want:  []string{"10.0.0.254", "printer.lan", "10.0.0.255"},
		},
		{
			name:  "empty",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prioritize(tt.input)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) || len(got) != len(tt.want) {
				t.Errorf("Prioritize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrioritizeFullSubnet(t *testing.T) {
	var input []string
	for i := 0; i <= 254; i++ {
		input = append(input, fmt.Sprintf("192.168.1.%d", i))
	}

	got := Prioritize(input)
	if len(got) != len(input) {
		t.Fatalf("expected %d addresses, got %d", len(input), len(got))
	}
	if got[0] != "192.168.1.1" || got[1] != "192.168.1.254" {
		t.Errorf("expected gateways first, got %v", got[:2])
	}
	if got[len(got)-1] != "192.168.1.0" {
		t.Errorf("expected network address last, got %s", got[len(got)-1])
	}
}
