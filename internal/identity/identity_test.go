package identity

import (
	"regexp"
	"testing"
)

var (
	uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	sqmRe  = regexp.MustCompile(`^\{[0-9A-F]{8}-[0-9A-F]{4}-4[0-9A-F]{3}-[89AB][0-9A-F]{3}-[0-9A-F]{12}\}$`)
	hexRe  = regexp.MustCompile(`^[0-9a-f]+$`)
)

func TestNew_Formats(t *testing.T) {
	ids, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if !uuidRe.MatchString(ids.DevDeviceID) {
		t.Errorf("DevDeviceID %q is not a lowercase UUID v4", ids.DevDeviceID)
	}
	if !sqmRe.MatchString(ids.SqmID) {
		t.Errorf("SqmID %q is not a braced uppercase UUID v4", ids.SqmID)
	}
	if len(ids.MachineID) != 64 || !hexRe.MatchString(ids.MachineID) {
		t.Errorf("MachineID %q is not 64 lowercase hex chars", ids.MachineID)
	}
	if len(ids.MacMachineID) != 128 || !hexRe.MatchString(ids.MacMachineID) {
		t.Errorf("MacMachineID %q is not 128 lowercase hex chars", ids.MacMachineID)
	}
	if ids.ServiceMachineID != ids.DevDeviceID {
		t.Errorf("ServiceMachineID %q should equal DevDeviceID %q", ids.ServiceMachineID, ids.DevDeviceID)
	}
}

func TestNew_Distinct(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	b, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if a.DevDeviceID == b.DevDeviceID {
		t.Error("two generated sets share a DevDeviceID")
	}
	if a.MachineID == b.MachineID {
		t.Error("two generated sets share a MachineID")
	}
	if a.MacMachineID == b.MacMachineID {
		t.Error("two generated sets share a MacMachineID")
	}
}

func TestPairs_KeysAndOrder(t *testing.T) {
	ids, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	pairs := ids.Pairs()
	keys := Keys()
	if len(pairs) != len(keys) {
		t.Fatalf("Pairs() has %d entries, Keys() has %d", len(pairs), len(keys))
	}
	for i, p := range pairs {
		if p.Key != keys[i] {
			t.Errorf("Pairs()[%d].Key = %q, want %q", i, p.Key, keys[i])
		}
		if p.Value == "" {
			t.Errorf("Pairs()[%d] (%s) has empty value", i, p.Key)
		}
	}
}

func TestFromMap_ServiceFallsBackToDevDeviceID(t *testing.T) {
	ids := FromMap(map[string]string{
		KeyDevDeviceID: "abc",
		KeyMachineID:   "def",
	})

	if ids.ServiceMachineID != "abc" {
		t.Errorf("ServiceMachineID = %q, want fallback to DevDeviceID %q", ids.ServiceMachineID, "abc")
	}
	if ids.MacMachineID != "" {
		t.Errorf("MacMachineID = %q, want empty for absent key", ids.MacMachineID)
	}
}

func TestFromMap_ExplicitServiceWins(t *testing.T) {
	ids := FromMap(map[string]string{
		KeyDevDeviceID:      "abc",
		KeyServiceMachineID: "xyz",
	})

	if ids.ServiceMachineID != "xyz" {
		t.Errorf("ServiceMachineID = %q, want %q", ids.ServiceMachineID, "xyz")
	}
}
