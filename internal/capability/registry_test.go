package capability

import (
	"testing"

	"github.com/kagami-ai/kagami/internal/model"
)

func TestLookupKnownCapability(t *testing.T) {
	def, ok := Lookup("session.set_mode")
	if !ok {
		t.Fatal("session.set_mode must be registered")
	}
	if def.Risk != model.RiskHigh || !def.OwnerOnly || !def.RequiresConfirmation {
		t.Errorf("set_mode metadata wrong: %+v", def)
	}
}

func TestLookupUnknownCapability(t *testing.T) {
	if _, ok := Lookup("session.nonexistent"); ok {
		t.Error("unknown name must not resolve")
	}
}

func TestListIsStableAndComplete(t *testing.T) {
	list := List()
	if len(list) != 17 {
		t.Fatalf("expected 17 capabilities, got %d", len(list))
	}
	if list[0].Name != "session.capabilities" {
		t.Errorf("discovery capability must come first, got %s", list[0].Name)
	}
	seen := make(map[string]bool)
	for _, d := range list {
		if seen[d.Name] {
			t.Errorf("duplicate capability %s", d.Name)
		}
		seen[d.Name] = true
	}
}

func TestListReturnsCopy(t *testing.T) {
	list := List()
	list[0].Name = "mutated"
	if fresh := List(); fresh[0].Name == "mutated" {
		t.Error("List must not expose the registry for mutation")
	}
}

func TestHighRiskCapabilitiesGated(t *testing.T) {
	for _, d := range List() {
		if d.Risk == model.RiskHigh && !d.OwnerOnly && !d.RequiresConfirmation {
			t.Errorf("%s: high risk without owner gate or confirmation", d.Name)
		}
	}
}
