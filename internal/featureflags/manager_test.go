package featureflags

import (
	"testing"

	"github.com/google/uuid"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")
	user := uuid.New()

	if !m.Enabled("a", user) || !m.Enabled("c", user) || !m.Enabled("e", user) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", user) || m.Enabled("d", user) || m.Enabled("f", user) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")
	user := uuid.New()

	if !m.Enabled("always", user) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", user) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", user)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", user); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", uuid.Nil) {
		t.Fatal("percentage rollout requires an authenticated user")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(uuid.New())
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
}
