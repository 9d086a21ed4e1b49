package access

import "testing"

func TestGateAllowed(t *testing.T) {
	g := NewGate([]int64{100, 200})
	if !g.Allowed(100) || !g.Allowed(200) {
		t.Fatalf("listed users must be admitted")
	}
	if g.Allowed(300) {
		t.Fatalf("unlisted user admitted")
	}
}

func TestGateEmptyList(t *testing.T) {
	g := NewGate(nil)
	if g.Allowed(1) {
		t.Fatalf("empty gate must deny everyone")
	}
}

func TestGateNil(t *testing.T) {
	var g *Gate
	if g.Allowed(1) {
		t.Fatalf("nil gate must deny everyone")
	}
}
