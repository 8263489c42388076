package state

import "testing"

func TestGuard_BeginInvalidatesEarlierTokens(t *testing.T) {
	var g Guard

	first := g.Begin("li_1")
	if !g.Current(first) {
		t.Fatal("fresh token should be current")
	}

	second := g.Begin("li_1")
	if g.Current(first) {
		t.Fatal("superseded token still current")
	}
	if !g.Current(second) {
		t.Fatal("latest token should be current")
	}
}

func TestGuard_KeysAreIndependent(t *testing.T) {
	var g Guard

	a := g.Begin("li_a")
	b := g.Begin("li_b")
	g.Begin("li_b")

	if !g.Current(a) {
		t.Fatal("epoch for li_a disturbed by li_b navigation")
	}
	if g.Current(b) {
		t.Fatal("stale li_b token still current")
	}
}

func TestGuard_ZeroTokenNeverCurrent(t *testing.T) {
	var g Guard
	if g.Current(Token{}) {
		t.Fatal("zero token must not be current")
	}
}
