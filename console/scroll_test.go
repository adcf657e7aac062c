package console

import "testing"

func TestViewportStartsPinnedAndFollowsBursts(t *testing.T) {
	v := NewViewport(50)
	if !v.Pinned() {
		t.Fatalf("viewport must start pinned")
	}
	for i := 1; i <= 50; i++ {
		if !v.OnAppend(i) {
			t.Fatalf("append %d while pinned must jump", i)
		}
	}
}

func TestViewportUnpinsOnActiveScrollAway(t *testing.T) {
	v := NewViewport(50)
	v.OnAppend(10)
	// User scrolls well away from the bottom; buffer unchanged since the last
	// observed scroll position.
	v.ObserveScroll(400, 10)
	if v.Pinned() {
		t.Fatalf("expected unpinned after active scroll away")
	}
	if v.OnAppend(11) {
		t.Fatalf("appends must not move an unpinned viewport")
	}
}

func TestViewportIgnoresGrowthInducedScroll(t *testing.T) {
	v := NewViewport(50)
	v.ObserveScroll(0, 5)
	// Content grew under the reader between scroll observations; the position
	// change is not an active scroll and must not unpin.
	v.ObserveScroll(400, 9)
	if !v.Pinned() {
		t.Fatalf("growth-induced scroll must not unpin")
	}
}

func TestViewportRepinsWithinTolerance(t *testing.T) {
	v := NewViewport(50)
	v.ObserveScroll(400, 5)
	if v.Pinned() {
		t.Fatalf("expected unpinned")
	}
	v.ObserveScroll(30, 5)
	if !v.Pinned() {
		t.Fatalf("scroll within tolerance of bottom must re-pin")
	}
}

func TestViewportRepinForcesJump(t *testing.T) {
	v := NewViewport(50)
	v.ObserveScroll(400, 5)
	v.Repin(5)
	if !v.Pinned() {
		t.Fatalf("expected pinned after Repin")
	}
	if !v.OnAppend(6) {
		t.Fatalf("append after Repin must jump")
	}
}
