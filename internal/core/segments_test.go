package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAllocateSegmentsProportions(t *testing.T) {
	items := []LineItem{
		{ID: "a", Label: "A", Amount: "600"},
		{ID: "b", Label: "B", Amount: "400"},
	}
	segs := AllocateSegments(items)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}

	if !almostEqual(segs[0].Start, 0) || !almostEqual(segs[0].End, 216) {
		t.Errorf("segment A span = [%v, %v), want [0, 216)", segs[0].Start, segs[0].End)
	}
	if segs[0].Percent != 60 {
		t.Errorf("segment A percent = %d, want 60", segs[0].Percent)
	}

	if !almostEqual(segs[1].Start, 216) || !almostEqual(segs[1].End, 360) {
		t.Errorf("segment B span = [%v, %v), want [216, 360)", segs[1].Start, segs[1].End)
	}
	if segs[1].Percent != 40 {
		t.Errorf("segment B percent = %d, want 40", segs[1].Percent)
	}
}

func TestAllocateSegmentsZeroTotal(t *testing.T) {
	items := []LineItem{
		{ID: "a", Label: "A", Amount: "0"},
		{ID: "b", Label: "B", Amount: ""},
	}
	if segs := AllocateSegments(items); len(segs) != 0 {
		t.Fatalf("expected empty segment list, got %d", len(segs))
	}
}

func TestAllocateSegmentsSkipsNonPositive(t *testing.T) {
	items := []LineItem{
		{ID: "a", Label: "A", Amount: "300"},
		{ID: "b", Label: "B", Amount: "0"},
		{ID: "c", Label: "C", Amount: "100"},
	}
	segs := AllocateSegments(items)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].ID != "a" || segs[1].ID != "c" {
		t.Fatalf("unexpected segment order: %q, %q", segs[0].ID, segs[1].ID)
	}
	// Cursor must stay contiguous across the skipped item.
	if !almostEqual(segs[0].End, segs[1].Start) {
		t.Errorf("gap between segments: %v != %v", segs[0].End, segs[1].Start)
	}
	if !almostEqual(segs[1].End, 360) {
		t.Errorf("last segment ends at %v, want 360", segs[1].End)
	}
	// Colors cycle by emitted index, not input index.
	if segs[1].Color != Palette[1] {
		t.Errorf("segment C color = %q, want %q", segs[1].Color, Palette[1])
	}
}

func TestAllocateSegmentsDetailBackedItems(t *testing.T) {
	items := []LineItem{
		{ID: "a", Label: "Bills", Amount: "1", Details: []DetailItem{
			{ID: "d1", Amount: "90"},
			{ID: "d2", Amount: "10"},
		}},
		{ID: "b", Label: "Other", Amount: "100"},
	}
	segs := AllocateSegments(items)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Percent != 50 || segs[1].Percent != 50 {
		t.Errorf("percents = %d, %d, want 50, 50", segs[0].Percent, segs[1].Percent)
	}
}
