package core

import "math"

// Palette is the fixed six-color cycle used for expense segments. The
// legend and the chart share it by index.
var Palette = [6]string{"#6c5ce7", "#ff8b5f", "#20bfa9", "#ffa940", "#4e54c8", "#8e44ad"}

// Segment is one proportional slice of the expense chart. Start and End
// are degrees in [0, 360); Percent is the rounded share of the total.
type Segment struct {
	ID      string
	Label   string
	Value   float64
	Color   string
	Start   float64
	End     float64
	Percent int
}

// AllocateSegments converts an ordered sequence of expense-like items
// into contiguous angular slices proportional to their amounts.
//
// Items with a non-positive effective amount are skipped without
// emitting a zero-width segment; the cursor only advances for emitted
// segments, so the remaining slices stay contiguous. A zero total
// yields an empty list and the chart renders its placeholder.
func AllocateSegments(items []LineItem) []Segment {
	var total float64
	for _, it := range items {
		total += it.EffectiveAmount()
	}
	if total == 0 {
		return nil
	}

	var (
		segments []Segment
		cursor   float64
	)
	for _, it := range items {
		value := it.EffectiveAmount()
		if value <= 0 {
			continue
		}
		share := value / total
		seg := Segment{
			ID:      it.ID,
			Label:   it.Label,
			Value:   value,
			Color:   Palette[len(segments)%len(Palette)],
			Start:   cursor,
			End:     cursor + share*360,
			Percent: int(math.Round(share * 100)),
		}
		cursor = seg.End
		segments = append(segments, seg)
	}
	return segments
}
