package model

// SegmentUnknown is the label used when a user's segment could not be determined.
const SegmentUnknown = "unknown"

// Segment is the result of a segment lookup.
type Segment struct {
	Label    string
	Resolved bool
}

// ResolvedSegment wraps a label returned by the segment service.
func ResolvedSegment(label string) Segment {
	return Segment{Label: label, Resolved: true}
}

// UnresolvedSegment is the degraded outcome of a failed lookup.
func UnresolvedSegment() Segment {
	return Segment{Label: SegmentUnknown}
}

// String returns the label, or "unknown" when unresolved.
func (s Segment) String() string {
	if !s.Resolved {
		return SegmentUnknown
	}
	return s.Label
}
