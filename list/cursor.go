// Package list implements the logical (sample, ordinal) cursor shared by
// all three FID skiplist levels. It has no notion of pages or files; it
// only tracks a position and knows how to advance it by a delta.
package list

// Delta is the distance between two adjacent samples at some skiplist
// level: a time delta and a count of samples it spans.
type Delta struct {
	Time uint64
	N    int64
}

// Cursor is a (sample value, sample ordinal) pair for one skiplist level.
type Cursor struct {
	Sample  uint64
	Ordinal int64
}

// Reset returns a Cursor positioned before the first sample: value zero,
// ordinal -1, so that the first Advance lands on ordinal 0.
func Reset() Cursor {
	return Cursor{Sample: 0, Ordinal: -1}
}

// Advance moves the cursor forward by delta.
func (c *Cursor) Advance(delta Delta) {
	c.Sample += delta.Time
	c.Ordinal += delta.N
}
