package clock

import "time"

// Anchor pairs a wall-clock instant with the media position that was current
// at that instant. While a stream plays, its position is derived from the
// anchor instead of polling the decoder.
type Anchor struct {
	Wall     time.Time
	Position float64
}

// Anchored reports whether the anchor has been set.
func (a Anchor) Anchored() bool {
	return !a.Wall.IsZero()
}

// PositionAt extrapolates the media position at the given instant, in seconds.
func (a Anchor) PositionAt(now time.Time) float64 {
	if !a.Anchored() {
		return a.Position
	}
	return a.Position + now.Sub(a.Wall).Seconds()
}
