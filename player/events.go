package player

// LoadResult reports the outcome of an asynchronous media load. The Path
// field correlates the result with the handle that requested it.
type LoadResult struct {
	Path   string
	Loaded bool
}

// Tick reports the extrapolated position of a playing stream. Ticks are
// emitted periodically and dropped when the receiver lags.
type Tick struct {
	Path     string
	Position float64
}
