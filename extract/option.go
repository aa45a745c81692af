package extract

// Option tunes extractor behavior.
type Option func(*options)

type options struct {
	minConfidence float64
}

// WithMinConfidence drops results scored below min. Zero or negative
// keeps everything.
func WithMinConfidence(min float64) Option {
	return func(o *options) { o.minConfidence = min }
}

// filterConfidence keeps items scoring at or above min, preserving
// order. A zero threshold keeps the slice untouched.
func filterConfidence[T any](items []T, min float64, score func(T) float64) []T {
	if min <= 0 {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		if score(item) >= min {
			kept = append(kept, item)
		}
	}
	return kept
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
