package dedupe

// Option configures a deduper built by NewInMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the redelivery window: once maxSize record keys are
// held, the oldest is forgotten. maxSize <= 0 never forgets.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
