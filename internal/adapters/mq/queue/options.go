package queue

type settings struct {
	capacity int
	name     string
}

// Option configures an InMemoryQueue.
type Option func(*settings)

// WithCapacity sets the maximum number of buffered items.
func WithCapacity(capacity int) Option {
	return func(s *settings) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithName labels the queue in returned errors.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}
