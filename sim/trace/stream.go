package trace

import "sync"

// Stream hands notifications to a consumer running on another goroutine.
//
// Observe never blocks: records are buffered without bound and relayed in
// order to the channel returned by C. The consumer reads at its own pace.
// Close flushes the buffer and then closes C.
type Stream struct {
	mu      sync.Mutex
	pending []Notification
	closed  bool

	wake chan struct{}
	out  chan Notification
	done chan struct{}
}

// NewStream creates a Stream and starts its relay goroutine.
func NewStream() *Stream {
	s := &Stream{
		wake: make(chan struct{}, 1),
		out:  make(chan Notification),
		done: make(chan struct{}),
	}
	go s.relay()
	return s
}

// C returns the receive side of the stream.
func (s *Stream) C() <-chan Notification {
	return s.out
}

// Observe buffers n for delivery. Notifications observed after Close are dropped.
func (s *Stream) Observe(n Notification) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, n)
	s.mu.Unlock()
	s.signal()
}

// Close stops accepting notifications. Buffered ones are still delivered
// before C is closed. Safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

// Done is closed once every buffered notification has been delivered.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Stream) relay() {
	defer close(s.done)
	defer close(s.out)
	for range s.wake {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		closed := s.closed
		s.mu.Unlock()

		for _, n := range batch {
			s.out <- n
		}
		if closed {
			s.mu.Lock()
			remaining := len(s.pending)
			s.mu.Unlock()
			if remaining == 0 {
				return
			}
			s.signal()
		}
	}
}
