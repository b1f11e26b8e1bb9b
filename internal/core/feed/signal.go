package feed

import "sync"

// WakeSource hands out channels that receive a value whenever the
// underlying data may have changed. Pollers use it to refresh early instead
// of waiting for their next tick.
type WakeSource interface {
	// Subscribe returns a wake channel and a function that releases it.
	Subscribe() (<-chan struct{}, func())
}

// Signal is a WakeSource fired by hand, for example right after the local
// user writes something.
type Signal struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewSignal creates a Signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{subs: make(map[chan struct{}]struct{})}
}

// Subscribe implements WakeSource.
func (s *Signal) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// Fire wakes every subscriber. Wake-ups coalesce: a subscriber that has not
// consumed the previous one receives nothing new.
func (s *Signal) Fire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Multi merges several wake sources into one.
type Multi []WakeSource

// Subscribe implements WakeSource.
func (m Multi) Subscribe() (<-chan struct{}, func()) {
	out := make(chan struct{}, 1)
	done := make(chan struct{})

	var stops []func()
	var wg sync.WaitGroup
	for _, src := range m {
		if src == nil {
			continue
		}
		ch, stop := src.Subscribe()
		stops = append(stops, stop)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				case <-ch:
					select {
					case out <- struct{}{}:
					default:
					}
				}
			}
		}()
	}

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			for _, stop := range stops {
				stop()
			}
		})
	}
}
