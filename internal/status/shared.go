package status

import "sync"

// Source delivers gesture events to subscribers.
type Source interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Shared is the process-wide status broadcaster. Publish delivers events
// synchronously, in subscription order, on the caller's goroutine.
type Shared struct {
	mu       sync.Mutex
	subs     map[int]func(Event)
	order    []int
	nextID   int
	current  Event
	inButton bool
	minFreq  float64
	maxFreq  float64
}

func NewShared() *Shared {
	return &Shared{subs: make(map[int]func(Event))}
}

func (s *Shared) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Shared) Publish(ev Event) {
	s.mu.Lock()
	s.current = ev
	fns := make([]func(Event), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Current returns the last published event.
func (s *Shared) Current() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Shared) IsInTheButton() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inButton
}

func (s *Shared) SetIsInTheButton(v bool) {
	s.mu.Lock()
	s.inButton = v
	s.mu.Unlock()
}

func (s *Shared) SetMinFrequency(f float64) {
	s.mu.Lock()
	s.minFreq = f
	s.mu.Unlock()
}

func (s *Shared) SetMaxFrequency(f float64) {
	s.mu.Lock()
	s.maxFreq = f
	s.mu.Unlock()
}

// FrequencyRange returns the last published min and max frequency.
func (s *Shared) FrequencyRange() (minFreq, maxFreq float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minFreq, s.maxFreq
}
