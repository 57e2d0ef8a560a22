package shortcode

import "sync"

// SequenceSource replays fixed values, wrapping around at the end. Values are
// reduced modulo n so the same sequence works for any alphabet.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

func NewSequenceSource(values ...int) *SequenceSource {
	if len(values) == 0 {
		values = []int{0}
	}
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.pos%len(s.values)]
	s.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}
