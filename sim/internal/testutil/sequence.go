package testutil

// Sequence replays a fixed list of samples, repeating the last one once the
// list is exhausted. It satisfies sim.Distribution and sim.Reseeder; Reseed
// restarts the list.
type Sequence struct {
	vals []float64
	i    int
}

// NewSequence creates a Sequence. Panics if vals is empty.
func NewSequence(vals ...float64) *Sequence {
	if len(vals) == 0 {
		panic("NewSequence: at least one value is required")
	}
	return &Sequence{vals: vals}
}

func (s *Sequence) Sample() float64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}

func (s *Sequence) Reseed() { s.i = 0 }
