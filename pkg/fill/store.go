package fill

import v3 "github.com/deadsy/sdfx/vec/v3"

// Store holds accepted particles as flat x,y,z float32 triples in
// acceptance order, the layout renderers upload directly.
type Store struct {
	positions []float32
}

// Append adds a particle.
func (s *Store) Append(p v3.Vec) {
	s.positions = append(s.positions, float32(p.X), float32(p.Y), float32(p.Z))
}

// Len returns the number of particles.
func (s *Store) Len() int {
	return len(s.positions) / 3
}

// At returns the i-th particle.
func (s *Store) At(i int) v3.Vec {
	return v3.Vec{
		X: float64(s.positions[i*3]),
		Y: float64(s.positions[i*3+1]),
		Z: float64(s.positions[i*3+2]),
	}
}

// Positions returns a copy of the flat particle buffer.
func (s *Store) Positions() []float32 {
	out := make([]float32, len(s.positions))
	copy(out, s.positions)
	return out
}

// Reset drops every particle.
func (s *Store) Reset() {
	s.positions = nil
}
