package fill

import (
	"time"

	"github.com/chazu/meshfill/pkg/membership"
)

// Metrics summarizes the work of one fill session. It is owned by the
// Filler and handed out by value, so callers never share it.
type Metrics struct {
	// IndexBuild is the time spent extracting and indexing the mesh, when
	// the classifier reports it.
	IndexBuild time.Duration

	membership.Counters

	Steps      int
	Candidates int
	Accepted   int
	Elapsed    time.Duration // sum of step durations

	BatchSize    int // batch size for the next step
	MinBatchSize int
	MaxBatchSize int
}

func (m *Metrics) observeBatch(size int) {
	m.BatchSize = size
	if m.MinBatchSize == 0 || size < m.MinBatchSize {
		m.MinBatchSize = size
	}
	if size > m.MaxBatchSize {
		m.MaxBatchSize = size
	}
}

// AcceptanceRate returns accepted candidates over generated ones.
func (m Metrics) AcceptanceRate() float64 {
	if m.Candidates == 0 {
		return 0
	}
	return float64(m.Accepted) / float64(m.Candidates)
}
