package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemIsMonotonic(t *testing.T) {
	c := NewSystem()
	a := c.Now()
	b := c.Now()
	require.GreaterOrEqual(t, b, a)
}

func TestFakeConstantStep(t *testing.T) {
	f := &Fake{Step: 20 * time.Millisecond}
	start := f.Now()
	end := f.Now()
	require.Equal(t, 20*time.Millisecond, end-start)
	require.Equal(t, 2, f.Readings())
}

func TestFakeScriptedSteps(t *testing.T) {
	f := &Fake{Steps: []time.Duration{time.Millisecond, 5 * time.Millisecond}}
	readings := []time.Duration{f.Now(), f.Now(), f.Now(), f.Now()}
	require.Equal(t, []time.Duration{0, time.Millisecond, 6 * time.Millisecond, 11 * time.Millisecond}, readings)
}
