package forecast

import (
	"math/rand"
	"time"
)

// Rng is the randomness needed by synthetic generation. It exists so tests
// can force or forbid outages and make noise deterministic.
type Rng interface {
	// Uniform draws from [0, 1).
	Uniform() float64
	// Normal draws from a Gaussian with the given mean and standard deviation.
	Normal(mean, std float64) float64
}

type randRng struct {
	r *rand.Rand
}

// NewRng returns a seeded source, reproducible for the same seed.
func NewRng(seed int64) Rng {
	return &randRng{r: rand.New(rand.NewSource(seed))}
}

// NewSystemRng returns a time-seeded source for production use.
func NewSystemRng() Rng {
	return NewRng(time.Now().UnixNano())
}

func (g *randRng) Uniform() float64 {
	return g.r.Float64()
}

func (g *randRng) Normal(mean, std float64) float64 {
	return mean + g.r.NormFloat64()*std
}

// outageSimulator tracks per-fleet forced-outage state across consecutive
// timestamps of one synthetic run. On each tick a healthy fleet enters an
// outage with the configured probability and then stays off for the fixed
// duration, counting the triggering hour.
type outageSimulator struct {
	rng         Rng
	probability float64
	duration    int
	remaining   map[int64]int
}

func newOutageSimulator(rng Rng, probability float64, durationHours int) *outageSimulator {
	if durationHours < 1 {
		durationHours = 1
	}
	return &outageSimulator{
		rng:         rng,
		probability: probability,
		duration:    durationHours,
		remaining:   make(map[int64]int),
	}
}

// tick reports whether the fleet is in outage at the current timestamp and
// advances its state.
func (s *outageSimulator) tick(fleetID int64) bool {
	if left := s.remaining[fleetID]; left > 0 {
		s.remaining[fleetID] = left - 1
		return true
	}
	if s.rng.Uniform() < s.probability {
		s.remaining[fleetID] = s.duration - 1
		return true
	}
	return false
}

// noisyPower perturbs a power value with Gaussian noise proportional to the
// value itself, clamped so generation never goes negative.
func noisyPower(rng Rng, powerKw, stdPercent float64) float64 {
	if powerKw <= 0 {
		return powerKw
	}
	noisy := rng.Normal(powerKw, powerKw*stdPercent/100)
	if noisy < 0 {
		return 0
	}
	return noisy
}
