// File: options.go
// Role: functional options and the settings shared by a network lineage.
//
// Networks produced by Merge or Split inherit the receiver's settings
// pointer: same tuning, side, logger, recorder, distributor and RNG stream.
package fluid

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// defaultSeed is used when callers pass seed == 0, keeping default runs reproducible.
const defaultSeed int64 = 1

// Option configures a Network created by New.
type Option func(*settings)

type settings struct {
	cfg  Config
	side Side
	log  zerolog.Logger
	rec  Recorder
	dist *Distributor

	rngMu sync.Mutex // math/rand.Rand is not goroutine-safe
	rng   *rand.Rand
}

func newSettings(opts []Option) *settings {
	s := &settings{
		cfg:  DefaultConfig(),
		side: Authoritative,
		log:  zerolog.Nop(),
		rec:  NopRecorder{},
		rng:  rand.New(rand.NewSource(defaultSeed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dist == nil {
		s.dist = NewDistributor()
	}
	return s
}

// WithConfig sets the tuning. Non-positive UnitCapacity or ScaleStep and a
// negative HoldTicks keep their defaults.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		def := DefaultConfig()
		if cfg.UnitCapacity <= 0 {
			cfg.UnitCapacity = def.UnitCapacity
		}
		if cfg.HoldTicks < 0 {
			cfg.HoldTicks = def.HoldTicks
		}
		if cfg.ScaleStep <= 0 {
			cfg.ScaleStep = def.ScaleStep
		}
		s.cfg = cfg
	}
}

// WithSide selects the authoritative or presentation half of the state machine.
func WithSide(side Side) Option {
	return func(s *settings) { s.side = side }
}

// WithSeed seeds the acceptor shuffle. seed == 0 selects the fixed default.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		if seed == 0 {
			seed = defaultSeed
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger used for merge, split and discard records.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log.With().Str("component", "fluid.network").Logger() }
}

// WithRecorder installs a fluid movement hook. A nil recorder is ignored.
func WithRecorder(rec Recorder) Option {
	return func(s *settings) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// WithDistributor shares an event distributor between independently created
// networks. A nil distributor is ignored.
func WithDistributor(d *Distributor) Option {
	return func(s *settings) {
		if d != nil {
			s.dist = d
		}
	}
}

// shuffle permutes a in place from the lineage's RNG stream.
// Complexity: O(n) time, O(1) extra space.
func (s *settings) shuffle(a []Acceptor) {
	if len(a) <= 1 {
		return
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })
}
