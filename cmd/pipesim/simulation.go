package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/pipegrid/config"
	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/metrics"
	"github.com/katalvlaran/pipegrid/network"
	"github.com/katalvlaran/pipegrid/world"
)

// simulation is one configured world plus its metrics.
type simulation struct {
	cfg     *config.Config
	log     zerolog.Logger
	gather  *prometheus.Registry
	metrics *metrics.Metrics
	world   *world.World
}

func newSimulation(cfg *config.Config, log zerolog.Logger) (*simulation, error) {
	gather := prometheus.NewRegistry()
	gather.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(gather)

	reg := network.NewRegistry(network.WithLogger(log), network.WithRecorder(m))
	w, err := world.FromLayout(reg, cfg.Scenario.Layout,
		world.WithLogger(log),
		world.WithFluidConfig(cfg.FluidSettings()),
		world.WithFluidOptions(fluid.WithSeed(cfg.Fluid.Seed), fluid.WithRecorder(m)),
		world.WithTankCapacity(cfg.Scenario.TankCapacity),
	)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	for i, sc := range cfg.Scenario.Sources {
		p := world.Pos{X: sc.X, Y: sc.Y, Z: sc.Z}
		if _, err := w.PlaceSource(p, fluid.NewStack(sc.Fluid(), sc.Rate)); err != nil {
			return nil, fmt.Errorf("source %d at %s: %w", i, p, err)
		}
	}

	w.Subscribe(m.ObserveTransfer)
	w.Subscribe(func(ev fluid.TransferEvent) {
		log.Debug().
			Uint64("network", uint64(ev.Network)).
			Int("fluid", ev.FluidID).
			Bool("transferring", ev.Transferring).
			Msg("transfer state changed")
	})

	log.Info().
		Int("blocks", w.Len()).
		Int("networks", reg.Len()).
		Int("sources", len(cfg.Scenario.Sources)).
		Msg("world built")

	return &simulation{cfg: cfg, log: log, gather: gather, metrics: m, world: w}, nil
}

// Run drives the authoritative and presentation loops, plus the metrics
// server when configured, until ctx is done or the tick budget is spent.
func (s *simulation) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := s.world.Registry()
	limit := uint64(s.cfg.Simulation.Ticks)
	step := func() {
		if limit > 0 && reg.Ticks() >= limit {
			return
		}
		s.world.Tick()
		if limit > 0 && reg.Ticks() >= limit {
			cancel()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reg.Run(gctx, s.cfg.Simulation.TickInterval.Duration(), step)
	})
	g.Go(func() error {
		return s.world.RunClient(gctx, s.cfg.Simulation.ClientTickInterval.Duration())
	})
	if addr := s.cfg.Metrics.Addr; addr != "" {
		srv := metrics.NewServer(s.log, addr, s.gather)
		g.Go(func() error { return srv.Run(gctx) })
	}

	s.log.Info().
		Dur("tick_interval", s.cfg.Simulation.TickInterval.Duration()).
		Int("ticks", s.cfg.Simulation.Ticks).
		Msg("simulation started")
	err := g.Wait()
	s.log.Info().Uint64("ticks", reg.Ticks()).Msg("simulation stopped")
	return err
}

// Summary writes one line per live network and one per tank.
func (s *simulation) Summary(out io.Writer) {
	fmt.Fprintf(out, "ticks: %d\n", s.world.Registry().Ticks())
	for _, n := range s.world.Networks() {
		fmt.Fprintf(out, "network %d: %s stored=%s %s\n", n.ID(), n, n.StoredInfo(), n.NeededInfo())
	}
	for _, t := range s.tanks() {
		fmt.Fprintf(out, "tank %s: %d/%d mB\n", t.pos, t.tank.Amount(), t.tank.Capacity())
	}
}

type placedTank struct {
	pos  world.Pos
	tank *fluid.Tank
}

// tanks lists the scenario's tanks in layout order.
func (s *simulation) tanks() []placedTank {
	var out []placedTank
	for z, row := range s.cfg.Scenario.Layout {
		for x := range row {
			p := world.Pos{X: x, Z: z}
			if t, ok := s.world.Tank(p); ok {
				out = append(out, placedTank{pos: p, tank: t})
			}
		}
	}
	return out
}
