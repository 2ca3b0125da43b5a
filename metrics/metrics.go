// Package metrics exposes network bookkeeping and fluid movement as
// Prometheus collectors. A *Metrics is both a network.Recorder and a
// fluid.Recorder, and its ObserveTransfer method is a fluid.Observer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/network"
)

const namespace = "pipegrid"

// Metrics holds every collector. Create it with New.
type Metrics struct {
	NetworksLive   prometheus.Gauge
	Registrations  prometheus.Counter
	Refreshes      prometheus.Counter
	Merges         prometheus.Counter
	MergedNetworks prometheus.Counter
	Splits         prometheus.Counter
	SplitParts     prometheus.Counter
	Ticks          prometheus.Counter
	TickedNetworks prometheus.Gauge
	TickDuration   prometheus.Histogram
	FluidIntake    prometheus.Counter
	FluidDelivered prometheus.Counter
	FluidDiscarded prometheus.Counter
	TransferEvents *prometheus.CounterVec
}

var (
	_ network.Recorder = (*Metrics)(nil)
	_ fluid.Recorder   = (*Metrics)(nil)
)

// New registers the collectors with reg. A nil reg uses a private registry,
// which keeps tests independent of the global default.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		NetworksLive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "networks_live",
			Help:      "Number of registered networks",
		}),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_registrations_total",
			Help:      "Networks registered since start",
		}),
		Refreshes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_refreshes_total",
			Help:      "Topology refreshes performed",
		}),
		Merges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_merges_total",
			Help:      "Merge operations performed",
		}),
		MergedNetworks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_merge_inputs_total",
			Help:      "Networks retired by merges",
		}),
		Splits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_splits_total",
			Help:      "Split operations performed",
		}),
		SplitParts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_split_parts_total",
			Help:      "Networks created by splits",
		}),
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Authoritative tick passes completed",
		}),
		TickedNetworks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ticked_networks",
			Help:      "Networks ticked by the last pass",
		}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one authoritative tick pass",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		FluidIntake: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fluid_intake_mb_total",
			Help:      "Fluid taken into networks, in mB",
		}),
		FluidDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fluid_delivered_mb_total",
			Help:      "Fluid delivered to acceptors, in mB",
		}),
		FluidDiscarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fluid_discarded_mb_total",
			Help:      "Fluid dropped by kind conflicts and capacity shrinks, in mB",
		}),
		TransferEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_events_total",
			Help:      "Transfer state notifications by state",
		}, []string{"state"}),
	}
}

// NetworkRegistered counts a registration and raises the live gauge.
func (m *Metrics) NetworkRegistered() {
	m.NetworksLive.Inc()
	m.Registrations.Inc()
}

// NetworkDeregistered lowers the live gauge.
func (m *Metrics) NetworkDeregistered() {
	m.NetworksLive.Dec()
}

// Refreshed counts one topology refresh.
func (m *Metrics) Refreshed() {
	m.Refreshes.Inc()
}

// Merged counts one merge and the inputs it retired.
func (m *Metrics) Merged(inputs int) {
	m.Merges.Inc()
	m.MergedNetworks.Add(float64(inputs))
}

// Split counts one split and the parts it produced.
func (m *Metrics) Split(parts int) {
	m.Splits.Inc()
	m.SplitParts.Add(float64(parts))
}

// Ticked records one tick pass: its duration and how many networks it ran.
func (m *Metrics) Ticked(networks int, elapsed time.Duration) {
	m.Ticks.Inc()
	m.TickedNetworks.Set(float64(networks))
	m.TickDuration.Observe(elapsed.Seconds())
}

// Intake adds fluid taken into a network. Negative amounts are ignored.
func (m *Metrics) Intake(amount int) {
	m.FluidIntake.Add(float64(max(0, amount)))
}

// Delivered adds fluid accepted by acceptors. Negative amounts are ignored.
func (m *Metrics) Delivered(amount int) {
	m.FluidDelivered.Add(float64(max(0, amount)))
}

// Discarded adds fluid dropped by kind conflicts or capacity shrinks.
// Negative amounts are ignored.
func (m *Metrics) Discarded(amount int) {
	m.FluidDiscarded.Add(float64(max(0, amount)))
}

// ObserveTransfer counts ev by indicator state.
func (m *Metrics) ObserveTransfer(ev fluid.TransferEvent) {
	state := "off"
	if ev.Transferring {
		state = "on"
	}
	m.TransferEvents.WithLabelValues(state).Inc()
}
