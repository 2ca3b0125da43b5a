// Package pipegrid simulates resource-carrying pipe networks: connected
// transmitters that pool a stored amount of fluid and push it out to the
// acceptors around them, one tick at a time.
//
// The module is organized as flat packages:
//
//	network/    resource-agnostic core: directions, transmitters, the generic
//	            network base, connected components and the tick registry
//	fluid/      fluid networks: stacks, acceptors, fair share distribution,
//	            merge and split, transfer events
//	world/      a sparse block world of pipes, tanks and sources that drives
//	            joins, merges and splits as blocks are placed and removed
//	metrics/    Prometheus collectors and the /metrics endpoint
//	config/     YAML scenario configuration
//	cmd/        the pipesim command
//
// Quick ASCII example:
//
//	=====T
//	S
//
// A source feeds a five-segment pipe run, which holds up to 5000 mB and
// delivers into the tank at its end every tick.
//
//	go run github.com/katalvlaran/pipegrid/cmd/pipesim run --ticks 100
package pipegrid
