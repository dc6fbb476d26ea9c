// Package sim provides the discrete-event engine that simulates a train
// turnaround at a rail platform: a train is weighed upstream, its car weights
// are signalled ahead so the platform can light each sector GREEN, YELLOW or
// RED, waiting passengers spread out accordingly, and the run measures how
// long the train stands at the platform.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: the Event interface and the event kinds
//   - signal.go, decision.go, boarding.go: what every event does when fired
//   - simulator.go: the event loop and error handling
//
// # World
//
//   - station.go: sectors, lights and initial occupancy
//   - train.go: sets, cars and initial load
//   - passenger.go: passenger attributes and the passenger queue
//   - sector_distance.go: nearest-sector queries used for relocation
//   - environment.go: one run's world plus its random streams
//
// Random draws come from a PartitionedRNG seeded once per run, with one stream
// per concern (population, parking, unload, decision, compliance).
//
// Sub-packages:
//   - sim/distribution/: passenger weight distributions
//   - sim/trace/: decision trace recording
package sim
