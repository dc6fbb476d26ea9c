package sim

import (
	"errors"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidSnapshotJSON is returned when snapshot data is malformed.
	ErrInvalidSnapshotJSON = errors.New("snapshot json is not valid")

	// ErrSnapshotAfterStart is returned when a world is captured after its
	// train already arrived.
	ErrSnapshotAfterStart = errors.New("snapshot must be taken before the run starts")
)

// snapshotJSON keeps full float precision so restored weights, and with them
// the lights, match the captured world exactly.
var snapshotJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a populated world captured before its run. Restoring it under
// another configuration, such as lights off, replays the run on the very same
// passengers.
type Snapshot struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Seed      int64     `json:"seed"`
	Config    Config    `json:"config"`
	Station   *Station  `json:"station"`
	Train     *Train    `json:"train"`
}

// Snapshot captures the environment. Only a world whose run has not started
// can be captured.
func (env *Environment) Snapshot() (*Snapshot, error) {
	if env.Timing.Started() || env.Train.ParkedAt != nil {
		return nil, ErrSnapshotAfterStart
	}
	return &Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: time.Now(),
		Seed:      env.Seed,
		Config:    env.Config,
		Station:   env.Station,
		Train:     env.Train,
	}, nil
}

// SaveSnapshot writes env as JSON.
func SaveSnapshot(w io.Writer, env *Environment) error {
	snap, err := env.Snapshot()
	if err != nil {
		return err
	}
	data, err := snapshotJSON.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if !jsoniter.ConfigFastest.Valid(data) {
		return nil, ErrInvalidSnapshotJSON
	}
	var snap Snapshot
	if err := snapshotJSON.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, expected %d", snap.Version, SnapshotVersion)
	}
	if snap.Station == nil || snap.Train == nil {
		return nil, fmt.Errorf("%w: missing station or train", ErrInvalidSnapshotJSON)
	}
	return &snap, nil
}

// Restore builds a fresh environment from the snapshot's world. A nil cfg
// reuses the captured configuration. The random streams are reseeded from the
// captured seed, so the same configuration replays the same run.
func (s *Snapshot) Restore(cfg *Config) (*Environment, error) {
	c := s.Config
	if cfg != nil {
		c = *cfg
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if n := len(s.Station.Sectors); n != c.Station.SectorCount {
		return nil, fmt.Errorf("%w: snapshot has %d sectors, config %d", ErrConfiguration, n, c.Station.SectorCount)
	}
	if n := s.Train.CarCount(); n != c.Train.CarCount() {
		return nil, fmt.Errorf("%w: snapshot has %d cars, config %d", ErrConfiguration, n, c.Train.CarCount())
	}

	for _, car := range s.Train.Cars() {
		if car.Capacity != c.Train.Capacity {
			return nil, fmt.Errorf("%w: snapshot car %d holds %d, config capacity %d", ErrConfiguration, car.FlatIndex, car.Capacity, c.Train.Capacity)
		}
	}

	// Round trip through JSON so restores never share passengers.
	data, err := snapshotJSON.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("copying snapshot: %w", err)
	}
	var world Snapshot
	if err := snapshotJSON.Unmarshal(data, &world); err != nil {
		return nil, fmt.Errorf("copying snapshot: %w", err)
	}
	return newEnvironment(c, s.Seed, world.Station, world.Train), nil
}
