package engine

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

//go:embed data/rounds.json data/waypoints.csv
var defaultData embed.FS

// UnmarshalJSON reads the ["tier", count] pair form used by wave files.
func (tc *TierCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: balloon entry must be [tier, count]: %v", ErrBadRound, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: balloon entry must be [tier, count], got %d items", ErrBadRound, len(pair))
	}
	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return fmt.Errorf("%w: tier name: %v", ErrBadRound, err)
	}
	var count int
	if err := json.Unmarshal(pair[1], &count); err != nil {
		return fmt.Errorf("%w: count: %v", ErrBadRound, err)
	}
	t, err := ParseTier(name)
	if err != nil {
		return err
	}
	tc.Tier, tc.Count = t, count
	return nil
}

type roundFile struct {
	Balloons     []TierCount `json:"balloons"`
	SpawnDelayMS int         `json:"spawn_delay_ms"`
}

type waveFile struct {
	Rounds []roundFile `json:"rounds"`
}

// LoadWaveTable decodes a wave table:
//
//	{"rounds": [{"balloons": [["red", 10], ["blue", 5]], "spawn_delay_ms": 500}]}
func LoadWaveTable(r io.Reader) (*WaveTable, error) {
	var wf waveFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wf); err != nil {
		return nil, fmt.Errorf("failed to decode wave table: %w", err)
	}
	rounds := make([]RoundConfig, len(wf.Rounds))
	for i, rf := range wf.Rounds {
		rounds[i] = RoundConfig{
			Balloons:   rf.Balloons,
			SpawnDelay: time.Duration(rf.SpawnDelayMS) * time.Millisecond,
		}
	}
	return NewWaveTable(rounds)
}

// LoadWaypointsCSV reads a header line followed by x,y rows, in order.
// Any unparsable row fails the whole load.
func LoadWaypointsCSV(r io.Reader) (*Path, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("load waypoints: %w", ErrEmptyPath)
		}
		return nil, fmt.Errorf("load waypoints header: %w: %v", ErrMalformedWaypoints, err)
	}
	var points []Point
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load waypoints line %d: %w: %v", line, ErrMalformedWaypoints, err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("load waypoints line %d: %w: want 2 columns, got %d", line, ErrMalformedWaypoints, len(rec))
		}
		x, errX := strconv.ParseFloat(rec[0], 64)
		y, errY := strconv.ParseFloat(rec[1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("load waypoints line %d: %w: %q,%q", line, ErrMalformedWaypoints, rec[0], rec[1])
		}
		if !finite(x) || !finite(y) {
			return nil, fmt.Errorf("load waypoints line %d: %w: non-finite %q,%q", line, ErrMalformedWaypoints, rec[0], rec[1])
		}
		points = append(points, Point{X: x, Y: y})
	}
	return NewPath(points)
}

// DefaultWaveTable is the built-in 20 round campaign.
func DefaultWaveTable() (*WaveTable, error) {
	data, err := defaultData.ReadFile("data/rounds.json")
	if err != nil {
		return nil, err
	}
	return LoadWaveTable(bytes.NewReader(data))
}

// DefaultPath is the built-in equidistant track.
func DefaultPath() (*Path, error) {
	data, err := defaultData.ReadFile("data/waypoints.csv")
	if err != nil {
		return nil, err
	}
	return LoadWaypointsCSV(bytes.NewReader(data))
}

// LoadInputs returns the track and wave table named by cfg, falling back to
// the built-in data for anything not set.
func LoadInputs(cfg Config) (*Path, *WaveTable, error) {
	var (
		path  *Path
		waves *WaveTable
		err   error
	)
	if cfg.WaypointsFile != "" {
		path, err = loadFile(cfg.WaypointsFile, LoadWaypointsCSV)
	} else {
		path, err = DefaultPath()
	}
	if err != nil {
		return nil, nil, err
	}
	if cfg.RoundsFile != "" {
		waves, err = loadFile(cfg.RoundsFile, LoadWaveTable)
	} else {
		waves, err = DefaultWaveTable()
	}
	if err != nil {
		return nil, nil, err
	}
	return path, waves, nil
}

func loadFile[T any](name string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(name)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()
	v, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
