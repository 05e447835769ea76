package engine

import "errors"

var (
	ErrEmptyPath          = errors.New("path has no waypoints")
	ErrMalformedWaypoints = errors.New("malformed waypoint file")
	ErrEmptyWaveTable     = errors.New("wave table has no rounds")
	ErrBadRound           = errors.New("invalid round definition")
	ErrUnknownTier        = errors.New("unknown balloon tier")
	ErrNoMoreRounds       = errors.New("no more rounds")
	ErrBadConfig          = errors.New("invalid configuration")
)
